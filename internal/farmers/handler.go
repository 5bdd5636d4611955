package farmers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/agrireg/agrireg/internal/platform/httpx"
	"github.com/agrireg/agrireg/internal/rbac"
	"github.com/agrireg/agrireg/internal/shared"
)

// Handler exposes farmer registration endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		rbac:     rbacMW,
		validate: validator.New(),
	}
}

type listResponse struct {
	Farmers    []Farmer          `json:"farmers"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListFarmersRequest{}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}
	if v := q.Get("search"); v != "" {
		req.Search = &v
	}
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.Offset, _ = strconv.Atoi(q.Get("offset"))

	list, pagination, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list farmers failed", slog.Any("error", err))
		rbac.WriteError(w, err)
		return
	}
	if list == nil {
		list = []Farmer{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Farmers: list, Pagination: pagination})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.farmerID(w, r)
	if !ok {
		return
	}
	farmer, err := h.service.Get(r.Context(), id)
	if err != nil {
		rbac.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, farmer)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFarmerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	identity := rbac.IdentityFromContext(r.Context())
	farmer, err := h.service.Create(r.Context(), req, identity.UserID)
	if err != nil {
		h.logger.Warn("create farmer rejected", slog.Any("error", err))
		rbac.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, farmer)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.farmerID(w, r)
	if !ok {
		return
	}
	var req UpdateFarmerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	identity := rbac.IdentityFromContext(r.Context())
	farmer, err := h.service.Update(r.Context(), id, req, identity.UserID)
	if err != nil {
		h.logger.Warn("update farmer rejected", slog.Int64("farmer_id", id), slog.Any("error", err))
		rbac.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, farmer)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.farmerID(w, r)
	if !ok {
		return
	}
	identity := rbac.IdentityFromContext(r.Context())
	if err := h.service.Delete(r.Context(), id, identity.UserID); err != nil {
		rbac.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="farmers.csv"`)
	if err := h.service.ExportCSV(r.Context(), w); err != nil {
		h.logger.Error("export farmers failed", slog.Any("error", err))
	}
}

func (h *Handler) farmerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid farmer id")
		return 0, false
	}
	return id, true
}
