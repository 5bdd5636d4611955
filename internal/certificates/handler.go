package certificates

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/agrireg/agrireg/internal/platform/httpx"
	"github.com/agrireg/agrireg/internal/rbac"
)

// Handler exposes certificate lifecycle endpoints.
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

func (h *Handler) ListForFarmer(w http.ResponseWriter, r *http.Request) {
	farmerID, err := strconv.ParseInt(chi.URLParam(r, "farmerID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid farmer id")
		return
	}
	list, err := h.service.ListForFarmer(r.Context(), farmerID)
	if err != nil {
		h.logger.Error("list certificates failed", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	if list == nil {
		list = []Certificate{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.certID(w, r)
	if !ok {
		return
	}
	cert, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cert)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCertificateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	identity := rbac.IdentityFromContext(r.Context())
	cert, err := h.service.Create(r.Context(), req, identity.UserID)
	if err != nil {
		h.logger.Warn("create certificate rejected", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cert)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.certID(w, r)
	if !ok {
		return
	}
	var req UpdateCertificateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	identity := rbac.IdentityFromContext(r.Context())
	cert, err := h.service.Update(r.Context(), id, req, identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cert)
}

func (h *Handler) Issue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.certID(w, r)
	if !ok {
		return
	}
	identity := rbac.IdentityFromContext(r.Context())
	cert, err := h.service.Issue(r.Context(), id, identity.UserID)
	if err != nil {
		h.logger.Warn("issue certificate rejected", slog.Int64("certificate_id", id), slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cert)
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, ok := h.certID(w, r)
	if !ok {
		return
	}
	var req RevokeCertificateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	identity := rbac.IdentityFromContext(r.Context())
	cert, err := h.service.Revoke(r.Context(), id, req, identity.UserID)
	if err != nil {
		h.logger.Warn("revoke certificate rejected", slog.Int64("certificate_id", id), slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cert)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.certID(w, r)
	if !ok {
		return
	}
	identity := rbac.IdentityFromContext(r.Context())
	if err := h.service.Delete(r.Context(), id, identity.UserID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var stateErr *StateError
	if errors.As(err, &stateErr) {
		httpx.Problem(w, http.StatusConflict, "Conflict", stateErr.Error())
		return
	}
	rbac.WriteError(w, err)
}

func (h *Handler) certID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid certificate id")
		return 0, false
	}
	return id, true
}
