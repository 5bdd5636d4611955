package assignments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/agrireg/agrireg/internal/platform/httpx"
	"github.com/agrireg/agrireg/internal/rbac"
)

// Handler exposes role assignment endpoints.
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

type assignRequest struct {
	RoleID int64 `json:"role_id" validate:"required,gt=0"`
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	identity := rbac.IdentityFromContext(r.Context())
	if err := h.service.Assign(r.Context(), userID, req.RoleID, identity.UserID); err != nil {
		h.logger.Warn("assign role rejected",
			slog.Int64("user_id", userID), slog.Int64("role_id", req.RoleID), slog.Any("error", err))
		rbac.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}

	identity := rbac.IdentityFromContext(r.Context())
	if err := h.service.Revoke(r.Context(), userID, roleID, identity.UserID); err != nil {
		h.logger.Error("revoke role failed",
			slog.Int64("user_id", userID), slog.Int64("role_id", roleID), slog.Any("error", err))
		rbac.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list user roles failed", slog.Int64("user_id", userID), slog.Any("error", err))
		rbac.WriteError(w, err)
		return
	}
	if list == nil {
		list = []AssignedRole{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": list})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+key)
		return 0, false
	}
	return id, true
}
