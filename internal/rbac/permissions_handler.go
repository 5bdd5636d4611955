package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrireg/agrireg/internal/platform/httpx"
)

// PermissionsHandler exposes the catalog and the caller's effective set.
type PermissionsHandler struct {
	logger   *slog.Logger
	resolver *Resolver
}

// NewPermissionsHandler builds a PermissionsHandler.
func NewPermissionsHandler(logger *slog.Logger, resolver *Resolver) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, resolver: resolver}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/permissions", h.listCatalog)
	r.Get("/permissions/effective", h.effective)
}

// The catalog is not secret to staff, but it is not served anonymously
// either; any authenticated identity may read it.
func (h *PermissionsHandler) listCatalog(w http.ResponseWriter, r *http.Request) {
	if IdentityFromContext(r.Context()) == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "sign in to access this resource")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": Catalog()})
}

func (h *PermissionsHandler) effective(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "sign in to access this resource")
		return
	}
	set, err := h.resolver.Resolve(r.Context(), identity)
	if err != nil {
		h.logger.Error("resolve effective permissions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":     identity.UserID,
		"system_role": identity.SystemRole,
		"permissions": set.List(),
	})
}
