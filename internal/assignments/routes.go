package assignments

import (
	"github.com/go-chi/chi/v5"

	"github.com/agrireg/agrireg/internal/rbac"
)

// MountRoutes registers assignment routes under the users subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUsersRead))
		r.Get("/users/{id}/roles", h.ListForUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermRolesAssign))
		r.Post("/users/{id}/roles", h.Assign)
		r.Delete("/users/{id}/roles/{roleID}", h.Revoke)
	})
}
