package roles

import (
	"github.com/go-chi/chi/v5"

	"github.com/agrireg/agrireg/internal/rbac"
)

// MountRoutes registers role administration routes. The engine is
// self-referential: changing roles requires role permissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermRolesRead))
		r.Get("/roles", h.List)
		r.Get("/roles/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermRolesCreate))
		r.Post("/roles", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermRolesUpdate))
		r.Patch("/roles/{id}", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermRolesDelete))
		r.Delete("/roles/{id}", h.Delete)
	})
}
