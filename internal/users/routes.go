package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/agrireg/agrireg/internal/rbac"
)

// MountRoutes registers user administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUsersRead))
		r.Get("/users", h.List)
		r.Get("/users/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermUsersCreate))
		r.Post("/users", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermUsersUpdate))
		r.Patch("/users/{id}", h.Update)
	})
}
