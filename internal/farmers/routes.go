package farmers

import (
	"github.com/go-chi/chi/v5"

	"github.com/agrireg/agrireg/internal/rbac"
)

// MountRoutes registers farmer registration routes. Export is a distinct
// permission from read so bulk extraction can be granted separately.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermFarmersRead))
		r.Get("/farmers", h.List)
		r.Get("/farmers/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermFarmersCreate))
		r.Post("/farmers", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermFarmersUpdate))
		r.Patch("/farmers/{id}", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermFarmersDelete))
		r.Delete("/farmers/{id}", h.Delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermFarmersExport))
		r.Get("/farmers/export", h.Export)
	})
}
