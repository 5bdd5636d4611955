package certificates

import (
	"github.com/go-chi/chi/v5"

	"github.com/agrireg/agrireg/internal/rbac"
)

// MountRoutes registers certificate routes. Issue and revoke carry their own
// permissions since they change legal standing, not just data.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermCertificatesRead))
		r.Get("/farmers/{farmerID}/certificates", h.ListForFarmer)
		r.Get("/certificates/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermCertificatesCreate))
		r.Post("/certificates", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermCertificatesUpdate))
		r.Patch("/certificates/{id}", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermCertificatesIssue))
		r.Post("/certificates/{id}/issue", h.Issue)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermCertificatesRevoke))
		r.Post("/certificates/{id}/revoke", h.Revoke)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermCertificatesDelete))
		r.Delete("/certificates/{id}", h.Delete)
	})
}
