package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/agrireg/agrireg/internal/assignments"
	"github.com/agrireg/agrireg/internal/auth"
	"github.com/agrireg/agrireg/internal/certificates"
	"github.com/agrireg/agrireg/internal/farmers"
	"github.com/agrireg/agrireg/internal/observability"
	"github.com/agrireg/agrireg/internal/rbac"
	"github.com/agrireg/agrireg/internal/roles"
	"github.com/agrireg/agrireg/internal/shared"
	"github.com/agrireg/agrireg/internal/users"
	"github.com/agrireg/agrireg/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Identity       func(http.Handler) http.Handler

	AuthHandler         *auth.Handler
	RolesHandler        *roles.Handler
	AssignmentsHandler  *assignments.Handler
	UsersHandler        *users.Handler
	FarmersHandler      *farmers.Handler
	CertificatesHandler *certificates.Handler
	PermissionsHandler  *rbac.PermissionsHandler
	JobsHandler         *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with platform defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
		Identity:       params.Identity,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Hands the CSRF token to clients that hold a session.
	r.Get("/auth/csrf", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		token, err := params.CSRFManager.EnsureToken(r.Context(), sess)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"csrf_token":"` + token + `"}`))
	})

	params.AuthHandler.MountRoutes(r)
	params.RolesHandler.MountRoutes(r)
	params.AssignmentsHandler.MountRoutes(r)
	params.UsersHandler.MountRoutes(r)
	params.FarmersHandler.MountRoutes(r)
	params.CertificatesHandler.MountRoutes(r)
	if params.PermissionsHandler != nil {
		params.PermissionsHandler.MountRoutes(r)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
