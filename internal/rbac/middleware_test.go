package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrireg/agrireg/internal/platform/httpx"
)

func testRouter(mw Middleware) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(PermUsersDelete))
		r.Delete("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(PermFarmersRead))
		r.Get("/farmers", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func newTestMiddleware(store Store) Middleware {
	return Middleware{Gate: NewGate(NewResolver(store, nil), nil, nil)}
}

func TestMiddlewareRejectsAnonymous(t *testing.T) {
	router := testRouter(newTestMiddleware(&fakeStore{}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/farmers", nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, "Unauthenticated", problem.Title)
}

func TestMiddlewareDeniesWithProblemDetail(t *testing.T) {
	router := testRouter(newTestMiddleware(&fakeStore{}))

	req := httptest.NewRequest(http.MethodDelete, "/users/4", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(),
		&Identity{UserID: 9, SystemRole: SystemRoleViewer}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, []string{PermUsersDelete}, problem.Required)
	assert.Contains(t, problem.Held, "farmers.read")
	assert.NotContains(t, problem.Held, PermUsersDelete)
}

func TestMiddlewareAdmitsAuthorized(t *testing.T) {
	router := testRouter(newTestMiddleware(&fakeStore{}))

	req := httptest.NewRequest(http.MethodDelete, "/users/4", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(),
		&Identity{UserID: 1, SystemRole: SystemRoleSuperAdmin}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestMiddlewareResolvesOncePerRequest(t *testing.T) {
	store := &fakeStore{}
	mw := newTestMiddleware(store)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		// Two stacked gates share the request snapshot.
		r.Use(mw.RequireAny(PermFarmersRead))
		r.Use(mw.RequireAll(PermFarmersRead))
		r.Get("/farmers", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/farmers", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(),
		&Identity{UserID: 3, SystemRole: SystemRoleViewer}))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, store.calls)
}
