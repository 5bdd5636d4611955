package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/agrireg/agrireg/internal/platform/httpx"
)

// Middleware wires authorization checks into the HTTP router. The identity
// must already be in the request context (the auth middleware puts it there);
// the first check in a request resolves the permission set once and stashes
// it so later gates in the same request decide against the same snapshot.
type Middleware struct {
	Gate   *Gate
	Logger *slog.Logger
}

// RequireAny admits requests holding at least one of the permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ctx, ok := m.prepare(w, r)
			if !ok {
				return
			}
			decision, err := m.Gate.RequireAny(ctx, identity, perms...)
			if err != nil {
				m.fail(w, err)
				return
			}
			if !decision.Allowed {
				httpx.Forbidden(w, decision.Required, decision.Held)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAll admits requests holding every one of the permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ctx, ok := m.prepare(w, r)
			if !ok {
				return
			}
			decision, err := m.Gate.RequireAll(ctx, identity, perms...)
			if err != nil {
				m.fail(w, err)
				return
			}
			if !decision.Allowed {
				httpx.Forbidden(w, decision.Required, decision.Held)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// prepare extracts the identity and ensures the resolved snapshot is in the
// context. Writes the response itself when the request cannot proceed.
func (m Middleware) prepare(w http.ResponseWriter, r *http.Request) (*Identity, context.Context, bool) {
	ctx := r.Context()
	identity := IdentityFromContext(ctx)
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "sign in to access this resource")
		return nil, ctx, false
	}
	if _, ok := ResolvedFromContext(ctx); !ok {
		set, err := m.Gate.resolver.Resolve(ctx, identity)
		if err != nil {
			m.fail(w, err)
			return nil, ctx, false
		}
		ctx = ContextWithResolved(ctx, set)
	}
	return identity, ctx, true
}

func (m Middleware) fail(w http.ResponseWriter, err error) {
	if m.Logger != nil {
		m.Logger.Error("authorization check failed", slog.Any("error", err))
	}
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
