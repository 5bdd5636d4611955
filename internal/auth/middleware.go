package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/agrireg/agrireg/internal/rbac"
	"github.com/agrireg/agrireg/internal/shared"
)

// IdentityMiddleware turns a logged-in session into an rbac.Identity and
// stores it in the request context. Requests without a session user pass
// through without an identity; the authorization middleware rejects them
// when they hit a protected route.
func IdentityMiddleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(sess.User())
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				if logger != nil {
					logger.Error("parse session user id", slog.String("value", raw))
				}
				next.ServeHTTP(w, r)
				return
			}

			identity, err := service.Identity(r.Context(), userID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					// Deactivated or deleted account; drop the stale session.
					sess.Destroy()
				} else if logger != nil {
					// Transient lookup failure; keep the session and let the
					// request proceed without an identity.
					logger.Error("load identity",
						slog.Int64("user_id", userID), slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := rbac.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
