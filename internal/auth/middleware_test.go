package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrireg/agrireg/internal/rbac"
	"github.com/agrireg/agrireg/internal/shared"
)

func identityRequest(t *testing.T, repo Repository, sess *shared.Session) *rbac.Identity {
	t.Helper()

	var captured *rbac.Identity
	handler := IdentityMiddleware(NewService(repo), nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = rbac.IdentityFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/farmers", nil)
	if sess != nil {
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	return captured
}

func TestIdentityMiddlewareAttachesIdentity(t *testing.T) {
	repo := &mockRepo{identities: map[int64]*rbac.Identity{
		7: {UserID: 7, SystemRole: rbac.SystemRoleManager},
	}}
	sess := &shared.Session{}
	sess.SetUser("7")

	identity := identityRequest(t, repo, sess)
	require.NotNil(t, identity)
	assert.Equal(t, int64(7), identity.UserID)
	assert.Equal(t, rbac.SystemRoleManager, identity.SystemRole)
	assert.False(t, sess.Destroyed())
}

func TestIdentityMiddlewareNoSessionPassesThrough(t *testing.T) {
	identity := identityRequest(t, &mockRepo{}, nil)
	assert.Nil(t, identity)
}

func TestIdentityMiddlewareDestroysSessionForGoneAccount(t *testing.T) {
	repo := &mockRepo{identities: map[int64]*rbac.Identity{}}
	sess := &shared.Session{}
	sess.SetUser("42")

	identity := identityRequest(t, repo, sess)
	assert.Nil(t, identity)
	assert.True(t, sess.Destroyed())
}

func TestIdentityMiddlewareKeepsSessionOnLookupFailure(t *testing.T) {
	// A transient persistence error is not a revocation: the session
	// survives and the request proceeds without an identity.
	repo := &mockRepo{identityErr: errors.New("dial tcp 127.0.0.1:5432: connection refused")}
	sess := &shared.Session{}
	sess.SetUser("7")

	identity := identityRequest(t, repo, sess)
	assert.Nil(t, identity)
	assert.False(t, sess.Destroyed())
}
