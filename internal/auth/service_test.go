package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrireg/agrireg/internal/rbac"
	"github.com/agrireg/agrireg/internal/shared"
)

type mockRepo struct {
	users       map[string]*User
	identities  map[int64]*rbac.Identity
	identityErr error
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (m *mockRepo) Identity(ctx context.Context, userID int64) (*rbac.Identity, error) {
	if m.identityErr != nil {
		return nil, m.identityErr
	}
	identity, ok := m.identities[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return identity, nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticate(t *testing.T) {
	repo := &mockRepo{users: map[string]*User{
		"agent@example.com": {ID: 7, Email: "agent@example.com", PasswordHash: hashOf(t, "correct"), Role: rbac.SystemRoleAgent, IsActive: true},
	}}
	svc := NewService(repo)

	user, err := svc.Authenticate(context.Background(), "agent@example.com", "correct")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := &mockRepo{users: map[string]*User{
		"agent@example.com": {ID: 7, PasswordHash: hashOf(t, "correct"), IsActive: true},
	}}
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "agent@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(&mockRepo{users: map[string]*User{}})
	_, err := svc.Authenticate(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := &mockRepo{users: map[string]*User{
		"agent@example.com": {ID: 7, PasswordHash: hashOf(t, "correct"), IsActive: false},
	}}
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "agent@example.com", "correct")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestIdentityPassthrough(t *testing.T) {
	repo := &mockRepo{identities: map[int64]*rbac.Identity{
		7: {UserID: 7, SystemRole: rbac.SystemRoleManager, CustomRoleIDs: []int64{3}},
	}}
	svc := NewService(repo)

	identity, err := svc.Identity(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, rbac.SystemRoleManager, identity.SystemRole)
	assert.Equal(t, []int64{3}, identity.CustomRoleIDs)

	_, err = svc.Identity(context.Background(), 8)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
