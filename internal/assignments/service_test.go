package assignments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrireg/agrireg/internal/rbac"
)

type pairKey struct {
	userID int64
	roleID int64
}

type mockRepository struct {
	users map[int64]bool
	roles map[int64]bool // value: isSystem
	pairs map[pairKey]Assignment
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[int64]bool),
		roles: make(map[int64]bool),
		pairs: make(map[pairKey]Assignment),
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	return m.users[userID], nil
}

func (m *mockRepository) RoleForUpdate(ctx context.Context, roleID int64) (int64, bool, error) {
	isSystem, ok := m.roles[roleID]
	if !ok {
		return 0, false, &rbac.NotFoundError{Kind: "role", ID: roleID}
	}
	return roleID, isSystem, nil
}

func (m *mockRepository) Insert(ctx context.Context, a Assignment) error {
	key := pairKey{a.UserID, a.RoleID}
	if _, ok := m.pairs[key]; ok {
		return &rbac.AlreadyAssignedError{UserID: a.UserID, RoleID: a.RoleID}
	}
	a.AssignedAt = time.Now()
	m.pairs[key] = a
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, userID, roleID int64) (bool, error) {
	key := pairKey{userID, roleID}
	if _, ok := m.pairs[key]; !ok {
		return false, nil
	}
	delete(m.pairs, key)
	return true, nil
}

func (m *mockRepository) ListForUser(ctx context.Context, userID int64) ([]AssignedRole, error) {
	var list []AssignedRole
	for key, a := range m.pairs {
		if key.userID == userID {
			list = append(list, AssignedRole{RoleID: a.RoleID, AssignedBy: a.AssignedBy, AssignedAt: a.AssignedAt})
		}
	}
	return list, nil
}

type mockInvalidator struct {
	users []int64
}

func (m *mockInvalidator) InvalidateUser(ctx context.Context, userID int64) error {
	m.users = append(m.users, userID)
	return nil
}

func TestAssign(t *testing.T) {
	repo := newMockRepository()
	repo.users[10] = true
	repo.roles[3] = false
	invalidator := &mockInvalidator{}
	svc := NewService(repo, invalidator, nil)

	require.NoError(t, svc.Assign(context.Background(), 10, 3, 1))
	assert.Len(t, repo.pairs, 1)
	assert.Equal(t, []int64{10}, invalidator.users)
}

func TestAssignUnknownUser(t *testing.T) {
	repo := newMockRepository()
	repo.roles[3] = false
	svc := NewService(repo, nil, nil)

	err := svc.Assign(context.Background(), 99, 3, 1)
	var nf *rbac.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Kind)
}

func TestAssignUnknownRole(t *testing.T) {
	repo := newMockRepository()
	repo.users[10] = true
	svc := NewService(repo, nil, nil)

	err := svc.Assign(context.Background(), 10, 99, 1)
	var nf *rbac.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "role", nf.Kind)
}

func TestAssignSystemRoleRefused(t *testing.T) {
	repo := newMockRepository()
	repo.users[10] = true
	repo.roles[1] = true
	invalidator := &mockInvalidator{}
	svc := NewService(repo, invalidator, nil)

	err := svc.Assign(context.Background(), 10, 1, 1)
	var sysErr *rbac.SystemRoleAssignmentError
	require.ErrorAs(t, err, &sysErr)
	assert.Empty(t, repo.pairs)
	assert.Empty(t, invalidator.users)
}

func TestAssignDuplicateRejected(t *testing.T) {
	repo := newMockRepository()
	repo.users[10] = true
	repo.roles[3] = false
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Assign(ctx, 10, 3, 1))
	err := svc.Assign(ctx, 10, 3, 1)
	var dup *rbac.AlreadyAssignedError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, int64(10), dup.UserID)
	assert.Equal(t, int64(3), dup.RoleID)
}

func TestRevokeIdempotent(t *testing.T) {
	repo := newMockRepository()
	repo.users[10] = true
	repo.roles[3] = false
	invalidator := &mockInvalidator{}
	svc := NewService(repo, invalidator, nil)
	ctx := context.Background()

	require.NoError(t, svc.Assign(ctx, 10, 3, 1))
	require.NoError(t, svc.Revoke(ctx, 10, 3, 1))
	assert.Empty(t, repo.pairs)

	// Second revoke is a no-op success and does not invalidate again.
	require.NoError(t, svc.Revoke(ctx, 10, 3, 1))
	assert.Equal(t, []int64{10, 10}, invalidator.users)
}

func TestRevokeAbsentPair(t *testing.T) {
	repo := newMockRepository()
	invalidator := &mockInvalidator{}
	svc := NewService(repo, invalidator, nil)

	require.NoError(t, svc.Revoke(context.Background(), 5, 9, 1))
	assert.Empty(t, invalidator.users)
}

func TestListForUser(t *testing.T) {
	repo := newMockRepository()
	repo.users[10] = true
	repo.roles[3] = false
	repo.roles[4] = false
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Assign(ctx, 10, 3, 1))
	require.NoError(t, svc.Assign(ctx, 10, 4, 1))

	list, err := svc.ListForUser(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
