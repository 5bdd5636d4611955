package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrireg/agrireg/internal/platform/httpx"
	"github.com/agrireg/agrireg/internal/rbac"
)

type mockRepository struct {
	users  map[int64]*User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[int64]*User), nextID: 1}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, &rbac.NotFoundError{Kind: "user", ID: id}
	}
	copied := *user
	return &copied, nil
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context) ([]User, error) {
	var list []User
	for _, user := range m.users {
		list = append(list, *user)
	}
	return list, nil
}

func (m *mockRepository) Create(ctx context.Context, user User) (int64, error) {
	if existing, err := m.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return 0, httpx.ErrDuplicate
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.nextID++
	m.users[user.ID] = &user
	return user.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	user, ok := m.users[id]
	if !ok {
		return &rbac.NotFoundError{Kind: "user", ID: id}
	}
	if v, ok := updates["name"]; ok {
		user.Name = v.(string)
	}
	if v, ok := updates["role"]; ok {
		user.Role = v.(string)
	}
	if v, ok := updates["is_active"]; ok {
		user.IsActive = v.(bool)
	}
	user.UpdatedAt = time.Now()
	return nil
}

type mockInvalidator struct {
	users []int64
}

func (m *mockInvalidator) InvalidateUser(ctx context.Context, userID int64) error {
	m.users = append(m.users, userID)
	return nil
}

func TestCreateHashesPasswordAndNormalizes(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "  Agent@Example.COM ",
		Name:     " Field Agent ",
		Password: "s3cretpass",
		Role:     rbac.SystemRoleManager,
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, "agent@example.com", user.Email)
	assert.Equal(t, "Field Agent", user.Name)
	assert.Equal(t, rbac.SystemRoleManager, user.Role)
	assert.True(t, user.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cretpass")))
}

func TestCreateUnknownRoleFallsBack(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserRequest{
		Email: "a@example.com", Name: "A", Password: "longenough", Role: "warlord",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, rbac.DefaultSystemRole, user.Role)

	user, err = svc.Create(ctx, CreateUserRequest{
		Email: "b@example.com", Name: "B", Password: "longenough",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, rbac.DefaultSystemRole, user.Role)
}

func TestUpdateRoleTagInvalidatesCache(t *testing.T) {
	repo := newMockRepository()
	invalidator := &mockInvalidator{}
	svc := NewService(repo, invalidator, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserRequest{
		Email: "a@example.com", Name: "A", Password: "longenough",
	}, 1)
	require.NoError(t, err)

	role := rbac.SystemRoleAdmin
	updated, err := svc.Update(ctx, created.ID, UpdateUserRequest{Role: &role}, 1)
	require.NoError(t, err)
	assert.Equal(t, rbac.SystemRoleAdmin, updated.Role)
	assert.Equal(t, []int64{created.ID}, invalidator.users)
}

func TestUpdateRejectsUnknownRoleTag(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserRequest{
		Email: "a@example.com", Name: "A", Password: "longenough",
	}, 1)
	require.NoError(t, err)

	role := "overlord"
	_, err = svc.Update(ctx, created.ID, UpdateUserRequest{Role: &role}, 1)
	require.Error(t, err)
}

func TestUpdateWithoutRoleChangeSkipsInvalidation(t *testing.T) {
	repo := newMockRepository()
	invalidator := &mockInvalidator{}
	svc := NewService(repo, invalidator, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserRequest{
		Email: "a@example.com", Name: "A", Password: "longenough",
	}, 1)
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.Update(ctx, created.ID, UpdateUserRequest{Name: &name}, 1)
	require.NoError(t, err)
	assert.Empty(t, invalidator.users)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{
		Email: "a@example.com", Name: "A", Password: "longenough",
	}, 1)
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserRequest{
		Email: "A@EXAMPLE.com", Name: "A2", Password: "longenough",
	}, 1)
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}
