package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/agrireg/agrireg/internal/rbac"
	"github.com/agrireg/agrireg/internal/shared"
)

// CacheInvalidator drops the resolved permission set of a user whose system
// role tag changed.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID int64) error
}

// Service handles user account business logic.
type Service struct {
	repo  Repository
	cache CacheInvalidator
	audit *shared.AuditLogger
}

// NewService builds a Service. cache and audit may be nil.
func NewService(repo Repository, cache CacheInvalidator, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// Create registers a new account. An unrecognized or empty role tag falls
// back to the default tier, matching how resolution treats unknown tags.
func (s *Service) Create(ctx context.Context, req CreateUserRequest, createdBy int64) (*User, error) {
	role := strings.TrimSpace(req.Role)
	if role == "" || !rbac.IsSystemRole(role) {
		role = rbac.DefaultSystemRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	user := User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.record(ctx, createdBy, "user.create", id, map[string]any{"role": role})
	return s.repo.Get(ctx, id)
}

// Update applies a partial patch. Changing the role tag is the designated
// path for granting or removing system tiers; it invalidates the user's
// cached resolution.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest, updatedBy int64) (*User, error) {
	updates := make(map[string]any)
	roleChanged := false

	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		role := strings.TrimSpace(*req.Role)
		if !rbac.IsSystemRole(role) {
			return nil, fmt.Errorf("users: unknown system role %q", role)
		}
		updates["role"] = role
		roleChanged = true
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	if roleChanged && s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, id)
	}
	s.record(ctx, updatedBy, "user.update", id, nil)
	return s.repo.Get(ctx, id)
}

// Get fetches one user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// List returns all users by recency.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) record(ctx context.Context, actorID int64, action string, userID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
	})
}
