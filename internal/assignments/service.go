package assignments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/agrireg/agrireg/internal/rbac"
	"github.com/agrireg/agrireg/internal/shared"
)

// CacheInvalidator drops the resolved permission set of the affected user
// after an assignment mutation.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID int64) error
}

// Service handles assignment business logic.
type Service struct {
	repo  Repository
	cache CacheInvalidator
	audit *shared.AuditLogger
}

// NewService builds a Service. cache and audit may be nil.
func NewService(repo Repository, cache CacheInvalidator, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// Assign grants a custom role to a user. System roles are granted by
// changing the user's role tag through the users module, never through this
// table. A duplicate pair is rejected, not silently accepted.
func (s *Service) Assign(ctx context.Context, userID, roleID, assignedBy int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		exists, err := repo.UserExists(ctx, userID)
		if err != nil {
			return fmt.Errorf("assignments: check user: %w", err)
		}
		if !exists {
			return &rbac.NotFoundError{Kind: "user", ID: userID}
		}

		_, isSystem, err := repo.RoleForUpdate(ctx, roleID)
		if err != nil {
			return err
		}
		if isSystem {
			return &rbac.SystemRoleAssignmentError{RoleID: roleID}
		}

		return repo.Insert(ctx, Assignment{UserID: userID, RoleID: roleID, AssignedBy: assignedBy})
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	s.record(ctx, assignedBy, "role.assign", userID, roleID)
	return nil
}

// Revoke removes a role from a user. Revoking an absent pair is a no-op
// success; calling revoke twice leaves the same state as once.
func (s *Service) Revoke(ctx context.Context, userID, roleID, revokedBy int64) error {
	removed, err := s.repo.Delete(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	s.invalidate(ctx, userID)
	s.record(ctx, revokedBy, "role.revoke", userID, roleID)
	return nil
}

// ListForUser returns every role assigned to a user, active or not.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]AssignedRole, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) invalidate(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, userID)
	}
}

func (s *Service) record(ctx context.Context, actorID int64, action string, userID, roleID int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user_role",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     map[string]any{"role_id": roleID},
	})
}
