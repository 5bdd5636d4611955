package roles

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agrireg/agrireg/internal/rbac"
	"github.com/agrireg/agrireg/internal/shared"
)

// CacheInvalidator drops resolved permission sets after role mutations.
// Stale cache entries are a security defect, so invalidation happens on every
// mutation, not just ones known to affect assigned users.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Service handles role business logic.
type Service struct {
	repo  Repository
	cache CacheInvalidator
	audit *shared.AuditLogger
}

// NewService builds a Service. cache and audit may be nil.
func NewService(repo Repository, cache CacheInvalidator, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// CreateCustomRole creates a new custom role. IsSystem is forced to false
// regardless of caller input; system roles cannot be forged through this
// path.
func (s *Service) CreateCustomRole(ctx context.Context, req CreateRoleRequest, createdBy int64) (*Role, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("roles: role name required")
	}

	perms, err := normalizePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, &rbac.DuplicateNameError{Name: name}
	} else if err != nil {
		var nf *rbac.NotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("roles: check existing name: %w", err)
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	role := Role{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Permissions: perms,
		IsSystem:    false,
		IsActive:    isActive,
		CreatedBy:   createdBy,
	}

	id, err := s.repo.Create(ctx, role)
	if err != nil {
		return nil, err
	}
	role.ID = id

	s.invalidate(ctx)
	s.record(ctx, createdBy, "role.create", id, map[string]any{"name": name})
	return s.repo.Get(ctx, id)
}

// UpdateCustomRole applies a partial patch to a custom role. Only supplied
// fields are touched; changed fields are re-validated.
func (s *Service) UpdateCustomRole(ctx context.Context, id int64, req UpdateRoleRequest, updatedBy int64) (*Role, error) {
	var updated *Role
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		existing, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if existing.IsSystem {
			return &rbac.SystemRoleImmutableError{RoleID: id}
		}

		updates := make(map[string]any)
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return fmt.Errorf("roles: role name required")
			}
			// Lowercase comparison, matching the lower(name) unique index.
			if strings.ToLower(name) != strings.ToLower(existing.Name) {
				if clash, err := repo.GetByName(ctx, name); err == nil && clash != nil && clash.ID != id {
					return &rbac.DuplicateNameError{Name: name}
				}
			}
			updates["name"] = name
		}
		if req.Description != nil {
			updates["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Permissions != nil {
			perms, err := normalizePermissions(*req.Permissions)
			if err != nil {
				return err
			}
			updates["permissions"] = perms
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}

		if len(updates) == 0 {
			updated = existing
			return nil
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return err
		}
		updated, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.record(ctx, updatedBy, "role.update", id, nil)
	return updated, nil
}

// DeleteCustomRole removes an unreferenced custom role. Deletion of a role
// with assignments is refused, never cascaded.
func (s *Service) DeleteCustomRole(ctx context.Context, id int64, deletedBy int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		existing, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if existing.IsSystem {
			return &rbac.SystemRoleImmutableError{RoleID: id}
		}
		count, err := repo.CountAssignments(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &rbac.RoleInUseError{RoleID: id, AssignedCount: count}
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	s.record(ctx, deletedBy, "role.delete", id, nil)
	return nil
}

// GetRole fetches one role.
func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	return s.repo.Get(ctx, id)
}

// ListRoles returns system roles before custom roles, both by recency.
func (s *Service) ListRoles(ctx context.Context) (*RoleList, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	list := &RoleList{SystemRoles: []Role{}, CustomRoles: []Role{}}
	for _, role := range all {
		if role.IsSystem {
			list.SystemRoles = append(list.SystemRoles, role)
		} else {
			list.CustomRoles = append(list.CustomRoles, role)
		}
	}
	return list, nil
}

// SeedSystemRoles inserts the five system role rows if missing. The rows are
// kept deliberately separate from the static tier table in the rbac package;
// callers may read either representation.
func (s *Service) SeedSystemRoles(ctx context.Context) error {
	for _, tier := range rbac.SystemRoleNames() {
		role := Role{
			Name:        tier,
			Description: rbac.SystemRoleDescription(tier),
			Permissions: rbac.SystemRolePermissions(tier).List(),
		}
		if err := s.repo.UpsertSystemRole(ctx, role); err != nil {
			return fmt.Errorf("roles: seed %s: %w", tier, err)
		}
	}
	return nil
}

// normalizePermissions validates against the catalog and collapses the list
// to a sorted set.
func normalizePermissions(perms []string) ([]string, error) {
	trimmed := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p != "" {
			trimmed = append(trimmed, p)
		}
	}
	if err := rbac.ValidatePermissions(trimmed); err != nil {
		return nil, err
	}
	return rbac.NewPermissionSet(trimmed...).List(), nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateAll(ctx)
	}
}

func (s *Service) record(ctx context.Context, actorID int64, action string, roleID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "role",
		EntityID: strconv.FormatInt(roleID, 10),
		Meta:     meta,
	})
}
