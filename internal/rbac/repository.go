package rbac

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store supplies the resolver with the custom roles a user holds. Only the
// authorization projection is read here; role administration goes through the
// roles and assignments packages.
type Store interface {
	ActiveRolesForUser(ctx context.Context, userID int64) ([]Role, error)
}

// PGStore implements Store against PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// ActiveRolesForUser returns the active custom roles assigned to a user.
// Inactive roles stay assigned but contribute nothing to resolution.
func (s *PGStore) ActiveRolesForUser(ctx context.Context, userID int64) ([]Role, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.name, r.permissions, r.is_system, r.is_active, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 AND r.is_active`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Permissions, &role.IsSystem, &role.IsActive, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

var _ Store = (*PGStore)(nil)
