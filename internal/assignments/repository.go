package assignments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrireg/agrireg/internal/platform/db"
	"github.com/agrireg/agrireg/internal/rbac"
)

// Repository provides persistence for user-role assignments.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	UserExists(ctx context.Context, userID int64) (bool, error)
	RoleForUpdate(ctx context.Context, roleID int64) (id int64, isSystem bool, err error)
	Insert(ctx context.Context, a Assignment) error
	Delete(ctx context.Context, userID, roleID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]AssignedRole, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	return exists, err
}

// RoleForUpdate locks the role row so an assignment cannot race a concurrent
// deletion of the same role.
func (r *repository) RoleForUpdate(ctx context.Context, roleID int64) (int64, bool, error) {
	var id int64
	var isSystem bool
	err := r.db.QueryRow(ctx, `SELECT id, is_system FROM roles WHERE id = $1 FOR UPDATE`, roleID).Scan(&id, &isSystem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, &rbac.NotFoundError{Kind: "role", ID: roleID}
		}
		return 0, false, err
	}
	return id, isSystem, nil
}

func (r *repository) Insert(ctx context.Context, a Assignment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id, assigned_by, assigned_at)
		VALUES ($1, $2, $3, NOW())`,
		a.UserID, a.RoleID, a.AssignedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &rbac.AlreadyAssignedError{UserID: a.UserID, RoleID: a.RoleID}
		}
		return err
	}
	return nil
}

// Delete removes the pair and reports whether a row existed.
func (r *repository) Delete(ctx context.Context, userID, roleID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) ListForUser(ctx context.Context, userID int64) ([]AssignedRole, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.name, r.description, r.permissions, r.is_active, ur.assigned_by, ur.assigned_at
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY ur.assigned_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []AssignedRole
	for rows.Next() {
		var ar AssignedRole
		if err := rows.Scan(&ar.RoleID, &ar.Name, &ar.Description, &ar.Permissions, &ar.IsActive, &ar.AssignedBy, &ar.AssignedAt); err != nil {
			return nil, err
		}
		list = append(list, ar)
	}
	return list, rows.Err()
}
