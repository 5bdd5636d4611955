package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrireg/agrireg/internal/platform/db"
	"github.com/agrireg/agrireg/internal/rbac"
)

// Repository provides persistence for role records.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Role, error)
	GetForUpdate(ctx context.Context, id int64) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Create(ctx context.Context, role Role) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
	CountAssignments(ctx context.Context, roleID int64) (int64, error)
	UpsertSystemRole(ctx context.Context, role Role) error
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

const roleColumns = `id, name, description, permissions, is_system, is_active, created_by, created_at, updated_at`

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Get(ctx context.Context, id int64) (*Role, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = $1`, id), id)
}

// GetForUpdate locks the role row for the duration of the transaction so
// concurrent mutations of the same role serialize.
func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Role, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = $1 FOR UPDATE`, id), id)
}

// GetByName performs a case-insensitive lookup; name uniqueness is enforced
// case-insensitively at write time.
func (r *repository) GetByName(ctx context.Context, name string) (*Role, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE lower(name) = lower($1)`, name), 0)
}

func (r *repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+roleColumns+` FROM roles ORDER BY is_system DESC, created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, role)
	}
	return list, rows.Err()
}

func (r *repository) Create(ctx context.Context, role Role) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO roles (name, description, permissions, is_system, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		role.Name, role.Description, role.Permissions, role.IsSystem, role.IsActive, role.CreatedBy,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &rbac.DuplicateNameError{Name: role.Name}
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE roles SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"name", "description", "permissions", "is_active"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil && isUniqueViolation(err) {
		name, _ := updates["name"].(string)
		return &rbac.DuplicateNameError{Name: name}
	}
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &rbac.NotFoundError{Kind: "role", ID: id}
	}
	return nil
}

func (r *repository) CountAssignments(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_roles WHERE role_id = $1`, roleID).Scan(&count)
	return count, err
}

// UpsertSystemRole seeds a system role row, leaving existing rows untouched.
func (r *repository) UpsertSystemRole(ctx context.Context, role Role) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO roles (name, description, permissions, is_system, is_active, created_by)
		VALUES ($1, $2, $3, TRUE, TRUE, 0)
		ON CONFLICT (lower(name)) DO NOTHING`,
		role.Name, role.Description, role.Permissions)
	return err
}

func (r *repository) scanOne(row pgx.Row, id int64) (*Role, error) {
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &rbac.NotFoundError{Kind: "role", ID: id}
		}
		return nil, err
	}
	return &role, nil
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.Permissions,
		&role.IsSystem, &role.IsActive, &role.CreatedBy, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
