package farmers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrireg/agrireg/internal/platform/httpx"
	"github.com/agrireg/agrireg/internal/rbac"
)

// Repository provides persistence for farmer records.
type Repository interface {
	Get(ctx context.Context, id int64) (*Farmer, error)
	List(ctx context.Context, req ListFarmersRequest) ([]Farmer, int, error)
	All(ctx context.Context) ([]Farmer, error)
	Create(ctx context.Context, farmer Farmer) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const farmerColumns = `id, code, name, national_id, phone, village, cluster_id, agent_id, status, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Farmer, error) {
	farmer, err := scanFarmer(r.db.QueryRow(ctx,
		`SELECT `+farmerColumns+` FROM farmers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &rbac.NotFoundError{Kind: "farmer", ID: id}
		}
		return nil, err
	}
	return &farmer, nil
}

func (r *repository) List(ctx context.Context, req ListFarmersRequest) ([]Farmer, int, error) {
	where := " WHERE 1=1"
	var args []any
	argPos := 1

	if req.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *req.Status)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM farmers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + farmerColumns + ` FROM farmers` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Farmer
	for rows.Next() {
		farmer, err := scanFarmer(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, farmer)
	}
	return list, total, rows.Err()
}

// All streams the full register ordered by code, for exports.
func (r *repository) All(ctx context.Context) ([]Farmer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+farmerColumns+` FROM farmers ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Farmer
	for rows.Next() {
		farmer, err := scanFarmer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, farmer)
	}
	return list, rows.Err()
}

func (r *repository) Create(ctx context.Context, farmer Farmer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO farmers (code, name, national_id, phone, village, cluster_id, agent_id, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		farmer.Code, farmer.Name, farmer.NationalID, farmer.Phone, farmer.Village,
		farmer.ClusterID, farmer.AgentID, farmer.Status, farmer.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("farmer %s: %w", farmer.Code, httpx.ErrDuplicate)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE farmers SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"name", "national_id", "phone", "village", "cluster_id", "status"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &rbac.NotFoundError{Kind: "farmer", ID: id}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM farmers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &rbac.NotFoundError{Kind: "farmer", ID: id}
	}
	return nil
}

func scanFarmer(row pgx.Row) (Farmer, error) {
	var f Farmer
	err := row.Scan(&f.ID, &f.Code, &f.Name, &f.NationalID, &f.Phone, &f.Village,
		&f.ClusterID, &f.AgentID, &f.Status, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}
