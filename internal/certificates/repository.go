package certificates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrireg/agrireg/internal/platform/db"
	"github.com/agrireg/agrireg/internal/rbac"
)

// Repository provides persistence for certificate records.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Certificate, error)
	GetForUpdate(ctx context.Context, id int64) (*Certificate, error)
	ListForFarmer(ctx context.Context, farmerID int64) ([]Certificate, error)
	Create(ctx context.Context, cert Certificate) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
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

const certColumns = `id, farmer_id, kind, serial_number, status, issued_by, issued_at, expires_at, revoked_by, revoked_at, revoke_reason, created_by, created_at, updated_at`

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Get(ctx context.Context, id int64) (*Certificate, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+certColumns+` FROM certificates WHERE id = $1`, id), id)
}

// GetForUpdate locks the certificate row so concurrent issue and revoke
// operations on the same certificate serialize.
func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Certificate, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+certColumns+` FROM certificates WHERE id = $1 FOR UPDATE`, id), id)
}

func (r *repository) ListForFarmer(ctx context.Context, farmerID int64) ([]Certificate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+certColumns+` FROM certificates WHERE farmer_id = $1 ORDER BY created_at DESC, id DESC`, farmerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Certificate
	for rows.Next() {
		cert, err := scanCert(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, cert)
	}
	return list, rows.Err()
}

func (r *repository) Create(ctx context.Context, cert Certificate) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO certificates (farmer_id, kind, serial_number, status, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		cert.FarmerID, cert.Kind, cert.SerialNumber, cert.Status, cert.ExpiresAt, cert.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, &rbac.NotFoundError{Kind: "farmer", ID: cert.FarmerID}
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE certificates SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"kind", "status", "issued_by", "issued_at", "expires_at", "revoked_by", "revoked_at", "revoke_reason"} {
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
		return &rbac.NotFoundError{Kind: "certificate", ID: id}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM certificates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &rbac.NotFoundError{Kind: "certificate", ID: id}
	}
	return nil
}

// ExpireDue flips issued certificates past their expiry date to expired and
// returns how many rows changed. Used by the background scan.
func (r *repository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE certificates
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at IS NOT NULL AND expires_at <= $3`,
		StatusExpired, StatusIssued, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) scanOne(row pgx.Row, id int64) (*Certificate, error) {
	cert, err := scanCert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &rbac.NotFoundError{Kind: "certificate", ID: id}
		}
		return nil, err
	}
	return &cert, nil
}

func scanCert(row pgx.Row) (Certificate, error) {
	var c Certificate
	err := row.Scan(&c.ID, &c.FarmerID, &c.Kind, &c.SerialNumber, &c.Status,
		&c.IssuedBy, &c.IssuedAt, &c.ExpiresAt, &c.RevokedBy, &c.RevokedAt,
		&c.RevokeReason, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
