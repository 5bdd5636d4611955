package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/agrireg/agrireg/internal/jobs"
)

const defaultRetainDays = 365

// NewAuditRetentionHandler builds the handler for audit retention tasks.
func NewAuditRetentionHandler(pool *pgxpool.Pool, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditRetentionPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		days := payload.RetainDays
		if days <= 0 {
			days = defaultRetainDays
		}

		tracker := metrics.Track(TaskAuditRetention)
		tag, err := pool.Exec(ctx, `
			DELETE FROM audit_logs
			WHERE occurred_at < NOW() - make_interval(days => $1)`, days)
		if err := tracker.End(err); err != nil {
			logger.Error("audit retention failed", slog.Any("error", err))
			return err
		}
		if tag.RowsAffected() > 0 {
			logger.Info("audit logs pruned", slog.Int64("count", tag.RowsAffected()))
		}
		return nil
	}
}
