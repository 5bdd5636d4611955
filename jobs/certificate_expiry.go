package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/agrireg/agrireg/internal/jobs"
)

// CertificateExpirer is the slice of the certificate service the scan needs.
type CertificateExpirer interface {
	ExpireDue(ctx context.Context) (int64, error)
}

// NewCertificateExpiryHandler builds the handler for expiry scan tasks.
func NewCertificateExpiryHandler(service CertificateExpirer, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload CertificateExpiryPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.DryRun {
			logger.Info("certificate expiry scan skipped (dry run)")
			return nil
		}

		tracker := metrics.Track(TaskCertificateExpiry)
		count, err := service.ExpireDue(ctx)
		if err := tracker.End(err); err != nil {
			logger.Error("certificate expiry scan failed", slog.Any("error", err))
			return err
		}
		metrics.AddExpiredCertificates(count)
		if count > 0 {
			logger.Info("certificates expired", slog.Int64("count", count))
		}
		return nil
	}
}
