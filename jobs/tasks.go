package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCertificateExpiry scans issued certificates past their expiry date.
	TaskCertificateExpiry = "certificates:expire"
	// TaskAuditRetention prunes audit log rows past the retention window.
	TaskAuditRetention = "audit:retention"
)

// CertificateExpiryPayload configures one expiry scan run.
type CertificateExpiryPayload struct {
	// DryRun reports what would expire without changing rows.
	DryRun bool `json:"dry_run"`
}

// NewCertificateExpiryTask constructs an Asynq task.
func NewCertificateExpiryTask(payload CertificateExpiryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCertificateExpiry, data), nil
}

// AuditRetentionPayload configures one retention run.
type AuditRetentionPayload struct {
	RetainDays int `json:"retain_days"`
}

// NewAuditRetentionTask constructs an Asynq task.
func NewAuditRetentionTask(payload AuditRetentionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRetention, data), nil
}
