package certificates

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrireg/agrireg/internal/shared"
)

// StateError reports a lifecycle operation applied to a certificate in the
// wrong state, for example revoking a draft.
type StateError struct {
	CertificateID int64
	Status        string
	Operation     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("certificates: cannot %s certificate %d in status %q", e.Operation, e.CertificateID, e.Status)
}

// Service handles certificate lifecycle business logic.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
	now   func() time.Time
}

// NewService builds a Service. audit may be nil.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// Create records a draft certificate for a farmer.
func (s *Service) Create(ctx context.Context, req CreateCertificateRequest, createdBy int64) (*Certificate, error) {
	cert := Certificate{
		FarmerID:     req.FarmerID,
		Kind:         strings.TrimSpace(req.Kind),
		SerialNumber: generateSerial(),
		Status:       StatusDraft,
		ExpiresAt:    req.ExpiresAt,
		CreatedBy:    createdBy,
	}

	id, err := s.repo.Create(ctx, cert)
	if err != nil {
		return nil, err
	}

	s.record(ctx, createdBy, "certificate.create", id, map[string]any{"farmer_id": req.FarmerID})
	return s.repo.Get(ctx, id)
}

// Update patches a draft certificate. Issued certificates are immutable
// outside the issue and revoke operations.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCertificateRequest, updatedBy int64) (*Certificate, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		cert, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cert.Status != StatusDraft {
			return &StateError{CertificateID: id, Status: cert.Status, Operation: "update"}
		}

		updates := make(map[string]any)
		if req.Kind != nil {
			updates["kind"] = strings.TrimSpace(*req.Kind)
		}
		if req.ExpiresAt != nil {
			updates["expires_at"] = *req.ExpiresAt
		}
		if len(updates) == 0 {
			return nil
		}
		return repo.Update(ctx, id, updates)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, updatedBy, "certificate.update", id, nil)
	return s.repo.Get(ctx, id)
}

// Issue moves a draft certificate to issued, stamping issuer and time.
func (s *Service) Issue(ctx context.Context, id int64, issuedBy int64) (*Certificate, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		cert, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cert.Status != StatusDraft {
			return &StateError{CertificateID: id, Status: cert.Status, Operation: "issue"}
		}
		return repo.Update(ctx, id, map[string]any{
			"status":    StatusIssued,
			"issued_by": issuedBy,
			"issued_at": s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, issuedBy, "certificate.issue", id, nil)
	return s.repo.Get(ctx, id)
}

// Revoke moves an issued certificate to revoked with a mandatory reason.
func (s *Service) Revoke(ctx context.Context, id int64, req RevokeCertificateRequest, revokedBy int64) (*Certificate, error) {
	reason := strings.TrimSpace(req.Reason)

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		cert, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cert.Status != StatusIssued {
			return &StateError{CertificateID: id, Status: cert.Status, Operation: "revoke"}
		}
		return repo.Update(ctx, id, map[string]any{
			"status":        StatusRevoked,
			"revoked_by":    revokedBy,
			"revoked_at":    s.now().UTC(),
			"revoke_reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, revokedBy, "certificate.revoke", id, map[string]any{"reason": reason})
	return s.repo.Get(ctx, id)
}

// Get fetches one certificate.
func (s *Service) Get(ctx context.Context, id int64) (*Certificate, error) {
	return s.repo.Get(ctx, id)
}

// ListForFarmer returns a farmer's certificates newest first.
func (s *Service) ListForFarmer(ctx context.Context, farmerID int64) ([]Certificate, error) {
	return s.repo.ListForFarmer(ctx, farmerID)
}

// Delete removes a draft certificate. Issued, revoked and expired
// certificates stay on record.
func (s *Service) Delete(ctx context.Context, id int64, deletedBy int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		cert, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cert.Status != StatusDraft {
			return &StateError{CertificateID: id, Status: cert.Status, Operation: "delete"}
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.record(ctx, deletedBy, "certificate.delete", id, nil)
	return nil
}

// ExpireDue marks issued certificates past expiry as expired.
func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	return s.repo.ExpireDue(ctx, s.now().UTC())
}

func (s *Service) record(ctx context.Context, actorID int64, action string, certID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "certificate",
		EntityID: strconv.FormatInt(certID, 10),
		Meta:     meta,
	})
}

func generateSerial() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("CERT-%s", strings.ToUpper(raw[:12]))
}
