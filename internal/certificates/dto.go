package certificates

import "time"

type CreateCertificateRequest struct {
	FarmerID  int64      `json:"farmer_id" validate:"required,gt=0"`
	Kind      string     `json:"kind" validate:"required,max=100"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type UpdateCertificateRequest struct {
	Kind      *string    `json:"kind,omitempty" validate:"omitempty,min=1,max=100"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type RevokeCertificateRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
