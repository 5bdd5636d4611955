package certificates

import "time"

// Certificate is a compliance document tied to a farmer.
type Certificate struct {
	ID           int64      `json:"id" db:"id"`
	FarmerID     int64      `json:"farmer_id" db:"farmer_id"`
	Kind         string     `json:"kind" db:"kind"`
	SerialNumber string     `json:"serial_number" db:"serial_number"`
	Status       string     `json:"status" db:"status"`
	IssuedBy     *int64     `json:"issued_by,omitempty" db:"issued_by"`
	IssuedAt     *time.Time `json:"issued_at,omitempty" db:"issued_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	RevokedBy    *int64     `json:"revoked_by,omitempty" db:"revoked_by"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	RevokeReason *string    `json:"revoke_reason,omitempty" db:"revoke_reason"`
	CreatedBy    int64      `json:"created_by" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Certificate lifecycle statuses. Draft certificates become issued through
// the dedicated issue operation, never through a plain update.
const (
	StatusDraft   = "draft"
	StatusIssued  = "issued"
	StatusRevoked = "revoked"
	StatusExpired = "expired"
)
