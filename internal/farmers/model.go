package farmers

import "time"

// Farmer is a registered program participant.
type Farmer struct {
	ID         int64     `json:"id" db:"id"`
	Code       string    `json:"code" db:"code"`
	Name       string    `json:"name" db:"name"`
	NationalID *string   `json:"national_id,omitempty" db:"national_id"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	Village    *string   `json:"village,omitempty" db:"village"`
	ClusterID  *int64    `json:"cluster_id,omitempty" db:"cluster_id"`
	AgentID    int64     `json:"agent_id" db:"agent_id"`
	Status     string    `json:"status" db:"status"`
	CreatedBy  int64     `json:"created_by" db:"created_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Farmer lifecycle statuses.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusInactive = "inactive"
)
