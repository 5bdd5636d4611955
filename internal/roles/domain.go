package roles

import "time"

// Role is the persisted role record. Permissions is stored as an ordered
// list but compared as a set; the service sorts it before writing so
// serialized forms never differ by ordering alone.
type Role struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Permissions []string  `json:"permissions" db:"permissions"`
	IsSystem    bool      `json:"is_system" db:"is_system"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedBy   int64     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// RoleList groups the listing the admin UI renders: seeded system roles
// first, then custom roles, both ordered by recency.
type RoleList struct {
	SystemRoles []Role `json:"system_roles"`
	CustomRoles []Role `json:"custom_roles"`
}
