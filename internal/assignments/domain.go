package assignments

import "time"

// Assignment links a user to a custom role. One row per (user, role) pair.
type Assignment struct {
	UserID     int64     `json:"user_id" db:"user_id"`
	RoleID     int64     `json:"role_id" db:"role_id"`
	AssignedBy int64     `json:"assigned_by" db:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at" db:"assigned_at"`
}

// AssignedRole is a role as seen through a user's assignments. Inactive roles
// remain listed but contribute nothing to permission resolution until
// reactivated.
type AssignedRole struct {
	RoleID      int64     `json:"role_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	AssignedBy  int64     `json:"assigned_by"`
	AssignedAt  time.Time `json:"assigned_at"`
}
