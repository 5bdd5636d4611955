package rbac

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthenticated signals that no identity could be established for the
// request. It is always surfaced before any authorization logic runs and is
// distinct from a Forbidden decision.
var ErrUnauthenticated = errors.New("rbac: unauthenticated")

// InvalidPermissionError reports permission tokens outside the catalog.
type InvalidPermissionError struct {
	Offending []string
}

func (e *InvalidPermissionError) Error() string {
	return fmt.Sprintf("rbac: unknown permissions: %s", strings.Join(e.Offending, ", "))
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("rbac: %s %d not found", e.Kind, e.ID)
}

// DuplicateNameError reports a case-insensitive role name clash.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("rbac: role name %q already exists", e.Name)
}

// SystemRoleImmutableError is returned when a mutation targets a system role.
// System roles are seeded at startup and can never be edited or deleted.
type SystemRoleImmutableError struct {
	RoleID int64
}

func (e *SystemRoleImmutableError) Error() string {
	return fmt.Sprintf("rbac: role %d is a system role and cannot be modified", e.RoleID)
}

// RoleInUseError refuses deletion of a role that users still reference.
// Deletion is refused, never cascaded.
type RoleInUseError struct {
	RoleID        int64
	AssignedCount int64
}

func (e *RoleInUseError) Error() string {
	return fmt.Sprintf("rbac: role %d is assigned to %d user(s)", e.RoleID, e.AssignedCount)
}

// SystemRoleAssignmentError refuses granting a system role through the
// assignment table. System tiers are granted by changing the user's role tag.
type SystemRoleAssignmentError struct {
	RoleID int64
}

func (e *SystemRoleAssignmentError) Error() string {
	return fmt.Sprintf("rbac: role %d is a system role and cannot be assigned directly", e.RoleID)
}

// AlreadyAssignedError reports a duplicate (user, role) assignment.
type AlreadyAssignedError struct {
	UserID int64
	RoleID int64
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("rbac: role %d already assigned to user %d", e.RoleID, e.UserID)
}
