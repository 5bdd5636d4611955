package rbac

import (
	"errors"
	"net/http"

	"github.com/agrireg/agrireg/internal/platform/httpx"
)

// WriteError maps the authorization error taxonomy onto RFC7807 responses.
// Every error keeps its own status and title so callers can render specific
// messages ("cannot delete, assigned to 3 users") instead of a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	var (
		invalidPerm  *InvalidPermissionError
		notFound     *NotFoundError
		duplicate    *DuplicateNameError
		immutable    *SystemRoleImmutableError
		inUse        *RoleInUseError
		sysAssign    *SystemRoleAssignmentError
		alreadyThere *AlreadyAssignedError
	)
	switch {
	case errors.Is(err, ErrUnauthenticated):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "sign in to access this resource")
	case errors.As(err, &invalidPerm):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Permissions", invalidPerm.Error())
	case errors.As(err, &notFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", notFound.Error())
	case errors.As(err, &duplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate Name", duplicate.Error())
	case errors.As(err, &immutable):
		httpx.Problem(w, http.StatusForbidden, "System Role Immutable", immutable.Error())
	case errors.As(err, &inUse):
		httpx.Problem(w, http.StatusConflict, "Role In Use", inUse.Error())
	case errors.As(err, &sysAssign):
		httpx.Problem(w, http.StatusBadRequest, "System Role Assignment", sysAssign.Error())
	case errors.As(err, &alreadyThere):
		httpx.Problem(w, http.StatusConflict, "Already Assigned", alreadyThere.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
