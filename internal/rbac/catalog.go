package rbac

import "sort"

// Permission resources known to the platform.
const (
	ResourceUsers        = "users"
	ResourceAgents       = "agents"
	ResourceFarmers      = "farmers"
	ResourceFarms        = "farms"
	ResourceClusters     = "clusters"
	ResourceCertificates = "certificates"
	ResourceRoles        = "roles"
	ResourceAnalytics    = "analytics"
	ResourceSettings     = "settings"
)

// Frequently referenced permission tokens.
const (
	PermUsersCreate = "users.create"
	PermUsersRead   = "users.read"
	PermUsersUpdate = "users.update"
	PermUsersDelete = "users.delete"

	PermRolesCreate = "roles.create"
	PermRolesRead   = "roles.read"
	PermRolesUpdate = "roles.update"
	PermRolesDelete = "roles.delete"
	PermRolesAssign = "roles.assign"

	PermFarmersCreate = "farmers.create"
	PermFarmersRead   = "farmers.read"
	PermFarmersUpdate = "farmers.update"
	PermFarmersDelete = "farmers.delete"
	PermFarmersExport = "farmers.export"

	PermCertificatesCreate = "certificates.create"
	PermCertificatesRead   = "certificates.read"
	PermCertificatesUpdate = "certificates.update"
	PermCertificatesDelete = "certificates.delete"
	PermCertificatesIssue  = "certificates.issue"
	PermCertificatesRevoke = "certificates.revoke"

	PermAnalyticsExport = "analytics.export"
)

// catalog is the closed set of valid permission tokens. It is assembled once
// at init and never mutated afterwards, so reads need no locking.
var catalog = buildCatalog()

func buildCatalog() map[string]struct{} {
	resources := []string{
		ResourceUsers,
		ResourceAgents,
		ResourceFarmers,
		ResourceFarms,
		ResourceClusters,
		ResourceCertificates,
		ResourceRoles,
		ResourceAnalytics,
		ResourceSettings,
	}
	actions := []string{"create", "read", "update", "delete"}

	set := make(map[string]struct{}, len(resources)*len(actions)+8)
	for _, res := range resources {
		for _, act := range actions {
			set[res+"."+act] = struct{}{}
		}
	}

	// Resource-specific actions beyond plain CRUD.
	for _, extra := range []string{
		PermFarmersExport,
		PermCertificatesIssue,
		PermCertificatesRevoke,
		PermAnalyticsExport,
		PermRolesAssign,
	} {
		set[extra] = struct{}{}
	}
	return set
}

// Catalog returns every valid permission token in sorted order.
func Catalog() []string {
	perms := make([]string, 0, len(catalog))
	for p := range catalog {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// IsValidPermission reports whether p is part of the permission catalog.
func IsValidPermission(p string) bool {
	_, ok := catalog[p]
	return ok
}

// ValidatePermissions checks every supplied token against the catalog and
// returns an InvalidPermissionError listing the unknown ones. Nothing may be
// persisted with tokens outside the catalog.
func ValidatePermissions(perms []string) error {
	var offending []string
	for _, p := range perms {
		if !IsValidPermission(p) {
			offending = append(offending, p)
		}
	}
	if len(offending) > 0 {
		sort.Strings(offending)
		return &InvalidPermissionError{Offending: offending}
	}
	return nil
}
