package rbac

// System role tiers. Every user record carries exactly one tier tag; the tag
// is resolved against the static tables below, never against the roles table.
// This duplication with the seeded role rows is intentional: tier resolution
// must work even when the database is unavailable, and callers may read
// either representation.
const (
	SystemRoleSuperAdmin = "super_admin"
	SystemRoleAdmin      = "admin"
	SystemRoleManager    = "manager"
	SystemRoleAgent      = "agent"
	SystemRoleViewer     = "viewer"
)

// DefaultSystemRole is the tier applied to unrecognized tags. Falling back to
// the agent tier rather than an empty set is a compatibility decision carried
// over from earlier deployments where every account was a field agent.
const DefaultSystemRole = SystemRoleAgent

// systemRolePermissions holds the literal per-tier permission sets. The tiers
// are not strictly nested (admin deliberately lacks roles.delete and
// settings.delete, for example); do not derive one tier from another.
var systemRolePermissions = map[string][]string{
	SystemRoleSuperAdmin: {
		"users.create", "users.read", "users.update", "users.delete",
		"agents.create", "agents.read", "agents.update", "agents.delete",
		"farmers.create", "farmers.read", "farmers.update", "farmers.delete", "farmers.export",
		"farms.create", "farms.read", "farms.update", "farms.delete",
		"clusters.create", "clusters.read", "clusters.update", "clusters.delete",
		"certificates.create", "certificates.read", "certificates.update", "certificates.delete",
		"certificates.issue", "certificates.revoke",
		"roles.create", "roles.read", "roles.update", "roles.delete", "roles.assign",
		"analytics.create", "analytics.read", "analytics.update", "analytics.delete", "analytics.export",
		"settings.create", "settings.read", "settings.update", "settings.delete",
	},
	SystemRoleAdmin: {
		"users.create", "users.read", "users.update", "users.delete",
		"agents.create", "agents.read", "agents.update", "agents.delete",
		"farmers.create", "farmers.read", "farmers.update", "farmers.delete", "farmers.export",
		"farms.create", "farms.read", "farms.update", "farms.delete",
		"clusters.create", "clusters.read", "clusters.update", "clusters.delete",
		"certificates.create", "certificates.read", "certificates.update",
		"certificates.issue", "certificates.revoke",
		"roles.create", "roles.read", "roles.update", "roles.assign",
		"analytics.read", "analytics.export",
		"settings.read", "settings.update",
	},
	SystemRoleManager: {
		"agents.read",
		"farmers.create", "farmers.read", "farmers.update", "farmers.delete", "farmers.export",
		"farms.create", "farms.read", "farms.update",
		"clusters.create", "clusters.read", "clusters.update",
		"certificates.create", "certificates.read", "certificates.update", "certificates.issue",
		"analytics.read",
	},
	SystemRoleAgent: {
		"farmers.create", "farmers.read", "farmers.update",
		"farms.create", "farms.read", "farms.update",
		"certificates.create", "certificates.read",
	},
	SystemRoleViewer: {
		"agents.read",
		"farmers.read",
		"farms.read",
		"clusters.read",
		"certificates.read",
		"analytics.read",
	},
}

// systemRoleDescriptions backs the seeded role rows.
var systemRoleDescriptions = map[string]string{
	SystemRoleSuperAdmin: "Full access to every resource including role administration",
	SystemRoleAdmin:      "Administrative access to registration data and role management",
	SystemRoleManager:    "Manages farmers, farms, clusters and certificates for a region",
	SystemRoleAgent:      "Field agent registering farmers, farms and certificates",
	SystemRoleViewer:     "Read-only access to registration data",
}

// SystemRoleNames returns the tier identifiers ordered from most to least
// privileged.
func SystemRoleNames() []string {
	return []string{
		SystemRoleSuperAdmin,
		SystemRoleAdmin,
		SystemRoleManager,
		SystemRoleAgent,
		SystemRoleViewer,
	}
}

// IsSystemRole reports whether tag names one of the fixed tiers.
func IsSystemRole(tag string) bool {
	_, ok := systemRolePermissions[tag]
	return ok
}

// SystemRolePermissions returns the permission set for the given tier tag.
// Unrecognized tags resolve to the agent tier set.
func SystemRolePermissions(tag string) PermissionSet {
	perms, ok := systemRolePermissions[tag]
	if !ok {
		perms = systemRolePermissions[DefaultSystemRole]
	}
	return NewPermissionSet(perms...)
}

// SystemRoleDescription returns the seeded description for a tier.
func SystemRoleDescription(tag string) string {
	return systemRoleDescriptions[tag]
}
