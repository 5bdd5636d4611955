package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemRoleNamesOrdered(t *testing.T) {
	assert.Equal(t, []string{
		SystemRoleSuperAdmin,
		SystemRoleAdmin,
		SystemRoleManager,
		SystemRoleAgent,
		SystemRoleViewer,
	}, SystemRoleNames())
}

func TestIsSystemRole(t *testing.T) {
	for _, tag := range SystemRoleNames() {
		assert.True(t, IsSystemRole(tag))
	}
	assert.False(t, IsSystemRole("root"))
	assert.False(t, IsSystemRole(""))
	assert.False(t, IsSystemRole("Admin"))
}

func TestEveryTierPermissionIsInCatalog(t *testing.T) {
	for _, tag := range SystemRoleNames() {
		for _, p := range SystemRolePermissions(tag).List() {
			assert.True(t, IsValidPermission(p), "tier %s carries unknown token %s", tag, p)
		}
	}
}

func TestSuperAdminHoldsFullCatalog(t *testing.T) {
	set := SystemRolePermissions(SystemRoleSuperAdmin)
	for _, p := range Catalog() {
		assert.True(t, set.Has(p), "super_admin missing %s", p)
	}
}

func TestAdminTierOmissions(t *testing.T) {
	set := SystemRolePermissions(SystemRoleAdmin)
	assert.False(t, set.Has(PermCertificatesDelete))
	assert.False(t, set.Has(PermRolesDelete))
	assert.False(t, set.Has("settings.delete"))
	assert.True(t, set.Has(PermRolesAssign))
	assert.True(t, set.Has(PermCertificatesRevoke))
}

func TestAgentTierExactSet(t *testing.T) {
	require.Equal(t, []string{
		"certificates.create", "certificates.read",
		"farmers.create", "farmers.read", "farmers.update",
		"farms.create", "farms.read", "farms.update",
	}, SystemRolePermissions(SystemRoleAgent).List())
}

func TestViewerIsReadOnly(t *testing.T) {
	for _, p := range SystemRolePermissions(SystemRoleViewer).List() {
		assert.True(t, len(p) > 5 && p[len(p)-5:] == ".read", "viewer holds non-read token %s", p)
	}
}

func TestUnknownTagFallsBackToAgentTier(t *testing.T) {
	assert.Equal(t,
		SystemRolePermissions(SystemRoleAgent).List(),
		SystemRolePermissions("contractor").List())
	assert.Equal(t,
		SystemRolePermissions(SystemRoleAgent).List(),
		SystemRolePermissions("").List())
}

func TestSystemRoleDescriptionsPresent(t *testing.T) {
	for _, tag := range SystemRoleNames() {
		assert.NotEmpty(t, SystemRoleDescription(tag))
	}
}
