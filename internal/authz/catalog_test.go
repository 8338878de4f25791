package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
)

func TestNewPermissionCatalog_CoversEveryRole(t *testing.T) {
	catalog, err := NewPermissionCatalog()
	require.NoError(t, err)

	for _, role := range authz.ValidRoles() {
		assert.NotEmpty(t, catalog.GrantsFor(role), "role %s should have at least one grant", role)
	}
}

func TestNewPermissionCatalogWithGrants_RejectsUnknownRole(t *testing.T) {
	grants := map[authz.Role][]authz.Permission{
		authz.Role("receptionist"): {
			{Category: authz.CategorySchedule, Action: authz.ActionRead, Scope: authz.ScopeAll},
		},
	}

	catalog, err := NewPermissionCatalogWithGrants(grants)
	assert.Error(t, err)
	assert.Nil(t, catalog)
	assert.Contains(t, err.Error(), "receptionist")
}

func TestGrantsFor_UnknownRoleIsEmpty(t *testing.T) {
	catalog, err := NewPermissionCatalog()
	require.NoError(t, err)

	assert.Empty(t, catalog.GrantsFor(authz.Role("ghost_role")))
}

func TestGrantsFor_IsolatedFromCallerMutation(t *testing.T) {
	source := map[authz.Role][]authz.Permission{
		authz.RoleClinician: {
			{Category: authz.CategorySchedule, Action: authz.ActionRead, Scope: authz.ScopeOwnOnly},
		},
	}

	catalog, err := NewPermissionCatalogWithGrants(source)
	require.NoError(t, err)

	// Mutating the source table after construction must not reach the catalog
	source[authz.RoleClinician][0].Scope = authz.ScopeAll

	grants := catalog.GrantsFor(authz.RoleClinician)
	require.Len(t, grants, 1)
	assert.Equal(t, authz.ScopeOwnOnly, grants[0].Scope)
}

func TestDefaultGrants_TraineeTierCarriesNoBillingWrites(t *testing.T) {
	catalog, err := NewPermissionCatalog()
	require.NoError(t, err)

	for _, role := range []authz.Role{authz.RoleIntern, authz.RoleAssistant, authz.RoleAssociate} {
		for _, grant := range catalog.GrantsFor(role) {
			if grant.Category != authz.CategoryBilling {
				continue
			}
			assert.NotEqual(t, authz.ActionBillInsurance, grant.Action, "role %s must not be granted insurance billing", role)
			assert.NotEqual(t, authz.ActionProcessPayments, grant.Action, "role %s must not be granted payment processing", role)
		}
	}
}
