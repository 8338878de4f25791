package authz

import (
	"fmt"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
)

// PermissionCatalog is the static rulebook mapping each role to its permission
// grants. It is built once at startup and never mutated afterwards, so lookups
// need no locking.
type PermissionCatalog struct {
	grants map[authz.Role][]authz.Permission
}

// defaultGrants is the declarative grant table for the nine-role practice
// vocabulary. Changing a role's reach means editing data here, not evaluator
// logic.
var defaultGrants = map[authz.Role][]authz.Permission{
	authz.RolePracticeAdministrator: {
		{Category: authz.CategoryUserManagement, Action: authz.ActionManageUsers, Scope: authz.ScopeAll},
		{Category: authz.CategoryUserManagement, Action: authz.ActionAssignRoles, Scope: authz.ScopeAll},
		{Category: authz.CategorySchedule, Action: authz.ActionCreate, Scope: authz.ScopeAll},
		{Category: authz.CategorySchedule, Action: authz.ActionRead, Scope: authz.ScopeAll},
		{Category: authz.CategorySchedule, Action: authz.ActionUpdate, Scope: authz.ScopeAll},
		{Category: authz.CategorySchedule, Action: authz.ActionDelete, Scope: authz.ScopeAll},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionRead, Scope: authz.ScopeAll},
		{Category: authz.CategoryBilling, Action: authz.ActionRead, Scope: authz.ScopeAll},
		{Category: authz.CategoryClients, Action: authz.ActionRead, Scope: authz.ScopeAll},
		{Category: authz.CategoryClients, Action: authz.ActionUpdate, Scope: authz.ScopeAll},
		{Category: authz.CategoryReports, Action: authz.ActionView, Scope: authz.ScopeAll},
		{Category: authz.CategoryAudit, Action: authz.ActionRead, Scope: authz.ScopeAll},
		{Category: authz.CategoryCompliance, Action: authz.ActionGenerateReport, Scope: authz.ScopeAll},
	},
	authz.RoleClinicalAdministrator: {
		{Category: authz.CategoryUserManagement, Action: authz.ActionAssignRoles, Scope: authz.ScopeAll},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionRead, Scope: authz.ScopeAll},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionSign, Scope: authz.ScopeAll},
		{Category: authz.CategoryReports, Action: authz.ActionView, Scope: authz.ScopeAll},
		{Category: authz.CategoryCompliance, Action: authz.ActionGenerateReport, Scope: authz.ScopeAll},
	},
	authz.RoleClinician: {
		{Category: authz.CategorySchedule, Action: authz.ActionRead, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategorySchedule, Action: authz.ActionCreate, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategorySchedule, Action: authz.ActionUpdate, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionCreate, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionRead, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionSign, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategoryClients, Action: authz.ActionRead, Scope: authz.ScopeAssignedOnly},
		{Category: authz.CategoryBilling, Action: authz.ActionRead, Scope: authz.ScopeOwnOnly},
	},
	authz.RoleSupervisor: {
		{Category: authz.CategorySchedule, Action: authz.ActionRead, Scope: authz.ScopeSupervisedOnly},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionRead, Scope: authz.ScopeSupervisedOnly},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionSign, Scope: authz.ScopeSupervisedOnly},
		{Category: authz.CategoryReports, Action: authz.ActionView, Scope: authz.ScopeSupervisedOnly},
	},
	authz.RoleIntern: {
		{Category: authz.CategorySchedule, Action: authz.ActionRead, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionCreate, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionRead, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategoryClients, Action: authz.ActionRead, Scope: authz.ScopeAssignedOnly},
	},
	authz.RoleAssistant: {
		{Category: authz.CategorySchedule, Action: authz.ActionRead, Scope: authz.ScopeAssignedOnly},
		{Category: authz.CategoryClients, Action: authz.ActionRead, Scope: authz.ScopeAssignedOnly},
	},
	authz.RoleAssociate: {
		{Category: authz.CategorySchedule, Action: authz.ActionRead, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategorySchedule, Action: authz.ActionCreate, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionCreate, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategoryClinicalNotes, Action: authz.ActionRead, Scope: authz.ScopeOwnOnly},
		{Category: authz.CategoryBilling, Action: authz.ActionRead, Scope: authz.ScopeOwnOnly},
	},
	authz.RolePracticeScheduler: {
		{Category: authz.CategorySchedule, Action: authz.ActionCreate, Scope: authz.ScopeAll},
		{Category: authz.CategorySchedule, Action: authz.ActionRead, Scope: authz.ScopeAll},
		{Category: authz.CategorySchedule, Action: authz.ActionUpdate, Scope: authz.ScopeAll},
		{Category: authz.CategorySchedule, Action: authz.ActionDelete, Scope: authz.ScopeAll},
		{Category: authz.CategoryClients, Action: authz.ActionRead, Scope: authz.ScopeAll},
	},
	authz.RolePracticeBiller: {
		{Category: authz.CategoryBilling, Action: authz.ActionRead, Scope: authz.ScopeAll},
		{Category: authz.CategoryBilling, Action: authz.ActionBillInsurance, Scope: authz.ScopeAll},
		{Category: authz.CategoryBilling, Action: authz.ActionProcessPayments, Scope: authz.ScopeAll},
		{Category: authz.CategoryClients, Action: authz.ActionRead, Scope: authz.ScopeAll},
		{Category: authz.CategoryReports, Action: authz.ActionView, Scope: authz.ScopeAll},
	},
}

// NewPermissionCatalog builds the catalog from the default grant table
func NewPermissionCatalog() (*PermissionCatalog, error) {
	return NewPermissionCatalogWithGrants(defaultGrants)
}

// NewPermissionCatalogWithGrants builds a catalog from an explicit grant
// table, validating every role against the deployment vocabulary
func NewPermissionCatalogWithGrants(grants map[authz.Role][]authz.Permission) (*PermissionCatalog, error) {
	catalog := &PermissionCatalog{
		grants: make(map[authz.Role][]authz.Permission, len(grants)),
	}

	for role, perms := range grants {
		if !authz.IsValidRole(role) {
			return nil, fmt.Errorf("catalog references unknown role %q", role)
		}
		copied := make([]authz.Permission, len(perms))
		copy(copied, perms)
		catalog.grants[role] = copied
	}

	return catalog, nil
}

// GrantsFor returns the catalog entry for a role. Unknown roles yield an
// empty set rather than an error so the evaluator stays total and fail-closed.
func (c *PermissionCatalog) GrantsFor(role authz.Role) []authz.Permission {
	return c.grants[role]
}
