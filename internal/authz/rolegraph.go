package authz

import (
	"fmt"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
)

// CategoryAction is a (category, action) pair used to key forced-deny rules
type CategoryAction struct {
	Category authz.Category
	Action   authz.Action
}

// RoleGraph encodes the inter-role dependency and hard-override rules: which
// roles require a prerequisite role, and which (category, action) pairs are
// denied to a role regardless of any grant. Immutable after construction.
type RoleGraph struct {
	requires     map[authz.Role]authz.Role
	forcedDenies map[authz.Role][]CategoryAction
}

// defaultRequires lists prerequisite rules. A user may hold the dependent
// role only while actively holding the prerequisite.
var defaultRequires = map[authz.Role]authz.Role{
	authz.RoleClinicalAdministrator: authz.RoleClinician,
	authz.RoleSupervisor:            authz.RoleClinician,
}

// defaultForcedDenies lists hard overrides. The trainee-tier roles are denied
// direct insurance billing no matter what grants they accumulate.
var defaultForcedDenies = map[authz.Role][]CategoryAction{
	authz.RoleIntern: {
		{Category: authz.CategoryBilling, Action: authz.ActionBillInsurance},
		{Category: authz.CategoryBilling, Action: authz.ActionProcessPayments},
	},
	authz.RoleAssistant: {
		{Category: authz.CategoryBilling, Action: authz.ActionBillInsurance},
		{Category: authz.CategoryBilling, Action: authz.ActionProcessPayments},
	},
	authz.RoleAssociate: {
		{Category: authz.CategoryBilling, Action: authz.ActionBillInsurance},
	},
}

// NewRoleGraph builds the graph from the default dependency rules
func NewRoleGraph() (*RoleGraph, error) {
	return NewRoleGraphWithRules(defaultRequires, defaultForcedDenies)
}

// NewRoleGraphWithRules builds a graph from explicit rule sets, validating
// every referenced role against the deployment vocabulary
func NewRoleGraphWithRules(requires map[authz.Role]authz.Role, forcedDenies map[authz.Role][]CategoryAction) (*RoleGraph, error) {
	graph := &RoleGraph{
		requires:     make(map[authz.Role]authz.Role, len(requires)),
		forcedDenies: make(map[authz.Role][]CategoryAction, len(forcedDenies)),
	}

	for dependent, prerequisite := range requires {
		if !authz.IsValidRole(dependent) {
			return nil, fmt.Errorf("dependency rule references unknown role %q", dependent)
		}
		if !authz.IsValidRole(prerequisite) {
			return nil, fmt.Errorf("dependency rule references unknown prerequisite %q", prerequisite)
		}
		if dependent == prerequisite {
			return nil, fmt.Errorf("role %q cannot require itself", dependent)
		}
		// A prerequisite chain would let a single removal strand two roles;
		// the vocabulary keeps dependencies one level deep.
		if _, chained := requires[prerequisite]; chained {
			return nil, fmt.Errorf("prerequisite %q of %q has its own prerequisite", prerequisite, dependent)
		}
		graph.requires[dependent] = prerequisite
	}

	for role, denies := range forcedDenies {
		if !authz.IsValidRole(role) {
			return nil, fmt.Errorf("forced-deny rule references unknown role %q", role)
		}
		copied := make([]CategoryAction, len(denies))
		copy(copied, denies)
		graph.forcedDenies[role] = copied
	}

	return graph, nil
}

// RequiresOf returns the prerequisite role for a role, if it has one
func (g *RoleGraph) RequiresOf(role authz.Role) (authz.Role, bool) {
	prerequisite, ok := g.requires[role]
	return prerequisite, ok
}

// DependentsOf returns every role that declares the given role as its
// prerequisite
func (g *RoleGraph) DependentsOf(role authz.Role) []authz.Role {
	var dependents []authz.Role
	for dependent, prerequisite := range g.requires {
		if prerequisite == role {
			dependents = append(dependents, dependent)
		}
	}
	return dependents
}

// ForcedDenies returns the hard-override pairs for a role. No grant can
// unlock these.
func (g *RoleGraph) ForcedDenies(role authz.Role) []CategoryAction {
	return g.forcedDenies[role]
}

// IsForcedDeny reports whether any of the held roles carries a hard override
// for the (category, action) pair
func (g *RoleGraph) IsForcedDeny(roles []authz.Role, category authz.Category, action authz.Action) bool {
	for _, role := range roles {
		for _, deny := range g.forcedDenies[role] {
			if deny.Category == category && deny.Action == action {
				return true
			}
		}
	}
	return false
}
