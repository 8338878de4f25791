package authz

import (
	"time"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/monitoring"
)

// Evaluator resolves whether a set of active roles satisfies a permission
// query. It is a pure function of its inputs, holds no mutable state, and is
// safe for unbounded concurrent use on the request path.
type Evaluator struct {
	catalog *PermissionCatalog
	graph   *RoleGraph
}

// NewEvaluator creates a new permission evaluator
func NewEvaluator(catalog *PermissionCatalog, graph *RoleGraph) *Evaluator {
	return &Evaluator{
		catalog: catalog,
		graph:   graph,
	}
}

// Allows decides whether the held roles permit (category, action, scope).
// Forced denies take precedence over any grant; a grant matches when its
// scope equals the requested scope or is ScopeAll. No matching grant means
// denied — there is no implicit allow.
func (e *Evaluator) Allows(roles []authz.Role, category authz.Category, action authz.Action, scope authz.Scope) bool {
	start := time.Now()
	allowed := e.evaluate(roles, category, action, scope)
	monitoring.RecordDecision(string(category), string(action), allowed, time.Since(start))
	return allowed
}

func (e *Evaluator) evaluate(roles []authz.Role, category authz.Category, action authz.Action, scope authz.Scope) bool {
	if e.graph.IsForcedDeny(roles, category, action) {
		return false
	}

	for _, role := range roles {
		for _, grant := range e.catalog.GrantsFor(role) {
			if grant.Category != category || grant.Action != action {
				continue
			}
			if grant.Scope == scope || grant.Scope == authz.ScopeAll {
				return true
			}
		}
	}

	return false
}

// AllowsAll is Allows with the widest scope requested
func (e *Evaluator) AllowsAll(roles []authz.Role, category authz.Category, action authz.Action) bool {
	return e.Allows(roles, category, action, authz.ScopeAll)
}

// Convenience predicates. Each is a named composition over Allows and embeds
// no rules of its own.

// CanManageUsers reports whether the roles may administer user accounts
func (e *Evaluator) CanManageUsers(roles []authz.Role) bool {
	return e.Allows(roles, authz.CategoryUserManagement, authz.ActionManageUsers, authz.ScopeAll)
}

// CanAssignRoles reports whether the roles may mutate role assignments
func (e *Evaluator) CanAssignRoles(roles []authz.Role) bool {
	return e.Allows(roles, authz.CategoryUserManagement, authz.ActionAssignRoles, authz.ScopeAll)
}

// CanBillInsurance reports whether the roles may submit insurance claims
func (e *Evaluator) CanBillInsurance(roles []authz.Role) bool {
	return e.Allows(roles, authz.CategoryBilling, authz.ActionBillInsurance, authz.ScopeAll)
}

// CanViewAuditLogs reports whether the roles may read the audit trail
func (e *Evaluator) CanViewAuditLogs(roles []authz.Role) bool {
	return e.Allows(roles, authz.CategoryAudit, authz.ActionRead, authz.ScopeAll)
}

// CanGenerateComplianceReports reports whether the roles may run compliance
// reports
func (e *Evaluator) CanGenerateComplianceReports(roles []authz.Role) bool {
	return e.Allows(roles, authz.CategoryCompliance, authz.ActionGenerateReport, authz.ScopeAll)
}
