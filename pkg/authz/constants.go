package authz

// Role identifies one of the practice staff roles. The vocabulary is fixed per
// deployment; unknown roles are treated as holding no grants.
type Role string

const (
	RolePracticeAdministrator Role = "practice_administrator"
	RoleClinicalAdministrator Role = "clinical_administrator"
	RoleClinician             Role = "clinician"
	RoleSupervisor            Role = "supervisor"
	RoleIntern                Role = "intern"
	RoleAssistant             Role = "assistant"
	RoleAssociate             Role = "associate"
	RolePracticeScheduler     Role = "practice_scheduler"
	RolePracticeBiller        Role = "practice_biller"
)

// RoleDisplayNames maps roles to their human-readable names
var RoleDisplayNames = map[Role]string{
	RolePracticeAdministrator: "Practice Administrator",
	RoleClinicalAdministrator: "Clinical Administrator",
	RoleClinician:             "Clinician",
	RoleSupervisor:            "Supervisor",
	RoleIntern:                "Intern",
	RoleAssistant:             "Assistant",
	RoleAssociate:             "Associate",
	RolePracticeScheduler:     "Practice Scheduler",
	RolePracticeBiller:        "Practice Biller",
}

// Category identifies a permission category
type Category string

const (
	CategoryUserManagement Category = "user_management"
	CategorySchedule       Category = "schedule"
	CategoryClinicalNotes  Category = "clinical_notes"
	CategoryBilling        Category = "billing"
	CategoryClients        Category = "clients"
	CategoryReports        Category = "reports"
	CategoryAudit          Category = "audit"
	CategoryCompliance     Category = "compliance"
)

// Action identifies an operation within a permission category
type Action string

const (
	ActionCreate          Action = "create"
	ActionRead            Action = "read"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionSign            Action = "sign"
	ActionManageUsers     Action = "manage_users"
	ActionAssignRoles     Action = "assign_roles"
	ActionBillInsurance   Action = "bill_insurance"
	ActionProcessPayments Action = "process_payments"
	ActionView            Action = "view"
	ActionGenerateReport  Action = "generate_report"
)

// Scope qualifies the breadth of a permission grant. ScopeAll satisfies every
// narrower scope for the same category and action.
type Scope string

const (
	ScopeAll            Scope = "all"
	ScopeOwnOnly        Scope = "own_only"
	ScopeAssignedOnly   Scope = "assigned_only"
	ScopeSupervisedOnly Scope = "supervised_only"
)

// ViolationType identifies a class of compliance violation
type ViolationType string

const (
	ViolationUnauthorizedAccess ViolationType = "unauthorized_access"
	ViolationExcessiveAccess    ViolationType = "excessive_access"
	ViolationRetentionGap       ViolationType = "retention_gap"
)

// Severity levels for violations and risk entries
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Audit event types recorded for role mutations and report generation
const (
	AuditEventRoleAssigned     = "role_assigned"
	AuditEventRoleRemoved      = "role_removed"
	AuditEventMutationRejected = "role_mutation_rejected"
	AuditEventReportGenerated  = "compliance_report_generated"
)

// Default configuration values
const (
	DefaultExcessiveAccessThreshold = 100
	DefaultAdminCountCeiling        = 5
	DefaultAuditRetentionDays       = 2555 // 7 years
	DefaultAuditTrailBaseline       = 50
)

// validRoles is the closed set of roles accepted by ParseRole
var validRoles = map[Role]bool{
	RolePracticeAdministrator: true,
	RoleClinicalAdministrator: true,
	RoleClinician:             true,
	RoleSupervisor:            true,
	RoleIntern:                true,
	RoleAssistant:             true,
	RoleAssociate:             true,
	RolePracticeScheduler:     true,
	RolePracticeBiller:        true,
}

// ValidRoles returns the full role vocabulary
func ValidRoles() []Role {
	roles := make([]Role, 0, len(validRoles))
	for role := range validRoles {
		roles = append(roles, role)
	}
	return roles
}

// IsValidRole reports whether the role belongs to the deployment vocabulary
func IsValidRole(role Role) bool {
	return validRoles[role]
}

// ParseRole validates a raw role string against the vocabulary
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !validRoles[role] {
		return "", ErrUnknownRole.WithRole(raw)
	}
	return role, nil
}
