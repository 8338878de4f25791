package authz

import (
	"time"
)

// Permission represents a single grant of an action within a category,
// qualified by scope
type Permission struct {
	Category Category `json:"category"`
	Action   Action   `json:"action"`
	Scope    Scope    `json:"scope"`
}

// RoleAssignment represents one role held by one user. Assignments are never
// physically deleted; removal flips IsActive to false so the row remains
// available for audit.
type RoleAssignment struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Role       Role       `json:"role"`
	IsActive   bool       `json:"is_active"`
	AssignedBy string     `json:"assigned_by"`
	AssignedAt time.Time  `json:"assigned_at"`
	RevokedBy  string     `json:"revoked_by,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// AccessLogEntry represents one PHI access recorded by the enforcement point.
// The compliance monitor consumes these read-only.
type AccessLogEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	PatientID  string    `json:"patient_id"`
	AccessType string    `json:"access_type"`
	Authorized bool      `json:"authorized"`
	Timestamp  time.Time `json:"timestamp"`
}

// Violation represents a detected policy breach within a report window
type Violation struct {
	ID          string        `json:"id"`
	Type        ViolationType `json:"type"`
	Severity    Severity      `json:"severity"`
	Description string        `json:"description"`
	UserID      string        `json:"user_id"`
	ResourceID  string        `json:"resource_id"`
	DetectedAt  time.Time     `json:"detected_at"`
}

// RiskEntry represents a structural risk finding independent of the log window
type RiskEntry struct {
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// ComplianceMetrics holds the four sub-scores and their mean, each in [0,100]
type ComplianceMetrics struct {
	HIPAACompliance float64 `json:"hipaa_compliance"`
	DataRetention   float64 `json:"data_retention"`
	AccessControls  float64 `json:"access_controls"`
	AuditTrails     float64 `json:"audit_trails"`
	Overall         float64 `json:"overall"`
}

// ComplianceReport is the full output of one report generation run
type ComplianceReport struct {
	ID          string            `json:"id"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	GeneratedAt time.Time         `json:"generated_at"`
	Violations  []Violation       `json:"violations"`
	Risks       []RiskEntry       `json:"risks"`
	Metrics     ComplianceMetrics `json:"metrics"`
}

// DataClassification describes one monitored field and its retention and
// encryption requirements
type DataClassification struct {
	Table               string `json:"table"`
	Field               string `json:"field"`
	Classification      string `json:"classification"` // "phi", "pii", "financial", "operational"
	RetentionPeriodDays int    `json:"retention_period_days"`
	EncryptionRequired  bool   `json:"encryption_required"`
}

// Actor identifies the authenticated principal performing an operation,
// together with the roles resolved for it
type Actor struct {
	UserID string `json:"user_id"`
	Roles  []Role `json:"roles"`
}
