package authz

import (
	"context"
	"time"
)

// RoleAssignmentStore persists role assignments. Implementations must be
// transactionally consistent per call.
type RoleAssignmentStore interface {
	// ListActiveRoles returns the active assignments for a user
	ListActiveRoles(ctx context.Context, userID string) ([]RoleAssignment, error)

	// ListAssignments returns all assignments for a user, active and revoked
	ListAssignments(ctx context.Context, userID string) ([]RoleAssignment, error)

	// Insert creates a new assignment row
	Insert(ctx context.Context, assignment *RoleAssignment) error

	// Deactivate flips the active row(s) for (userID, role) to inactive.
	// Rows are never physically deleted.
	Deactivate(ctx context.Context, userID string, role Role, revokedBy string) error

	// CountActiveUsersWithRole returns the number of distinct users actively
	// holding the role
	CountActiveUsersWithRole(ctx context.Context, role Role) (int, error)
}

// AccessLogStore reads the append-only PHI access log
type AccessLogStore interface {
	// QueryAccessLog returns entries within [start, end], ordered by time
	QueryAccessLog(ctx context.Context, start, end time.Time) ([]AccessLogEntry, error)

	// CountEntriesBefore returns the number of entries older than the cutoff
	CountEntriesBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// ClassificationRegistry supplies the monitored data classifications used by
// the retention check. Built once from configuration.
type ClassificationRegistry interface {
	Classifications() []DataClassification
}
