package authz

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/database"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/logger"
)

// AssignmentRepository implements authz.RoleAssignmentStore on PostgreSQL.
// Rows are append-only: removal updates is_active in place and nothing is
// ever deleted, preserving the audit trail.
type AssignmentRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewAssignmentRepository creates a new role assignment repository
func NewAssignmentRepository(db *database.DB, log *logger.Logger) *AssignmentRepository {
	return &AssignmentRepository{
		db:     db,
		logger: log,
	}
}

// InitializeSchema creates the role_assignments table if it does not exist
func (r *AssignmentRepository) InitializeSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS role_assignments (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(100) NOT NULL,
			role VARCHAR(50) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			assigned_by VARCHAR(100) NOT NULL,
			assigned_at TIMESTAMP WITH TIME ZONE NOT NULL,
			revoked_by VARCHAR(100),
			revoked_at TIMESTAMP WITH TIME ZONE
		);

		CREATE INDEX IF NOT EXISTS idx_role_assignments_user_id ON role_assignments(user_id);
		CREATE INDEX IF NOT EXISTS idx_role_assignments_role ON role_assignments(role) WHERE is_active;
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create role assignments schema: %w", err)
	}
	return nil
}

// ListActiveRoles returns the active assignments for a user
func (r *AssignmentRepository) ListActiveRoles(ctx context.Context, userID string) ([]authz.RoleAssignment, error) {
	query := `
		SELECT id, user_id, role, is_active, assigned_by, assigned_at, revoked_by, revoked_at
		FROM role_assignments
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY assigned_at`

	return r.queryAssignments(ctx, query, userID)
}

// ListAssignments returns all assignments for a user, active and revoked
func (r *AssignmentRepository) ListAssignments(ctx context.Context, userID string) ([]authz.RoleAssignment, error) {
	query := `
		SELECT id, user_id, role, is_active, assigned_by, assigned_at, revoked_by, revoked_at
		FROM role_assignments
		WHERE user_id = $1
		ORDER BY assigned_at`

	return r.queryAssignments(ctx, query, userID)
}

// Insert creates a new assignment row
func (r *AssignmentRepository) Insert(ctx context.Context, assignment *authz.RoleAssignment) error {
	query := `
		INSERT INTO role_assignments (id, user_id, role, is_active, assigned_by, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		assignment.ID,
		assignment.UserID,
		assignment.Role,
		assignment.IsActive,
		assignment.AssignedBy,
		assignment.AssignedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert role assignment: %w", err)
	}

	r.logger.Info("Role assignment created",
		"assignment_id", assignment.ID,
		"user_id", assignment.UserID,
		"role", assignment.Role,
	)
	return nil
}

// Deactivate flips the active row(s) for (userID, role) to inactive
func (r *AssignmentRepository) Deactivate(ctx context.Context, userID string, role authz.Role, revokedBy string) error {
	query := `
		UPDATE role_assignments
		SET is_active = FALSE, revoked_by = $1, revoked_at = NOW()
		WHERE user_id = $2 AND role = $3 AND is_active = TRUE`

	result, err := r.db.ExecContext(ctx, query, revokedBy, userID, role)
	if err != nil {
		return fmt.Errorf("failed to deactivate role assignment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no active assignment of role %s for user %s", role, userID)
	}

	r.logger.Info("Role assignment deactivated",
		"user_id", userID,
		"role", role,
		"revoked_by", revokedBy,
	)
	return nil
}

// CountActiveUsersWithRole returns the number of distinct users actively
// holding the role
func (r *AssignmentRepository) CountActiveUsersWithRole(ctx context.Context, role authz.Role) (int, error) {
	query := `
		SELECT COUNT(DISTINCT user_id)
		FROM role_assignments
		WHERE role = $1 AND is_active = TRUE`

	var count int
	if err := r.db.QueryRowContext(ctx, query, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users with role %s: %w", role, err)
	}
	return count, nil
}

func (r *AssignmentRepository) queryAssignments(ctx context.Context, query string, args ...interface{}) ([]authz.RoleAssignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query role assignments: %w", err)
	}
	defer rows.Close()

	var assignments []authz.RoleAssignment
	for rows.Next() {
		var a authz.RoleAssignment
		var revokedBy sql.NullString
		var revokedAt sql.NullTime

		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Role,
			&a.IsActive,
			&a.AssignedBy,
			&a.AssignedAt,
			&revokedBy,
			&revokedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role assignment row: %w", err)
		}

		if revokedBy.Valid {
			a.RevokedBy = revokedBy.String
		}
		if revokedAt.Valid {
			a.RevokedAt = &revokedAt.Time
		}

		assignments = append(assignments, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role assignment rows: %w", err)
	}

	return assignments, nil
}
