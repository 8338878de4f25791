package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/database"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/logger"
)

// AccessLogRepository implements authz.AccessLogStore on PostgreSQL. The
// access_logs table is append-only and written by the enforcement point
// outside this core; this repository only reads it.
type AccessLogRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewAccessLogRepository creates a new access log repository
func NewAccessLogRepository(db *database.DB, log *logger.Logger) *AccessLogRepository {
	return &AccessLogRepository{
		db:     db,
		logger: log,
	}
}

// QueryAccessLog returns entries within [start, end], ordered by time
func (r *AccessLogRepository) QueryAccessLog(ctx context.Context, start, end time.Time) ([]authz.AccessLogEntry, error) {
	query := `
		SELECT id, user_id, patient_id, access_type, authorized, created_at
		FROM access_logs
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query access log: %w", err)
	}
	defer rows.Close()

	var entries []authz.AccessLogEntry
	for rows.Next() {
		var entry authz.AccessLogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.PatientID,
			&entry.AccessType,
			&entry.Authorized,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access log row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access log rows: %w", err)
	}

	return entries, nil
}

// CountEntriesBefore returns the number of entries older than the cutoff
func (r *AccessLogRepository) CountEntriesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM access_logs WHERE created_at < $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count access log entries: %w", err)
	}
	return count, nil
}
