package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/database"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/logger"
)

func setupAccessLogRepository(t *testing.T) (*AccessLogRepository, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo := NewAccessLogRepository(&database.DB{DB: sqlDB}, logger.New("debug"))
	return repo, mock
}

func TestQueryAccessLog(t *testing.T) {
	repo, mock := setupAccessLogRepository(t)

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	at := end.Add(-time.Hour)

	rows := sqlmock.NewRows([]string{"id", "user_id", "patient_id", "access_type", "authorized", "created_at"}).
		AddRow("e-1", "user-1", "patient-1", "read", true, at).
		AddRow("e-2", "user-2", "patient-2", "update", false, at)

	mock.ExpectQuery("SELECT id, user_id, patient_id, access_type, authorized, created_at").
		WithArgs(start, end).
		WillReturnRows(rows)

	entries, err := repo.QueryAccessLog(context.Background(), start, end)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "user-1", entries[0].UserID)
	assert.True(t, entries[0].Authorized)
	assert.Equal(t, "patient-2", entries[1].PatientID)
	assert.False(t, entries[1].Authorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryAccessLog_EmptyWindow(t *testing.T) {
	repo, mock := setupAccessLogRepository(t)

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	mock.ExpectQuery("SELECT id, user_id, patient_id, access_type, authorized, created_at").
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "patient_id", "access_type", "authorized", "created_at"}))

	entries, err := repo.QueryAccessLog(context.Background(), start, end)

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountEntriesBefore(t *testing.T) {
	repo, mock := setupAccessLogRepository(t)

	cutoff := time.Now().UTC().AddDate(-7, 0, 0)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM access_logs`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	count, err := repo.CountEntriesBefore(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, 17, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
