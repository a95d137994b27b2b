package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ringside/boxclub-api/internal/models"
)

func newBatteryRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBatteryRepositoryListTestsForCoach(t *testing.T) {
	db, mock, cleanup := newBatteryRepoMock(t)
	defer cleanup()
	repo := NewBatteryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "coach_id", "name", "unit", "description", "display_order", "created_at"}).
		AddRow("test-1", "coach-1", "Sprint 30m", "seconds", nil, 1, time.Now()).
		AddRow("test-2", nil, "Push-ups", "reps", nil, 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE coach_id = $1 OR coach_id IS NULL")).
		WithArgs("coach-1").
		WillReturnRows(rows)

	coachID := "coach-1"
	tests, err := repo.ListTests(context.Background(), &coachID)
	require.NoError(t, err)
	require.Len(t, tests, 2)
	require.Nil(t, tests[1].CoachID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatteryRepositoryUpsertResult(t *testing.T) {
	db, mock, cleanup := newBatteryRepoMock(t)
	defer cleanup()
	repo := NewBatteryRepository(db)

	updatedAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	v1 := 4.8
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (boxer_id, test_id, phase)")).
		WithArgs(sqlmock.AnyArg(), "box-1", "test-1", models.PhasePreparation, 4.8, nil, nil, "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}).AddRow("res-1", updatedAt))

	result := &models.TestResult{
		BoxerID: "box-1",
		TestID:  "test-1",
		Phase:   models.PhasePreparation,
		Value1:  &v1,
	}
	require.NoError(t, repo.UpsertResult(context.Background(), result))
	require.Equal(t, "res-1", result.ID)
	require.Equal(t, updatedAt, result.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatteryRepositoryResultsByTestEmptyScope(t *testing.T) {
	db, mock, cleanup := newBatteryRepoMock(t)
	defer cleanup()
	repo := NewBatteryRepository(db)

	results, err := repo.ResultsByTest(context.Background(), "test-1", nil)
	require.NoError(t, err)
	require.Empty(t, results)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatteryRepositoryDeleteResult(t *testing.T) {
	db, mock, cleanup := newBatteryRepoMock(t)
	defer cleanup()
	repo := NewBatteryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM test_results WHERE boxer_id = $1 AND test_id = $2 AND phase = $3")).
		WithArgs("box-1", "test-1", models.PhasePeak).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteResult(context.Background(), "box-1", "test-1", models.PhasePeak))
	require.NoError(t, mock.ExpectationsWereMet())
}
