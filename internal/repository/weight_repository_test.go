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

func newWeightRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestWeightRepositoryUpsertReplacesSameTimestamp(t *testing.T) {
	db, mock, cleanup := newWeightRepoMock(t)
	defer cleanup()
	repo := NewWeightRepository(db)

	measuredAt := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "boxer_id", "measured_at", "kg", "created_at", "updated_at"}).
		AddRow("wt-1", "box-1", measuredAt, 71.5, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (boxer_id, measured_at)")).
		WithArgs(sqlmock.AnyArg(), "box-1", measuredAt, 71.5, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	stored, err := repo.Upsert(context.Background(), &models.Weight{
		BoxerID:    "box-1",
		MeasuredAt: measuredAt,
		Kg:         71.5,
	})
	require.NoError(t, err)
	require.Equal(t, "wt-1", stored.ID)
	require.Equal(t, 71.5, stored.Kg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeightRepositoryDeleteDay(t *testing.T) {
	db, mock, cleanup := newWeightRepoMock(t)
	defer cleanup()
	repo := NewWeightRepository(db)

	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM weights WHERE boxer_id = $1 AND measured_at >= $2 AND measured_at < $3")).
		WithArgs("box-1", dayStart, dayEnd).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteDay(context.Background(), "box-1", dayStart, dayEnd))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeightRepositoryDaysForBoxer(t *testing.T) {
	db, mock, cleanup := newWeightRepoMock(t)
	defer cleanup()
	repo := NewWeightRepository(db)

	rows := sqlmock.NewRows([]string{"id", "boxer_id", "measured_at", "kg", "created_at", "updated_at"}).
		AddRow("wt-1", "box-1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 72.0, time.Now(), time.Now()).
		AddRow("wt-2", "box-1", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), 71.5, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (measured_at::date)")).
		WithArgs("box-1").
		WillReturnRows(rows)

	samples, err := repo.DaysForBoxer(context.Background(), "box-1")
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.Equal(t, 72.0, samples[0].Kg)
	require.NoError(t, mock.ExpectationsWereMet())
}
