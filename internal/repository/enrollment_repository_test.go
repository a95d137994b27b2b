package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryEnrollCreates(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "boxer_id", "created_at"}).
		AddRow("enr-1", "class-1", "box-1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (class_id, boxer_id) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), "class-1", "box-1", sqlmock.AnyArg()).
		WillReturnRows(rows)

	enrollment, created, err := repo.Enroll(context.Background(), "class-1", "box-1")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "enr-1", enrollment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryEnrollExistingPair(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	// Conflict: the insert returns no row, the follow-up select finds the
	// existing pair.
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (class_id, boxer_id) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), "class-1", "box-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "boxer_id", "created_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, boxer_id, created_at FROM enrollments WHERE class_id = $1 AND boxer_id = $2")).
		WithArgs("class-1", "box-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "boxer_id", "created_at"}).
			AddRow("enr-1", "class-1", "box-1", time.Now()))

	enrollment, created, err := repo.Enroll(context.Background(), "class-1", "box-1")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "enr-1", enrollment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUnenroll(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE class_id = $1 AND boxer_id = $2")).
		WithArgs("class-1", "box-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Unenroll(context.Background(), "class-1", "box-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryRoster(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"enrollment_id", "boxer_id", "first_name", "last_name", "display_name"}).
		AddRow("enr-1", "box-1", "Ali", "Said", "Ali Said").
		AddRow("enr-2", "box-2", "Mo", "Diallo", "Mo Diallo")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN boxers b ON b.id = e.boxer_id")).
		WithArgs("class-1").
		WillReturnRows(rows)

	entries, err := repo.Roster(context.Background(), "class-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Ali Said", entries[0].DisplayName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCountByClass(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.CountByClass(context.Background(), "class-1")
	require.NoError(t, err)
	require.Equal(t, 12, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
