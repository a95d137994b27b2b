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

func newBoxerRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBoxerRepositoryCreateAssignsIdentifiers(t *testing.T) {
	db, mock, cleanup := newBoxerRepoMock(t)
	defer cleanup()
	repo := NewBoxerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO boxers")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Ali", "Said", "Ali Said",
			"", nil, "gym-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	boxer := &models.Boxer{FirstName: "Ali", LastName: "Said", GymID: "gym-1"}
	require.NoError(t, repo.Create(context.Background(), boxer))
	require.NotEmpty(t, boxer.ID)
	require.NotEmpty(t, boxer.PublicID)
	require.Equal(t, "Ali Said", boxer.DisplayName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBoxerRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newBoxerRepoMock(t)
	defer cleanup()
	repo := NewBoxerRepository(db)

	rows := sqlmock.NewRows([]string{"id", "public_id", "first_name", "last_name", "display_name", "parent_name", "date_of_birth", "gym_id", "created_at", "updated_at"}).
		AddRow("box-1", "pub-1", "Ali", "Said", "Ali Said", "", nil, "gym-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM boxers WHERE id = $1")).
		WithArgs("box-1").
		WillReturnRows(rows)

	boxer, err := repo.FindByID(context.Background(), "box-1")
	require.NoError(t, err)
	require.Equal(t, "Ali Said", boxer.DisplayName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBoxerRepositoryIDsVisibleToCoach(t *testing.T) {
	db, mock, cleanup := newBoxerRepoMock(t)
	defer cleanup()
	repo := NewBoxerRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("box-1").AddRow("box-2")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.gym_id = $1 OR sg.gym_id = $1 OR bc.user_id = $2")).
		WithArgs("gym-1", "coach-1").
		WillReturnRows(rows)

	ids, err := repo.IDsVisibleToCoach(context.Background(), "gym-1", "coach-1")
	require.NoError(t, err)
	require.Equal(t, []string{"box-1", "box-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBoxerRepositoryIDsCoachedBy(t *testing.T) {
	db, mock, cleanup := newBoxerRepoMock(t)
	defer cleanup()
	repo := NewBoxerRepository(db)

	rows := sqlmock.NewRows([]string{"boxer_id"}).AddRow("box-3")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT boxer_id FROM boxer_coaches WHERE user_id = $1")).
		WithArgs("coach-1").
		WillReturnRows(rows)

	ids, err := repo.IDsCoachedBy(context.Background(), "coach-1")
	require.NoError(t, err)
	require.Equal(t, []string{"box-3"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBoxerRepositoryFindByNameEmptyScope(t *testing.T) {
	db, mock, cleanup := newBoxerRepoMock(t)
	defer cleanup()
	repo := NewBoxerRepository(db)

	rows, err := repo.FindByName(context.Background(), "Ali Said", nil)
	require.NoError(t, err)
	require.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBoxerRepositoryExistsInGym(t *testing.T) {
	db, mock, cleanup := newBoxerRepoMock(t)
	defer cleanup()
	repo := NewBoxerRepository(db)

	rows := sqlmock.NewRows([]string{"same_name", "same_parent", "same_dob"}).AddRow(1, 0, 0)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE gym_id = $1 AND (LOWER(display_name) = LOWER($2)")).
		WithArgs("gym-1", "Ali Said", "", nil).
		WillReturnRows(rows)

	sameName, sameParent, sameDOB, err := repo.ExistsInGym(context.Background(), "gym-1", "Ali Said", "", nil)
	require.NoError(t, err)
	require.True(t, sameName)
	require.False(t, sameParent)
	require.False(t, sameDOB)
	require.NoError(t, mock.ExpectationsWereMet())
}
