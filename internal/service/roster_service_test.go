package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	pairs map[string]models.Enrollment // class|boxer
}

func (m *mockEnrollmentRepo) Enroll(ctx context.Context, classID, boxerID string) (*models.Enrollment, bool, error) {
	if m.pairs == nil {
		m.pairs = map[string]models.Enrollment{}
	}
	key := classID + "|" + boxerID
	if existing, ok := m.pairs[key]; ok {
		return &existing, false, nil
	}
	row := models.Enrollment{ID: "enr-" + boxerID, ClassID: classID, BoxerID: boxerID}
	m.pairs[key] = row
	return &row, true, nil
}

func (m *mockEnrollmentRepo) Unenroll(ctx context.Context, classID, boxerID string) error {
	delete(m.pairs, classID+"|"+boxerID)
	return nil
}

func (m *mockEnrollmentRepo) Roster(ctx context.Context, classID string) ([]models.RosterEntry, error) {
	var entries []models.RosterEntry
	for _, pair := range m.pairs {
		if pair.ClassID == classID {
			entries = append(entries, models.RosterEntry{EnrollmentID: pair.ID, BoxerID: pair.BoxerID})
		}
	}
	return entries, nil
}

func newRosterFixture() (*RosterService, *mockEnrollmentRepo) {
	enrollments := &mockEnrollmentRepo{}
	classes := &mockClassRepo{classes: map[string]models.ClassTemplate{
		"class-1": {ID: "class-1", GymID: "gym-1", Title: "Sparring"},
		"class-2": {ID: "class-2", GymID: "gym-2", Title: "Away"},
	}}
	scope := newTestScope(clubFixture(), nil)
	return NewRosterService(enrollments, classes, scope, nil, zap.NewNop()), enrollments
}

func TestRosterEnrollIsIdempotent(t *testing.T) {
	svc, enrollments := newRosterFixture()
	ctx := context.Background()
	req := EnrollRequest{ClassID: "class-1", BoxerID: "box-home"}

	first, err := svc.Enroll(ctx, coachActor("gym-1"), req)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := svc.Enroll(ctx, coachActor("gym-1"), req)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Enrollment.ID, second.Enrollment.ID)
	assert.Len(t, enrollments.pairs, 1)
}

func TestRosterUnenrollMissingIsNoop(t *testing.T) {
	svc, _ := newRosterFixture()

	err := svc.Unenroll(context.Background(), coachActor("gym-1"), EnrollRequest{ClassID: "class-1", BoxerID: "box-home"})
	require.NoError(t, err)
}

func TestRosterEnrollOutOfScopeBoxer(t *testing.T) {
	svc, _ := newRosterFixture()

	_, err := svc.Enroll(context.Background(), coachActor("gym-1"), EnrollRequest{ClassID: "class-1", BoxerID: "box-far"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRosterEnrollOutOfGymClass(t *testing.T) {
	svc, _ := newRosterFixture()

	_, err := svc.Enroll(context.Background(), coachActor("gym-1"), EnrollRequest{ClassID: "class-2", BoxerID: "box-home"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRosterFiltersToVisibleBoxers(t *testing.T) {
	svc, enrollments := newRosterFixture()
	ctx := context.Background()

	// Seed the roster directly, including a boxer the coach cannot see.
	enrollments.pairs = map[string]models.Enrollment{
		"class-1|box-home": {ID: "enr-1", ClassID: "class-1", BoxerID: "box-home"},
		"class-1|box-far":  {ID: "enr-2", ClassID: "class-1", BoxerID: "box-far"},
	}

	entries, err := svc.Roster(ctx, coachActor("gym-1"), "class-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "box-home", entries[0].BoxerID)

	all, err := svc.Roster(ctx, adminActor(), "class-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
