package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type mockClassStore struct {
	classes map[string]models.ClassTemplate
	coaches map[string][]string
	nextID  int
}

func newMockClassStore() *mockClassStore {
	return &mockClassStore{classes: map[string]models.ClassTemplate{}, coaches: map[string][]string{}}
}

func (m *mockClassStore) Create(ctx context.Context, class *models.ClassTemplate) error {
	m.nextID++
	class.ID = fmt.Sprintf("class-%d", m.nextID)
	m.classes[class.ID] = *class
	return nil
}

func (m *mockClassStore) FindByID(ctx context.Context, id string) (*models.ClassTemplate, error) {
	class, ok := m.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &class, nil
}

func (m *mockClassStore) FindByIDInGym(ctx context.Context, id, gymID string) (*models.ClassTemplate, error) {
	class, ok := m.classes[id]
	if !ok || class.GymID != gymID {
		return nil, sql.ErrNoRows
	}
	return &class, nil
}

func (m *mockClassStore) ListByGym(ctx context.Context, gymID string) ([]models.ClassTemplate, error) {
	out := []models.ClassTemplate{}
	for _, class := range m.classes {
		if class.GymID == gymID {
			out = append(out, class)
		}
	}
	return out, nil
}

func (m *mockClassStore) AddCoach(ctx context.Context, classID, userID string) error {
	m.coaches[classID] = append(m.coaches[classID], userID)
	return nil
}

func (m *mockClassStore) Delete(ctx context.Context, id string) error {
	delete(m.classes, id)
	return nil
}

type mockClassEnrollments struct {
	counts map[string]int
}

func (m *mockClassEnrollments) CountByClass(ctx context.Context, classID string) (int, error) {
	return m.counts[classID], nil
}

type mockClassAttendance struct {
	marked       map[string][]time.Time
	presentByDay map[string]int
	presentCalls int
}

func (m *mockClassAttendance) MarkedDates(ctx context.Context, classID string, from, to time.Time) ([]time.Time, error) {
	return m.marked[classID], nil
}

func (m *mockClassAttendance) CountPresent(ctx context.Context, classID string, date time.Time) (int, error) {
	m.presentCalls++
	return m.presentByDay[classID+"|"+date.Format("2006-01-02")], nil
}

func newClassFixture(store *mockClassStore, enrollments *mockClassEnrollments, attendance *mockClassAttendance) *ClassService {
	if enrollments == nil {
		enrollments = &mockClassEnrollments{counts: map[string]int{}}
	}
	if attendance == nil {
		attendance = &mockClassAttendance{marked: map[string][]time.Time{}, presentByDay: map[string]int{}}
	}
	scope := newTestScope(clubFixture(), nil)
	return NewClassService(store, enrollments, attendance, scope, nil, zap.NewNop(), CalendarConfig{
		DefaultStartHour:       18,
		DefaultStartMinute:     0,
		DefaultDurationMinutes: 60,
		MaxWindowDays:          92,
	})
}

func strPtr(s string) *string { return &s }

func TestClassCreateCoachPinnedToHomeGym(t *testing.T) {
	store := newMockClassStore()
	svc := newClassFixture(store, nil, nil)

	class, err := svc.Create(context.Background(), coachActor("gym-1"), CreateClassRequest{
		Title: "Sparring", GymID: "gym-9",
	})
	require.NoError(t, err)
	assert.Equal(t, "gym-1", class.GymID)
	assert.Equal(t, []string{"coach-1"}, store.coaches[class.ID])
	assert.Equal(t, 18, class.StartHour)
	assert.Equal(t, 60, class.DurationMinutes)
}

func TestClassCreateCoachWithoutHomeGym(t *testing.T) {
	svc := newClassFixture(newMockClassStore(), nil, nil)

	actor := coachActor("gym-1")
	actor.GymID = nil
	_, err := svc.Create(context.Background(), actor, CreateClassRequest{Title: "Sparring"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassCreateAdminRequiresGym(t *testing.T) {
	svc := newClassFixture(newMockClassStore(), nil, nil)

	_, err := svc.Create(context.Background(), adminActor(), CreateClassRequest{Title: "Sparring"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassCreateRejectsBrokenRecurrence(t *testing.T) {
	svc := newClassFixture(newMockClassStore(), nil, nil)

	_, err := svc.Create(context.Background(), adminActor(), CreateClassRequest{
		Title: "Sparring", GymID: "gym-1", Recurrence: strPtr("FREQ=SOMETIMES"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassCalendarExpandsWeeklyRule(t *testing.T) {
	store := newMockClassStore()
	store.classes["class-1"] = models.ClassTemplate{
		ID: "class-1", GymID: "gym-1", Title: "Sparring",
		Recurrence: strPtr("FREQ=WEEKLY;BYDAY=MO,WE"),
		StartHour:  18, StartMinute: 30, DurationMinutes: 90,
	}
	enrollments := &mockClassEnrollments{counts: map[string]int{"class-1": 12}}
	attendance := &mockClassAttendance{
		marked:       map[string][]time.Time{"class-1": {time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}},
		presentByDay: map[string]int{"class-1|2026-03-02": 9},
	}
	svc := newClassFixture(store, enrollments, attendance)

	occurrences, err := svc.Calendar(context.Background(), coachActor("gym-1"), CalendarRequest{
		From: "2026-03-02", To: "2026-03-08",
	})
	require.NoError(t, err)
	require.Len(t, occurrences, 2)

	monday := occurrences[0]
	assert.Equal(t, "2026-03-02", monday.Date)
	assert.Equal(t, time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC), monday.Start)
	assert.Equal(t, time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC), monday.End)
	assert.Equal(t, 9, monday.PresentCount)
	assert.Equal(t, 12, monday.EnrolledCount)

	wednesday := occurrences[1]
	assert.Equal(t, "2026-03-04", wednesday.Date)
	assert.Equal(t, 0, wednesday.PresentCount)

	// The unmarked Wednesday never reached the count query.
	assert.Equal(t, 1, attendance.presentCalls)
}

func TestClassCalendarSkipsClassesWithoutRecurrence(t *testing.T) {
	store := newMockClassStore()
	store.classes["class-1"] = models.ClassTemplate{ID: "class-1", GymID: "gym-1", Title: "Open mat"}
	svc := newClassFixture(store, nil, nil)

	occurrences, err := svc.Calendar(context.Background(), coachActor("gym-1"), CalendarRequest{
		From: "2026-03-02", To: "2026-03-08",
	})
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestClassCalendarWindowValidation(t *testing.T) {
	svc := newClassFixture(newMockClassStore(), nil, nil)

	cases := []struct {
		name     string
		from, to string
	}{
		{"end precedes start", "2026-03-08", "2026-03-02"},
		{"window too large", "2026-01-01", "2026-12-31"},
		{"bad from", "yesterday", "2026-03-08"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Calendar(context.Background(), adminActor(), CalendarRequest{From: tc.from, To: tc.to})
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestClassDeleteOutOfGymLooksMissing(t *testing.T) {
	store := newMockClassStore()
	store.classes["class-2"] = models.ClassTemplate{ID: "class-2", GymID: "gym-2", Title: "Sparring"}
	svc := newClassFixture(store, nil, nil)

	err := svc.Delete(context.Background(), coachActor("gym-1"), "class-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), adminActor(), "class-2"))
	_, ok := store.classes["class-2"]
	assert.False(t, ok)
}
