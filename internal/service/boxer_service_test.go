package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type mockBoxerStore struct {
	created    []models.Boxer
	coached    map[string][]string
	shares     map[string][]string
	duplicates map[string][3]bool
	listScope  []string
	nextID     int
}

func newMockBoxerStore() *mockBoxerStore {
	return &mockBoxerStore{
		coached:    map[string][]string{},
		shares:     map[string][]string{},
		duplicates: map[string][3]bool{},
	}
}

func (m *mockBoxerStore) Create(ctx context.Context, boxer *models.Boxer) error {
	m.nextID++
	boxer.ID = fmt.Sprintf("new-%d", m.nextID)
	boxer.DisplayName = strings.TrimSpace(boxer.FirstName + " " + boxer.LastName)
	m.created = append(m.created, *boxer)
	return nil
}

func (m *mockBoxerStore) List(ctx context.Context, filter models.BoxerFilter, visibleIDs []string) ([]models.BoxerDetail, int, error) {
	m.listScope = visibleIDs
	return []models.BoxerDetail{}, 0, nil
}

func (m *mockBoxerStore) Delete(ctx context.Context, id string) error { return nil }

func (m *mockBoxerStore) AddCoach(ctx context.Context, boxerID, userID string) error {
	m.coached[boxerID] = append(m.coached[boxerID], userID)
	return nil
}

func (m *mockBoxerStore) ShareWithGym(ctx context.Context, boxerID, gymID string) error {
	m.shares[boxerID] = append(m.shares[boxerID], gymID)
	return nil
}

func (m *mockBoxerStore) ExistsInGym(ctx context.Context, gymID, displayName, parentName string, dob *time.Time) (bool, bool, bool, error) {
	flags := m.duplicates[strings.ToLower(displayName)]
	return flags[0], flags[1], flags[2], nil
}

func newBoxerFixture(store *mockBoxerStore) *BoxerService {
	scope := newTestScope(clubFixture(), nil)
	return NewBoxerService(store, scope, nil, zap.NewNop())
}

func TestBoxerCreateCoachLandsInHomeGym(t *testing.T) {
	store := newMockBoxerStore()
	svc := newBoxerFixture(store)

	dob := "2011-06-15"
	boxer, err := svc.Create(context.Background(), coachActor("gym-1"), CreateBoxerRequest{
		FirstName: " Nadia ", LastName: "Benali", DateOfBirth: &dob, GymID: "gym-9",
	})
	require.NoError(t, err)
	assert.Equal(t, "gym-1", boxer.GymID)
	assert.Equal(t, "Nadia", boxer.FirstName)
	require.NotNil(t, boxer.DateOfBirth)
	assert.Equal(t, time.Date(2011, 6, 15, 0, 0, 0, 0, time.UTC), *boxer.DateOfBirth)
	assert.Equal(t, []string{"coach-1"}, store.coached[boxer.ID])
}

func TestBoxerCreateRejectsBadDate(t *testing.T) {
	svc := newBoxerFixture(newMockBoxerStore())

	dob := "15.06.2011"
	_, err := svc.Create(context.Background(), adminActor(), CreateBoxerRequest{
		FirstName: "Nadia", GymID: "gym-1", DateOfBirth: &dob,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBoxerListScopedToVisibleBoxers(t *testing.T) {
	store := newMockBoxerStore()
	svc := newBoxerFixture(store)

	_, page, err := svc.List(context.Background(), coachActor("gym-1"), ListBoxersRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"box-direct", "box-home", "box-shared"}, store.listScope)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.PageSize)
}

func TestBoxerShareValidation(t *testing.T) {
	store := newMockBoxerStore()
	svc := newBoxerFixture(store)

	err := svc.Share(context.Background(), coachActor("gym-1"), "box-home", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = svc.Share(context.Background(), coachActor("gym-1"), "box-far", "gym-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Share(context.Background(), coachActor("gym-1"), "box-home", "gym-2"))
	assert.Equal(t, []string{"gym-2"}, store.shares["box-home"])
}

func TestBoxerBulkImportPartialCommit(t *testing.T) {
	store := newMockBoxerStore()
	store.duplicates["omar diallo"] = [3]bool{true, false, false}
	svc := newBoxerFixture(store)

	may := time.Date(2012, 5, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.BulkImport(context.Background(), coachActor("gym-1"), BulkImportRequest{
		Rows: []models.BulkBoxerRow{
			{FirstName: "Nadia", LastName: "Benali"},
			{FirstName: "", LastName: "Ghost"},
			{FirstName: "nadia", LastName: "benali"},
			{FirstName: "Omar", LastName: "Diallo"},
			{FirstName: "Omar", LastName: "Diallo", ParentName: "K. Diallo", DateOfBirth: &may},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 2)
	require.Len(t, result.Errors, 3)

	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, "first_name", result.Errors[0].Field)
	assert.Equal(t, 2, result.Errors[1].Index)
	assert.Contains(t, result.Errors[1].Message, "duplicate of row 0")
	assert.Equal(t, 3, result.Errors[2].Index)
	assert.Contains(t, result.Errors[2].Message, "disambiguate")

	// Every committed row is coached by the importing coach.
	for _, boxer := range result.Created {
		assert.Equal(t, []string{"coach-1"}, store.coached[boxer.ID])
	}
}

func TestBoxerBulkImportRequiresRows(t *testing.T) {
	svc := newBoxerFixture(newMockBoxerStore())

	_, err := svc.BulkImport(context.Background(), adminActor(), BulkImportRequest{GymID: "gym-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
