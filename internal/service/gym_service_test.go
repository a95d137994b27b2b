package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type mockGymStore struct {
	gyms    map[string]models.Gym
	boxers  map[string]int
	classes map[string]int
}

func newMockGymStore() *mockGymStore {
	return &mockGymStore{gyms: map[string]models.Gym{}, boxers: map[string]int{}, classes: map[string]int{}}
}

func (m *mockGymStore) Create(ctx context.Context, gym *models.Gym) error {
	gym.ID = "gym-" + gym.Name
	m.gyms[gym.ID] = *gym
	return nil
}

func (m *mockGymStore) FindByID(ctx context.Context, id string) (*models.Gym, error) {
	gym, ok := m.gyms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &gym, nil
}

func (m *mockGymStore) List(ctx context.Context) ([]models.Gym, error) {
	out := make([]models.Gym, 0, len(m.gyms))
	for _, gym := range m.gyms {
		out = append(out, gym)
	}
	return out, nil
}

func (m *mockGymStore) CountOwned(ctx context.Context, gymID string) (int, int, error) {
	return m.boxers[gymID], m.classes[gymID], nil
}

func (m *mockGymStore) Delete(ctx context.Context, id string) error {
	delete(m.gyms, id)
	return nil
}

func TestGymDeleteRefusedWhileOwned(t *testing.T) {
	store := newMockGymStore()
	store.gyms["gym-1"] = models.Gym{ID: "gym-1", Name: "Eastside"}
	store.boxers["gym-1"] = 3
	svc := NewGymService(store, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "gym-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProtected.Code, appErrors.FromError(err).Code)
	_, ok := store.gyms["gym-1"]
	assert.True(t, ok, "protected gym must survive")
}

func TestGymDeleteEmptyGym(t *testing.T) {
	store := newMockGymStore()
	store.gyms["gym-1"] = models.Gym{ID: "gym-1", Name: "Eastside"}
	svc := NewGymService(store, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "gym-1"))
	assert.Empty(t, store.gyms)
}

func TestGymDeleteUnknown(t *testing.T) {
	svc := NewGymService(newMockGymStore(), nil, zap.NewNop())

	err := svc.Delete(context.Background(), "gym-9")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGymCreateTrimsName(t *testing.T) {
	store := newMockGymStore()
	svc := NewGymService(store, nil, zap.NewNop())

	gym, err := svc.Create(context.Background(), CreateGymRequest{Name: " Eastside ", Timezone: "Europe/Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "Eastside", gym.Name)

	_, err = svc.Create(context.Background(), CreateGymRequest{Name: "No TZ"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
