package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type mockWeightRepo struct {
	days   []models.Weight
	latest *models.Weight
	stored []models.Weight
}

func (m *mockWeightRepo) Upsert(ctx context.Context, sample *models.Weight) (*models.Weight, error) {
	m.stored = append(m.stored, *sample)
	return sample, nil
}

func (m *mockWeightRepo) Latest(ctx context.Context, boxerID string) (*models.Weight, error) {
	if m.latest == nil {
		return nil, sql.ErrNoRows
	}
	return m.latest, nil
}

func (m *mockWeightRepo) DaysForBoxer(ctx context.Context, boxerID string) ([]models.Weight, error) {
	return m.days, nil
}

func weightOn(day string, kg float64) models.Weight {
	measured, _ := time.Parse("2006-01-02", day)
	return models.Weight{BoxerID: "box-home", MeasuredAt: measured, Kg: kg}
}

func newWeightFixture(repo *mockWeightRepo) *WeightService {
	scope := newTestScope(clubFixture(), nil)
	return NewWeightService(repo, scope, nil, zap.NewNop())
}

func TestWeightRecordRejectsNonPositive(t *testing.T) {
	svc := newWeightFixture(&mockWeightRepo{})

	_, err := svc.Record(context.Background(), coachActor("gym-1"), RecordWeightRequest{BoxerID: "box-home", Kg: 0})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestWeightRecordParsesTimestamp(t *testing.T) {
	repo := &mockWeightRepo{}
	svc := newWeightFixture(repo)

	measuredAt := "2026-03-02T08:30:00Z"
	sample, err := svc.Record(context.Background(), coachActor("gym-1"), RecordWeightRequest{
		BoxerID: "box-home", Kg: 71.5, MeasuredAt: &measuredAt,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC), sample.MeasuredAt)
	require.Len(t, repo.stored, 1)
}

func TestWeightLatestWithoutSamplesIsNil(t *testing.T) {
	svc := newWeightFixture(&mockWeightRepo{})

	sample, err := svc.Latest(context.Background(), coachActor("gym-1"), "Ali Said")
	require.NoError(t, err)
	assert.Nil(t, sample)
}

func TestWeightProgressAggregates(t *testing.T) {
	repo := &mockWeightRepo{days: []models.Weight{
		weightOn("2026-03-01", 73.0),
		weightOn("2026-03-02", 72.2),
		weightOn("2026-03-03", 71.4),
	}}
	svc := newWeightFixture(repo)

	progress, err := svc.Progress(context.Background(), coachActor("gym-1"), "Ali Said", "")
	require.NoError(t, err)
	require.Len(t, progress.Days, 3)
	assert.Equal(t, 71.4, *progress.Min)
	assert.Equal(t, 73.0, *progress.Max)
	assert.Equal(t, 72.2, *progress.Avg)
	assert.Equal(t, -1.6, *progress.Delta)
	assert.Nil(t, progress.AboveFW)
}

func TestWeightProgressCountsDaysAboveThreshold(t *testing.T) {
	repo := &mockWeightRepo{days: []models.Weight{
		weightOn("2026-03-01", 73.0),
		weightOn("2026-03-02", 72.2),
		weightOn("2026-03-03", 71.4),
	}}
	svc := newWeightFixture(repo)

	progress, err := svc.Progress(context.Background(), coachActor("gym-1"), "Ali Said", "72")
	require.NoError(t, err)
	require.NotNil(t, progress.AboveFW)
	assert.Equal(t, 2, *progress.AboveFW)
}

func TestWeightProgressRejectsBadThreshold(t *testing.T) {
	svc := newWeightFixture(&mockWeightRepo{})

	for _, raw := range []string{"abc", "-3", "0"} {
		_, err := svc.Progress(context.Background(), coachActor("gym-1"), "Ali Said", raw)
		require.Error(t, err, raw)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestWeightProgressEmptyHistory(t *testing.T) {
	svc := newWeightFixture(&mockWeightRepo{})

	progress, err := svc.Progress(context.Background(), coachActor("gym-1"), "Ali Said", "")
	require.NoError(t, err)
	assert.Empty(t, progress.Days)
	assert.Nil(t, progress.Min)
	assert.Nil(t, progress.Delta)
}
