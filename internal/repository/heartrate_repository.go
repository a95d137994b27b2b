package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ringside/boxclub-api/internal/models"
)

// HeartRateRepository stores resting heart rate samples.
type HeartRateRepository struct {
	db *sqlx.DB
}

// NewHeartRateRepository constructs the repository.
func NewHeartRateRepository(db *sqlx.DB) *HeartRateRepository {
	return &HeartRateRepository{db: db}
}

// Create inserts a sample.
func (r *HeartRateRepository) Create(ctx context.Context, sample *models.HeartRate) error {
	if sample.ID == "" {
		sample.ID = uuid.NewString()
	}
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO heart_rates (id, boxer_id, bpm, notes, measured_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		sample.ID, sample.BoxerID, sample.Bpm, sample.Notes, sample.MeasuredAt, sample.CreatedAt); err != nil {
		return fmt.Errorf("create heart rate: %w", err)
	}
	return nil
}

// ListByBoxer returns a boxer's samples, newest first.
func (r *HeartRateRepository) ListByBoxer(ctx context.Context, boxerID string) ([]models.HeartRate, error) {
	samples := []models.HeartRate{}
	query := `SELECT id, boxer_id, bpm, notes, measured_at, created_at
FROM heart_rates WHERE boxer_id = $1 ORDER BY measured_at DESC`
	if err := r.db.SelectContext(ctx, &samples, query, boxerID); err != nil {
		return nil, fmt.Errorf("list heart rates: %w", err)
	}
	return samples, nil
}

// LatestPerBoxer returns the most recent sample for each of the given boxers.
func (r *HeartRateRepository) LatestPerBoxer(ctx context.Context, boxerIDs []string) ([]models.HeartRateLatest, error) {
	latest := []models.HeartRateLatest{}
	if len(boxerIDs) == 0 {
		return latest, nil
	}
	query, args, err := sqlx.In(`SELECT DISTINCT ON (hr.boxer_id)
	hr.boxer_id, b.display_name AS boxer_name, hr.bpm, hr.measured_at
FROM heart_rates hr
JOIN boxers b ON b.id = hr.boxer_id
WHERE hr.boxer_id IN (?)
ORDER BY hr.boxer_id, hr.measured_at DESC`, boxerIDs)
	if err != nil {
		return nil, fmt.Errorf("latest heart rates: %w", err)
	}
	query = r.db.Rebind(query)
	if err := r.db.SelectContext(ctx, &latest, query, args...); err != nil {
		return nil, fmt.Errorf("latest heart rates: %w", err)
	}
	return latest, nil
}
