package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ringside/boxclub-api/internal/models"
)

// WeightRepository handles body-weight samples.
type WeightRepository struct {
	db *sqlx.DB
}

// NewWeightRepository constructs the repository.
func NewWeightRepository(db *sqlx.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// Upsert inserts a sample or replaces the one already recorded at the exact
// same timestamp. Attendance-flow writes pin the time-of-day, so this gives
// last-write-wins per calendar day for that flow.
func (r *WeightRepository) Upsert(ctx context.Context, sample *models.Weight) (*models.Weight, error) {
	now := time.Now().UTC()
	if sample.ID == "" {
		sample.ID = uuid.NewString()
	}
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = now
	}
	sample.UpdatedAt = now
	query := `INSERT INTO weights (id, boxer_id, measured_at, kg, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (boxer_id, measured_at)
DO UPDATE SET kg = EXCLUDED.kg, updated_at = EXCLUDED.updated_at
RETURNING id, boxer_id, measured_at, kg, created_at, updated_at`
	var stored models.Weight
	if err := r.db.GetContext(ctx, &stored, query,
		sample.ID, sample.BoxerID, sample.MeasuredAt, sample.Kg, sample.CreatedAt, sample.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert weight: %w", err)
	}
	return &stored, nil
}

// DeleteDay removes every sample for the boxer within [dayStart, dayEnd).
func (r *WeightRepository) DeleteDay(ctx context.Context, boxerID string, dayStart, dayEnd time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM weights WHERE boxer_id = $1 AND measured_at >= $2 AND measured_at < $3`,
		boxerID, dayStart, dayEnd); err != nil {
		return fmt.Errorf("delete day weights: %w", err)
	}
	return nil
}

// Latest returns the most recent sample, or sql.ErrNoRows.
func (r *WeightRepository) Latest(ctx context.Context, boxerID string) (*models.Weight, error) {
	query := `SELECT id, boxer_id, measured_at, kg, created_at, updated_at
FROM weights WHERE boxer_id = $1 ORDER BY measured_at DESC LIMIT 1`
	var row models.Weight
	if err := r.db.GetContext(ctx, &row, query, boxerID); err != nil {
		return nil, err
	}
	return &row, nil
}

// DaysForBoxer returns the last sample of each calendar day, oldest first.
func (r *WeightRepository) DaysForBoxer(ctx context.Context, boxerID string) ([]models.Weight, error) {
	query := `SELECT DISTINCT ON (measured_at::date) id, boxer_id, measured_at, kg, created_at, updated_at
FROM weights WHERE boxer_id = $1
ORDER BY measured_at::date, measured_at DESC`
	var rows []models.Weight
	if err := r.db.SelectContext(ctx, &rows, query, boxerID); err != nil {
		return nil, fmt.Errorf("weight days: %w", err)
	}
	return rows, nil
}
