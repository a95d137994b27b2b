package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ringside/boxclub-api/internal/models"
)

// GymRepository handles gym tenancy roots.
type GymRepository struct {
	db *sqlx.DB
}

// NewGymRepository constructs the repository.
func NewGymRepository(db *sqlx.DB) *GymRepository {
	return &GymRepository{db: db}
}

// Create inserts a gym.
func (r *GymRepository) Create(ctx context.Context, gym *models.Gym) error {
	now := time.Now().UTC()
	if gym.ID == "" {
		gym.ID = uuid.NewString()
	}
	gym.CreatedAt = now
	gym.UpdatedAt = now
	query := `INSERT INTO gyms (id, name, location, timezone, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		gym.ID, gym.Name, gym.Location, gym.Timezone, gym.CreatedAt, gym.UpdatedAt); err != nil {
		return fmt.Errorf("create gym: %w", err)
	}
	return nil
}

// GetOrCreateByName returns the gym with the given name, creating it when
// missing. The insert tolerates a concurrent creation of the same name.
func (r *GymRepository) GetOrCreateByName(ctx context.Context, name, timezone string) (*models.Gym, error) {
	now := time.Now().UTC()
	insert := `INSERT INTO gyms (id, name, location, timezone, created_at, updated_at)
VALUES ($1, $2, NULL, $3, $4, $4)
ON CONFLICT (name) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), name, timezone, now); err != nil {
		return nil, fmt.Errorf("provision gym: %w", err)
	}
	var gym models.Gym
	query := `SELECT id, name, location, timezone, created_at, updated_at FROM gyms WHERE name = $1`
	if err := r.db.GetContext(ctx, &gym, query, name); err != nil {
		return nil, fmt.Errorf("load gym: %w", err)
	}
	return &gym, nil
}

// FindByID returns a gym, or sql.ErrNoRows.
func (r *GymRepository) FindByID(ctx context.Context, id string) (*models.Gym, error) {
	var gym models.Gym
	query := `SELECT id, name, location, timezone, created_at, updated_at FROM gyms WHERE id = $1`
	if err := r.db.GetContext(ctx, &gym, query, id); err != nil {
		return nil, err
	}
	return &gym, nil
}

// List returns all gyms ordered by name.
func (r *GymRepository) List(ctx context.Context) ([]models.Gym, error) {
	var gyms []models.Gym
	if err := r.db.SelectContext(ctx, &gyms,
		`SELECT id, name, location, timezone, created_at, updated_at FROM gyms ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list gyms: %w", err)
	}
	return gyms, nil
}

// CountOwned reports how many boxers and class templates still belong to the
// gym; deletion is refused while either is non-zero.
func (r *GymRepository) CountOwned(ctx context.Context, gymID string) (boxers int, classes int, err error) {
	row := struct {
		Boxers  int `db:"boxers"`
		Classes int `db:"classes"`
	}{}
	query := `SELECT
  (SELECT COUNT(*) FROM boxers WHERE gym_id = $1) AS boxers,
  (SELECT COUNT(*) FROM class_templates WHERE gym_id = $1) AS classes`
	if err := r.db.GetContext(ctx, &row, query, gymID); err != nil {
		return 0, 0, fmt.Errorf("count gym ownership: %w", err)
	}
	return row.Boxers, row.Classes, nil
}

// Delete removes a gym row.
func (r *GymRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM gyms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete gym: %w", err)
	}
	return nil
}
