package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ringside/boxclub-api/internal/models"
)

// ClassRepository handles recurring class templates.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `id, gym_id, title, description, recurrence, start_hour, start_minute, duration_minutes, created_at, updated_at`

// Create inserts a class template.
func (r *ClassRepository) Create(ctx context.Context, class *models.ClassTemplate) error {
	now := time.Now().UTC()
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	class.CreatedAt = now
	class.UpdatedAt = now
	query := `INSERT INTO class_templates (id, gym_id, title, description, recurrence, start_hour, start_minute, duration_minutes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		class.ID, class.GymID, class.Title, class.Description, class.Recurrence,
		class.StartHour, class.StartMinute, class.DurationMinutes, class.CreatedAt, class.UpdatedAt); err != nil {
		return fmt.Errorf("create class template: %w", err)
	}
	return nil
}

// FindByID returns a class template, or sql.ErrNoRows.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ClassTemplate, error) {
	var row models.ClassTemplate
	query := fmt.Sprintf(`SELECT %s FROM class_templates WHERE id = $1`, classColumns)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByIDInGym returns the class only when it belongs to the gym; an
// out-of-gym id behaves exactly like a missing one.
func (r *ClassRepository) FindByIDInGym(ctx context.Context, id, gymID string) (*models.ClassTemplate, error) {
	var row models.ClassTemplate
	query := fmt.Sprintf(`SELECT %s FROM class_templates WHERE id = $1 AND gym_id = $2`, classColumns)
	if err := r.db.GetContext(ctx, &row, query, id, gymID); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByGym returns a gym's class templates ordered by title.
func (r *ClassRepository) ListByGym(ctx context.Context, gymID string) ([]models.ClassTemplate, error) {
	var rows []models.ClassTemplate
	query := fmt.Sprintf(`SELECT %s FROM class_templates WHERE gym_id = $1 ORDER BY title`, classColumns)
	if err := r.db.SelectContext(ctx, &rows, query, gymID); err != nil {
		return nil, fmt.Errorf("list class templates: %w", err)
	}
	return rows, nil
}

// AddCoach attaches a coaching user to the class; repeats are no-ops.
func (r *ClassRepository) AddCoach(ctx context.Context, classID, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO class_coaches (class_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		classID, userID); err != nil {
		return fmt.Errorf("add class coach: %w", err)
	}
	return nil
}

// Delete removes a class template.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM class_templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class template: %w", err)
	}
	return nil
}
