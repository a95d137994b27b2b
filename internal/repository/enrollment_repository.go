package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ringside/boxclub-api/internal/models"
)

// EnrollmentRepository maintains the boxer/class roster join.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll creates the (class, boxer) pair if absent. Returns the stored row
// and whether a new row was created; re-enrolling an existing pair is a
// no-op.
func (r *EnrollmentRepository) Enroll(ctx context.Context, classID, boxerID string) (*models.Enrollment, bool, error) {
	now := time.Now().UTC()
	insert := `INSERT INTO enrollments (id, class_id, boxer_id, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (class_id, boxer_id) DO NOTHING
RETURNING id, class_id, boxer_id, created_at`
	var row models.Enrollment
	err := r.db.GetContext(ctx, &row, insert, uuid.NewString(), classID, boxerID, now)
	if err == nil {
		return &row, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("enroll boxer: %w", err)
	}
	// Pair already present; fetch it.
	query := `SELECT id, class_id, boxer_id, created_at FROM enrollments WHERE class_id = $1 AND boxer_id = $2`
	if err := r.db.GetContext(ctx, &row, query, classID, boxerID); err != nil {
		return nil, false, fmt.Errorf("load enrollment: %w", err)
	}
	return &row, false, nil
}

// Unenroll deletes the pair. Absence of a matching row is not an error.
func (r *EnrollmentRepository) Unenroll(ctx context.Context, classID, boxerID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE class_id = $1 AND boxer_id = $2`,
		classID, boxerID); err != nil {
		return fmt.Errorf("unenroll boxer: %w", err)
	}
	return nil
}

// Roster lists the boxers enrolled in a class.
func (r *EnrollmentRepository) Roster(ctx context.Context, classID string) ([]models.RosterEntry, error) {
	query := `SELECT e.id AS enrollment_id, b.id AS boxer_id, b.first_name, b.last_name, b.display_name
FROM enrollments e
JOIN boxers b ON b.id = e.boxer_id
WHERE e.class_id = $1
ORDER BY b.first_name, b.last_name`
	var rows []models.RosterEntry
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("class roster: %w", err)
	}
	return rows, nil
}

// CountByClass returns the number of active enrollments for a class.
func (r *EnrollmentRepository) CountByClass(ctx context.Context, classID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM enrollments WHERE class_id = $1`, classID); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}

// ClassesForBoxer returns the class templates the boxer is enrolled in.
func (r *EnrollmentRepository) ClassesForBoxer(ctx context.Context, boxerID string) ([]models.ClassTemplate, error) {
	query := `SELECT ct.id, ct.gym_id, ct.title, ct.description, ct.recurrence,
  ct.start_hour, ct.start_minute, ct.duration_minutes, ct.created_at, ct.updated_at
FROM class_templates ct
JOIN enrollments e ON e.class_id = ct.id
WHERE e.boxer_id = $1
ORDER BY ct.title`
	var rows []models.ClassTemplate
	if err := r.db.SelectContext(ctx, &rows, query, boxerID); err != nil {
		return nil, fmt.Errorf("classes for boxer: %w", err)
	}
	return rows, nil
}
