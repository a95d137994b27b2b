package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ringside/boxclub-api/internal/models"
)

// BatteryRepository handles fitness test definitions and recorded results.
type BatteryRepository struct {
	db *sqlx.DB
}

// NewBatteryRepository constructs the repository.
func NewBatteryRepository(db *sqlx.DB) *BatteryRepository {
	return &BatteryRepository{db: db}
}

// CreateTest inserts a test definition. The (coach_id, name) unique
// constraint keeps test names unambiguous per coach.
func (r *BatteryRepository) CreateTest(ctx context.Context, test *models.BatteryTest) error {
	if test.ID == "" {
		test.ID = uuid.NewString()
	}
	test.CreatedAt = time.Now().UTC()
	query := `INSERT INTO battery_tests (id, coach_id, name, unit, description, display_order, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		test.ID, test.CoachID, test.Name, test.Unit, test.Description, test.DisplayOrder, test.CreatedAt); err != nil {
		return fmt.Errorf("create battery test: %w", err)
	}
	return nil
}

// FindTestByID returns one test definition, or sql.ErrNoRows.
func (r *BatteryRepository) FindTestByID(ctx context.Context, id string) (*models.BatteryTest, error) {
	var test models.BatteryTest
	query := `SELECT id, coach_id, name, unit, description, display_order, created_at FROM battery_tests WHERE id = $1`
	if err := r.db.GetContext(ctx, &test, query, id); err != nil {
		return nil, err
	}
	return &test, nil
}

// ListTests returns test definitions. Passing a coach id restricts the list
// to tests that coach owns plus the shared ones with no owner.
func (r *BatteryRepository) ListTests(ctx context.Context, coachID *string) ([]models.BatteryTest, error) {
	tests := []models.BatteryTest{}
	if coachID == nil {
		query := `SELECT id, coach_id, name, unit, description, display_order, created_at
FROM battery_tests ORDER BY display_order, name`
		if err := r.db.SelectContext(ctx, &tests, query); err != nil {
			return nil, fmt.Errorf("list battery tests: %w", err)
		}
		return tests, nil
	}
	query := `SELECT id, coach_id, name, unit, description, display_order, created_at
FROM battery_tests WHERE coach_id = $1 OR coach_id IS NULL ORDER BY display_order, name`
	if err := r.db.SelectContext(ctx, &tests, query, *coachID); err != nil {
		return nil, fmt.Errorf("list battery tests: %w", err)
	}
	return tests, nil
}

// DeleteTest removes a test definition and cascades to its results.
func (r *BatteryRepository) DeleteTest(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM battery_tests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete battery test: %w", err)
	}
	return nil
}

// UpsertResult writes the result sheet for one boxer, test and phase. A
// repeat write for the same key replaces the three value slots rather than
// stacking a new row.
func (r *BatteryRepository) UpsertResult(ctx context.Context, result *models.TestResult) error {
	now := time.Now().UTC()
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	query := `INSERT INTO test_results (id, boxer_id, test_id, phase, value1, value2, value3, notes, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (boxer_id, test_id, phase)
DO UPDATE SET value1 = EXCLUDED.value1, value2 = EXCLUDED.value2, value3 = EXCLUDED.value3,
	notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
RETURNING id, updated_at`
	row := r.db.QueryRowContext(ctx, query,
		result.ID, result.BoxerID, result.TestID, result.Phase,
		result.Value1, result.Value2, result.Value3, result.Notes, now)
	if err := row.Scan(&result.ID, &result.UpdatedAt); err != nil {
		return fmt.Errorf("upsert test result: %w", err)
	}
	return nil
}

// GetResult returns the sheet for one boxer, test and phase, or sql.ErrNoRows.
func (r *BatteryRepository) GetResult(ctx context.Context, boxerID, testID string, phase models.Phase) (*models.TestResult, error) {
	var result models.TestResult
	query := `SELECT id, boxer_id, test_id, phase, value1, value2, value3, notes, updated_at
FROM test_results WHERE boxer_id = $1 AND test_id = $2 AND phase = $3`
	if err := r.db.GetContext(ctx, &result, query, boxerID, testID, phase); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResultsForBoxer returns all of a boxer's sheets for one test across phases.
func (r *BatteryRepository) ResultsForBoxer(ctx context.Context, boxerID, testID string) ([]models.TestResult, error) {
	results := []models.TestResult{}
	query := `SELECT id, boxer_id, test_id, phase, value1, value2, value3, notes, updated_at
FROM test_results WHERE boxer_id = $1 AND test_id = $2`
	if err := r.db.SelectContext(ctx, &results, query, boxerID, testID); err != nil {
		return nil, fmt.Errorf("results for boxer: %w", err)
	}
	return results, nil
}

// ResultsByTest returns every sheet recorded for a test, restricted to the
// given boxer ids. Rankings are computed from this set in the service layer.
func (r *BatteryRepository) ResultsByTest(ctx context.Context, testID string, boxerIDs []string) ([]models.TestResult, error) {
	results := []models.TestResult{}
	if len(boxerIDs) == 0 {
		return results, nil
	}
	query, args, err := sqlx.In(`SELECT id, boxer_id, test_id, phase, value1, value2, value3, notes, updated_at
FROM test_results WHERE test_id = ? AND boxer_id IN (?)`, testID, boxerIDs)
	if err != nil {
		return nil, fmt.Errorf("results by test: %w", err)
	}
	query = r.db.Rebind(query)
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("results by test: %w", err)
	}
	return results, nil
}

// DeleteResult removes one sheet. A missing row is not an error.
func (r *BatteryRepository) DeleteResult(ctx context.Context, boxerID, testID string, phase models.Phase) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM test_results WHERE boxer_id = $1 AND test_id = $2 AND phase = $3`,
		boxerID, testID, phase); err != nil {
		return fmt.Errorf("delete test result: %w", err)
	}
	return nil
}
