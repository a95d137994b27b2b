package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ringside/boxclub-api/internal/models"
)

// BoxerRepository handles the boxer roster and its access-grant joins.
type BoxerRepository struct {
	db *sqlx.DB
}

// NewBoxerRepository constructs the repository.
func NewBoxerRepository(db *sqlx.DB) *BoxerRepository {
	return &BoxerRepository{db: db}
}

const boxerColumns = `id, public_id, first_name, last_name, display_name, parent_name, date_of_birth, gym_id, created_at, updated_at`

// Create inserts a boxer. The public id is assigned here when absent.
func (r *BoxerRepository) Create(ctx context.Context, boxer *models.Boxer) error {
	now := time.Now().UTC()
	if boxer.ID == "" {
		boxer.ID = uuid.NewString()
	}
	if boxer.PublicID == "" {
		boxer.PublicID = uuid.NewString()
	}
	if boxer.DisplayName == "" {
		boxer.DisplayName = strings.TrimSpace(boxer.FirstName + " " + boxer.LastName)
	}
	boxer.CreatedAt = now
	boxer.UpdatedAt = now
	query := `INSERT INTO boxers (id, public_id, first_name, last_name, display_name, parent_name, date_of_birth, gym_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		boxer.ID, boxer.PublicID, boxer.FirstName, boxer.LastName, boxer.DisplayName,
		boxer.ParentName, boxer.DateOfBirth, boxer.GymID, boxer.CreatedAt, boxer.UpdatedAt); err != nil {
		return fmt.Errorf("create boxer: %w", err)
	}
	return nil
}

// FindByID returns a boxer by row id, or sql.ErrNoRows.
func (r *BoxerRepository) FindByID(ctx context.Context, id string) (*models.Boxer, error) {
	var row models.Boxer
	query := fmt.Sprintf(`SELECT %s FROM boxers WHERE id = $1`, boxerColumns)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByPublicID returns a boxer by the externally shared identifier.
func (r *BoxerRepository) FindByPublicID(ctx context.Context, publicID string) (*models.Boxer, error) {
	var row models.Boxer
	query := fmt.Sprintf(`SELECT %s FROM boxers WHERE public_id = $1`, boxerColumns)
	if err := r.db.GetContext(ctx, &row, query, publicID); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByName matches the combined display name case-insensitively within a
// visible id set. More than one match is the caller's ambiguity case.
func (r *BoxerRepository) FindByName(ctx context.Context, name string, visibleIDs []string) ([]models.Boxer, error) {
	if len(visibleIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT %s FROM boxers WHERE LOWER(display_name) = LOWER(?) AND id IN (?) LIMIT 2`, boxerColumns),
		name, visibleIDs)
	if err != nil {
		return nil, fmt.Errorf("build name lookup: %w", err)
	}
	var rows []models.Boxer
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find boxer by name: %w", err)
	}
	return rows, nil
}

// List returns boxers within the visible id set matching the filter. Every
// search term must match first, last or parent name.
func (r *BoxerRepository) List(ctx context.Context, filter models.BoxerFilter, visibleIDs []string) ([]models.BoxerDetail, int, error) {
	if len(visibleIDs) == 0 {
		return nil, 0, nil
	}
	where := []string{}
	args := []interface{}{}

	inClause, inArgs, err := sqlx.In("b.id IN (?)", visibleIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("build boxer filter: %w", err)
	}
	where = append(where, inClause)
	args = append(args, inArgs...)

	for _, term := range strings.Fields(filter.Search) {
		where = append(where, "(b.first_name ILIKE ? OR b.last_name ILIKE ? OR b.parent_name ILIKE ? OR b.display_name ILIKE ?)")
		needle := "%" + term + "%"
		args = append(args, needle, needle, needle, needle)
	}

	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 25
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT b.id, b.public_id, b.first_name, b.last_name, b.display_name, b.parent_name,
  b.date_of_birth, b.gym_id, b.created_at, b.updated_at, g.name AS gym_name
FROM boxers b
JOIN gyms g ON g.id = b.gym_id
WHERE %s
ORDER BY b.first_name, b.last_name
LIMIT %d OFFSET %d`, whereClause, size, offset)

	var rows []models.BoxerDetail
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list boxers: %w", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM boxers b WHERE %s`, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(countQuery), args...); err != nil {
		return nil, 0, fmt.Errorf("count boxers: %w", err)
	}
	return rows, total, nil
}

// Delete removes a boxer row.
func (r *BoxerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM boxers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete boxer: %w", err)
	}
	return nil
}

// AddCoach grants a coaching user access to the boxer; repeat grants are
// no-ops.
func (r *BoxerRepository) AddCoach(ctx context.Context, boxerID, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO boxer_coaches (boxer_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		boxerID, userID); err != nil {
		return fmt.Errorf("add boxer coach: %w", err)
	}
	return nil
}

// ShareWithGym shares the boxer with another gym; repeat shares are no-ops.
func (r *BoxerRepository) ShareWithGym(ctx context.Context, boxerID, gymID string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO boxer_shared_gyms (boxer_id, gym_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		boxerID, gymID); err != nil {
		return fmt.Errorf("share boxer with gym: %w", err)
	}
	return nil
}

// AllIDs returns every boxer id (admin scope).
func (r *BoxerRepository) AllIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM boxers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("all boxer ids: %w", err)
	}
	return ids, nil
}

// IDsVisibleToCoach returns the union of home-gym, shared-gym and
// explicitly-coached boxer ids for a coach with a home gym.
func (r *BoxerRepository) IDsVisibleToCoach(ctx context.Context, gymID, userID string) ([]string, error) {
	query := `SELECT DISTINCT b.id FROM boxers b
LEFT JOIN boxer_shared_gyms sg ON sg.boxer_id = b.id
LEFT JOIN boxer_coaches bc ON bc.boxer_id = b.id
WHERE b.gym_id = $1 OR sg.gym_id = $1 OR bc.user_id = $2
ORDER BY b.id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, gymID, userID); err != nil {
		return nil, fmt.Errorf("coach-visible boxer ids: %w", err)
	}
	return ids, nil
}

// IDsCoachedBy returns boxer ids where the user is an explicit coach.
func (r *BoxerRepository) IDsCoachedBy(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT boxer_id FROM boxer_coaches WHERE user_id = $1 ORDER BY boxer_id`, userID); err != nil {
		return nil, fmt.Errorf("coached boxer ids: %w", err)
	}
	return ids, nil
}

// ExistsInGym checks for an existing boxer with the same display name inside
// one gym; used by the bulk importer's disambiguation rules.
func (r *BoxerRepository) ExistsInGym(ctx context.Context, gymID, displayName, parentName string, dob *time.Time) (sameName, sameParent, sameDOB bool, err error) {
	query := `SELECT
  COUNT(*) AS same_name,
  COUNT(*) FILTER (WHERE LOWER(parent_name) = LOWER($3) AND $3 <> '') AS same_parent,
  COUNT(*) FILTER (WHERE date_of_birth = $4 AND $4 IS NOT NULL) AS same_dob
FROM boxers
WHERE gym_id = $1 AND (LOWER(display_name) = LOWER($2) OR LOWER(display_name) LIKE LOWER($2) || ' %')`
	row := struct {
		SameName   int `db:"same_name"`
		SameParent int `db:"same_parent"`
		SameDOB    int `db:"same_dob"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, gymID, displayName, parentName, dob); err != nil {
		return false, false, false, fmt.Errorf("check existing boxers: %w", err)
	}
	return row.SameName > 0, row.SameParent > 0, row.SameDOB > 0, nil
}
