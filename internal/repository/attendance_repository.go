package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ringside/boxclub-api/internal/models"
)

// AttendanceRepository handles persistence for attendance rows keyed by
// (boxer, date, class).
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts or updates the row for (boxer, date, class). The write is
// atomic with respect to the uniqueness constraint; a concurrent insert for
// the same key degrades into this writer's update (last write wins).
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := `INSERT INTO attendance (id, boxer_id, class_id, date, is_present, is_excused, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (boxer_id, class_id, date)
DO UPDATE SET is_present = EXCLUDED.is_present, is_excused = EXCLUDED.is_excused, updated_at = EXCLUDED.updated_at
RETURNING id, boxer_id, class_id, date, is_present, is_excused, created_at, updated_at`
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.BoxerID, record.ClassID, record.Date,
		record.IsPresent, record.IsExcused, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

// Get returns the row for the key, or sql.ErrNoRows.
func (r *AttendanceRepository) Get(ctx context.Context, boxerID, classID string, date time.Time) (*models.Attendance, error) {
	query := `SELECT id, boxer_id, class_id, date, is_present, is_excused, created_at, updated_at
FROM attendance WHERE boxer_id = $1 AND class_id = $2 AND date = $3`
	var row models.Attendance
	if err := r.db.GetContext(ctx, &row, query, boxerID, classID, date); err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes the row for the key; a missing row is not an error.
func (r *AttendanceRepository) Delete(ctx context.Context, boxerID, classID string, date time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM attendance WHERE boxer_id = $1 AND class_id = $2 AND date = $3`,
		boxerID, classID, date); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// List returns attendance rows matching the filter, restricted to the given
// visible boxer ids. An empty id set short-circuits to no rows.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	if len(filter.BoxerIDs) == 0 {
		return nil, 0, nil
	}
	base := `FROM attendance a
JOIN boxers b ON b.id = a.boxer_id
LEFT JOIN class_templates ct ON ct.id = a.class_id`
	where := []string{}
	args := []interface{}{}

	inClause, inArgs, err := sqlx.In("a.boxer_id IN (?)", filter.BoxerIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("build attendance filter: %w", err)
	}
	where = append(where, inClause)
	args = append(args, inArgs...)

	if filter.ClassID != "" {
		where = append(where, "a.class_id = ?")
		args = append(args, filter.ClassID)
	}
	if filter.Date != nil {
		where = append(where, "a.date = ?")
		args = append(args, *filter.Date)
	}
	if filter.DateFrom != nil {
		where = append(where, "a.date >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, "a.date <= ?")
		args = append(args, *filter.DateTo)
	}
	if filter.Present != nil {
		where = append(where, "a.is_present = ?")
		args = append(args, *filter.Present)
	}
	if filter.Search != "" {
		where = append(where, "(b.first_name ILIKE ? OR b.last_name ILIKE ?)")
		needle := "%" + filter.Search + "%"
		args = append(args, needle, needle)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.boxer_id, a.class_id, a.date, a.is_present, a.is_excused, a.created_at, a.updated_at,
        b.first_name, b.last_name, ct.title AS class_title
        %s WHERE %s
        ORDER BY a.date DESC, b.first_name, b.last_name
        LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	query = r.db.Rebind(query)

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := r.db.Rebind(fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause))
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// UnmarkedEnrolled returns the boxers enrolled in the class that have no
// attendance row for the date yet.
func (r *AttendanceRepository) UnmarkedEnrolled(ctx context.Context, classID string, date time.Time) ([]string, error) {
	query := `SELECT e.boxer_id FROM enrollments e
WHERE e.class_id = $1
  AND NOT EXISTS (
    SELECT 1 FROM attendance a
    WHERE a.boxer_id = e.boxer_id AND a.class_id = e.class_id AND a.date = $2
  )
ORDER BY e.boxer_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, classID, date); err != nil {
		return nil, fmt.Errorf("unmarked enrolled boxers: %w", err)
	}
	return ids, nil
}

// InsertAbsent writes absent rows for the given boxers, ignoring keys that
// concurrently gained a row. Returns the number of rows actually created.
func (r *AttendanceRepository) InsertAbsent(ctx context.Context, classID string, date time.Time, boxerIDs []string) (int, error) {
	if len(boxerIDs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin absent sweep: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	query := `INSERT INTO attendance (id, boxer_id, class_id, date, is_present, is_excused, created_at, updated_at)
VALUES ($1, $2, $3, $4, FALSE, FALSE, $5, $5)
ON CONFLICT (boxer_id, class_id, date) DO NOTHING RETURNING id`
	now := time.Now().UTC()
	created := 0
	for _, boxerID := range boxerIDs {
		var insertedID string
		err := tx.QueryRowxContext(ctx, query, uuid.NewString(), boxerID, classID, date, now).Scan(&insertedID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("insert absent row: %w", err)
		}
		created++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit absent sweep: %w", err)
	}
	committed = true
	return created, nil
}

// Summary aggregates status counts for one boxer.
func (r *AttendanceRepository) Summary(ctx context.Context, boxerID string) (*models.AttendanceSummary, error) {
	query := `SELECT
  COUNT(*) AS total,
  COUNT(*) FILTER (WHERE is_present) AS present,
  COUNT(*) FILTER (WHERE NOT is_present) AS absent,
  COUNT(*) FILTER (WHERE NOT is_present AND is_excused) AS excused
FROM attendance WHERE boxer_id = $1`
	row := struct {
		Total   int `db:"total"`
		Present int `db:"present"`
		Absent  int `db:"absent"`
		Excused int `db:"excused"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, boxerID); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	return &models.AttendanceSummary{
		Total:   row.Total,
		Present: row.Present,
		Absent:  row.Absent,
		Excused: row.Excused,
	}, nil
}

// HistoryForBoxer returns a boxer's rows newest first.
func (r *AttendanceRepository) HistoryForBoxer(ctx context.Context, boxerID string) ([]models.Attendance, error) {
	query := `SELECT id, boxer_id, class_id, date, is_present, is_excused, created_at, updated_at
FROM attendance WHERE boxer_id = $1 ORDER BY date DESC`
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, boxerID); err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}
	return rows, nil
}

// CountPresent counts present marks for a class on one date.
func (r *AttendanceRepository) CountPresent(ctx context.Context, classID string, date time.Time) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM attendance WHERE class_id = $1 AND date = $2 AND is_present`,
		classID, date); err != nil {
		return 0, fmt.Errorf("count present: %w", err)
	}
	return n, nil
}

// MarkedDates returns the distinct dates with attendance rows for a class in
// a window.
func (r *AttendanceRepository) MarkedDates(ctx context.Context, classID string, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates,
		`SELECT DISTINCT date FROM attendance WHERE class_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date`,
		classID, from, to); err != nil {
		return nil, fmt.Errorf("marked dates: %w", err)
	}
	return dates, nil
}
