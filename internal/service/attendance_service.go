package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error)
	Get(ctx context.Context, boxerID, classID string, date time.Time) (*models.Attendance, error)
	Delete(ctx context.Context, boxerID, classID string, date time.Time) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	UnmarkedEnrolled(ctx context.Context, classID string, date time.Time) ([]string, error)
	InsertAbsent(ctx context.Context, classID string, date time.Time, boxerIDs []string) (int, error)
	Summary(ctx context.Context, boxerID string) (*models.AttendanceSummary, error)
}

type attendanceWeightRepository interface {
	Upsert(ctx context.Context, sample *models.Weight) (*models.Weight, error)
	DeleteDay(ctx context.Context, boxerID string, dayStart, dayEnd time.Time) error
}

type attendanceClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.ClassTemplate, error)
	FindByIDInGym(ctx context.Context, id, gymID string) (*models.ClassTemplate, error)
}

type boxerScope interface {
	VisibleBoxerIDs(ctx context.Context, actor *models.User) ([]string, error)
	RequireBoxer(ctx context.Context, actor *models.User, boxerID string) (*models.Boxer, error)
	RequireWriter(actor *models.User) error
}

// AttendanceConfig tunes the reconciler. Weight samples written through the
// attendance flow are pinned to WeightHour:WeightMinute on the mark's date
// so that two same-day saves collide on the weights unique key.
type AttendanceConfig struct {
	WeightHour   int
	WeightMinute int
	CacheEnabled bool
	CacheTTL     time.Duration
}

// AttendanceService reconciles attendance marks and the weight samples that
// ride along with them.
type AttendanceService struct {
	repo      attendanceRepository
	weights   attendanceWeightRepository
	classes   attendanceClassRepository
	scope     boxerScope
	cache     *redis.Client
	validator *validator.Validate
	logger    *zap.Logger
	config    AttendanceConfig
}

// NewAttendanceService constructs the attendance service. The cache client
// may be nil; summaries are then always computed from the database.
func NewAttendanceService(repo attendanceRepository, weights attendanceWeightRepository, classes attendanceClassRepository, scope boxerScope, cache *redis.Client, validate *validator.Validate, logger *zap.Logger, config AttendanceConfig) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, weights: weights, classes: classes, scope: scope, cache: cache, validator: validate, logger: logger, config: config}
}

// MarkAttendanceRequest saves one boxer's state for one class and date.
// Status may be empty: a save carrying a weight but no status still counts
// as present, and a save carrying neither clears the existing mark.
type MarkAttendanceRequest struct {
	BoxerID string `json:"boxer_id" validate:"required"`
	ClassID string `json:"class_id" validate:"required"`
	Date    string `json:"date" validate:"required"`
	Status  string `json:"status"`
	Weight  string `json:"weight"`
}

// BatchAttendanceItem is one row of a per-class attendance form.
type BatchAttendanceItem struct {
	BoxerID string `json:"boxer_id" validate:"required"`
	Status  string `json:"status"`
	Weight  string `json:"weight"`
}

// BatchAttendanceRequest saves a whole class form for one date.
type BatchAttendanceRequest struct {
	ClassID string                `json:"class_id" validate:"required"`
	Date    string                `json:"date" validate:"required"`
	Items   []BatchAttendanceItem `json:"items" validate:"required,min=1,dive"`
}

// BatchAttendanceResult reports a batch save. Valid rows commit even when
// others are rejected.
type BatchAttendanceResult struct {
	Saved   int                        `json:"saved"`
	Cleared int                        `json:"cleared"`
	Errors  []models.BulkBoxerRowError `json:"errors,omitempty"`
}

// AttendanceListRequest filters the attendance listing.
type AttendanceListRequest struct {
	BoxerID  string
	ClassID  string
	Date     *time.Time
	DateFrom *time.Time
	DateTo   *time.Time
	Present  *bool
	Search   string
	Page     int
	PageSize int
}

// Mark reconciles one (boxer, class, date) key to the requested state. The
// transitions are upserts, so marking over an existing row updates it and
// never surfaces a uniqueness conflict.
func (s *AttendanceService) Mark(ctx context.Context, actor *models.User, req MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.scope.RequireWriter(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	if _, err := s.scope.RequireBoxer(ctx, actor, req.BoxerID); err != nil {
		return nil, err
	}
	if err := requireClassInScope(ctx, s.classes, actor, req.ClassID); err != nil {
		return nil, err
	}

	stored, err := s.reconcile(ctx, req.BoxerID, req.ClassID, date, req.Status, req.Weight)
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx, req.BoxerID)
	return stored, nil
}

// BatchMark saves a per-class form. Each row is validated on its own; a bad
// row is reported and skipped while the rest of the form commits.
func (s *AttendanceService) BatchMark(ctx context.Context, actor *models.User, req BatchAttendanceRequest) (*BatchAttendanceResult, error) {
	if err := s.scope.RequireWriter(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	if err := requireClassInScope(ctx, s.classes, actor, req.ClassID); err != nil {
		return nil, err
	}
	visible, err := s.scope.VisibleBoxerIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	visibleSet := make(map[string]struct{}, len(visible))
	for _, id := range visible {
		visibleSet[id] = struct{}{}
	}

	result := &BatchAttendanceResult{}
	for i, item := range req.Items {
		if _, ok := visibleSet[item.BoxerID]; !ok {
			result.Errors = append(result.Errors, models.BulkBoxerRowError{Index: i, Field: "boxer_id", Message: "boxer not found"})
			continue
		}
		if item.Status != "" && !models.AttendanceStatus(strings.ToLower(item.Status)).Valid() {
			result.Errors = append(result.Errors, models.BulkBoxerRowError{Index: i, Field: "status", Message: "unknown status"})
			continue
		}
		stored, err := s.reconcile(ctx, item.BoxerID, req.ClassID, date, item.Status, item.Weight)
		if err != nil {
			result.Errors = append(result.Errors, models.BulkBoxerRowError{Index: i, Message: appErrors.FromError(err).Message})
			continue
		}
		if stored == nil {
			result.Cleared++
		} else {
			result.Saved++
		}
		s.invalidateSummary(ctx, item.BoxerID)
	}
	return result, nil
}

// SweepAbsent marks every enrolled, still-unmarked boxer absent for a class
// and date. Boxers who already carry a mark are never touched, so the sweep
// is safe to run repeatedly.
func (s *AttendanceService) SweepAbsent(ctx context.Context, actor *models.User, classID, dateRaw string) (*models.SweepResult, error) {
	if err := s.scope.RequireWriter(actor); err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	if err := requireClassInScope(ctx, s.classes, actor, classID); err != nil {
		return nil, err
	}

	unmarked, err := s.repo.UnmarkedEnrolled(ctx, classID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find unmarked boxers")
	}
	created, err := s.repo.InsertAbsent(ctx, classID, date, unmarked)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sweep absents")
	}
	for _, id := range unmarked {
		s.invalidateSummary(ctx, id)
	}
	return &models.SweepResult{
		ClassID: classID,
		Date:    date.Format("2006-01-02"),
		Swept:   created,
		Skipped: len(unmarked) - created,
	}, nil
}

// List returns attendance rows inside the actor's scope.
func (s *AttendanceService) List(ctx context.Context, actor *models.User, req AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error) {
	visible, err := s.scope.VisibleBoxerIDs(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	if req.BoxerID != "" {
		if !contains(visible, req.BoxerID) {
			return nil, nil, appErrors.ErrNotFound
		}
		visible = []string{req.BoxerID}
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}
	filter := models.AttendanceFilter{
		BoxerIDs: visible,
		ClassID:  req.ClassID,
		Date:     req.Date,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Present:  req.Present,
		Search:   req.Search,
		Page:     page,
		PageSize: size,
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Summary aggregates one boxer's attendance counts and zero-guarded
// percentages, optionally served from cache.
func (s *AttendanceService) Summary(ctx context.Context, actor *models.User, boxerID string) (*models.AttendanceSummary, error) {
	if _, err := s.scope.RequireBoxer(ctx, actor, boxerID); err != nil {
		return nil, err
	}
	key := summaryCacheKey(boxerID)
	if s.cacheEnabled() {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			var cached models.AttendanceSummary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}
	summary, err := s.repo.Summary(ctx, boxerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute summary")
	}
	summary.PresentPct = roundPct(summary.Present, summary.Total)
	summary.AbsentPct = roundPct(summary.Absent, summary.Total)
	summary.ExcusedPct = roundPct(summary.Excused, summary.Absent)
	if s.cacheEnabled() {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.config.CacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache summary", zap.Error(err))
			}
		}
	}
	return summary, nil
}

// reconcile applies one save to the (boxer, class, date) key. It returns
// the stored row, or nil when the save cleared the mark.
func (s *AttendanceService) reconcile(ctx context.Context, boxerID, classID string, date time.Time, statusRaw, weightRaw string) (*models.Attendance, error) {
	statusRaw = strings.ToLower(strings.TrimSpace(statusRaw))
	weightRaw = strings.TrimSpace(weightRaw)

	// Presence is decided by whether a weight was entered at all; whether it
	// parses only gates the weight cross-write.
	hasWeightInput := weightRaw != ""
	weight, weightOK := parseWeight(weightRaw)

	// A save with neither status nor a weight entry clears the mark.
	if statusRaw == "" && !hasWeightInput {
		if err := s.repo.Delete(ctx, boxerID, classID, date); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance")
		}
		return nil, nil
	}

	status := models.AttendanceStatus(statusRaw)
	if statusRaw == "" {
		// Weight with no explicit status implies presence.
		status = models.AttendanceStatusPresent
	}
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}

	record := &models.Attendance{
		BoxerID:   boxerID,
		ClassID:   classID,
		Date:      date,
		IsPresent: status == models.AttendanceStatusPresent,
		IsExcused: status == models.AttendanceStatusExcused,
	}
	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	if stored.IsPresent {
		if weightOK {
			measuredAt := time.Date(date.Year(), date.Month(), date.Day(), s.config.WeightHour, s.config.WeightMinute, 0, 0, time.UTC)
			sample := &models.Weight{BoxerID: boxerID, MeasuredAt: measuredAt, Kg: weight}
			if _, err := s.weights.Upsert(ctx, sample); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save weight")
			}
		}
	} else {
		// An explicit absence retracts the day's weight sample.
		if err := s.weights.DeleteDay(ctx, boxerID, dayStart, dayEnd); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to retract weight")
		}
	}
	return stored, nil
}

// requireClassInScope checks the class exists and, for a coach with a home
// gym, belongs to it. Out-of-gym classes look exactly like missing ones.
func requireClassInScope(ctx context.Context, classes attendanceClassRepository, actor *models.User, classID string) error {
	var err error
	if actor.Role == models.RoleCoach && actor.GymID != nil && *actor.GymID != "" {
		_, err = classes.FindByIDInGym(ctx, classID, *actor.GymID)
	} else {
		_, err = classes.FindByID(ctx, classID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return nil
}

func (s *AttendanceService) cacheEnabled() bool {
	return s.cache != nil && s.config.CacheEnabled
}

func (s *AttendanceService) invalidateSummary(ctx context.Context, boxerID string) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Del(ctx, summaryCacheKey(boxerID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.Error(err))
	}
}

func summaryCacheKey(boxerID string) string {
	return fmt.Sprintf("attendance:summary:%s", boxerID)
}

// parseWeight interprets the raw weight field. Unparseable or non-positive
// input is discarded without failing the save.
func parseWeight(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	kg, err := strconv.ParseFloat(raw, 64)
	if err != nil || kg <= 0 {
		return 0, false
	}
	return kg, true
}
