package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type batteryRepository interface {
	CreateTest(ctx context.Context, test *models.BatteryTest) error
	FindTestByID(ctx context.Context, id string) (*models.BatteryTest, error)
	ListTests(ctx context.Context, coachID *string) ([]models.BatteryTest, error)
	DeleteTest(ctx context.Context, id string) error
	UpsertResult(ctx context.Context, result *models.TestResult) error
	GetResult(ctx context.Context, boxerID, testID string, phase models.Phase) (*models.TestResult, error)
	ResultsForBoxer(ctx context.Context, boxerID, testID string) ([]models.TestResult, error)
	ResultsByTest(ctx context.Context, testID string, boxerIDs []string) ([]models.TestResult, error)
	DeleteResult(ctx context.Context, boxerID, testID string, phase models.Phase) error
}

type performanceBoxerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Boxer, error)
}

// PerformanceService records fitness test results and derives best scores,
// phase-over-phase improvement and rankings. "Best" follows the unit: time
// units rank lower-is-better, everything else higher-is-better.
type PerformanceService struct {
	battery   batteryRepository
	boxers    performanceBoxerRepository
	scope     boxerScope
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPerformanceService constructs the performance service.
func NewPerformanceService(battery batteryRepository, boxers performanceBoxerRepository, scope boxerScope, validate *validator.Validate, logger *zap.Logger) *PerformanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceService{battery: battery, boxers: boxers, scope: scope, validator: validate, logger: logger}
}

// CreateTestRequest defines a fitness test.
type CreateTestRequest struct {
	Name         string  `json:"name" validate:"required"`
	Unit         string  `json:"unit" validate:"required"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"display_order"`
}

// RecordResultRequest stores up to three measurements for one boxer, test
// and phase. The phase is free text and normalizes through the synonym
// table; anything unrecognized lands in preparation.
type RecordResultRequest struct {
	BoxerID string   `json:"boxer_id" validate:"required"`
	TestID  string   `json:"test_id" validate:"required"`
	Phase   string   `json:"phase"`
	Value1  *float64 `json:"value1"`
	Value2  *float64 `json:"value2"`
	Value3  *float64 `json:"value3"`
	Notes   string   `json:"notes"`
}

// CreateTest registers a fitness test owned by the acting coach.
func (s *PerformanceService) CreateTest(ctx context.Context, actor *models.User, req CreateTestRequest) (*models.BatteryTest, error) {
	if err := s.scope.RequireWriter(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	test := &models.BatteryTest{
		Name:         req.Name,
		Unit:         req.Unit,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	}
	if actor.Role == models.RoleCoach {
		test.CoachID = &actor.ID
	}
	if err := s.battery.CreateTest(ctx, test); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create test")
	}
	return test, nil
}

// ListTests returns the tests visible to the actor: their own plus shared
// ones for coaches, everything for admins.
func (s *PerformanceService) ListTests(ctx context.Context, actor *models.User) ([]models.BatteryTest, error) {
	var coachID *string
	if actor.Role == models.RoleCoach {
		coachID = &actor.ID
	}
	tests, err := s.battery.ListTests(ctx, coachID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tests")
	}
	return tests, nil
}

// DeleteTest removes a test definition together with its results.
func (s *PerformanceService) DeleteTest(ctx context.Context, actor *models.User, testID string) error {
	if err := s.scope.RequireWriter(actor); err != nil {
		return err
	}
	test, err := s.requireTest(ctx, actor, testID)
	if err != nil {
		return err
	}
	if err := s.battery.DeleteTest(ctx, test.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete test")
	}
	return nil
}

// RecordResult upserts one result sheet. Writing the same (boxer, test,
// phase) twice replaces the values.
func (s *PerformanceService) RecordResult(ctx context.Context, actor *models.User, req RecordResultRequest) (*models.TestResult, error) {
	if err := s.scope.RequireWriter(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.scope.RequireBoxer(ctx, actor, req.BoxerID); err != nil {
		return nil, err
	}
	if _, err := s.requireTest(ctx, actor, req.TestID); err != nil {
		return nil, err
	}
	result := &models.TestResult{
		BoxerID: req.BoxerID,
		TestID:  req.TestID,
		Phase:   models.NormalizePhase(req.Phase),
		Value1:  req.Value1,
		Value2:  req.Value2,
		Value3:  req.Value3,
		Notes:   req.Notes,
	}
	if err := s.battery.UpsertResult(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record result")
	}
	return result, nil
}

// DeleteResult clears one result sheet.
func (s *PerformanceService) DeleteResult(ctx context.Context, actor *models.User, boxerID, testID, phaseRaw string) error {
	if err := s.scope.RequireWriter(actor); err != nil {
		return err
	}
	if _, err := s.scope.RequireBoxer(ctx, actor, boxerID); err != nil {
		return err
	}
	if _, err := s.requireTest(ctx, actor, testID); err != nil {
		return err
	}
	if err := s.battery.DeleteResult(ctx, boxerID, testID, models.NormalizePhase(phaseRaw)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete result")
	}
	return nil
}

// BestResult returns a boxer's best score for one test and phase, or nil
// when the sheet has no numeric values. No values never reads as zero.
func (s *PerformanceService) BestResult(ctx context.Context, actor *models.User, boxerID, testID, phaseRaw string) (*float64, error) {
	if _, err := s.scope.RequireBoxer(ctx, actor, boxerID); err != nil {
		return nil, err
	}
	test, err := s.requireTest(ctx, actor, testID)
	if err != nil {
		return nil, err
	}
	result, err := s.battery.GetResult(ctx, boxerID, testID, models.NormalizePhase(phaseRaw))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	return bestOf(result.Values(), test.LowerIsBetter()), nil
}

// Improvement compares a boxer's preparation and peak bests for one test.
// Missing data on either side yields a no-data verdict, never arithmetic on
// a missing value.
func (s *PerformanceService) Improvement(ctx context.Context, actor *models.User, boxerID, testID string) (*models.Improvement, error) {
	if _, err := s.scope.RequireBoxer(ctx, actor, boxerID); err != nil {
		return nil, err
	}
	test, err := s.requireTest(ctx, actor, testID)
	if err != nil {
		return nil, err
	}
	results, err := s.battery.ResultsForBoxer(ctx, boxerID, testID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}

	lower := test.LowerIsBetter()
	var prep, peak *float64
	for _, result := range results {
		best := bestOf(result.Values(), lower)
		switch result.Phase {
		case models.PhasePreparation:
			prep = best
		case models.PhasePeak:
			peak = best
		}
	}

	improvement := &models.Improvement{Verdict: models.ImprovementNoData, Preparation: prep, Peak: peak, Unit: test.Unit}
	if prep == nil || peak == nil {
		return improvement, nil
	}
	delta := *peak - *prep
	improvement.Delta = &delta
	switch {
	case delta == 0:
		improvement.Verdict = models.ImprovementNoChange
	case (delta < 0) == lower:
		improvement.Verdict = models.ImprovementImproved
	default:
		improvement.Verdict = models.ImprovementWorse
	}
	return improvement, nil
}

// Ranking orders the actor's visible boxers by their best score for one
// test across all phases. Boxers without numeric values are left out.
func (s *PerformanceService) Ranking(ctx context.Context, actor *models.User, testID string) ([]models.TestRankingRow, error) {
	test, err := s.requireTest(ctx, actor, testID)
	if err != nil {
		return nil, err
	}
	visible, err := s.scope.VisibleBoxerIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	results, err := s.battery.ResultsByTest(ctx, testID, visible)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}

	lower := test.LowerIsBetter()
	bestByBoxer := map[string]float64{}
	for _, result := range results {
		best := bestOf(result.Values(), lower)
		if best == nil {
			continue
		}
		current, ok := bestByBoxer[result.BoxerID]
		if !ok || better(*best, current, lower) {
			bestByBoxer[result.BoxerID] = *best
		}
	}

	rows := make([]models.TestRankingRow, 0, len(bestByBoxer))
	for boxerID, best := range bestByBoxer {
		boxer, err := s.boxers.FindByID(ctx, boxerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load boxer")
		}
		rows = append(rows, models.TestRankingRow{BoxerID: boxerID, BoxerName: boxer.DisplayName, Best: best})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Best == rows[j].Best {
			return rows[i].BoxerName < rows[j].BoxerName
		}
		return better(rows[i].Best, rows[j].Best, lower)
	})
	return rows, nil
}

// requireTest loads a test and checks ownership: coaches only see their own
// tests plus unowned shared ones; out-of-scope tests look missing.
func (s *PerformanceService) requireTest(ctx context.Context, actor *models.User, testID string) (*models.BatteryTest, error) {
	test, err := s.battery.FindTestByID(ctx, testID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load test")
	}
	if actor.Role == models.RoleCoach && test.CoachID != nil && *test.CoachID != actor.ID {
		return nil, appErrors.ErrNotFound
	}
	return test, nil
}

// bestOf picks min or max of the values, nil when there are none.
func bestOf(values []float64, lowerIsBetter bool) *float64 {
	if len(values) == 0 {
		return nil
	}
	best := values[0]
	for _, v := range values[1:] {
		if better(v, best, lowerIsBetter) {
			best = v
		}
	}
	return &best
}

func better(a, b float64, lowerIsBetter bool) bool {
	if lowerIsBetter {
		return a < b
	}
	return a > b
}

// roundPct rounds a zero-guarded percentage to one decimal.
func roundPct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
