package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type weightRepository interface {
	Upsert(ctx context.Context, sample *models.Weight) (*models.Weight, error)
	Latest(ctx context.Context, boxerID string) (*models.Weight, error)
	DaysForBoxer(ctx context.Context, boxerID string) ([]models.Weight, error)
}

// WeightService records standalone weight samples and derives the per-day
// progress view.
type WeightService struct {
	weights   weightRepository
	scope     boxerResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWeightService constructs the weight service.
func NewWeightService(weights weightRepository, scope boxerResolver, validate *validator.Validate, logger *zap.Logger) *WeightService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightService{weights: weights, scope: scope, validator: validate, logger: logger}
}

// RecordWeightRequest stores one sample at an explicit timestamp.
type RecordWeightRequest struct {
	BoxerID    string  `json:"boxer_id" validate:"required"`
	Kg         float64 `json:"kg" validate:"required,gt=0"`
	MeasuredAt *string `json:"measured_at"`
}

// Record stores a sample outside the attendance flow.
func (s *WeightService) Record(ctx context.Context, actor *models.User, req RecordWeightRequest) (*models.Weight, error) {
	if err := s.scope.RequireWriter(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.scope.RequireBoxer(ctx, actor, req.BoxerID); err != nil {
		return nil, err
	}
	measuredAt := time.Now().UTC()
	if req.MeasuredAt != nil && strings.TrimSpace(*req.MeasuredAt) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.MeasuredAt))
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid measured_at, expected RFC 3339")
		}
		measuredAt = parsed.UTC()
	}
	stored, err := s.weights.Upsert(ctx, &models.Weight{BoxerID: req.BoxerID, MeasuredAt: measuredAt, Kg: req.Kg})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save weight")
	}
	return stored, nil
}

// Latest returns a boxer's most recent sample, nil when none exists. The
// reference is resolved the same way the boxer lookup resolves it.
func (s *WeightService) Latest(ctx context.Context, actor *models.User, ref string) (*models.Weight, error) {
	boxer, err := s.scope.ResolveBoxer(ctx, actor, ref)
	if err != nil {
		return nil, err
	}
	sample, err := s.weights.Latest(ctx, boxer.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight")
	}
	return sample, nil
}

// Progress summarises a boxer's weight history: the last sample of each
// calendar day, min/max/avg, the first-to-last delta, and optionally how
// many days sat above a fighting-weight threshold. A threshold that does
// not parse as a positive number is a field error, not a silent skip.
func (s *WeightService) Progress(ctx context.Context, actor *models.User, ref, fightingWeightRaw string) (*models.WeightProgress, error) {
	boxer, err := s.scope.ResolveBoxer(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	var fightingWeight *float64
	if strings.TrimSpace(fightingWeightRaw) != "" {
		fw, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(fightingWeightRaw), ",", "."), 64)
		if err != nil || fw <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "fighting_weight must be a positive number")
		}
		fightingWeight = &fw
	}

	samples, err := s.weights.DaysForBoxer(ctx, boxer.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weights")
	}

	progress := &models.WeightProgress{Days: make([]models.WeightDay, 0, len(samples))}
	if len(samples) == 0 {
		return progress, nil
	}

	min, max, sum := samples[0].Kg, samples[0].Kg, 0.0
	above := 0
	for _, sample := range samples {
		progress.Days = append(progress.Days, models.WeightDay{
			Date: sample.MeasuredAt.Format("2006-01-02"),
			Kg:   sample.Kg,
		})
		if sample.Kg < min {
			min = sample.Kg
		}
		if sample.Kg > max {
			max = sample.Kg
		}
		sum += sample.Kg
		if fightingWeight != nil && sample.Kg > *fightingWeight {
			above++
		}
	}
	avg := math.Round(sum/float64(len(samples))*10) / 10
	delta := math.Round((samples[len(samples)-1].Kg-samples[0].Kg)*10) / 10
	progress.Min = &min
	progress.Max = &max
	progress.Avg = &avg
	progress.Delta = &delta
	if fightingWeight != nil {
		progress.AboveFW = &above
	}
	return progress, nil
}
