package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type heartRateRepository interface {
	Create(ctx context.Context, sample *models.HeartRate) error
	ListByBoxer(ctx context.Context, boxerID string) ([]models.HeartRate, error)
	LatestPerBoxer(ctx context.Context, boxerIDs []string) ([]models.HeartRateLatest, error)
}

// HeartRateService records resting heart rate samples.
type HeartRateService struct {
	heartRates heartRateRepository
	scope      boxerResolver
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewHeartRateService constructs the heart rate service.
func NewHeartRateService(heartRates heartRateRepository, scope boxerResolver, validate *validator.Validate, logger *zap.Logger) *HeartRateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeartRateService{heartRates: heartRates, scope: scope, validator: validate, logger: logger}
}

// RecordHeartRateRequest stores one sample.
type RecordHeartRateRequest struct {
	BoxerID    string  `json:"boxer_id" validate:"required"`
	Bpm        int     `json:"bpm" validate:"required,min=30,max=240"`
	Notes      string  `json:"notes"`
	MeasuredAt *string `json:"measured_at"`
}

// Record stores a sample for a boxer in scope.
func (s *HeartRateService) Record(ctx context.Context, actor *models.User, req RecordHeartRateRequest) (*models.HeartRate, error) {
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
	sample := &models.HeartRate{
		BoxerID:    req.BoxerID,
		Bpm:        req.Bpm,
		Notes:      req.Notes,
		MeasuredAt: measuredAt,
	}
	if err := s.heartRates.Create(ctx, sample); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save heart rate")
	}
	return sample, nil
}

// History returns a boxer's samples, newest first.
func (s *HeartRateService) History(ctx context.Context, actor *models.User, ref string) ([]models.HeartRate, error) {
	boxer, err := s.scope.ResolveBoxer(ctx, actor, ref)
	if err != nil {
		return nil, err
	}
	samples, err := s.heartRates.ListByBoxer(ctx, boxer.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load heart rates")
	}
	return samples, nil
}

// LatestSummary returns each visible boxer's most recent sample.
func (s *HeartRateService) LatestSummary(ctx context.Context, actor *models.User) ([]models.HeartRateLatest, error) {
	visible, err := s.scope.VisibleBoxerIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	latest, err := s.heartRates.LatestPerBoxer(ctx, visible)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load heart rates")
	}
	return latest, nil
}
