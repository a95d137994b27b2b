package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type gymRepository interface {
	Create(ctx context.Context, gym *models.Gym) error
	FindByID(ctx context.Context, id string) (*models.Gym, error)
	List(ctx context.Context) ([]models.Gym, error)
	CountOwned(ctx context.Context, gymID string) (boxers int, classes int, err error)
	Delete(ctx context.Context, id string) error
}

// GymService manages gyms. Deleting a gym that still owns boxers or classes
// is refused; the caller has to move or delete the dependents first.
type GymService struct {
	gyms      gymRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGymService constructs the gym service.
func NewGymService(gyms gymRepository, validate *validator.Validate, logger *zap.Logger) *GymService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GymService{gyms: gyms, validator: validate, logger: logger}
}

// CreateGymRequest registers a gym.
type CreateGymRequest struct {
	Name     string  `json:"name" validate:"required"`
	Location *string `json:"location"`
	Timezone string  `json:"timezone" validate:"required"`
}

// Create registers a gym. Admin only, enforced at the route.
func (s *GymService) Create(ctx context.Context, req CreateGymRequest) (*models.Gym, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	gym := &models.Gym{
		Name:     strings.TrimSpace(req.Name),
		Location: req.Location,
		Timezone: req.Timezone,
	}
	if err := s.gyms.Create(ctx, gym); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create gym")
	}
	return gym, nil
}

// Get returns one gym.
func (s *GymService) Get(ctx context.Context, id string) (*models.Gym, error) {
	gym, err := s.gyms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gym")
	}
	return gym, nil
}

// List returns all gyms.
func (s *GymService) List(ctx context.Context) ([]models.Gym, error) {
	gyms, err := s.gyms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list gyms")
	}
	return gyms, nil
}

// Delete removes a gym, refusing while boxers or classes still reference it.
func (s *GymService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	boxers, classes, err := s.gyms.CountOwned(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check gym ownership")
	}
	if boxers > 0 || classes > 0 {
		return appErrors.Clone(appErrors.ErrProtected,
			fmt.Sprintf("gym still owns %d boxers and %d classes", boxers, classes))
	}
	if err := s.gyms.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete gym")
	}
	return nil
}
