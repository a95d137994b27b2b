package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type enrollmentRepository interface {
	Enroll(ctx context.Context, classID, boxerID string) (*models.Enrollment, bool, error)
	Unenroll(ctx context.Context, classID, boxerID string) error
	Roster(ctx context.Context, classID string) ([]models.RosterEntry, error)
}

// RosterService manages class enrollments. Enroll and Unenroll are both
// idempotent: at most one enrollment row ever exists per (class, boxer).
type RosterService struct {
	enrollments enrollmentRepository
	classes     attendanceClassRepository
	scope       boxerScope
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(enrollments enrollmentRepository, classes attendanceClassRepository, scope boxerScope, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{enrollments: enrollments, classes: classes, scope: scope, validator: validate, logger: logger}
}

// EnrollRequest adds a boxer to a class roster.
type EnrollRequest struct {
	ClassID string `json:"class_id" validate:"required"`
	BoxerID string `json:"boxer_id" validate:"required"`
}

// EnrollResult reports an enrollment; Created is false when the pair was
// already enrolled.
type EnrollResult struct {
	Enrollment *models.Enrollment `json:"enrollment"`
	Created    bool               `json:"created"`
}

// Enroll adds a boxer to a class. Repeating the call returns the existing
// enrollment unchanged.
func (s *RosterService) Enroll(ctx context.Context, actor *models.User, req EnrollRequest) (*EnrollResult, error) {
	if err := s.scope.RequireWriter(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.scope.RequireBoxer(ctx, actor, req.BoxerID); err != nil {
		return nil, err
	}
	if err := requireClassInScope(ctx, s.classes, actor, req.ClassID); err != nil {
		return nil, err
	}

	enrollment, created, err := s.enrollments.Enroll(ctx, req.ClassID, req.BoxerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll boxer")
	}
	return &EnrollResult{Enrollment: enrollment, Created: created}, nil
}

// Unenroll removes a boxer from a class roster. Removing a boxer who is not
// enrolled is a no-op.
func (s *RosterService) Unenroll(ctx context.Context, actor *models.User, req EnrollRequest) error {
	if err := s.scope.RequireWriter(actor); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.scope.RequireBoxer(ctx, actor, req.BoxerID); err != nil {
		return err
	}
	if err := requireClassInScope(ctx, s.classes, actor, req.ClassID); err != nil {
		return err
	}

	if err := s.enrollments.Unenroll(ctx, req.ClassID, req.BoxerID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unenroll boxer")
	}
	return nil
}

// Roster returns the class roster restricted to the actor's visible boxers.
func (s *RosterService) Roster(ctx context.Context, actor *models.User, classID string) ([]models.RosterEntry, error) {
	if err := requireClassInScope(ctx, s.classes, actor, classID); err != nil {
		return nil, err
	}
	entries, err := s.enrollments.Roster(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	visible, err := s.scope.VisibleBoxerIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	visibleSet := make(map[string]struct{}, len(visible))
	for _, id := range visible {
		visibleSet[id] = struct{}{}
	}
	filtered := entries[:0]
	for _, e := range entries {
		if _, ok := visibleSet[e.BoxerID]; ok {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}
