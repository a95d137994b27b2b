package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
	"github.com/ringside/boxclub-api/pkg/recurrence"
)

type classRepository interface {
	Create(ctx context.Context, class *models.ClassTemplate) error
	FindByID(ctx context.Context, id string) (*models.ClassTemplate, error)
	FindByIDInGym(ctx context.Context, id, gymID string) (*models.ClassTemplate, error)
	ListByGym(ctx context.Context, gymID string) ([]models.ClassTemplate, error)
	AddCoach(ctx context.Context, classID, userID string) error
	Delete(ctx context.Context, id string) error
}

type classEnrollmentRepository interface {
	CountByClass(ctx context.Context, classID string) (int, error)
}

type classAttendanceRepository interface {
	CountPresent(ctx context.Context, classID string, date time.Time) (int, error)
	MarkedDates(ctx context.Context, classID string, from, to time.Time) ([]time.Time, error)
}

// CalendarConfig bounds recurrence expansion.
type CalendarConfig struct {
	DefaultStartHour       int
	DefaultStartMinute     int
	DefaultDurationMinutes int
	MaxWindowDays          int
}

// ClassService manages class templates and the on-the-fly calendar. Classes
// are templates, not sessions: the calendar materializes occurrences from
// the recurrence rule at read time and nothing per-session is persisted.
type ClassService struct {
	classes     classRepository
	enrollments classEnrollmentRepository
	attendance  classAttendanceRepository
	scope       boxerScope
	validator   *validator.Validate
	logger      *zap.Logger
	config      CalendarConfig
}

// NewClassService constructs the class service.
func NewClassService(classes classRepository, enrollments classEnrollmentRepository, attendance classAttendanceRepository, scope boxerScope, validate *validator.Validate, logger *zap.Logger, config CalendarConfig) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, enrollments: enrollments, attendance: attendance, scope: scope, validator: validate, logger: logger, config: config}
}

// CreateClassRequest defines a new class template.
type CreateClassRequest struct {
	Title           string  `json:"title" validate:"required"`
	Description     *string `json:"description"`
	Recurrence      *string `json:"recurrence"`
	StartHour       *int    `json:"start_hour" validate:"omitempty,min=0,max=23"`
	StartMinute     *int    `json:"start_minute" validate:"omitempty,min=0,max=59"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=1"`
	GymID           string  `json:"gym_id"`
}

// CalendarRequest materializes class sessions in a date window.
type CalendarRequest struct {
	GymID   string
	ClassID string
	From    string `validate:"required"`
	To      string `validate:"required"`
}

// Create stores a class template. Coaches create classes in their home gym;
// admins must name the gym explicitly. A recurrence rule is validated up
// front so a broken rule fails here, not on the first calendar read.
func (s *ClassService) Create(ctx context.Context, actor *models.User, req CreateClassRequest) (*models.ClassTemplate, error) {
	if err := s.scope.RequireWriter(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	gymID := req.GymID
	if actor.Role == models.RoleCoach {
		if actor.GymID == nil || *actor.GymID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "coach has no home gym")
		}
		gymID = *actor.GymID
	}
	if gymID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gym_id is required")
	}

	class := &models.ClassTemplate{
		GymID:           gymID,
		Title:           req.Title,
		Description:     req.Description,
		Recurrence:      req.Recurrence,
		StartHour:       s.config.DefaultStartHour,
		StartMinute:     s.config.DefaultStartMinute,
		DurationMinutes: s.config.DefaultDurationMinutes,
	}
	if req.StartHour != nil {
		class.StartHour = *req.StartHour
	}
	if req.StartMinute != nil {
		class.StartMinute = *req.StartMinute
	}
	if req.DurationMinutes != nil {
		class.DurationMinutes = *req.DurationMinutes
	}

	if class.Recurrence != nil && *class.Recurrence != "" {
		probe := time.Now().UTC()
		if _, err := recurrence.Expand(*class.Recurrence, probe, probe.AddDate(0, 0, 7), class.StartHour, class.StartMinute, class.DurationMinutes); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence rule")
		}
	}

	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	if actor.Role == models.RoleCoach {
		if err := s.classes.AddCoach(ctx, class.ID, actor.ID); err != nil {
			s.logger.Warn("failed to attach coach to class", zap.Error(err))
		}
	}
	return class, nil
}

// Get returns one class template within the actor's gym scope.
func (s *ClassService) Get(ctx context.Context, actor *models.User, classID string) (*models.ClassTemplate, error) {
	if err := requireClassInScope(ctx, s.classes, actor, classID); err != nil {
		return nil, err
	}
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// ListByGym returns a gym's class templates. Coaches are pinned to their
// home gym regardless of the requested id.
func (s *ClassService) ListByGym(ctx context.Context, actor *models.User, gymID string) ([]models.ClassTemplate, error) {
	if actor.Role == models.RoleCoach {
		if actor.GymID == nil || *actor.GymID == "" {
			return []models.ClassTemplate{}, nil
		}
		gymID = *actor.GymID
	}
	if gymID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gym_id is required")
	}
	classes, err := s.classes.ListByGym(ctx, gymID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Delete removes a class template.
func (s *ClassService) Delete(ctx context.Context, actor *models.User, classID string) error {
	if err := s.scope.RequireWriter(actor); err != nil {
		return err
	}
	if err := requireClassInScope(ctx, s.classes, actor, classID); err != nil {
		return err
	}
	if err := s.classes.Delete(ctx, classID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}

// Calendar expands class recurrences over a date window and annotates each
// occurrence with present and enrolled counts. Classes without a recurrence
// rule contribute no occurrences.
func (s *ClassService) Calendar(ctx context.Context, actor *models.User, req CalendarRequest) ([]models.ClassOccurrence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid window")
	}
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid from date, expected YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid to date, expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "window end precedes start")
	}
	if s.config.MaxWindowDays > 0 && int(to.Sub(from).Hours()/24) > s.config.MaxWindowDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, "window too large")
	}

	var classes []models.ClassTemplate
	if req.ClassID != "" {
		class, err := s.Get(ctx, actor, req.ClassID)
		if err != nil {
			return nil, err
		}
		classes = []models.ClassTemplate{*class}
	} else {
		classes, err = s.ListByGym(ctx, actor, req.GymID)
		if err != nil {
			return nil, err
		}
	}

	occurrences := []models.ClassOccurrence{}
	for _, class := range classes {
		if class.Recurrence == nil || *class.Recurrence == "" {
			continue
		}
		expanded, err := recurrence.Expand(*class.Recurrence, from, to, class.StartHour, class.StartMinute, class.DurationMinutes)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence rule")
		}
		enrolled, err := s.enrollments.CountByClass(ctx, class.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		markedDates, err := s.attendance.MarkedDates(ctx, class.ID, from, to)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load marked dates")
		}
		marked := make(map[string]struct{}, len(markedDates))
		for _, d := range markedDates {
			marked[d.Format("2006-01-02")] = struct{}{}
		}
		for _, occ := range expanded {
			day := time.Date(occ.Start.Year(), occ.Start.Month(), occ.Start.Day(), 0, 0, 0, 0, time.UTC)
			present := 0
			// Only dates that carry marks need a count query.
			if _, ok := marked[day.Format("2006-01-02")]; ok {
				present, err = s.attendance.CountPresent(ctx, class.ID, day)
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance")
				}
			}
			occurrences = append(occurrences, models.ClassOccurrence{
				ClassID:       class.ID,
				ClassTitle:    class.Title,
				Date:          occ.Start.Format("2006-01-02"),
				Start:         occ.Start,
				End:           occ.End,
				PresentCount:  present,
				EnrolledCount: enrolled,
			})
		}
	}
	return occurrences, nil
}
