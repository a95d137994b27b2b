package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type boxerRepository interface {
	Create(ctx context.Context, boxer *models.Boxer) error
	List(ctx context.Context, filter models.BoxerFilter, visibleIDs []string) ([]models.BoxerDetail, int, error)
	Delete(ctx context.Context, id string) error
	AddCoach(ctx context.Context, boxerID, userID string) error
	ShareWithGym(ctx context.Context, boxerID, gymID string) error
	ExistsInGym(ctx context.Context, gymID, displayName, parentName string, dob *time.Time) (sameName, sameParent, sameDOB bool, err error)
}

type boxerResolver interface {
	boxerScope
	ResolveBoxer(ctx context.Context, actor *models.User, ref string) (*models.Boxer, error)
}

// BoxerService manages athlete records.
type BoxerService struct {
	boxers    boxerRepository
	scope     boxerResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBoxerService constructs the boxer service.
func NewBoxerService(boxers boxerRepository, scope boxerResolver, validate *validator.Validate, logger *zap.Logger) *BoxerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoxerService{boxers: boxers, scope: scope, validator: validate, logger: logger}
}

// CreateBoxerRequest registers one athlete.
type CreateBoxerRequest struct {
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name"`
	ParentName  string  `json:"parent_name"`
	DateOfBirth *string `json:"date_of_birth"`
	GymID       string  `json:"gym_id"`
}

// BulkImportRequest registers many athletes in one call.
type BulkImportRequest struct {
	GymID string               `json:"gym_id"`
	Rows  []models.BulkBoxerRow `json:"rows" validate:"required,min=1"`
}

// BulkImportResult reports which rows committed and which were rejected.
type BulkImportResult struct {
	Created []models.Boxer             `json:"created"`
	Errors  []models.BulkBoxerRowError `json:"errors,omitempty"`
}

// ListBoxersRequest filters the boxer listing.
type ListBoxersRequest struct {
	Search   string
	Page     int
	PageSize int
}

// Create registers an athlete in the actor's gym. Admins may name another
// gym; coaches always write into their home gym and are attached as an
// explicit coach.
func (s *BoxerService) Create(ctx context.Context, actor *models.User, req CreateBoxerRequest) (*models.Boxer, error) {
	if err := s.scope.RequireWriter(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	gymID, err := resolveGym(actor, req.GymID)
	if err != nil {
		return nil, err
	}
	dob, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date_of_birth, expected YYYY-MM-DD")
	}

	boxer := &models.Boxer{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		ParentName:  strings.TrimSpace(req.ParentName),
		DateOfBirth: dob,
		GymID:       gymID,
	}
	if err := s.boxers.Create(ctx, boxer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create boxer")
	}
	if actor.Role == models.RoleCoach {
		if err := s.boxers.AddCoach(ctx, boxer.ID, actor.ID); err != nil {
			s.logger.Warn("failed to attach coach to boxer", zap.Error(err))
		}
	}
	return boxer, nil
}

// Get resolves a boxer by row id, public id or exact name within scope.
func (s *BoxerService) Get(ctx context.Context, actor *models.User, ref string) (*models.Boxer, error) {
	return s.scope.ResolveBoxer(ctx, actor, ref)
}

// List returns the actor's visible boxers, optionally filtered by a search
// string whose terms are ANDed over first, last and parent names.
func (s *BoxerService) List(ctx context.Context, actor *models.User, req ListBoxersRequest) ([]models.BoxerDetail, *models.Pagination, error) {
	visible, err := s.scope.VisibleBoxerIDs(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}
	filter := models.BoxerFilter{Search: req.Search, Page: page, PageSize: size}
	rows, total, err := s.boxers.List(ctx, filter, visible)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list boxers")
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Delete removes a boxer and all dependent rows.
func (s *BoxerService) Delete(ctx context.Context, actor *models.User, boxerID string) error {
	if err := s.scope.RequireWriter(actor); err != nil {
		return err
	}
	if _, err := s.scope.RequireBoxer(ctx, actor, boxerID); err != nil {
		return err
	}
	if err := s.boxers.Delete(ctx, boxerID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete boxer")
	}
	return nil
}

// Share makes a boxer visible to another gym's coaches without moving them.
func (s *BoxerService) Share(ctx context.Context, actor *models.User, boxerID, gymID string) error {
	if err := s.scope.RequireWriter(actor); err != nil {
		return err
	}
	if _, err := s.scope.RequireBoxer(ctx, actor, boxerID); err != nil {
		return err
	}
	if gymID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "gym_id is required")
	}
	if err := s.boxers.ShareWithGym(ctx, boxerID, gymID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to share boxer")
	}
	return nil
}

// BulkImport registers a batch of athletes. Rows are validated one by one:
// a missing first name, an intra-batch duplicate or a clash with an existing
// boxer of the same name without a disambiguating parent name or birth date
// rejects that row while the rest of the batch commits.
func (s *BoxerService) BulkImport(ctx context.Context, actor *models.User, req BulkImportRequest) (*BulkImportResult, error) {
	if err := s.scope.RequireWriter(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	gymID, err := resolveGym(actor, req.GymID)
	if err != nil {
		return nil, err
	}

	result := &BulkImportResult{Created: []models.Boxer{}}
	seen := map[string]int{}
	for i, row := range req.Rows {
		first := strings.TrimSpace(row.FirstName)
		last := strings.TrimSpace(row.LastName)
		parent := strings.TrimSpace(row.ParentName)
		if first == "" {
			result.Errors = append(result.Errors, models.BulkBoxerRowError{Index: i, Field: "first_name", Message: "first name is required"})
			continue
		}
		displayName := strings.TrimSpace(first + " " + last)
		batchKey := strings.ToLower(fmt.Sprintf("%s|%s|%s", displayName, parent, formatOptionalDate(row.DateOfBirth)))
		if prev, ok := seen[batchKey]; ok {
			result.Errors = append(result.Errors, models.BulkBoxerRowError{
				Index:   i,
				Message: fmt.Sprintf("duplicate of row %d", prev),
			})
			continue
		}
		seen[batchKey] = i

		sameName, sameParent, sameDOB, err := s.boxers.ExistsInGym(ctx, gymID, displayName, parent, row.DateOfBirth)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicates")
		}
		if sameName && (parent == "" || sameParent) && (row.DateOfBirth == nil || sameDOB) {
			result.Errors = append(result.Errors, models.BulkBoxerRowError{
				Index:   i,
				Message: fmt.Sprintf("%s already exists, add a parent name or birth date to disambiguate", displayName),
			})
			continue
		}

		boxer := models.Boxer{
			FirstName:   first,
			LastName:    last,
			ParentName:  parent,
			DateOfBirth: row.DateOfBirth,
			GymID:       gymID,
		}
		if err := s.boxers.Create(ctx, &boxer); err != nil {
			result.Errors = append(result.Errors, models.BulkBoxerRowError{Index: i, Message: "failed to save row"})
			s.logger.Warn("bulk import row failed", zap.Int("index", i), zap.Error(err))
			continue
		}
		if actor.Role == models.RoleCoach {
			if err := s.boxers.AddCoach(ctx, boxer.ID, actor.ID); err != nil {
				s.logger.Warn("failed to attach coach to boxer", zap.Error(err))
			}
		}
		result.Created = append(result.Created, boxer)
	}
	return result, nil
}

// resolveGym picks the gym a write lands in: coaches always use their home
// gym, admins must name one.
func resolveGym(actor *models.User, requested string) (string, error) {
	if actor.Role == models.RoleCoach {
		if actor.GymID == nil || *actor.GymID == "" {
			return "", appErrors.Clone(appErrors.ErrValidation, "coach has no home gym")
		}
		return *actor.GymID, nil
	}
	if requested == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "gym_id is required")
	}
	return requested, nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
