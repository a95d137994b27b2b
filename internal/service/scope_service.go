package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

type scopeBoxerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Boxer, error)
	FindByPublicID(ctx context.Context, publicID string) (*models.Boxer, error)
	FindByName(ctx context.Context, name string, visibleIDs []string) ([]models.Boxer, error)
	AllIDs(ctx context.Context) ([]string, error)
	IDsVisibleToCoach(ctx context.Context, gymID, userID string) ([]string, error)
	IDsCoachedBy(ctx context.Context, userID string) ([]string, error)
}

type scopeUserRepository interface {
	ChildIDs(ctx context.Context, parentID string) ([]string, error)
}

// ScopeService answers "which boxers can this account see". The scope is
// recomputed on every call; it is never cached, so coach reassignments and
// parent links take effect immediately.
type ScopeService struct {
	boxerRepo scopeBoxerRepository
	userRepo  scopeUserRepository
	logger    *zap.Logger
}

// NewScopeService constructs the scope service.
func NewScopeService(boxers scopeBoxerRepository, users scopeUserRepository, logger *zap.Logger) *ScopeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeService{boxerRepo: boxers, userRepo: users, logger: logger}
}

// VisibleBoxerIDs returns the ids the actor may see. Admins see every boxer,
// parents see exactly their linked children, coaches see the union of their
// home gym's boxers, boxers shared with that gym and boxers they coach
// directly. A coach without a home gym falls back to directly coached boxers
// only; if that set is empty the scope is empty, never the whole table.
func (s *ScopeService) VisibleBoxerIDs(ctx context.Context, actor *models.User) ([]string, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleAdmin:
		ids, err := s.boxerRepo.AllIDs(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve scope")
		}
		return ids, nil
	case models.RoleParent:
		ids, err := s.userRepo.ChildIDs(ctx, actor.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve scope")
		}
		return ids, nil
	case models.RoleCoach:
		if actor.GymID == nil || *actor.GymID == "" {
			ids, err := s.boxerRepo.IDsCoachedBy(ctx, actor.ID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve scope")
			}
			return ids, nil
		}
		ids, err := s.boxerRepo.IDsVisibleToCoach(ctx, *actor.GymID, actor.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve scope")
		}
		return ids, nil
	default:
		return nil, appErrors.ErrForbidden
	}
}

// CanSeeBoxer reports whether one boxer id falls inside the actor's scope.
func (s *ScopeService) CanSeeBoxer(ctx context.Context, actor *models.User, boxerID string) (bool, error) {
	ids, err := s.VisibleBoxerIDs(ctx, actor)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == boxerID {
			return true, nil
		}
	}
	return false, nil
}

// ResolveBoxer resolves a reference to a boxer inside the actor's scope. The
// reference may be a row id, a public UUID or an exact display name. A boxer
// that exists but sits outside the scope surfaces as not found, exactly like
// one that does not exist. An ambiguous name is a validation error.
func (s *ScopeService) ResolveBoxer(ctx context.Context, actor *models.User, ref string) (*models.Boxer, error) {
	if ref == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "boxer reference is required")
	}
	visible, err := s.VisibleBoxerIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	if _, parseErr := uuid.Parse(ref); parseErr == nil {
		boxer, err := s.boxerRepo.FindByID(ctx, ref)
		if err != nil && errors.Is(err, sql.ErrNoRows) {
			boxer, err = s.boxerRepo.FindByPublicID(ctx, ref)
		}
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.ErrNotFound
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve boxer")
		}
		if !contains(visible, boxer.ID) {
			return nil, appErrors.ErrNotFound
		}
		return boxer, nil
	}
	matches, err := s.boxerRepo.FindByName(ctx, ref, visible)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve boxer")
	}
	switch len(matches) {
	case 0:
		return nil, appErrors.ErrNotFound
	case 1:
		return &matches[0], nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "boxer name is ambiguous, use an id")
	}
}

// RequireBoxer resolves a boxer by row id within scope, mapping both a
// missing row and an out-of-scope row to not found.
func (s *ScopeService) RequireBoxer(ctx context.Context, actor *models.User, boxerID string) (*models.Boxer, error) {
	visible, err := s.VisibleBoxerIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !contains(visible, boxerID) {
		return nil, appErrors.ErrNotFound
	}
	boxer, err := s.boxerRepo.FindByID(ctx, boxerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load boxer")
	}
	return boxer, nil
}

// RequireWriter rejects parent accounts before any mutation.
func (s *ScopeService) RequireWriter(actor *models.User) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleParent {
		return appErrors.ErrParentReadOnly
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
