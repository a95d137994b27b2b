package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
)

// mockScopeBoxers backs the scope service in tests. The gym, shared-gym and
// coach grants are kept as plain maps so each test can lay out its own club.
type mockScopeBoxers struct {
	boxers     map[string]models.Boxer
	sharedWith map[string][]string // boxer id -> gym ids
	coachedBy  map[string][]string // user id -> boxer ids
}

func (m *mockScopeBoxers) FindByID(ctx context.Context, id string) (*models.Boxer, error) {
	if b, ok := m.boxers[id]; ok {
		return &b, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScopeBoxers) FindByPublicID(ctx context.Context, publicID string) (*models.Boxer, error) {
	for _, b := range m.boxers {
		if b.PublicID == publicID {
			return &b, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockScopeBoxers) FindByName(ctx context.Context, name string, visibleIDs []string) ([]models.Boxer, error) {
	visible := make(map[string]struct{}, len(visibleIDs))
	for _, id := range visibleIDs {
		visible[id] = struct{}{}
	}
	var matches []models.Boxer
	for _, b := range m.boxers {
		if _, ok := visible[b.ID]; !ok {
			continue
		}
		if strings.EqualFold(b.DisplayName, name) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

func (m *mockScopeBoxers) AllIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.boxers))
	for id := range m.boxers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockScopeBoxers) IDsVisibleToCoach(ctx context.Context, gymID, userID string) ([]string, error) {
	set := map[string]struct{}{}
	for id, b := range m.boxers {
		if b.GymID == gymID {
			set[id] = struct{}{}
		}
		for _, g := range m.sharedWith[id] {
			if g == gymID {
				set[id] = struct{}{}
			}
		}
	}
	for _, id := range m.coachedBy[userID] {
		set[id] = struct{}{}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockScopeBoxers) IDsCoachedBy(ctx context.Context, userID string) ([]string, error) {
	return m.coachedBy[userID], nil
}

type mockScopeUsers struct {
	children map[string][]string
}

func (m *mockScopeUsers) ChildIDs(ctx context.Context, parentID string) ([]string, error) {
	return m.children[parentID], nil
}

func adminActor() *models.User {
	return &models.User{ID: "admin-1", Role: models.RoleAdmin}
}

func coachActor(gymID string) *models.User {
	actor := &models.User{ID: "coach-1", Role: models.RoleCoach}
	if gymID != "" {
		actor.GymID = &gymID
	}
	return actor
}

func parentActor() *models.User {
	return &models.User{ID: "parent-1", Role: models.RoleParent}
}

func clubFixture() *mockScopeBoxers {
	return &mockScopeBoxers{
		boxers: map[string]models.Boxer{
			"box-home":   {ID: "box-home", PublicID: "pub-home", DisplayName: "Ali Said", GymID: "gym-1"},
			"box-shared": {ID: "box-shared", PublicID: "pub-shared", DisplayName: "Mo Diallo", GymID: "gym-2"},
			"box-direct": {ID: "box-direct", PublicID: "pub-direct", DisplayName: "Sam Okoro", GymID: "gym-3"},
			"box-far":    {ID: "box-far", PublicID: "pub-far", DisplayName: "Lee Park", GymID: "gym-3"},
		},
		sharedWith: map[string][]string{"box-shared": {"gym-1"}},
		coachedBy:  map[string][]string{"coach-1": {"box-direct"}},
	}
}

func newTestScope(boxers *mockScopeBoxers, users *mockScopeUsers) *ScopeService {
	if users == nil {
		users = &mockScopeUsers{}
	}
	return NewScopeService(boxers, users, zap.NewNop())
}

func TestVisibleBoxerIDsAdminSeesAll(t *testing.T) {
	svc := newTestScope(clubFixture(), nil)

	ids, err := svc.VisibleBoxerIDs(context.Background(), adminActor())
	require.NoError(t, err)
	assert.Equal(t, []string{"box-direct", "box-far", "box-home", "box-shared"}, ids)
}

func TestVisibleBoxerIDsParentSeesLinkedChildren(t *testing.T) {
	users := &mockScopeUsers{children: map[string][]string{"parent-1": {"box-home"}}}
	svc := newTestScope(clubFixture(), users)

	ids, err := svc.VisibleBoxerIDs(context.Background(), parentActor())
	require.NoError(t, err)
	assert.Equal(t, []string{"box-home"}, ids)
}

func TestVisibleBoxerIDsCoachUnion(t *testing.T) {
	svc := newTestScope(clubFixture(), nil)

	ids, err := svc.VisibleBoxerIDs(context.Background(), coachActor("gym-1"))
	require.NoError(t, err)
	// Home gym, shared-in and directly coached; never the rest of the table.
	assert.Equal(t, []string{"box-direct", "box-home", "box-shared"}, ids)
}

func TestVisibleBoxerIDsCoachWithoutGymFallsBack(t *testing.T) {
	svc := newTestScope(clubFixture(), nil)

	ids, err := svc.VisibleBoxerIDs(context.Background(), coachActor(""))
	require.NoError(t, err)
	assert.Equal(t, []string{"box-direct"}, ids)
}

func TestVisibleBoxerIDsCoachWithNoGrantsIsEmpty(t *testing.T) {
	boxers := clubFixture()
	boxers.coachedBy = nil
	svc := newTestScope(boxers, nil)

	ids, err := svc.VisibleBoxerIDs(context.Background(), coachActor(""))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCanSeeBoxer(t *testing.T) {
	svc := newTestScope(clubFixture(), nil)
	actor := coachActor("gym-1")

	ok, err := svc.CanSeeBoxer(context.Background(), actor, "box-home")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanSeeBoxer(context.Background(), actor, "box-far")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveBoxerByPublicID(t *testing.T) {
	boxers := clubFixture()
	// References parse as UUIDs in production; use one to hit the id path.
	b := boxers.boxers["box-home"]
	b.PublicID = "7a6e1b66-6af1-4c4a-a8fb-88a4178e58b9"
	boxers.boxers["box-home"] = b
	svc := newTestScope(boxers, nil)

	boxer, err := svc.ResolveBoxer(context.Background(), coachActor("gym-1"), b.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "box-home", boxer.ID)
}

func TestResolveBoxerOutOfScopeLooksMissing(t *testing.T) {
	boxers := clubFixture()
	b := boxers.boxers["box-far"]
	b.ID = "a3c8c0eb-4a68-44d3-b1e0-1788b0c2e74f"
	boxers.boxers[b.ID] = b
	svc := newTestScope(boxers, nil)

	_, err := svc.ResolveBoxer(context.Background(), coachActor("gym-1"), b.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResolveBoxerByNameWithinScope(t *testing.T) {
	svc := newTestScope(clubFixture(), nil)

	boxer, err := svc.ResolveBoxer(context.Background(), coachActor("gym-1"), "ali said")
	require.NoError(t, err)
	assert.Equal(t, "box-home", boxer.ID)
}

func TestResolveBoxerAmbiguousName(t *testing.T) {
	boxers := clubFixture()
	boxers.boxers["box-twin"] = models.Boxer{ID: "box-twin", PublicID: "pub-twin", DisplayName: "Ali Said", GymID: "gym-1"}
	svc := newTestScope(boxers, nil)

	_, err := svc.ResolveBoxer(context.Background(), coachActor("gym-1"), "Ali Said")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResolveBoxerUnknownName(t *testing.T) {
	svc := newTestScope(clubFixture(), nil)

	_, err := svc.ResolveBoxer(context.Background(), coachActor("gym-1"), "Nobody Here")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRequireWriterRejectsParents(t *testing.T) {
	svc := newTestScope(clubFixture(), nil)

	require.NoError(t, svc.RequireWriter(coachActor("gym-1")))
	require.NoError(t, svc.RequireWriter(adminActor()))

	err := svc.RequireWriter(parentActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrParentReadOnly.Code, appErrors.FromError(err).Code)
}
