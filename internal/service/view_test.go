package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/errors"
)

var anyTurn = domain.TurnFilter{IncludeMyTurn: true}

func TestCreateView_SlugUniquenessIsGlobal(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a := e.seedUser(t)
	b := e.seedUser(t)

	e.seedView(t, a.ID, "open-threads", anyTurn)

	// Same slug, different user: still a conflict. Uniqueness spans all views.
	_, err := e.viewSvc.CreateView(ctx, b.ID, &domain.PublicView{
		Name:       "Mine",
		Slug:       "open-threads",
		Columns:    []string{"title"},
		TurnFilter: anyTurn,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSlugExists))
}

func TestUpdateView_SelfSlugAllowed(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)

	view := e.seedView(t, u.ID, "my-slug", anyTurn)
	other := e.seedView(t, u.ID, "other-slug", anyTurn)

	// Updating into its own current slug is fine.
	view.Name = "Renamed"
	_, err := e.viewSvc.UpdateView(ctx, u.ID, view)
	require.NoError(t, err)

	// Updating into another view's slug conflicts.
	view.Slug = other.Slug
	_, err = e.viewSvc.UpdateView(ctx, u.ID, view)
	assert.True(t, errors.Is(err, errors.ErrSlugExists))
}

func TestCreateView_SlugReusableAfterDelete(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)

	view := e.seedView(t, u.ID, "recycled", anyTurn)
	require.NoError(t, e.viewSvc.DeleteView(ctx, view.ID, u.ID))

	// The old slug is immediately available again.
	e.seedView(t, u.ID, "recycled", anyTurn)
}

func TestCreateView_ShapeValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)

	base := func() *domain.PublicView {
		return &domain.PublicView{
			Name:       "View",
			Slug:       "valid-slug",
			Columns:    []string{"title"},
			SortKey:    "title",
			TurnFilter: anyTurn,
		}
	}

	tests := []struct {
		name   string
		mutate func(*domain.PublicView)
	}{
		{"missing name", func(v *domain.PublicView) { v.Name = "" }},
		{"no columns", func(v *domain.PublicView) { v.Columns = nil }},
		{"unknown column", func(v *domain.PublicView) { v.Columns = []string{"title", "bogus"} }},
		{"unknown sort key", func(v *domain.PublicView) { v.SortKey = "bogus" }},
		{"all-false turn filter", func(v *domain.PublicView) { v.TurnFilter = domain.TurnFilter{} }},
		{"bad slug format", func(v *domain.PublicView) { v.Slug = "Not A Slug" }},
		{"reserved slug", func(v *domain.PublicView) { v.Slug = "yourturn" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := base()
			tt.mutate(view)
			_, err := e.viewSvc.CreateView(ctx, u.ID, view)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestValidateSlug_ConsistentWithWritePath(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)

	view := e.seedView(t, u.ID, "taken", anyTurn)

	// Same verdicts as create/update for every case.
	assert.NoError(t, e.viewSvc.ValidateSlug(ctx, "fresh-slug", ""))

	err := e.viewSvc.ValidateSlug(ctx, "Bad Slug", "")
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))

	err = e.viewSvc.ValidateSlug(ctx, "archived", "")
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))

	err = e.viewSvc.ValidateSlug(ctx, "taken", "")
	assert.True(t, errors.Is(err, errors.ErrSlugExists))

	// Excluding the holder itself clears the conflict — the pre-submit
	// check used while editing that view.
	assert.NoError(t, e.viewSvc.ValidateSlug(ctx, "taken", view.ID))
}

func TestViewOwnership_NotFoundConflation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	owner := e.seedUser(t)
	stranger := e.seedUser(t)
	view := e.seedView(t, owner.ID, "mine", anyTurn)

	// Foreign-owned and absent views are indistinguishable.
	_, err := e.viewSvc.GetView(ctx, view.ID, stranger.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = e.viewSvc.GetView(ctx, "view-missing", owner.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	err = e.viewSvc.DeleteView(ctx, view.ID, stranger.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestViewsForUser(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a := e.seedUser(t)
	b := e.seedUser(t)
	e.seedView(t, a.ID, "one", anyTurn)
	e.seedView(t, a.ID, "two", anyTurn)
	e.seedView(t, b.ID, "three", anyTurn)

	mine, err := e.viewSvc.ViewsForUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestGetViewBySlug_Public(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)

	view := e.seedView(t, u.ID, "shared", anyTurn)

	got, err := e.viewSvc.GetViewBySlug(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)

	_, err = e.viewSvc.GetViewBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestViewFromLegacy(t *testing.T) {
	e := newTestEnv(t)

	characters := []*domain.Character{
		{ID: 1, URLIdentifier: "evelyn-url"},
		{ID: 2, URLIdentifier: "marcus-url"},
		{ID: 3, URLIdentifier: "evelyn-url"}, // duplicate identifier, both match
	}

	// Empty identifier: ALL character IDs — not "no filter". The translated
	// view pins the full roster so later-created characters stay excluded.
	view := e.viewSvc.ViewFromLegacy(&domain.LegacyPublicView{
		Name: "Legacy", Slug: "legacy-view", TurnFilter: anyTurn,
	}, characters)
	assert.Equal(t, []int64{1, 2, 3}, view.CharacterIDs)

	// Non-empty identifier: matching characters only.
	view = e.viewSvc.ViewFromLegacy(&domain.LegacyPublicView{
		Name: "Legacy", Slug: "legacy-view", CharacterURLIdentifier: "evelyn-url", TurnFilter: anyTurn,
	}, characters)
	assert.Equal(t, []int64{1, 3}, view.CharacterIDs)

	// Non-matching identifier: empty set (which the engine then reads as
	// "no restriction" — the preserved asymmetry).
	view = e.viewSvc.ViewFromLegacy(&domain.LegacyPublicView{
		Name: "Legacy", Slug: "legacy-view", CharacterURLIdentifier: "nobody", TurnFilter: anyTurn,
	}, characters)
	assert.Empty(t, view.CharacterIDs)

	// Shape fields carry over.
	legacy := &domain.LegacyPublicView{
		Name: "Legacy", Slug: "slug", Columns: []string{"title"},
		SortKey: "title", SortDescending: true, Tags: []string{"angst"},
		TurnFilter: anyTurn,
	}
	view = e.viewSvc.ViewFromLegacy(legacy, nil)
	assert.Equal(t, legacy.Name, view.Name)
	assert.Equal(t, legacy.Slug, view.Slug)
	assert.Equal(t, legacy.Columns, view.Columns)
	assert.True(t, view.SortDescending)
	assert.Equal(t, legacy.Tags, view.Tags)
}
