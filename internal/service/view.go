package service

import (
	"context"
	"log/slog"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/errors"
	"github.com/threadkeep/threadkeep-server/internal/store"
	"github.com/threadkeep/threadkeep-server/internal/store/views"
)

// ViewService is the public view manager. It owns the global slug
// uniqueness rule: the store accepts any slug, so every create/update runs a
// full-store scan here before writing. Two simultaneous creates with the
// same slug can both pass the scan — that race is accepted, and the public
// endpoint resolves it by serving whichever view its own scan finds first.
type ViewService struct {
	views  *views.Store
	guard  *OwnershipGuard
	logger *slog.Logger
}

// NewViewService creates a view service.
func NewViewService(views *views.Store, guard *OwnershipGuard, logger *slog.Logger) *ViewService {
	return &ViewService{
		views:  views,
		guard:  guard,
		logger: logger,
	}
}

// CreateView validates the view's shape and slug, checks global slug
// uniqueness, and persists. Returns SLUG_EXISTS when any view in the whole
// store already holds the slug.
func (s *ViewService) CreateView(ctx context.Context, userID string, view *domain.PublicView) (*domain.PublicView, error) {
	view.UserID = userID
	view.ID = ""

	if err := s.validateShape(view); err != nil {
		return nil, err
	}
	if err := s.assertSlugAvailable(ctx, view.Slug, ""); err != nil {
		return nil, err
	}

	if err := s.views.CreateView(ctx, view); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create view")
	}
	return view, nil
}

// UpdateView replaces a view. A view may update into its own current slug;
// the conflict only fires when a different view ID holds it.
func (s *ViewService) UpdateView(ctx context.Context, userID string, view *domain.PublicView) (*domain.PublicView, error) {
	if err := s.guard.AssertOwnsPublicView(ctx, view.ID, userID); err != nil {
		return nil, err
	}

	view.UserID = userID
	if err := s.validateShape(view); err != nil {
		return nil, err
	}
	if err := s.assertSlugAvailable(ctx, view.Slug, view.ID); err != nil {
		return nil, err
	}

	if err := s.views.UpdateView(ctx, view); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("view not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "update view")
	}
	return view, nil
}

// DeleteView removes a view. Its slug becomes immediately reusable.
func (s *ViewService) DeleteView(ctx context.Context, viewID, userID string) error {
	if err := s.guard.AssertOwnsPublicView(ctx, viewID, userID); err != nil {
		return err
	}

	if err := s.views.DeleteView(ctx, viewID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("view not found")
		}
		return errors.Wrap(err, errors.CodeInternal, "delete view")
	}
	return nil
}

// ViewsForUser lists the user's own views.
func (s *ViewService) ViewsForUser(ctx context.Context, userID string) ([]*domain.PublicView, error) {
	result, err := s.views.ListViewsByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list views")
	}
	return result, nil
}

// GetView retrieves one of the user's views.
func (s *ViewService) GetView(ctx context.Context, viewID, userID string) (*domain.PublicView, error) {
	if err := s.guard.AssertOwnsPublicView(ctx, viewID, userID); err != nil {
		return nil, err
	}

	view, err := s.views.GetView(ctx, viewID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "get view")
	}
	return view, nil
}

// GetViewBySlug resolves a view for the public, unauthenticated endpoint.
func (s *ViewService) GetViewBySlug(ctx context.Context, slug string) (*domain.PublicView, error) {
	view, err := s.views.GetViewBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("view not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "get view by slug")
	}
	return view, nil
}

// ValidateSlug is the pre-submit validation pass: format, reserved list, and
// uniqueness excluding the view currently being edited. This deliberately
// re-implements the same rule enforced on create/update — the two paths are
// kept consistent by test, not by shared code, because the pre-submit check
// runs against a caller-supplied exclusion while the write path derives it.
func (s *ViewService) ValidateSlug(ctx context.Context, slug, excludeViewID string) error {
	if !domain.IsValidSlugFormat(slug) {
		return errors.InvalidConfig("slug must be lowercase letters, digits, and single hyphens")
	}
	if domain.IsReservedSlug(slug) {
		return errors.InvalidConfigf("slug %q is reserved", slug)
	}

	all, err := s.views.ListAllViews(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "list views")
	}
	for _, existing := range all {
		if existing.Slug == slug && existing.ID != excludeViewID {
			return errors.SlugExists("slug already in use")
		}
	}
	return nil
}

// ViewFromLegacy translates the older single-character view shape into the
// current one. An empty legacy URL identifier selects ALL of the given
// characters' IDs — not "no filter", unlike the engine's empty-set rule;
// the asymmetry is deliberate and preserved. A non-empty identifier selects
// the matching characters' IDs, which may be none.
func (s *ViewService) ViewFromLegacy(legacy *domain.LegacyPublicView, characters []*domain.Character) *domain.PublicView {
	var characterIDs []int64
	if legacy.CharacterURLIdentifier == "" {
		for _, c := range characters {
			characterIDs = append(characterIDs, c.ID)
		}
	} else {
		for _, c := range characters {
			if c.URLIdentifier == legacy.CharacterURLIdentifier {
				characterIDs = append(characterIDs, c.ID)
			}
		}
	}

	return &domain.PublicView{
		Name:           legacy.Name,
		Slug:           legacy.Slug,
		Columns:        legacy.Columns,
		CharacterIDs:   characterIDs,
		Tags:           legacy.Tags,
		SortKey:        legacy.SortKey,
		SortDescending: legacy.SortDescending,
		TurnFilter:     legacy.TurnFilter,
	}
}

// validateShape checks everything about a view except slug uniqueness.
func (s *ViewService) validateShape(view *domain.PublicView) error {
	if view.Name == "" {
		return errors.InvalidConfig("view name is required")
	}
	if len(view.Columns) == 0 {
		return errors.InvalidConfig("view must display at least one column")
	}
	for _, col := range view.Columns {
		if !domain.IsAllowedViewColumn(col) {
			return errors.InvalidConfigf("unknown column %q", col)
		}
	}
	if view.SortKey != "" && !domain.IsAllowedViewColumn(view.SortKey) {
		return errors.InvalidConfigf("unknown sort key %q", view.SortKey)
	}
	if !view.TurnFilter.IsValid() {
		return errors.InvalidConfig("turn filter must include at least one category")
	}
	if !domain.IsValidSlugFormat(view.Slug) {
		return errors.InvalidConfig("slug must be lowercase letters, digits, and single hyphens")
	}
	if domain.IsReservedSlug(view.Slug) {
		return errors.InvalidConfigf("slug %q is reserved", view.Slug)
	}
	return nil
}

// assertSlugAvailable scans every view in the store for a slug collision,
// excluding the view being edited. The check-then-write window is the
// accepted race documented on the service.
func (s *ViewService) assertSlugAvailable(ctx context.Context, slug, excludeViewID string) error {
	all, err := s.views.ListAllViews(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "list views")
	}
	for _, existing := range all {
		if existing.Slug == slug && existing.ID != excludeViewID {
			return errors.SlugExists("slug already in use")
		}
	}
	return nil
}
