package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/errors"
	"github.com/threadkeep/threadkeep-server/internal/id"
	"github.com/threadkeep/threadkeep-server/internal/store"
	"github.com/threadkeep/threadkeep-server/internal/store/sqlite"
)

// ThreadService is the thread aggregation engine plus thread CRUD. The three
// retrieval modes are all scoped to a user first — threads belonging to
// another user's characters never appear, regardless of filter flags — and
// all return unordered sets; sorting belongs to the presentation layer.
type ThreadService struct {
	store  *sqlite.Store
	guard  *OwnershipGuard
	logger *slog.Logger
}

// NewThreadService creates a thread service.
func NewThreadService(store *sqlite.Store, guard *OwnershipGuard, logger *slog.Logger) *ThreadService {
	return &ThreadService{
		store:  store,
		guard:  guard,
		logger: logger,
	}
}

// GetThreads is flat mode: threads whose Archived flag equals archived AND
// whose owning character is not on hiatus. Hiatus exclusion is unconditional
// here; there is no flag to widen it. An unknown user yields an empty
// result, not an error.
func (s *ThreadService) GetThreads(ctx context.Context, userID string, archived bool) ([]*domain.Thread, error) {
	threads, err := s.store.ListThreads(ctx, userID, store.ThreadQuery{
		Archived: &archived,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list threads")
	}
	return threads, nil
}

// GetThreadsByCharacter is grouped mode: a map from character ID to that
// character's threads, filtered by `includeArchived OR NOT archived` and
// `includeHiatused OR NOT onHiatus`. Both flags widen independently.
// Characters with zero matching threads are absent from the map, not present
// with an empty slice.
func (s *ThreadService) GetThreadsByCharacter(ctx context.Context, userID string, includeArchived, includeHiatused bool) (map[int64][]*domain.Thread, error) {
	q := store.ThreadQuery{IncludeHiatused: includeHiatused}
	if !includeArchived {
		q.Archived = store.Bool(false)
	}

	threads, err := s.store.ListThreads(ctx, userID, q)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list threads")
	}

	grouped := make(map[int64][]*domain.Thread)
	for _, th := range threads {
		grouped[th.CharacterID] = append(grouped[th.CharacterID], th)
	}
	return grouped, nil
}

// GetThreadsForView is view-driven mode. The candidate set is the union of
// the user's archived threads (if the filter includes archived) and the
// user's non-archived threads (if any of the turn flags is set — the engine
// doesn't know whose turn it is, it only gates archived-vs-active by the
// presence of a turn flag). Candidates are then narrowed by the view's
// character set and tag set; an empty set means no restriction on that
// dimension, not "match nothing".
//
// An all-false TurnFilter must be rejected by validation before reaching
// here; its behavior is undefined.
func (s *ThreadService) GetThreadsForView(ctx context.Context, view *domain.PublicView) ([]*domain.Thread, error) {
	includeArchived := view.TurnFilter.IncludeArchived
	includeActive := view.TurnFilter.IncludesActive()

	q := store.ThreadQuery{IncludeHiatused: true, WithCharacter: true}
	switch {
	case includeArchived && includeActive:
		// both states: no archive narrowing
	case includeArchived:
		q.Archived = store.Bool(true)
	case includeActive:
		q.Archived = store.Bool(false)
	default:
		return nil, nil
	}

	candidates, err := s.store.ListThreads(ctx, view.UserID, q)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list threads")
	}

	var result []*domain.Thread
	for _, th := range candidates {
		if len(view.CharacterIDs) > 0 && !containsInt64(view.CharacterIDs, th.CharacterID) {
			continue
		}
		if len(view.Tags) > 0 && !th.HasAnyTag(view.Tags) {
			continue
		}
		result = append(result, th)
	}
	return result, nil
}

// GetThread retrieves one of the user's threads with its owning character
// loaded.
func (s *ThreadService) GetThread(ctx context.Context, threadID int64, userID string) (*domain.Thread, error) {
	if err := s.guard.AssertOwnsThread(ctx, threadID, userID); err != nil {
		return nil, err
	}

	th, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "get thread")
	}
	return th, nil
}

// CreateThread logs a new thread against one of the user's characters. The
// character relationship is verified here because nothing at the API
// boundary ties the thread to the acting user.
func (s *ThreadService) CreateThread(ctx context.Context, userID string, th *domain.Thread) (*domain.Thread, error) {
	if err := s.guard.AssertOwnsCharacter(ctx, th.CharacterID, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	th.CreatedAt = now
	th.UpdatedAt = now
	if err := s.assignTagIDs(th); err != nil {
		return nil, err
	}

	if err := s.store.CreateThread(ctx, th); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create thread")
	}

	s.logger.Info("thread created",
		"thread_id", th.ID,
		"character_id", th.CharacterID,
		"user_id", userID,
	)
	return th, nil
}

// UpdateThread replaces a thread, including its entire tag set. Both the
// thread and the (possibly new) character are re-verified against the user:
// a thread can move between characters only within the same owner.
func (s *ThreadService) UpdateThread(ctx context.Context, userID string, th *domain.Thread) (*domain.Thread, error) {
	if err := s.guard.AssertOwnsThread(ctx, th.ID, userID); err != nil {
		return nil, err
	}
	if err := s.guard.AssertOwnsCharacter(ctx, th.CharacterID, userID); err != nil {
		return nil, err
	}

	th.UpdatedAt = time.Now()
	if err := s.assignTagIDs(th); err != nil {
		return nil, err
	}

	if err := s.store.UpdateThread(ctx, th); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("thread not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "update thread")
	}
	return th, nil
}

// DeleteThread removes a thread and its tags.
func (s *ThreadService) DeleteThread(ctx context.Context, threadID int64, userID string) error {
	if err := s.guard.AssertOwnsThread(ctx, threadID, userID); err != nil {
		return err
	}

	if err := s.store.DeleteThread(ctx, threadID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("thread not found")
		}
		return errors.Wrap(err, errors.CodeInternal, "delete thread")
	}

	s.logger.Info("thread deleted", "thread_id", threadID, "user_id", userID)
	return nil
}

// assignTagIDs gives every tag row without an ID a fresh one. Update
// replaces the whole tag set, so incoming rows usually arrive bare.
func (s *ThreadService) assignTagIDs(th *domain.Thread) error {
	for i := range th.Tags {
		if th.Tags[i].ID != "" {
			continue
		}
		tagID, err := id.Generate("ttag")
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "generate tag id")
		}
		th.Tags[i].ID = tagID
	}
	return nil
}

func containsInt64(haystack []int64, needle int64) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
