package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/errors"
)

func TestGetThreads_FlatMode(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)

	active := e.seedCharacter(t, u.ID, "active", false)
	hiatused := e.seedCharacter(t, u.ID, "hiatused", true)

	activeThread := e.seedThread(t, u.ID, active.ID, "active thread", false)
	archivedThread := e.seedThread(t, u.ID, active.ID, "archived thread", true)
	e.seedThread(t, u.ID, hiatused.ID, "hiatus thread", false)
	e.seedThread(t, u.ID, hiatused.ID, "hiatus archived", true)

	// Hiatus exclusion is unconditional in flat mode.
	got, err := e.threads.GetThreads(ctx, u.ID, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{activeThread.ID}, ids(got))

	got, err = e.threads.GetThreads(ctx, u.ID, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{archivedThread.ID}, ids(got))
}

func TestGetThreads_ArchivePartitionDisjoint(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)
	c := e.seedCharacter(t, u.ID, "evelyn", false)

	e.seedThread(t, u.ID, c.ID, "one", false)
	e.seedThread(t, u.ID, c.ID, "two", true)
	e.seedThread(t, u.ID, c.ID, "three", false)

	activeSet, err := e.threads.GetThreads(ctx, u.ID, false)
	require.NoError(t, err)
	archivedSet, err := e.threads.GetThreads(ctx, u.ID, true)
	require.NoError(t, err)

	seen := make(map[int64]bool)
	for _, th := range activeSet {
		seen[th.ID] = true
	}
	for _, th := range archivedSet {
		assert.False(t, seen[th.ID], "thread %d in both partitions", th.ID)
	}
	assert.Len(t, activeSet, 2)
	assert.Len(t, archivedSet, 1)
}

func TestGetThreads_OwnershipIsolation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	mine := e.seedUser(t)
	theirs := e.seedUser(t)
	myChar := e.seedCharacter(t, mine.ID, "mine", false)
	theirChar := e.seedCharacter(t, theirs.ID, "theirs", false)

	myThread := e.seedThread(t, mine.ID, myChar.ID, "my thread", false)
	theirThread := e.seedThread(t, theirs.ID, theirChar.ID, "their thread", false)

	// Every retrieval mode, same property: no cross-user leakage.
	flat, err := e.threads.GetThreads(ctx, mine.ID, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{myThread.ID}, ids(flat))

	grouped, err := e.threads.GetThreadsByCharacter(ctx, mine.ID, true, true)
	require.NoError(t, err)
	assert.NotContains(t, grouped, theirChar.ID)

	view := &domain.PublicView{
		UserID:     mine.ID,
		TurnFilter: domain.TurnFilter{IncludeMyTurn: true, IncludeArchived: true},
	}
	viewed, err := e.threads.GetThreadsForView(ctx, view)
	require.NoError(t, err)
	assert.NotContains(t, ids(viewed), theirThread.ID)

	// Unknown user: empty result, no error.
	flat, err = e.threads.GetThreads(ctx, "user-unknown", false)
	require.NoError(t, err)
	assert.Empty(t, flat)
}

func TestGetThreadsByCharacter_MonotonicWidening(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)

	active := e.seedCharacter(t, u.ID, "active", false)
	hiatused := e.seedCharacter(t, u.ID, "hiatused", true)
	e.seedThread(t, u.ID, active.ID, "a1", false)
	e.seedThread(t, u.ID, active.ID, "a2", true)
	e.seedThread(t, u.ID, hiatused.ID, "h1", false)
	e.seedThread(t, u.ID, hiatused.ID, "h2", true)

	count := func(includeArchived, includeHiatused bool) int {
		grouped, err := e.threads.GetThreadsByCharacter(ctx, u.ID, includeArchived, includeHiatused)
		require.NoError(t, err)
		total := 0
		for _, threads := range grouped {
			total += len(threads)
		}
		return total
	}

	base := count(false, false)
	withArchived := count(true, false)
	withHiatused := count(false, true)
	both := count(true, true)

	// Flipping a flag to true can only widen, never shrink.
	assert.GreaterOrEqual(t, withArchived, base)
	assert.GreaterOrEqual(t, withHiatused, base)
	assert.GreaterOrEqual(t, both, withArchived)
	assert.GreaterOrEqual(t, both, withHiatused)
	assert.Equal(t, 1, base)
	assert.Equal(t, 4, both)
}

func TestGetThreadsByCharacter_EndToEndScenario(t *testing.T) {
	// User owns characters A (active) and B (hiatused), each with one
	// active and one archived thread. Narrowest grouped query returns only
	// {A: [activeThread]}.
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)

	a := e.seedCharacter(t, u.ID, "a", false)
	b := e.seedCharacter(t, u.ID, "b", true)

	aActive := e.seedThread(t, u.ID, a.ID, "a active", false)
	e.seedThread(t, u.ID, a.ID, "a archived", true)
	e.seedThread(t, u.ID, b.ID, "b active", false)
	e.seedThread(t, u.ID, b.ID, "b archived", true)

	grouped, err := e.threads.GetThreadsByCharacter(ctx, u.ID, false, false)
	require.NoError(t, err)

	require.Len(t, grouped, 1, "B must be entirely absent, not present with an empty list")
	require.Contains(t, grouped, a.ID)
	assert.ElementsMatch(t, []int64{aActive.ID}, ids(grouped[a.ID]))
}

func TestGetThreadsForView_TurnFilterGating(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)
	c := e.seedCharacter(t, u.ID, "evelyn", false)

	activeThread := e.seedThread(t, u.ID, c.ID, "active", false)
	archivedThread := e.seedThread(t, u.ID, c.ID, "archived", true)

	// Any single turn flag admits all non-archived threads.
	got, err := e.threads.GetThreadsForView(ctx, &domain.PublicView{
		UserID:     u.ID,
		TurnFilter: domain.TurnFilter{IncludeQueued: true},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{activeThread.ID}, ids(got))

	// Archived-only filter admits only archived threads.
	got, err = e.threads.GetThreadsForView(ctx, &domain.PublicView{
		UserID:     u.ID,
		TurnFilter: domain.TurnFilter{IncludeArchived: true},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{archivedThread.ID}, ids(got))

	// Both: union.
	got, err = e.threads.GetThreadsForView(ctx, &domain.PublicView{
		UserID:     u.ID,
		TurnFilter: domain.TurnFilter{IncludeMyTurn: true, IncludeArchived: true},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{activeThread.ID, archivedThread.ID}, ids(got))
}

func TestGetThreadsForView_CharacterAndTagNarrowing(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)

	c1 := e.seedCharacter(t, u.ID, "one", false)
	c2 := e.seedCharacter(t, u.ID, "two", false)

	tagged := e.seedThread(t, u.ID, c1.ID, "tagged", false, "angst")
	untagged := e.seedThread(t, u.ID, c1.ID, "untagged", false)
	other := e.seedThread(t, u.ID, c2.ID, "other char", false, "angst")

	allTurns := domain.TurnFilter{IncludeMyTurn: true, IncludeTheirTurn: true, IncludeQueued: true}

	// Empty characterIds and tags: no restriction on either dimension.
	got, err := e.threads.GetThreadsForView(ctx, &domain.PublicView{UserID: u.ID, TurnFilter: allTurns})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// Character narrowing.
	got, err = e.threads.GetThreadsForView(ctx, &domain.PublicView{
		UserID: u.ID, TurnFilter: allTurns, CharacterIDs: []int64{c1.ID},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{tagged.ID, untagged.ID}, ids(got))

	// Tag narrowing is case-sensitive intersection.
	got, err = e.threads.GetThreadsForView(ctx, &domain.PublicView{
		UserID: u.ID, TurnFilter: allTurns, Tags: []string{"angst"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{tagged.ID, other.ID}, ids(got))

	got, err = e.threads.GetThreadsForView(ctx, &domain.PublicView{
		UserID: u.ID, TurnFilter: allTurns, Tags: []string{"ANGST"},
	})
	require.NoError(t, err)
	assert.Empty(t, got, "tag narrowing must be case-sensitive")

	// Both dimensions together.
	got, err = e.threads.GetThreadsForView(ctx, &domain.PublicView{
		UserID: u.ID, TurnFilter: allTurns, CharacterIDs: []int64{c2.ID}, Tags: []string{"angst"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{other.ID}, ids(got))
}

func TestThreadCRUD_OwnershipGuards(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	owner := e.seedUser(t)
	stranger := e.seedUser(t)
	c := e.seedCharacter(t, owner.ID, "mine", false)
	strangerChar := e.seedCharacter(t, stranger.ID, "theirs", false)
	th := e.seedThread(t, owner.ID, c.ID, "thread", false)

	// A stranger probing the thread gets NOT_FOUND, never FORBIDDEN.
	_, err := e.threads.GetThread(ctx, th.ID, stranger.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	err = e.threads.DeleteThread(ctx, th.ID, stranger.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// Creating a thread against someone else's character fails the same way.
	_, err = e.threads.CreateThread(ctx, owner.ID, &domain.Thread{
		CharacterID: strangerChar.ID,
		UserTitle:   "sneaky",
	})
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// Moving a thread to someone else's character fails on the character check.
	th.CharacterID = strangerChar.ID
	_, err = e.threads.UpdateThread(ctx, owner.ID, th)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdateThread_ReplacesTagSet(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.seedUser(t)
	c := e.seedCharacter(t, u.ID, "evelyn", false)
	th := e.seedThread(t, u.ID, c.ID, "thread", false, "old-tag")

	th.Tags = []domain.ThreadTag{{Text: "new-tag"}}
	updated, err := e.threads.UpdateThread(ctx, u.ID, th)
	require.NoError(t, err)

	got, err := e.threads.GetThread(ctx, updated.ID, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "new-tag", got.Tags[0].Text)
	assert.NotEmpty(t, got.Tags[0].ID, "service assigns IDs to bare tag rows")
}
