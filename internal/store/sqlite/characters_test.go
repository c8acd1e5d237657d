package sqlite

import (
	"context"
	"testing"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/store"
)

func TestCharacterCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s)
	c := mustCreateCharacter(t, s, u.ID, "evelyn", false)

	if c.ID == 0 {
		t.Fatal("CreateCharacter should assign an integer ID")
	}

	got, err := s.GetCharacter(ctx, c.ID)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if got.Name != "evelyn" || got.Platform != domain.PlatformTumblr || got.OnHiatus {
		t.Errorf("got %+v", got)
	}

	got.OnHiatus = true
	got.Name = "evelyn-archive"
	if err := s.UpdateCharacter(ctx, got); err != nil {
		t.Fatalf("update character: %v", err)
	}

	got2, err := s.GetCharacter(ctx, c.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if !got2.OnHiatus || got2.Name != "evelyn-archive" {
		t.Errorf("update not persisted: %+v", got2)
	}

	if err := s.DeleteCharacter(ctx, c.ID); err != nil {
		t.Fatalf("delete character: %v", err)
	}
	if _, err := s.GetCharacter(ctx, c.ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCharacter_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetCharacter(ctx, 9999); err != store.ErrNotFound {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateCharacter(ctx, &domain.Character{ID: 9999}); err != store.ErrNotFound {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteCharacter(ctx, 9999); err != store.ErrNotFound {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestListCharactersByUser_HiatusFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s)
	active := mustCreateCharacter(t, s, u.ID, "active", false)
	hiatused := mustCreateCharacter(t, s, u.ID, "hiatused", true)

	// Another user's characters never appear.
	other := mustCreateUser(t, s)
	mustCreateCharacter(t, s, other.ID, "foreign", false)

	all, err := s.ListCharactersByUser(ctx, u.ID, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d characters, want 2", len(all))
	}

	activeOnly, err := s.ListCharactersByUser(ctx, u.ID, false)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(activeOnly) != 1 || activeOnly[0].ID != active.ID {
		t.Errorf("active-only list should contain just %d, got %+v", active.ID, activeOnly)
	}
	_ = hiatused
}

func TestCharacterOwnedBy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s)
	stranger := mustCreateUser(t, s)
	c := mustCreateCharacter(t, s, owner.ID, "mine", false)

	owned, err := s.CharacterOwnedBy(ctx, c.ID, owner.ID)
	if err != nil {
		t.Fatalf("owned check: %v", err)
	}
	if !owned {
		t.Error("owner should own their character")
	}

	// Foreign-owned and absent both come back false, indistinguishably.
	owned, err = s.CharacterOwnedBy(ctx, c.ID, stranger.ID)
	if err != nil {
		t.Fatalf("foreign check: %v", err)
	}
	if owned {
		t.Error("stranger should not own the character")
	}

	owned, err = s.CharacterOwnedBy(ctx, 9999, owner.ID)
	if err != nil {
		t.Fatalf("absent check: %v", err)
	}
	if owned {
		t.Error("absent character should not be owned")
	}
}

func TestDeleteCharacter_CascadesThreads(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s)
	c := mustCreateCharacter(t, s, u.ID, "doomed", false)
	th := mustCreateThread(t, s, c.ID, "a thread", false, "angst")

	if err := s.DeleteCharacter(ctx, c.ID); err != nil {
		t.Fatalf("delete character: %v", err)
	}
	if _, err := s.GetThread(ctx, th.ID); err != store.ErrNotFound {
		t.Errorf("thread should cascade-delete, got %v", err)
	}
	tags, err := s.ListThreadTags(ctx, u.ID)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("tags should cascade-delete, got %d rows", len(tags))
	}
}
