package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/store/sqlite"
	"github.com/threadkeep/threadkeep-server/internal/store/views"
)

// testEnv wires real temp-dir stores and every service, the way the DI
// container does in production. No mocks.
type testEnv struct {
	store      *sqlite.Store
	views      *views.Store
	guard      *OwnershipGuard
	characters *CharacterService
	threads    *ThreadService
	tags       *TagService
	viewSvc    *ViewService
	export     *ExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.Default()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	vs, err := views.Open(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { vs.Close() })

	guard := NewOwnershipGuard(db, vs, logger)
	characters := NewCharacterService(db, guard, logger)
	threads := NewThreadService(db, guard, logger)

	return &testEnv{
		store:      db,
		views:      vs,
		guard:      guard,
		characters: characters,
		threads:    threads,
		tags:       NewTagService(db, logger),
		viewSvc:    NewViewService(vs, guard, logger),
		export:     NewExportService(threads, characters, logger),
	}
}

var envUserSeq int

func (e *testEnv) seedUser(t *testing.T) *domain.User {
	t.Helper()

	envUserSeq++
	now := time.Now()
	u := &domain.User{
		ID:           fmt.Sprintf("user-svc%d", envUserSeq),
		Email:        fmt.Sprintf("svc%d@example.com", envUserSeq),
		PasswordHash: "$argon2id$fake",
		DisplayName:  "Test Mun",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) seedCharacter(t *testing.T, userID, name string, onHiatus bool) *domain.Character {
	t.Helper()

	c, err := e.characters.CreateCharacter(context.Background(), userID, &domain.Character{
		Name:          name,
		URLIdentifier: name + "-url",
		OnHiatus:      onHiatus,
		Platform:      domain.PlatformTumblr,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) seedThread(t *testing.T, userID string, characterID int64, title string, archived bool, tagTexts ...string) *domain.Thread {
	t.Helper()

	th := &domain.Thread{
		CharacterID: characterID,
		UserTitle:   title,
		Archived:    archived,
	}
	for _, text := range tagTexts {
		th.Tags = append(th.Tags, domain.ThreadTag{Text: text})
	}
	th, err := e.threads.CreateThread(context.Background(), userID, th)
	require.NoError(t, err)
	return th
}

func (e *testEnv) seedView(t *testing.T, userID, slug string, filter domain.TurnFilter) *domain.PublicView {
	t.Helper()

	view, err := e.viewSvc.CreateView(context.Background(), userID, &domain.PublicView{
		Name:       "View " + slug,
		Slug:       slug,
		Columns:    []string{"title", "tags"},
		SortKey:    "title",
		TurnFilter: filter,
	})
	require.NoError(t, err)
	return view
}

func ids(threads []*domain.Thread) []int64 {
	result := make([]int64, len(threads))
	for i, th := range threads {
		result[i] = th.ID
	}
	return result
}
