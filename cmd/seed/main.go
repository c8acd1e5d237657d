// Package main provides a tool to seed the database with demo tracking data.
//
// This creates a demo account with a couple of characters, a handful of
// threads in various states, and a shared public view, so the API has
// something to show during development.
//
// Usage:
//
//	DATA_PATH=~/ThreadKeep/data go run ./cmd/seed
//	DATA_PATH=~/ThreadKeep/data go run ./cmd/seed --email muse@example.com
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/threadkeep/threadkeep-server/internal/auth"
	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/service"
	"github.com/threadkeep/threadkeep-server/internal/store/sqlite"
	"github.com/threadkeep/threadkeep-server/internal/store/views"
)

var (
	email    = flag.String("email", "demo@example.com", "Email for the demo account")
	password = flag.String("password", "demo-password-change-me", "Password for the demo account")
)

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/ThreadKeep/data")
	}

	fmt.Printf("Seeding data under: %s\n", dataPath)

	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := sqlite.Open(filepath.Join(dataPath, "threadkeep.db"), logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	vs, err := views.Open(filepath.Join(dataPath, "views"), logger)
	if err != nil {
		log.Fatalf("Failed to open view store: %v", err)
	}
	defer vs.Close()

	guard := service.NewOwnershipGuard(db, vs, logger)
	threadService := service.NewThreadService(db, guard, logger)
	characterService := service.NewCharacterService(db, guard, logger)
	viewService := service.NewViewService(vs, guard, logger)

	ctx := context.Background()

	user := findOrCreateUser(ctx, db, *email, *password)
	fmt.Printf("Using account: %s (%s)\n", user.Email, user.ID)

	evelyn := mustCreateCharacter(ctx, characterService, user.ID, &domain.Character{
		Name:          "Evelyn Blackwood",
		URLIdentifier: "evelynwrites",
		Platform:      domain.PlatformTumblr,
	})
	marcus := mustCreateCharacter(ctx, characterService, user.ID, &domain.Character{
		Name:          "Marcus Hale",
		URLIdentifier: "halefire-muse",
		Platform:      domain.PlatformDreamwidth,
		OnHiatus:      true,
	})
	fmt.Printf("Created characters: %s, %s\n", evelyn.Name, marcus.Name)

	queuedAt := time.Now().AddDate(0, 0, -3)
	seedThreads := []*domain.Thread{
		{
			CharacterID:          evelyn.ID,
			UserTitle:            "the lighthouse keeper's daughter",
			PartnerURLIdentifier: "moonlit-muse",
			PostID:               "724519038261",
			Tags:                 tagSet("angst", "slow-burn"),
		},
		{
			CharacterID:          evelyn.ID,
			UserTitle:            "reply owed: dockside argument",
			PartnerURLIdentifier: "salt-and-stories",
			DateMarkedQueued:     &queuedAt,
			Tags:                 tagSet("drama"),
		},
		{
			CharacterID: evelyn.ID,
			UserTitle:   "finished: the winter ball",
			Archived:    true,
			Tags:        tagSet("fluff", "resolved"),
		},
		{
			CharacterID:          marcus.ID,
			UserTitle:            "on hold until hiatus ends",
			PartnerURLIdentifier: "moonlit-muse",
		},
	}
	for _, th := range seedThreads {
		created, err := threadService.CreateThread(ctx, user.ID, th)
		if err != nil {
			log.Fatalf("Failed to create thread %q: %v", th.UserTitle, err)
		}
		fmt.Printf("Created thread: %s (#%d)\n", created.UserTitle, created.ID)
	}

	view, err := viewService.CreateView(ctx, user.ID, &domain.PublicView{
		Name:         "Open Threads",
		Slug:         "evelyn-open-threads",
		Columns:      []string{"title", "partner", "tags"},
		CharacterIDs: []int64{evelyn.ID},
		SortKey:      "title",
		TurnFilter:   domain.TurnFilter{IncludeMyTurn: true, IncludeTheirTurn: true},
	})
	if err != nil {
		// A re-run hits the slug from the previous run. Not fatal.
		fmt.Printf("Skipping public view: %v\n", err)
	} else {
		fmt.Printf("Created public view: /p/%s\n", view.Slug)
	}

	fmt.Println("Done.")
}

// mustCreateCharacter creates a character or exits. Re-running the seeder
// against a populated database will duplicate names; wipe DATA_PATH first.
func mustCreateCharacter(ctx context.Context, characters *service.CharacterService, userID string, c *domain.Character) *domain.Character {
	created, err := characters.CreateCharacter(ctx, userID, c)
	if err != nil {
		log.Fatalf("Failed to create character %q: %v", c.Name, err)
	}
	return created
}

// tagSet builds thread tags from plain strings.
func tagSet(texts ...string) []domain.ThreadTag {
	tags := make([]domain.ThreadTag, len(texts))
	for i, text := range texts {
		tags[i] = domain.ThreadTag{Text: text}
	}
	return tags
}

// findOrCreateUser registers the demo account, falling back to the existing
// row when the seeder has run before.
func findOrCreateUser(ctx context.Context, db *sqlite.Store, email, password string) *domain.User {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// The auth service constructor wants a token service, but the seeder
	// never issues tokens. A throwaway key is fine.
	throwaway := make([]byte, 32)
	if _, err := rand.Read(throwaway); err != nil {
		log.Fatalf("Failed to generate throwaway key: %v", err)
	}
	tokens, err := auth.NewTokenService(hex.EncodeToString(throwaway), time.Minute, time.Minute)
	if err != nil {
		log.Fatalf("Failed to build token service: %v", err)
	}
	authService := service.NewAuthService(db, tokens, logger)

	user, err := authService.Register(ctx, email, password, "Demo Mun")
	if err == nil {
		return user
	}

	user, lookupErr := db.GetUserByEmail(ctx, strings.ToLower(email))
	if lookupErr != nil {
		log.Fatalf("Failed to register demo account: %v", err)
	}
	return user
}
