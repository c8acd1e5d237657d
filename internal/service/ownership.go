// Package service holds the core application services: ownership guarding,
// the character directory, the thread aggregation engine, the tag/partner
// vocabulary manager, the public view manager, export, and auth.
package service

import (
	"context"
	"log/slog"

	"github.com/threadkeep/threadkeep-server/internal/errors"
	"github.com/threadkeep/threadkeep-server/internal/store"
	"github.com/threadkeep/threadkeep-server/internal/store/sqlite"
	"github.com/threadkeep/threadkeep-server/internal/store/views"
)

// OwnershipGuard verifies that a resource belongs to the acting user before
// any mutation touches it. All three checks are read-only.
//
// Every failure is a NOT_FOUND: "exists but belongs to someone else" and
// "does not exist" are deliberately indistinguishable, so resource IDs can't
// be enumerated across users.
type OwnershipGuard struct {
	store  *sqlite.Store
	views  *views.Store
	logger *slog.Logger
}

// NewOwnershipGuard creates an ownership guard over both stores.
func NewOwnershipGuard(store *sqlite.Store, views *views.Store, logger *slog.Logger) *OwnershipGuard {
	return &OwnershipGuard{
		store:  store,
		views:  views,
		logger: logger,
	}
}

// AssertOwnsCharacter returns a NOT_FOUND error unless the character exists
// and belongs to the user.
func (g *OwnershipGuard) AssertOwnsCharacter(ctx context.Context, characterID int64, userID string) error {
	owned, err := g.store.CharacterOwnedBy(ctx, characterID, userID)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "check character ownership")
	}
	if !owned {
		return errors.NotFound("character not found")
	}
	return nil
}

// AssertOwnsThread returns a NOT_FOUND error unless the thread exists and its
// character belongs to the user. Threads carry no user id of their own; the
// check joins through the character on every call.
func (g *OwnershipGuard) AssertOwnsThread(ctx context.Context, threadID int64, userID string) error {
	owned, err := g.store.ThreadOwnedBy(ctx, threadID, userID)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "check thread ownership")
	}
	if !owned {
		return errors.NotFound("thread not found")
	}
	return nil
}

// AssertOwnsPublicView returns a NOT_FOUND error unless the view exists and
// belongs to the user.
func (g *OwnershipGuard) AssertOwnsPublicView(ctx context.Context, viewID, userID string) error {
	view, err := g.views.GetView(ctx, viewID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("view not found")
		}
		return errors.Wrap(err, errors.CodeInternal, "check view ownership")
	}
	if view.UserID != userID {
		return errors.NotFound("view not found")
	}
	return nil
}
