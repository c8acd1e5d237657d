package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/errors"
	"github.com/threadkeep/threadkeep-server/internal/store"
	"github.com/threadkeep/threadkeep-server/internal/store/sqlite"
)

// CharacterService is the character directory: CRUD over the user's
// characters, every mutation guarded by ownership first.
type CharacterService struct {
	store  *sqlite.Store
	guard  *OwnershipGuard
	logger *slog.Logger
}

// NewCharacterService creates a character service.
func NewCharacterService(store *sqlite.Store, guard *OwnershipGuard, logger *slog.Logger) *CharacterService {
	return &CharacterService{
		store:  store,
		guard:  guard,
		logger: logger,
	}
}

// ListCharacters returns the user's characters, optionally including those
// on hiatus.
func (s *CharacterService) ListCharacters(ctx context.Context, userID string, includeHiatused bool) ([]*domain.Character, error) {
	characters, err := s.store.ListCharactersByUser(ctx, userID, includeHiatused)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list characters")
	}
	return characters, nil
}

// GetCharacter retrieves one of the user's characters.
func (s *CharacterService) GetCharacter(ctx context.Context, characterID int64, userID string) (*domain.Character, error) {
	if err := s.guard.AssertOwnsCharacter(ctx, characterID, userID); err != nil {
		return nil, err
	}

	c, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "get character")
	}
	return c, nil
}

// CreateCharacter registers a new character for the user and assigns its ID.
func (s *CharacterService) CreateCharacter(ctx context.Context, userID string, c *domain.Character) (*domain.Character, error) {
	now := time.Now()
	c.UserID = userID
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.store.CreateCharacter(ctx, c); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create character")
	}

	s.logger.Info("character created",
		"character_id", c.ID,
		"name", c.Name,
		"user_id", userID,
	)
	return c, nil
}

// UpdateCharacter replaces a character. The caller supplies the full
// replacement object; ownership is asserted before the write and the owner
// can never be reassigned.
func (s *CharacterService) UpdateCharacter(ctx context.Context, userID string, c *domain.Character) (*domain.Character, error) {
	if err := s.guard.AssertOwnsCharacter(ctx, c.ID, userID); err != nil {
		return nil, err
	}

	c.UserID = userID
	c.UpdatedAt = time.Now()

	if err := s.store.UpdateCharacter(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("character not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "update character")
	}
	return c, nil
}

// DeleteCharacter removes a character and, through the store's cascade, all
// of its threads and their tags.
func (s *CharacterService) DeleteCharacter(ctx context.Context, characterID int64, userID string) error {
	if err := s.guard.AssertOwnsCharacter(ctx, characterID, userID); err != nil {
		return err
	}

	if err := s.store.DeleteCharacter(ctx, characterID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("character not found")
		}
		return errors.Wrap(err, errors.CodeInternal, "delete character")
	}

	s.logger.Info("character deleted", "character_id", characterID, "user_id", userID)
	return nil
}
