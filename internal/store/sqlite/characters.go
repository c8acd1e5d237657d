package sqlite

import (
	"context"
	"database/sql"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/store"
)

// characterColumns is the ordered list of columns selected in character
// queries. Must match the scan order in scanCharacter.
const characterColumns = `id, user_id, name, url_identifier, on_hiatus, platform, created_at, updated_at`

func scanCharacter(scanner interface{ Scan(dest ...any) error }) (*domain.Character, error) {
	var c domain.Character

	var (
		onHiatus  int
		platform  string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.URLIdentifier,
		&onHiatus,
		&platform,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.OnHiatus = onHiatus != 0
	c.Platform = domain.Platform(platform)

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// CreateCharacter inserts a new character and assigns its integer ID.
func (s *Store) CreateCharacter(ctx context.Context, c *domain.Character) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO characters (
			user_id, name, url_identifier, on_hiatus, platform, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.UserID,
		c.Name,
		c.URLIdentifier,
		boolToInt(c.OnHiatus),
		string(c.Platform),
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		return err
	}

	c.ID, err = result.LastInsertId()
	return err
}

// GetCharacter retrieves a character by ID.
// Returns store.ErrNotFound if the character does not exist.
func (s *Store) GetCharacter(ctx context.Context, id int64) (*domain.Character, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)

	c, err := scanCharacter(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCharacter replaces a character row. The caller supplies the full
// replacement object; there are no partial patch semantics.
// Returns store.ErrNotFound if the character does not exist.
func (s *Store) UpdateCharacter(ctx context.Context, c *domain.Character) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE characters SET
			user_id = ?,
			name = ?,
			url_identifier = ?,
			on_hiatus = ?,
			platform = ?,
			updated_at = ?
		WHERE id = ?`,
		c.UserID,
		c.Name,
		c.URLIdentifier,
		boolToInt(c.OnHiatus),
		string(c.Platform),
		formatTime(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteCharacter hard-deletes a character. ON DELETE CASCADE removes its
// threads and their tags.
// Returns store.ErrNotFound if the character does not exist.
func (s *Store) DeleteCharacter(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListCharactersByUser returns a user's characters ordered by creation time.
// When includeHiatused is false, characters on hiatus are excluded.
func (s *Store) ListCharactersByUser(ctx context.Context, userID string, includeHiatused bool) ([]*domain.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE user_id = ?`
	if !includeHiatused {
		query += ` AND on_hiatus = 0`
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var characters []*domain.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

// CharacterOwnedBy reports whether the character exists and belongs to the
// user. Absent and foreign-owned are indistinguishable to the caller.
func (s *Store) CharacterOwnedBy(ctx context.Context, characterID int64, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM characters WHERE id = ? AND user_id = ?`, characterID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
