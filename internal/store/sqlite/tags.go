package sqlite

import (
	"context"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/store"
)

// ListThreadTags returns every tag row across all of a user's threads,
// regardless of archive or hiatus state. Vocabulary operations work on the
// whole corpus.
func (s *Store) ListThreadTags(ctx context.Context, userID string) ([]domain.ThreadTag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tt.id, tt.thread_id, tt.tag_text
		FROM thread_tags tt
		JOIN threads t ON t.id = tt.thread_id
		JOIN characters c ON c.id = t.character_id
		WHERE c.user_id = ?
		ORDER BY tt.rowid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []domain.ThreadTag
	for rows.Next() {
		var tag domain.ThreadTag
		if err := rows.Scan(&tag.ID, &tag.ThreadID, &tag.Text); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// UpdateThreadTagText overwrites a single tag row's text.
// Returns store.ErrNotFound if the tag row does not exist.
func (s *Store) UpdateThreadTagText(ctx context.Context, tagID, text string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE thread_tags SET tag_text = ? WHERE id = ?`, text, tagID)
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

// DeleteThreadTag removes a single tag row.
// Returns store.ErrNotFound if the tag row does not exist.
func (s *Store) DeleteThreadTag(ctx context.Context, tagID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM thread_tags WHERE id = ?`, tagID)
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

// UpdateThreadPartner sets a single thread's partner identifier. An empty
// partner clears the column to NULL.
// Returns store.ErrNotFound if the thread does not exist.
func (s *Store) UpdateThreadPartner(ctx context.Context, threadID int64, partner string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE threads SET partner_url_identifier = ? WHERE id = ?`,
		nullString(partner), threadID)
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
