package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/store"
)

// threadColumns is the ordered list of columns selected in thread queries.
// Must match the scan order in scanThread.
const threadColumns = `t.id, t.character_id, t.partner_url_identifier, t.post_id, t.user_title, t.archived, t.date_marked_queued, t.created_at, t.updated_at`

func scanThread(scanner interface{ Scan(dest ...any) error }) (*domain.Thread, error) {
	var th domain.Thread

	var (
		partner   sql.NullString
		postID    sql.NullString
		archived  int
		queuedAt  sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&th.ID,
		&th.CharacterID,
		&partner,
		&postID,
		&th.UserTitle,
		&archived,
		&queuedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if partner.Valid {
		th.PartnerURLIdentifier = partner.String
	}
	if postID.Valid {
		th.PostID = postID.String
	}
	th.Archived = archived != 0

	th.DateMarkedQueued, err = parseNullableTime(queuedAt)
	if err != nil {
		return nil, err
	}
	th.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	th.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &th, nil
}

// loadThreadTags loads a thread's tag rows in insertion order.
func (s *Store) loadThreadTags(ctx context.Context, threadID int64) ([]domain.ThreadTag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, thread_id, tag_text FROM thread_tags WHERE thread_id = ? ORDER BY rowid`, threadID)
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

// CreateThread inserts a new thread and its tag rows, assigning the thread's
// integer ID and each tag's ThreadID.
func (s *Store) CreateThread(ctx context.Context, th *domain.Thread) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO threads (
			character_id, partner_url_identifier, post_id, user_title, archived, date_marked_queued, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		th.CharacterID,
		nullString(th.PartnerURLIdentifier),
		nullString(th.PostID),
		th.UserTitle,
		boolToInt(th.Archived),
		nullTimeString(th.DateMarkedQueued),
		formatTime(th.CreatedAt),
		formatTime(th.UpdatedAt),
	)
	if err != nil {
		return err
	}

	th.ID, err = result.LastInsertId()
	if err != nil {
		return err
	}

	for i := range th.Tags {
		th.Tags[i].ThreadID = th.ID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO thread_tags (id, thread_id, tag_text) VALUES (?, ?, ?)`,
			th.Tags[i].ID, th.ID, th.Tags[i].Text,
		)
		if err != nil {
			return fmt.Errorf("insert thread_tag %s: %w", th.Tags[i].ID, err)
		}
	}

	return tx.Commit()
}

// GetThread retrieves a thread by ID, including its tags.
// Returns store.ErrNotFound if the thread does not exist.
func (s *Store) GetThread(ctx context.Context, id int64) (*domain.Thread, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+threadColumns+` FROM threads t WHERE t.id = ?`, id)

	th, err := scanThread(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	th.Tags, err = s.loadThreadTags(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load thread tags: %w", err)
	}
	return th, nil
}

// UpdateThread replaces a thread row and its entire tag set in a transaction.
// The caller supplies the full replacement object.
// Returns store.ErrNotFound if the thread does not exist.
func (s *Store) UpdateThread(ctx context.Context, th *domain.Thread) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE threads SET
			character_id = ?,
			partner_url_identifier = ?,
			post_id = ?,
			user_title = ?,
			archived = ?,
			date_marked_queued = ?,
			updated_at = ?
		WHERE id = ?`,
		th.CharacterID,
		nullString(th.PartnerURLIdentifier),
		nullString(th.PostID),
		th.UserTitle,
		boolToInt(th.Archived),
		nullTimeString(th.DateMarkedQueued),
		formatTime(th.UpdatedAt),
		th.ID,
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

	// Replace the tag set: delete existing, then re-insert.
	if _, err := tx.ExecContext(ctx, `DELETE FROM thread_tags WHERE thread_id = ?`, th.ID); err != nil {
		return err
	}

	for i := range th.Tags {
		th.Tags[i].ThreadID = th.ID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO thread_tags (id, thread_id, tag_text) VALUES (?, ?, ?)`,
			th.Tags[i].ID, th.ID, th.Tags[i].Text,
		)
		if err != nil {
			return fmt.Errorf("insert thread_tag %s: %w", th.Tags[i].ID, err)
		}
	}

	return tx.Commit()
}

// DeleteThread hard-deletes a thread. ON DELETE CASCADE removes its tags.
// Returns store.ErrNotFound if the thread does not exist.
func (s *Store) DeleteThread(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, id)
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

// ListThreads returns a user's threads narrowed by the query. The join
// through characters is the ownership scope: threads belonging to other
// users' characters can never appear, regardless of query flags. Tags are
// always loaded.
func (s *Store) ListThreads(ctx context.Context, userID string, q store.ThreadQuery) ([]*domain.Thread, error) {
	query := `SELECT ` + threadColumns + `
		FROM threads t
		JOIN characters c ON c.id = t.character_id
		WHERE c.user_id = ?`
	args := []any{userID}

	if q.Archived != nil {
		query += ` AND t.archived = ?`
		args = append(args, boolToInt(*q.Archived))
	}
	if !q.IncludeHiatused {
		query += ` AND c.on_hiatus = 0`
	}
	query += ` ORDER BY t.created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []*domain.Thread
	for rows.Next() {
		th, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, th)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, th := range threads {
		th.Tags, err = s.loadThreadTags(ctx, th.ID)
		if err != nil {
			return nil, fmt.Errorf("load tags for thread %d: %w", th.ID, err)
		}
	}

	if q.WithCharacter {
		if err := s.attachCharacters(ctx, threads); err != nil {
			return nil, err
		}
	}

	return threads, nil
}

// attachCharacters loads each thread's owning character, deduplicating
// lookups by character ID.
func (s *Store) attachCharacters(ctx context.Context, threads []*domain.Thread) error {
	byID := make(map[int64]*domain.Character)
	for _, th := range threads {
		if c, ok := byID[th.CharacterID]; ok {
			th.Character = c
			continue
		}
		c, err := s.GetCharacter(ctx, th.CharacterID)
		if err != nil {
			return fmt.Errorf("load character %d: %w", th.CharacterID, err)
		}
		byID[th.CharacterID] = c
		th.Character = c
	}
	return nil
}

// ThreadOwnedBy reports whether the thread exists and its character belongs
// to the user. The ownership join is the only ownership record: threads
// carry no user id of their own.
func (s *Store) ThreadOwnedBy(ctx context.Context, threadID int64, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM threads t
		JOIN characters c ON c.id = t.character_id
		WHERE t.id = ? AND c.user_id = ?`, threadID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
