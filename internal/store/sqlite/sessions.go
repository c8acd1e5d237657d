package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/store"
)

const sessionColumns = `id, user_id, refresh_token_hash, created_at, expires_at, revoked_at`

func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var sess domain.Session

	var (
		createdAt string
		expiresAt string
		revokedAt sql.NullString
	)

	err := scanner.Scan(
		&sess.ID,
		&sess.UserID,
		&sess.RefreshTokenHash,
		&createdAt,
		&expiresAt,
		&revokedAt,
	)
	if err != nil {
		return nil, err
	}

	sess.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sess.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	sess.RevokedAt, err = parseNullableTime(revokedAt)
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

// CreateSession inserts a new refresh session.
func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, user_id, refresh_token_hash, created_at, expires_at, revoked_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.UserID,
		sess.RefreshTokenHash,
		formatTime(sess.CreatedAt),
		formatTime(sess.ExpiresAt),
		nullTimeString(sess.RevokedAt),
	)
	return err
}

// GetSessionByTokenHash finds the session holding the given refresh token hash.
// Returns store.ErrNotFound when no session matches.
func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = ?`, tokenHash)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// RotateSession replaces a session's refresh token hash and extends its expiry.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) RotateSession(ctx context.Context, sessionID, newTokenHash string, expiresAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET refresh_token_hash = ?, expires_at = ?
		WHERE id = ? AND revoked_at IS NULL`,
		newTokenHash, formatTime(expiresAt), sessionID,
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

// RevokeSession marks a session as revoked. Revoking an already revoked
// session is a no-op.
func (s *Store) RevokeSession(ctx context.Context, sessionID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`,
		formatTime(at), sessionID,
	)
	return err
}

// DeleteExpiredSessions removes sessions that expired before the cutoff.
func (s *Store) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
