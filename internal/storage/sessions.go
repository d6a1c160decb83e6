package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nouscopy/nouscopy/internal/models"
)

// CreateSession inserts a new session. The caller sets ID, UserID and
// ExpiresAt.
func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)`,
		session.ID, session.UserID, formatTime(session.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetSession returns the session with the given ID, whether or not it is
// still active.
func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var (
		sess      models.Session
		expiresAt string
		revokedAt sql.NullString
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, revoked_at, created_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.UserID, &expiresAt, &revokedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	sess.ExpiresAt = parseTime(expiresAt)
	sess.RevokedAt = parseNullTime(revokedAt)
	sess.CreatedAt = parseTime(createdAt)
	return &sess, nil
}

// RevokeSession marks a session of userID as revoked. Revoking an already
// revoked session is a no-op. Returns ErrNotFound if the session does not
// exist or belongs to another user.
func (s *Store) RevokeSession(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, datetime('now'))
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return ownedRowAffected(res)
}

// DeleteExpiredSessions removes sessions that expired before now, along
// with revoked ones, and returns how many were removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ? OR revoked_at IS NOT NULL`,
		formatTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
