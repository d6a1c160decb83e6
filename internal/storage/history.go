package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nouscopy/nouscopy/internal/models"
)

// CreateHistoryEntry saves a generated copy. It assigns entry.ID and
// returns it.
func (s *Store) CreateHistoryEntry(ctx context.Context, entry *models.HistoryEntry) (string, error) {
	entry.ID = newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO copy_history
			(id, user_id, title, platform, method, agent_id, hook, body, cta, form_data, strategy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Title, entry.Platform, entry.Method, entry.AgentID,
		entry.Hook, entry.Body, entry.CTA,
		nullableJSON(entry.FormData), nullableJSON(entry.Strategy),
	)
	if err != nil {
		return "", fmt.Errorf("creating history entry: %w", err)
	}
	return entry.ID, nil
}

const historyColumns = `id, user_id, title, platform, method, agent_id, hook, body, cta,
		form_data, strategy, created_at`

// ListHistory returns the user's history, newest first. A non-empty search
// keeps only entries whose title or platform contains it, ignoring case.
// limit <= 0 returns every match.
func (s *Store) ListHistory(ctx context.Context, userID, search string, limit int) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+historyColumns+`
		 FROM copy_history
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		if !matchesSearch(search, e.Title, e.Platform) {
			continue
		}
		entries = append(entries, *e)
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}
	return entries, nil
}

// GetHistoryEntry returns one history entry owned by userID.
func (s *Store) GetHistoryEntry(ctx context.Context, userID, id string) (*models.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM copy_history WHERE id = ? AND user_id = ?`,
		id, userID)
	e, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// DeleteHistoryEntry removes one history entry owned by userID.
func (s *Store) DeleteHistoryEntry(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM copy_history WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting history entry: %w", err)
	}
	return ownedRowAffected(res)
}

// ClearHistory removes every history entry of userID and returns how many
// were removed.
func (s *Store) ClearHistory(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM copy_history WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

// CountHistory returns how many history entries userID has.
func (s *Store) CountHistory(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM copy_history WHERE user_id = ?`, userID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (*models.HistoryEntry, error) {
	var (
		e         models.HistoryEntry
		formData  sql.NullString
		strategy  sql.NullString
		createdAt string
	)
	if err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Platform, &e.Method, &e.AgentID,
		&e.Hook, &e.Body, &e.CTA, &formData, &strategy, &createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning history row: %w", err)
	}
	if formData.Valid {
		e.FormData = []byte(formData.String)
	}
	if strategy.Valid {
		e.Strategy = []byte(strategy.String)
	}
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

// nullableJSON stores empty JSON as NULL.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
