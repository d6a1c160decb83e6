package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nouscopy/nouscopy/internal/models"
)

// CreateTemplate saves a user template. It assigns tmpl.ID and returns it.
// Nil presets are stored as an empty list.
func (s *Store) CreateTemplate(ctx context.Context, tmpl *models.Template) (string, error) {
	tmpl.ID = newID()
	presets := string(tmpl.Presets)
	if presets == "" || presets == "null" {
		presets = "[]"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_templates (id, user_id, name, description, base_template_id, presets)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tmpl.ID, tmpl.UserID, tmpl.Name, tmpl.Description, tmpl.BaseTemplateID, presets,
	)
	if err != nil {
		return "", fmt.Errorf("creating template: %w", err)
	}
	return tmpl.ID, nil
}

const templateColumns = `id, user_id, name, description, base_template_id, presets, created_at, updated_at`

// ListTemplates returns the user's templates, newest first. A non-empty
// search keeps only templates whose name or description contains it,
// ignoring case.
func (s *Store) ListTemplates(ctx context.Context, userID, search string) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+`
		 FROM user_templates
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		if matchesSearch(search, t.Name, t.Description) {
			templates = append(templates, *t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template rows: %w", err)
	}
	return templates, nil
}

// GetTemplate returns one template owned by userID.
func (s *Store) GetTemplate(ctx context.Context, userID, id string) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM user_templates WHERE id = ? AND user_id = ?`,
		id, userID)
	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// DeleteTemplate removes one template owned by userID.
func (s *Store) DeleteTemplate(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_templates WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return ownedRowAffected(res)
}

// CountTemplates returns how many templates userID has.
func (s *Store) CountTemplates(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_templates WHERE user_id = ?`, userID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting templates: %w", err)
	}
	return n, nil
}

func scanTemplate(row rowScanner) (*models.Template, error) {
	var (
		t         models.Template
		presets   string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Name, &t.Description, &t.BaseTemplateID,
		&presets, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning template row: %w", err)
	}
	t.Presets = []byte(presets)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}
