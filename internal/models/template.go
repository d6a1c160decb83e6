package models

import (
	"encoding/json"
	"time"
)

// Template is a user-defined template. Presets holds the JSON encoded
// field presets.
type Template struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	BaseTemplateID string          `json:"base_template_id"`
	Presets        json.RawMessage `json:"presets"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
