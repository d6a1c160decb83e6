package models

import (
	"encoding/json"
	"time"
)

// HistoryEntry is one generated copy saved to a user's history.
type HistoryEntry struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Platform string `json:"platform"`
	Method   string `json:"method"`
	AgentID  string `json:"agent_id,omitempty"`

	Hook string `json:"hook"`
	Body string `json:"body"`
	CTA  string `json:"cta"`

	// FormData is the form or brief the copy was generated from.
	FormData json.RawMessage `json:"form_data,omitempty"`
	// Strategy is the analysed strategy, absent for AI-only agents.
	Strategy json.RawMessage `json:"strategy,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Dashboard summarises a user's activity.
type Dashboard struct {
	CopiesGenerated  int            `json:"copies_generated"`
	TemplatesCreated int            `json:"templates_created"`
	RecentActivity   []HistoryEntry `json:"recent_activity"`
}
