// Package generate runs copy generation for a signed-in user: the rule
// engine or the AI writer produces the copy, the result is laid out for
// its channel and every copy is recorded in the user's history.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nouscopy/nouscopy/internal/ai"
	"github.com/nouscopy/nouscopy/internal/copygen"
	"github.com/nouscopy/nouscopy/internal/formschema"
	"github.com/nouscopy/nouscopy/internal/models"
	"github.com/nouscopy/nouscopy/internal/ratelimit"
)

const (
	// DefaultMaxQuantity is the largest number of copies one agent
	// request may ask for.
	DefaultMaxQuantity = 5

	unspecified = "Não especificado"
)

var (
	ErrUnknownAgent     = errors.New("generate: unknown agent")
	ErrAgentDisabled    = errors.New("generate: agent is not available yet")
	ErrAIUnavailable    = errors.New("generate: no AI provider configured")
	ErrNothingGenerated = errors.New("generate: no copy could be generated")
	ErrRateLimited      = errors.New("generate: rate limit exceeded")
	errIncompleteCopy   = errors.New("generated copy is missing a section")
)

// RateLimitError reports how long the user has to wait. It matches
// ErrRateLimited with errors.Is.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("generate: rate limit exceeded, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// HistoryStore records generated copies.
type HistoryStore interface {
	CreateHistoryEntry(ctx context.Context, e *models.HistoryEntry) (string, error)
}

// Limiter decides whether a user may generate right now.
type Limiter interface {
	Allow(ctx context.Context, userID string) ratelimit.Result
}

// Options configures a Service. Zero values disable AI and rate limiting.
type Options struct {
	Writer          *ai.Writer
	Limiter         Limiter
	MaxQuantity     int
	DefaultDuration int
}

// Service generates copies and records them.
type Service struct {
	history         HistoryStore
	writer          *ai.Writer
	limiter         Limiter
	maxQuantity     int
	defaultDuration int
}

// NewService creates a Service backed by the given history store.
func NewService(history HistoryStore, opts Options) *Service {
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = DefaultMaxQuantity
	}
	return &Service{
		history:         history,
		writer:          opts.Writer,
		limiter:         opts.Limiter,
		maxQuantity:     opts.MaxQuantity,
		defaultDuration: opts.DefaultDuration,
	}
}

// AIEnabled reports whether an AI provider is configured.
func (s *Service) AIEnabled() bool { return s.writer != nil }

// MaxQuantity is the largest number of copies an agent request yields.
func (s *Service) MaxQuantity() int { return s.maxQuantity }

// Result is one copy generated from a brief.
type Result struct {
	HistoryID       string           `json:"history_id,omitempty"`
	Strategy        copygen.Strategy `json:"strategy"`
	Copy            copygen.Copy     `json:"copy"`
	Layout          copygen.Layout   `json:"layout"`
	Text            string           `json:"text"`
	GeneratedWithAI bool             `json:"generated_with_ai"`
	AIError         string           `json:"ai_error,omitempty"`
}

// GenerateBrief writes one copy for b. When b asks for AI and a provider is
// configured the AI writes the copy; any AI failure falls back to the rule
// engine and is reported in Result.AIError. A duration trims the copy to fit.
func (s *Service) GenerateBrief(ctx context.Context, userID string, b copygen.Brief) (*Result, error) {
	if err := s.allow(ctx, userID); err != nil {
		return nil, err
	}

	if b.DurationSeconds <= 0 && s.defaultDuration > 0 && copygen.KindFor(b.Platform) == copygen.LayoutVideo {
		b.DurationSeconds = s.defaultDuration
	}

	strategy := copygen.Analyze(b)
	res := &Result{Strategy: strategy}

	if b.UseAI && s.writer != nil {
		cp, err := s.writer.WriteCopy(ctx, b, strategy)
		switch {
		case err == nil:
			res.Copy = cp
			res.GeneratedWithAI = true
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			slog.Warn("AI generation failed, falling back to templates",
				"user_id", userID,
				"provider", s.writer.Provider().Name(),
				"error", err,
			)
			res.AIError = ai.UserMessage(err)
		}
	}
	if !res.GeneratedWithAI {
		_, res.Copy = copygen.Compose(b)
	}

	if b.DurationSeconds > 0 {
		res.Copy = copygen.FitCopy(res.Copy, b.DurationSeconds)
	}
	res.Layout = copygen.Render(b, strategy, res.Copy)
	res.Text = copygen.FormatText(res.Copy)

	form := formschema.FromBrief(b)
	res.HistoryID = s.record(ctx, &models.HistoryEntry{
		UserID:   userID,
		Title:    historyTitle(form, "Copy gerada"),
		Platform: orUnspecified(b.Platform),
		Method:   orUnspecified(b.Methodology),
		Hook:     res.Copy.Hook,
		Body:     res.Copy.Body,
		CTA:      res.Copy.CTA,
		FormData: mustJSON(b),
		Strategy: mustJSON(strategy),
	})

	slog.Info("generated copy",
		"user_id", userID,
		"platform", b.Platform,
		"ai", res.GeneratedWithAI,
	)
	return res, nil
}

// Variations returns n alternative copies built around other triggers.
func (s *Service) Variations(b copygen.Brief, n int) []copygen.Variation {
	return copygen.Variations(b, n)
}

func (s *Service) allow(ctx context.Context, userID string) error {
	if s.limiter == nil {
		return nil
	}
	if res := s.limiter.Allow(ctx, userID); !res.Allowed {
		return &RateLimitError{RetryAfter: res.RetryAfter}
	}
	return nil
}

// record stores e and returns its id. Failures are logged and yield an
// empty id; a copy is never lost because history could not be written.
func (s *Service) record(ctx context.Context, e *models.HistoryEntry) string {
	if s.history == nil || e.UserID == "" {
		return ""
	}
	id, err := s.history.CreateHistoryEntry(ctx, e)
	if err != nil {
		slog.Error("failed to save history",
			"user_id", e.UserID,
			"agent", e.AgentID,
			"error", err,
		)
		return ""
	}
	return id
}

// historyTitle names a history entry after the offer, then the business,
// then the professional.
func historyTitle(form formschema.FormData, fallback string) string {
	for _, id := range []string{"oferta_nome", "negocio_nome", "profissional_nome"} {
		if v := form.String(id); v != "" {
			return v
		}
	}
	return fallback
}

func orUnspecified(v string) string {
	if v == "" {
		return unspecified
	}
	return v
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("failed to encode history payload", "error", err)
		return nil
	}
	return data
}
