package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nouscopy/nouscopy/internal/ai"
	"github.com/nouscopy/nouscopy/internal/copygen"
	"github.com/nouscopy/nouscopy/internal/formschema"
	"github.com/nouscopy/nouscopy/internal/models"
)

// AgentCopy is one copy written by an agent.
type AgentCopy struct {
	HistoryID string `json:"history_id,omitempty"`
	Format    string `json:"format,omitempty"`
	copygen.Copy
	Strategy        *copygen.Strategy `json:"strategy,omitempty"`
	Text            string            `json:"text"`
	GeneratedWithAI bool              `json:"generated_with_ai"`
}

// AgentResult is the outcome of an agent request. Failed counts the
// attempts that produced nothing.
type AgentResult struct {
	AgentID   string      `json:"agent_id"`
	AgentName string      `json:"agent_name"`
	Requested int         `json:"requested"`
	Failed    int         `json:"failed"`
	Copies    []AgentCopy `json:"copies"`
}

// ClampQuantity limits a requested copy count to 1..MaxQuantity.
func (s *Service) ClampQuantity(n int) int {
	switch {
	case n < 1:
		return 1
	case n > s.maxQuantity:
		return s.maxQuantity
	}
	return n
}

// GenerateAgent writes quantity copies with the agent agentID. Copies are
// written one after another; a failed attempt is logged and skipped. When
// every attempt fails the error wraps ErrNothingGenerated and the last
// failure. A form that misses required answers returns
// formschema.FieldErrors.
func (s *Service) GenerateAgent(ctx context.Context, userID, agentID string, form formschema.FormData, quantity int) (*AgentResult, error) {
	agent, ok := formschema.LookupAgent(agentID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, agentID)
	}
	if agent.Disabled {
		return nil, fmt.Errorf("%w: %q", ErrAgentDisabled, agentID)
	}
	if errs := formschema.ValidateAgentForm(agent, form); errs != nil {
		return nil, errs
	}
	if agent.InvisibleStructure && s.writer == nil {
		return nil, ErrAIUnavailable
	}
	if err := s.allow(ctx, userID); err != nil {
		return nil, err
	}

	res := &AgentResult{
		AgentID:   agent.ID,
		AgentName: agent.Name,
		Requested: s.ClampQuantity(quantity),
		Copies:    []AgentCopy{},
	}

	var lastErr error
	for i := 0; i < res.Requested; i++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		c, err := s.agentCopy(ctx, agent, form)
		if err != nil {
			slog.Warn("agent copy failed",
				"user_id", userID,
				"agent", agent.ID,
				"attempt", i+1,
				"error", err,
			)
			res.Failed++
			lastErr = err
			continue
		}

		c.HistoryID = s.record(ctx, &models.HistoryEntry{
			UserID:   userID,
			Title:    historyTitle(form, agent.Name+" - Copy gerada"),
			Platform: orUnspecified(form.String("canal_principal")),
			Method:   orUnspecified(form.String("metodologia_base")),
			AgentID:  agent.ID,
			Hook:     c.Hook,
			Body:     c.Body,
			CTA:      c.CTA,
			FormData: mustJSON(form),
			Strategy: strategyJSON(c.Strategy),
		})
		res.Copies = append(res.Copies, *c)
	}

	if len(res.Copies) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNothingGenerated, lastErr)
	}

	slog.Info("agent generated copies",
		"user_id", userID,
		"agent", agent.ID,
		"requested", res.Requested,
		"generated", len(res.Copies),
	)
	return res, nil
}

// agentCopy writes a single copy. The competitor-copy agent works on the
// raw answers; every other agent works on the adapted brief for the
// agent's output format.
func (s *Service) agentCopy(ctx context.Context, agent *formschema.Agent, form formschema.FormData) (*AgentCopy, error) {
	if agent.InvisibleStructure {
		cp, err := s.writer.WriteInvisibleStructure(ctx, form.String("copy_concorrente"), form.String("observacoes_adaptacao"))
		if err != nil {
			return nil, err
		}
		return finishAgentCopy(&AgentCopy{Copy: cp, GeneratedWithAI: true}, false)
	}

	b := formschema.ToBrief(form)
	strategy := copygen.Analyze(b)
	c := &AgentCopy{
		Format:   agent.OutputFormat(form),
		Strategy: &strategy,
	}

	if s.writer == nil {
		_, c.Copy = copygen.Compose(b)
		if agent.HookOnly {
			c.Body, c.CTA = "", ""
		}
		return finishAgentCopy(c, agent.HookOnly)
	}

	cp, err := s.writer.WriteForFormat(ctx, ai.FormatRequest{
		Brief:    b,
		Strategy: strategy,
		Format:   c.Format,
		AgentID:  agent.ID,
		HookOnly: agent.HookOnly,
	})
	if err != nil {
		return nil, err
	}
	c.Copy = cp
	c.GeneratedWithAI = true
	return finishAgentCopy(c, agent.HookOnly)
}

// finishAgentCopy rejects copies with an empty section and fills the
// clipboard text.
func finishAgentCopy(c *AgentCopy, hookOnly bool) (*AgentCopy, error) {
	if c.Hook == "" || (!hookOnly && (c.Body == "" || c.CTA == "")) {
		return nil, errIncompleteCopy
	}
	if hookOnly {
		c.Text = c.Hook
	} else {
		c.Text = copygen.FormatText(c.Copy)
	}
	return c, nil
}

func strategyJSON(s *copygen.Strategy) json.RawMessage {
	if s == nil {
		return nil
	}
	return mustJSON(s)
}
