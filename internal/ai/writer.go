package ai

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nouscopy/nouscopy/internal/copygen"
)

// Writer writes copy section by section through a Provider. The hook is
// written first; body and call-to-action are then written concurrently
// since the body prompt quotes the hook.
type Writer struct {
	provider Provider
	model    string
}

// NewWriter creates a Writer. model is the default model for requests
// whose brief does not name one; empty leaves the choice to the provider.
func NewWriter(p Provider, model string) *Writer {
	return &Writer{provider: p, model: model}
}

// Provider returns the underlying provider.
func (w *Writer) Provider() Provider { return w.provider }

// FormatRequest describes a copy written for an output format by an agent.
type FormatRequest struct {
	Brief    copygen.Brief
	Strategy copygen.Strategy
	Format   string
	AgentID  string

	// HookOnly skips the body and call-to-action.
	HookOnly bool
}

func (w *Writer) modelFor(b copygen.Brief) string {
	if b.Model != "" {
		return b.Model
	}
	return w.model
}

func (w *Writer) complete(ctx context.Context, p Prompt, model string) (string, error) {
	p.Model = model
	return w.provider.Complete(ctx, p)
}

// WriteCopy writes a full copy with the generic section prompts.
func (w *Writer) WriteCopy(ctx context.Context, b copygen.Brief, s copygen.Strategy) (copygen.Copy, error) {
	data := NewPromptData(b, s)
	build := func(sec Section, d PromptData) (Prompt, error) { return SectionPrompt(sec, d) }
	return w.write(ctx, data, w.modelFor(b), false, build)
}

// WriteForFormat writes a copy with the format and agent specific prompts.
func (w *Writer) WriteForFormat(ctx context.Context, req FormatRequest) (copygen.Copy, error) {
	data := NewPromptData(req.Brief, req.Strategy)
	build := func(sec Section, d PromptData) (Prompt, error) {
		return FormatSectionPrompt(sec, req.Format, req.AgentID, d)
	}
	return w.write(ctx, data, w.modelFor(req.Brief), req.HookOnly, build)
}

func (w *Writer) write(ctx context.Context, data PromptData, model string, hookOnly bool, build func(Section, PromptData) (Prompt, error)) (copygen.Copy, error) {
	hp, err := build(SectionHook, data)
	if err != nil {
		return copygen.Copy{}, err
	}
	hook, err := w.complete(ctx, hp, model)
	if err != nil {
		return copygen.Copy{}, fmt.Errorf("writing hook: %w", err)
	}

	cp := copygen.Copy{Hook: hook}
	if hookOnly {
		return cp, nil
	}

	data.Hook = hook
	bp, err := build(SectionBody, data)
	if err != nil {
		return copygen.Copy{}, err
	}
	ctaPrompt, err := build(SectionCTA, data)
	if err != nil {
		return copygen.Copy{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := w.complete(gctx, bp, model)
		if err != nil {
			return fmt.Errorf("writing body: %w", err)
		}
		cp.Body = body
		return nil
	})
	g.Go(func() error {
		cta, err := w.complete(gctx, ctaPrompt, model)
		if err != nil {
			return fmt.Errorf("writing cta: %w", err)
		}
		cp.CTA = cta
		return nil
	})
	if err := g.Wait(); err != nil {
		return copygen.Copy{}, err
	}
	return cp, nil
}

// WriteInvisibleStructure adapts a competitor's copy in a single request
// and splits the reply into sections.
func (w *Writer) WriteInvisibleStructure(ctx context.Context, competitorCopy, notes string) (copygen.Copy, error) {
	p, err := InvisibleStructurePrompt(competitorCopy, notes)
	if err != nil {
		return copygen.Copy{}, err
	}
	text, err := w.complete(ctx, p, w.model)
	if err != nil {
		return copygen.Copy{}, fmt.Errorf("writing invisible structure: %w", err)
	}
	return ParseSections(text), nil
}
