package copygen

import (
	"fmt"
	"strings"
)

// Awareness keys the engine treats specially.
const (
	AwarenessUnaware      = "inconsciente"
	AwarenessMostAware    = "totalmente-consciente"
	unawareHookInsertion  = "você pode não saber, mas você"
	mostAwareClosingLine  = "Não perca mais tempo. A solução está aqui."
	defaultClosingLine    = "Você merece uma solução que realmente funcione."
	defaultVariationCount = 3
)

// Brief is the flat set of inputs the rule engine works from.
type Brief struct {
	ProfessionalName string `json:"professional_name" yaml:"professional_name"`
	YearsExperience  string `json:"years_experience" yaml:"years_experience"`
	ProvenResults    string `json:"proven_results" yaml:"proven_results"`
	Differentiator   string `json:"differentiator" yaml:"differentiator"`
	Audience         string `json:"audience" yaml:"audience"`
	Awareness        string `json:"awareness" yaml:"awareness"`
	Trigger          string `json:"trigger" yaml:"trigger"`
	Methodology      string `json:"methodology" yaml:"methodology"`
	Platform         string `json:"platform" yaml:"platform"`
	DurationSeconds  int    `json:"duration_seconds,omitempty" yaml:"duration_seconds"`
	Density          string `json:"density,omitempty" yaml:"density"`
	FinalURL         string `json:"final_url,omitempty" yaml:"final_url"`
	UseAI            bool   `json:"use_ai,omitempty" yaml:"use_ai"`
	Model            string `json:"model,omitempty" yaml:"model"`

	// Extra carries form answers that have no dedicated field above. AI
	// prompts read from it; the templates do not.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra"`
}

// Strategy is the analysis a copy is built on.
type Strategy struct {
	PainPoint string     `json:"pain_point"`
	Premise   string     `json:"premise"`
	Trigger   *Trigger   `json:"trigger,omitempty"`
	Awareness *Awareness `json:"awareness,omitempty"`
}

// Copy is a generated hook, body and call-to-action.
type Copy struct {
	Hook string `json:"hook"`
	Body string `json:"body"`
	CTA  string `json:"cta"`
}

// Variation is an alternative copy built around a different trigger.
type Variation struct {
	Trigger string `json:"trigger"`
	Copy
}

// Analyze derives the pain point and logical premise for a brief.
func (c *Catalog) Analyze(b Brief) Strategy {
	s := Strategy{
		PainPoint: c.painPoint(b.Audience),
		Premise:   c.Defaults.Premise,
	}
	if t, ok := c.Trigger(b.Trigger); ok {
		s.Trigger = t
		s.Premise = t.Premise
	}
	if a, ok := c.AwarenessLevel(b.Awareness); ok {
		s.Awareness = a
	}
	return s
}

func (c *Catalog) painPoint(audience string) string {
	a := strings.ToLower(audience)
	switch {
	case strings.Contains(a, "mãe") || strings.Contains(a, "pai"):
		return c.PainPoints.Parent
	case strings.Contains(a, "dor") || strings.Contains(a, "sofrimento"):
		return c.PainPoints.Pain
	default:
		return c.PainPoints.Default
	}
}

// Hook returns the opening line for the strategy's trigger. For an unaware
// audience the first lower-case "você" is softened.
func (c *Catalog) Hook(s Strategy) string {
	hook := c.Defaults.Hook
	if s.Trigger != nil {
		hook = s.Trigger.Hook
	}
	if s.Awareness != nil && s.Awareness.Key == AwarenessUnaware {
		hook = strings.Replace(hook, "você", unawareHookInsertion, 1)
	}
	return hook
}

// Body assembles the transition, premise, authority sentence, differentiator
// and closing line.
func (c *Catalog) Body(b Brief, s Strategy) string {
	transition := c.Defaults.Transition
	if s.Trigger != nil {
		transition = s.Trigger.Transition
	}

	closing := defaultClosingLine
	if s.Awareness != nil && s.Awareness.Key == AwarenessMostAware {
		closing = mostAwareClosingLine
	}

	var sb strings.Builder
	sb.WriteString(transition)
	sb.WriteString(s.Premise)
	sb.WriteString(" ")
	fmt.Fprintf(&sb, "Em %s anos de experiência, %s. ", b.YearsExperience, strings.ToLower(b.ProvenResults))
	sb.WriteString(b.Differentiator)
	sb.WriteString(". ")
	sb.WriteString(closing)
	return sb.String()
}

// CTA returns the call-to-action for the strategy's trigger.
func (c *Catalog) CTA(s Strategy) string {
	if s.Trigger != nil {
		return s.Trigger.CTA
	}
	return c.Defaults.CTA
}

// Compose runs the full template path for a brief.
func (c *Catalog) Compose(b Brief) (Strategy, Copy) {
	s := c.Analyze(b)
	return s, Copy{
		Hook: c.Hook(s),
		Body: c.Body(b, s),
		CTA:  c.CTA(s),
	}
}

// Variations builds up to n alternative copies from the first triggers in
// catalog order that differ from the brief's own. n <= 0 means three.
func (c *Catalog) Variations(b Brief, n int) []Variation {
	if n <= 0 {
		n = defaultVariationCount
	}
	out := make([]Variation, 0, n)
	for _, t := range c.Triggers {
		if len(out) == n {
			break
		}
		if t.Key == b.Trigger {
			continue
		}
		vb := b
		vb.Trigger = t.Key
		_, cp := c.Compose(vb)
		out = append(out, Variation{Trigger: t.Key, Copy: cp})
	}
	return out
}

// Analyze derives a strategy using the embedded catalog.
func Analyze(b Brief) Strategy { return catalog.Analyze(b) }

// Compose runs the template path using the embedded catalog.
func Compose(b Brief) (Strategy, Copy) { return catalog.Compose(b) }

// Variations builds alternative copies using the embedded catalog.
func Variations(b Brief, n int) []Variation { return catalog.Variations(b, n) }
