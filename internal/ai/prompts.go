package ai

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/nouscopy/nouscopy/internal/copygen"
)

//go:embed prompts/*.tmpl prompts/formats.yaml
var promptFS embed.FS

var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// Section is one part of a copy.
type Section string

const (
	SectionHook Section = "hook"
	SectionBody Section = "body"
	SectionCTA  Section = "cta"
)

type sectionText struct {
	Hook string `yaml:"hook"`
	Body string `yaml:"body"`
	CTA  string `yaml:"cta"`
}

func (s sectionText) get(sec Section) string {
	switch sec {
	case SectionHook:
		return s.Hook
	case SectionBody:
		return s.Body
	default:
		return s.CTA
	}
}

type formatSpec struct {
	sectionText      `yaml:",inline"`
	HookRequirements []string `yaml:"hook_requirements"`
	BodyRequirements []string `yaml:"body_requirements"`
	CTARequirements  []string `yaml:"cta_requirements"`
}

func (f formatSpec) requirements(sec Section) []string {
	switch sec {
	case SectionHook:
		return f.HookRequirements
	case SectionBody:
		return f.BodyRequirements
	default:
		return f.CTARequirements
	}
}

type agentSpec struct {
	Name      string `yaml:"name"`
	HookFocus string `yaml:"hook_focus"`
	BodyFocus string `yaml:"body_focus"`
	CTAFocus  string `yaml:"cta_focus"`
}

func (a agentSpec) focus(sec Section) string {
	switch sec {
	case SectionHook:
		return a.HookFocus
	case SectionBody:
		return a.BodyFocus
	default:
		return a.CTAFocus
	}
}

type promptCatalog struct {
	DefaultInstructions string                `yaml:"default_instructions"`
	Generic             sectionText           `yaml:"generic"`
	InvisibleStructure  string                `yaml:"invisible_structure"`
	DefaultFormat       string                `yaml:"default_format"`
	DefaultAgent        string                `yaml:"default_agent"`
	Formats             map[string]formatSpec `yaml:"formats"`
	Agents              map[string]agentSpec  `yaml:"agents"`
}

var prompts = mustLoadPromptCatalog()

func mustLoadPromptCatalog() *promptCatalog {
	data, err := promptFS.ReadFile("prompts/formats.yaml")
	if err != nil {
		panic(err)
	}
	var c promptCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		panic(fmt.Errorf("parsing prompt catalog: %w", err))
	}
	return &c
}

// Formats lists the output formats that have dedicated instructions.
func Formats() []string {
	out := make([]string, 0, len(prompts.Formats))
	for k := range prompts.Formats {
		out = append(out, k)
	}
	return out
}

// PromptData holds the variables available in the prompt templates.
// Empty values are replaced by neutral wording in the templates.
type PromptData struct {
	Professional      string
	Audience          string
	Years             string
	Results           string
	Differentiator    string
	Methodology       string
	Platform          string
	TriggerName       string
	TriggerDriver     string
	AwarenessName     string
	AwarenessApproach string
	Premise           string
	Hook              string

	Format           string
	AgentName        string
	Focus            string
	Requirements     []string
	OfferName        string
	OfferDescription string
	VideoSeconds     string
	ArtTextSize      string

	CompetitorCopy string
	Notes          string
}

// NewPromptData flattens a brief and its strategy into template variables.
func NewPromptData(b copygen.Brief, s copygen.Strategy) PromptData {
	d := PromptData{
		Professional:     b.ProfessionalName,
		Audience:         b.Audience,
		Years:            b.YearsExperience,
		Results:          b.ProvenResults,
		Differentiator:   b.Differentiator,
		Methodology:      b.Methodology,
		Platform:         b.Platform,
		Premise:          s.Premise,
		OfferName:        extra(b, "oferta_nome"),
		OfferDescription: extra(b, "oferta_descricao"),
		VideoSeconds:     extra(b, "duracao_video"),
		ArtTextSize:      extra(b, "tamanho_texto_arte"),
	}
	if t := s.Trigger; t != nil {
		d.TriggerName = t.Name
		d.TriggerDriver = t.Driver
	}
	if a := s.Awareness; a != nil {
		d.AwarenessName = a.Name
		d.AwarenessApproach = a.Approach
	}
	if d.Platform == "" {
		d.Platform = extra(b, "canal_principal")
	}
	return d
}

func extra(b copygen.Brief, key string) string {
	v, ok := b.Extra[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func render(name string, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// SectionPrompt builds the generic prompt for one section of a copy.
func SectionPrompt(sec Section, data PromptData) (Prompt, error) {
	input, err := render(string(sec)+".tmpl", data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Instructions: prompts.Generic.get(sec), Input: input}, nil
}

// FormatSectionPrompt builds the prompt for one section of a copy written
// for an output format by an agent. Unknown formats use the Meta Ads
// instructions and unknown agents the "criativo" focus.
func FormatSectionPrompt(sec Section, format, agentID string, data PromptData) (Prompt, error) {
	if _, ok := prompts.Formats[format]; !ok || format == "" {
		format = prompts.DefaultFormat
	}
	fp := prompts.Formats[format]

	agent, ok := prompts.Agents[agentID]
	if !ok {
		agent = prompts.Agents[prompts.DefaultAgent]
	}

	data.Format = format
	data.AgentName = agent.Name
	data.Focus = agent.focus(sec)
	data.Requirements = fp.requirements(sec)

	input, err := render("format_"+string(sec)+".tmpl", data)
	if err != nil {
		return Prompt{}, err
	}

	instructions := strings.TrimSpace(fp.get(sec))
	if data.Focus != "" {
		instructions += " Foque em: " + data.Focus + "."
	}
	return Prompt{Instructions: instructions, Input: input}, nil
}

// InvisibleStructurePrompt builds the prompt that adapts a competitor's
// copy through the eight-step invisible structure.
func InvisibleStructurePrompt(competitorCopy, notes string) (Prompt, error) {
	if strings.TrimSpace(competitorCopy) == "" {
		return Prompt{}, ErrCompetitorCopyRequired
	}
	input, err := render("invisible.tmpl", PromptData{
		CompetitorCopy: competitorCopy,
		Notes:          strings.TrimSpace(notes),
	})
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Instructions: prompts.InvisibleStructure, Input: input}, nil
}
