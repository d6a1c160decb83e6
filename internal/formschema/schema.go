// Package formschema describes the structured copy form: its fields and
// blocks, the system presets that reshape it, the user presets built on top
// of them, and the agents that each generate one kind of copy from a subset
// of the fields. It also adapts form answers to the rule engine's Brief.
package formschema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaYAML []byte

// FieldType is the input widget a field is rendered with.
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeTextarea    FieldType = "textarea"
	TypeNumber      FieldType = "number"
	TypeSelect      FieldType = "select"
	TypeMultiselect FieldType = "multiselect"
	TypeCheckbox    FieldType = "checkbox"
	TypeRadio       FieldType = "radio"
)

// Option is one choice of a select, multiselect or radio field.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Field is a single form input.
type Field struct {
	ID          string    `yaml:"id" json:"id"`
	Label       string    `yaml:"label" json:"label"`
	Type        FieldType `yaml:"type" json:"type"`
	Block       string    `yaml:"block" json:"block"`
	Order       int       `yaml:"order" json:"order"`
	Placeholder string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Options     []Option  `yaml:"options,omitempty" json:"options,omitempty"`
	Default     string    `yaml:"default,omitempty" json:"default,omitempty"`

	// Visible and Required are only meaningful on a preset's extra fields.
	Visible  bool `yaml:"visible,omitempty" json:"visible,omitempty"`
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`
}

// Block groups related fields under a heading.
type Block struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// FieldSetting is how a system preset treats one base field.
type FieldSetting struct {
	Visible  bool   `yaml:"visible" json:"visible"`
	Required bool   `yaml:"required" json:"required"`
	Default  string `yaml:"default,omitempty" json:"default,omitempty"`
}

// SystemTemplate is a built-in preset for a kind of output.
type SystemTemplate struct {
	ID          string                  `yaml:"id" json:"id"`
	Name        string                  `yaml:"name" json:"name"`
	Description string                  `yaml:"description" json:"description"`
	OutputType  string                  `yaml:"output_type" json:"output_type"`
	Fields      map[string]FieldSetting `yaml:"fields" json:"fields"`
	ExtraFields []Field                 `yaml:"extra_fields" json:"extra_fields"`
}

type legacyMaps struct {
	Awareness       map[string]string `yaml:"awareness"`
	Triggers        map[string]string `yaml:"triggers"`
	TriggersReverse map[string]string `yaml:"triggers_reverse"`
	Channels        map[string]string `yaml:"channels"`
	ChannelsReverse map[string]string `yaml:"channels_reverse"`
}

// Schema is the complete form definition.
type Schema struct {
	Blocks          []Block          `yaml:"blocks"`
	OtherBlock      Block            `yaml:"other_block"`
	BaseFields      []Field          `yaml:"fields"`
	AgentFields     []Field          `yaml:"agent_fields"`
	SystemTemplates []SystemTemplate `yaml:"system_templates"`
	AgentList       []Agent          `yaml:"agents"`
	Legacy          legacyMaps       `yaml:"legacy"`

	byID map[string]*Field
}

var schema = mustParseSchema(schemaYAML)

func mustParseSchema(data []byte) *Schema {
	s, err := parseSchema(data)
	if err != nil {
		panic(err)
	}
	return s
}

func parseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing form schema: %w", err)
	}
	if len(s.BaseFields) == 0 {
		return nil, fmt.Errorf("form schema defines no fields")
	}

	s.byID = make(map[string]*Field, len(s.BaseFields)+len(s.AgentFields))
	for _, list := range [][]Field{s.BaseFields, s.AgentFields} {
		for i := range list {
			f := &list[i]
			if _, dup := s.byID[f.ID]; dup {
				return nil, fmt.Errorf("duplicate field %q in form schema", f.ID)
			}
			s.byID[f.ID] = f
		}
	}
	return &s, nil
}

// Default returns the embedded schema.
func Default() *Schema { return schema }

// Fields returns the base fields in declaration order.
func (s *Schema) Fields() []Field { return s.BaseFields }

// Field looks up a base or agent-only field by id.
func (s *Schema) Field(id string) (*Field, bool) {
	f, ok := s.byID[id]
	return f, ok
}

// IsBaseField reports whether id is one of the base fields.
func (s *Schema) IsBaseField(id string) bool {
	for _, f := range s.BaseFields {
		if f.ID == id {
			return true
		}
	}
	return false
}

// FieldsByBlock returns the base fields of a block sorted by order.
func (s *Schema) FieldsByBlock(block string) []Field {
	var out []Field
	for _, f := range s.BaseFields {
		if f.Block == block {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// BlockLabel returns the heading of a block. Fields outside the known
// blocks are grouped under the "other" heading.
func (s *Schema) BlockLabel(id string) string {
	for _, b := range s.Blocks {
		if b.ID == id {
			return b.Label
		}
	}
	return s.OtherBlock.Label
}

// SystemTemplate looks up a system preset by id.
func (s *Schema) SystemTemplate(id string) (*SystemTemplate, bool) {
	for i := range s.SystemTemplates {
		if s.SystemTemplates[i].ID == id {
			return &s.SystemTemplates[i], true
		}
	}
	return nil, false
}

// FieldConfig returns how a preset treats a base field. Fields the preset
// does not mention are visible and optional.
func (s *Schema) FieldConfig(templateID, fieldID string) FieldSetting {
	if t, ok := s.SystemTemplate(templateID); ok {
		if fs, ok := t.Fields[fieldID]; ok {
			return fs
		}
	}
	return FieldSetting{Visible: true}
}

// ExtraFields returns the preset-specific fields of a system preset.
func (s *Schema) ExtraFields(templateID string) []Field {
	if t, ok := s.SystemTemplate(templateID); ok {
		return t.ExtraFields
	}
	return nil
}

// FormData holds form answers keyed by field id. Values are strings, except
// multiselect answers which are lists of strings.
type FormData map[string]any

// String returns the answer for id as text. List answers are joined with
// ", ".
func (f FormData) String(id string) string {
	switch v := f[id].(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// IsEmpty reports whether the answer for id is missing or blank.
func (f FormData) IsEmpty(id string) bool {
	switch v := f[id].(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case bool:
		return !v
	default:
		return false
	}
}

// Clone returns a shallow copy of the answers.
func (f FormData) Clone() FormData {
	out := make(FormData, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Package-level wrappers over the embedded schema.

func Fields() []Field { return schema.Fields() }
func Blocks() []Block { return schema.Blocks }
func FieldsByBlock(block string) []Field { return schema.FieldsByBlock(block) }
func SystemTemplates() []SystemTemplate { return schema.SystemTemplates }
func ExtraFields(templateID string) []Field { return schema.ExtraFields(templateID) }
func FieldConfig(templateID, fieldID string) FieldSetting {
	return schema.FieldConfig(templateID, fieldID)
}

// LookupField finds a field in the embedded schema.
func LookupField(id string) (*Field, bool) { return schema.Field(id) }

// LookupSystemTemplate finds a system preset in the embedded schema.
func LookupSystemTemplate(id string) (*SystemTemplate, bool) { return schema.SystemTemplate(id) }
