package formschema

import (
	"errors"
	"strings"
)

// DefaultBaseTemplate is the base of user presets saved without an active
// system preset. It names no system preset, so it leaves every field
// visible.
const DefaultBaseTemplate = "formulario_completo"

// ErrTemplateNameRequired is returned when a user preset has a blank name.
var ErrTemplateNameRequired = errors.New("template name is required")

// Preset is one predefined value of a user preset.
type Preset struct {
	FieldID  string `json:"field_id"`
	Value    any    `json:"value,omitempty"`
	Locked   bool   `json:"locked"`
	Required bool   `json:"required"`
}

// UserTemplate is a preset saved by a user on top of a system preset.
type UserTemplate struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	BaseTemplateID string   `json:"base_template_id"`
	Presets        []Preset `json:"presets"`
}

// Config is the field state a preset leaves behind.
type Config struct {
	VisibleFields  []string `json:"visible_fields"`
	RequiredFields []string `json:"required_fields"`
	LockedFields   []string `json:"locked_fields"`
	ExtraFields    []Field  `json:"extra_fields"`
}

// IsVisible reports whether a field is shown. With no active preset every
// field is visible.
func (c Config) IsVisible(id string) bool {
	if len(c.VisibleFields) == 0 {
		return true
	}
	return contains(c.VisibleFields, id)
}

// IsRequired reports whether a field must be answered.
func (c Config) IsRequired(id string) bool { return contains(c.RequiredFields, id) }

// IsLocked reports whether a field's value is fixed by the preset.
func (c Config) IsLocked(id string) bool { return contains(c.LockedFields, id) }

// Applied is the outcome of applying a preset to a form.
type Applied struct {
	Form   FormData `json:"form"`
	Config Config   `json:"config"`
}

// ApplySystemTemplate fills empty answers with the preset's defaults and
// reports which fields it shows and requires. An unknown preset leaves the
// form untouched and yields an empty config.
func (s *Schema) ApplySystemTemplate(id string, form FormData) Applied {
	out := form.Clone()
	t, ok := s.SystemTemplate(id)
	if !ok {
		return Applied{Form: out}
	}

	var cfg Config
	for _, f := range s.BaseFields {
		fs, ok := t.Fields[f.ID]
		if !ok {
			fs = FieldSetting{Visible: true}
		}
		if !fs.Visible {
			continue
		}
		cfg.VisibleFields = append(cfg.VisibleFields, f.ID)
		if fs.Required {
			cfg.RequiredFields = append(cfg.RequiredFields, f.ID)
		}
		if fs.Default != "" && out.IsEmpty(f.ID) {
			out[f.ID] = fs.Default
		}
	}

	cfg.ExtraFields = t.ExtraFields
	for _, f := range t.ExtraFields {
		if !f.Visible {
			continue
		}
		cfg.VisibleFields = append(cfg.VisibleFields, f.ID)
		if f.Required {
			cfg.RequiredFields = append(cfg.RequiredFields, f.ID)
		}
		if f.Default != "" && out.IsEmpty(f.ID) {
			out[f.ID] = f.Default
		}
	}
	return Applied{Form: out, Config: cfg}
}

// ApplyUserTemplate applies the preset's base system preset, then its own
// values. Preset values override existing answers.
func (s *Schema) ApplyUserTemplate(tpl UserTemplate, form FormData) Applied {
	res := s.ApplySystemTemplate(tpl.BaseTemplateID, form)
	for _, p := range tpl.Presets {
		if p.Value != nil {
			res.Form[p.FieldID] = p.Value
		}
		if p.Locked {
			res.Config.LockedFields = append(res.Config.LockedFields, p.FieldID)
		}
		if p.Required && !contains(res.Config.RequiredFields, p.FieldID) {
			res.Config.RequiredFields = append(res.Config.RequiredFields, p.FieldID)
		}
	}
	return res
}

// PresetSettings marks how a field's current answer is saved into a user
// preset.
type PresetSettings struct {
	UseAsDefault bool `json:"use_as_default"`
	Locked       bool `json:"locked"`
	Required     bool `json:"required"`
}

// NewUserTemplate builds a user preset from the answered base fields of a
// form. Fields without settings are saved as plain defaults; fields whose
// settings clear UseAsDefault are skipped.
func (s *Schema) NewUserTemplate(name, description, baseID string, form FormData, settings map[string]PresetSettings) (UserTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return UserTemplate{}, ErrTemplateNameRequired
	}
	if baseID == "" {
		baseID = DefaultBaseTemplate
	}

	tpl := UserTemplate{
		Name:           name,
		Description:    strings.TrimSpace(description),
		BaseTemplateID: baseID,
		Presets:        []Preset{},
	}
	for _, f := range s.BaseFields {
		if form.IsEmpty(f.ID) {
			continue
		}
		ps, ok := settings[f.ID]
		if !ok {
			ps = PresetSettings{UseAsDefault: true}
		}
		if !ps.UseAsDefault {
			continue
		}
		tpl.Presets = append(tpl.Presets, Preset{
			FieldID:  f.ID,
			Value:    form[f.ID],
			Locked:   ps.Locked,
			Required: ps.Required,
		})
	}
	return tpl, nil
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// ApplySystemTemplate applies a system preset from the embedded schema.
func ApplySystemTemplate(id string, form FormData) Applied {
	return schema.ApplySystemTemplate(id, form)
}

// ApplyUserTemplate applies a user preset over the embedded schema.
func ApplyUserTemplate(tpl UserTemplate, form FormData) Applied {
	return schema.ApplyUserTemplate(tpl, form)
}

// NewUserTemplate builds a user preset against the embedded schema.
func NewUserTemplate(name, description, baseID string, form FormData, settings map[string]PresetSettings) (UserTemplate, error) {
	return schema.NewUserTemplate(name, description, baseID, form, settings)
}
