package formschema

import (
	"strconv"
	"strings"

	"github.com/nouscopy/nouscopy/internal/copygen"
)

const (
	defaultLegacyTrigger  = "gula"
	defaultFormTrigger    = "curiosidade"
	defaultFormChannel    = "vsl"
	defaultLegacyDuration = 30
)

// ToBrief maps form answers onto the rule engine's inputs. Awareness and
// channel values without a mapping pass through unchanged; an unmapped
// trigger becomes "gula". Every answer is also carried in Brief.Extra.
func (s *Schema) ToBrief(form FormData) copygen.Brief {
	b := copygen.Brief{
		ProfessionalName: form.String("profissional_nome"),
		YearsExperience:  form.String("tempo_experiencia"),
		ProvenResults:    form.String("resultado_principal"),
		Differentiator:   form.String("diferencial"),
		Audience:         form.String("publico_descricao"),
		Awareness:        lookupOr(s.Legacy.Awareness, form.String("nivel_consciencia"), form.String("nivel_consciencia")),
		Trigger:          lookupOr(s.Legacy.Triggers, form.String("gatilho_principal"), defaultLegacyTrigger),
		Methodology:      form.String("metodologia_base"),
		Platform:         lookupOr(s.Legacy.Channels, form.String("canal_principal"), form.String("canal_principal")),
		DurationSeconds:  defaultLegacyDuration,
		Density:          "minimalista",
		Extra:            map[string]any(form.Clone()),
	}
	if mins, err := strconv.Atoi(strings.TrimSpace(form.String("vsl_duracao_minutos"))); err == nil && mins > 0 {
		b.DurationSeconds = mins * 60
	}
	if form.String("estilo_linguagem") == "simples_direto" {
		b.Density = "informativo"
	}
	return b
}

// FromBrief maps rule engine inputs back onto form answers. Extra answers
// are kept but never override the mapped fields. Unmapped triggers become
// "curiosidade" and unmapped channels become "vsl".
func (s *Schema) FromBrief(b copygen.Brief) FormData {
	form := FormData{}
	for k, v := range b.Extra {
		form[k] = v
	}
	form["profissional_nome"] = b.ProfessionalName
	form["tempo_experiencia"] = b.YearsExperience
	form["resultado_principal"] = b.ProvenResults
	form["diferencial"] = b.Differentiator
	form["publico_descricao"] = b.Audience
	form["nivel_consciencia"] = reverseAwareness(s.Legacy.Awareness, b.Awareness)
	form["gatilho_principal"] = lookupOr(s.Legacy.TriggersReverse, b.Trigger, defaultFormTrigger)
	form["metodologia_base"] = b.Methodology
	form["canal_principal"] = lookupOr(s.Legacy.ChannelsReverse, b.Platform, defaultFormChannel)
	return form
}

func lookupOr(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

func reverseAwareness(m map[string]string, legacy string) string {
	for form, l := range m {
		if l == legacy {
			return form
		}
	}
	return legacy
}

// ToBrief adapts form answers using the embedded schema.
func ToBrief(form FormData) copygen.Brief { return schema.ToBrief(form) }

// FromBrief adapts a brief back to form answers using the embedded schema.
func FromBrief(b copygen.Brief) FormData { return schema.FromBrief(b) }
