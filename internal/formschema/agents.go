package formschema

import (
	"fmt"
	"sort"
	"strings"
)

// AgentInvisibleStructure is the agent that rewrites a competitor's copy.
const AgentInvisibleStructure = "estrutura_invisivel"

const competitorCopyField = "copy_concorrente"

// essentialFields are the text fields an agent form cannot leave blank.
var essentialFields = []string{"profissional_nome", "oferta_nome", "publico_descricao"}

// Agent is a specialised generator that asks for a subset of the form.
type Agent struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Cost        int      `yaml:"cost" json:"cost"`
	Fields      []string `yaml:"fields" json:"fields"`
	Format      string   `yaml:"format" json:"format,omitempty"`
	HookOnly    bool     `yaml:"hook_only" json:"hook_only,omitempty"`
	Disabled    bool     `yaml:"disabled" json:"disabled,omitempty"`
	Status      string   `yaml:"status" json:"status,omitempty"`

	InvisibleStructure bool `yaml:"invisible_structure" json:"invisible_structure,omitempty"`
}

// OutputFormat returns the channel the agent writes for: the form's main
// channel when set, otherwise the agent's own default.
func (a *Agent) OutputFormat(form FormData) string {
	if ch := form.String("canal_principal"); ch != "" {
		return ch
	}
	return a.Format
}

// FieldErrors maps field ids to validation messages.
type FieldErrors map[string]string

// Error joins the messages, ordered by field id.
func (e FieldErrors) Error() string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	msgs := make([]string, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, e[id])
	}
	return strings.Join(msgs, "\n")
}

// Agents returns the agent catalogue in display order, disabled agents
// included.
func (s *Schema) Agents() []Agent { return s.AgentList }

// Agent looks up an agent by id.
func (s *Schema) Agent(id string) (*Agent, bool) {
	for i := range s.AgentList {
		if s.AgentList[i].ID == id {
			return &s.AgentList[i], true
		}
	}
	return nil, false
}

// ValidateAgentForm checks the answers an agent needs. The competitor-copy
// agent only requires the competitor's copy. Other agents require every
// select they list and the essential text fields among their fields. Fields
// outside the base schema are not checked. A nil result means the form is
// valid.
func (s *Schema) ValidateAgentForm(a *Agent, form FormData) FieldErrors {
	errs := FieldErrors{}
	if a.InvisibleStructure {
		if form.IsEmpty(competitorCopyField) {
			errs[competitorCopyField] = "Copy do concorrente é obrigatória"
		}
		return nilIfEmpty(errs)
	}

	for _, id := range a.Fields {
		if !s.IsBaseField(id) {
			continue
		}
		f, _ := s.Field(id)
		switch f.Type {
		case TypeSelect:
			if form.IsEmpty(id) {
				errs[id] = fmt.Sprintf("%s é obrigatório", f.Label)
			}
		case TypeMultiselect:
		default:
			if form.IsEmpty(id) && contains(essentialFields, id) {
				errs[id] = fmt.Sprintf("%s é obrigatório", f.Label)
			}
		}
	}
	return nilIfEmpty(errs)
}

func nilIfEmpty(errs FieldErrors) FieldErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Agents returns the embedded agent catalogue.
func Agents() []Agent { return schema.Agents() }

// LookupAgent finds an agent in the embedded catalogue.
func LookupAgent(id string) (*Agent, bool) { return schema.Agent(id) }

// ValidateAgentForm validates against the embedded schema.
func ValidateAgentForm(a *Agent, form FormData) FieldErrors {
	return schema.ValidateAgentForm(a, form)
}
