package handlers

import (
	"net/http"

	"github.com/nouscopy/nouscopy/internal/ai"
	"github.com/nouscopy/nouscopy/internal/copygen"
	"github.com/nouscopy/nouscopy/internal/formschema"
)

// GetCatalog handles GET /api/catalog. It returns the triggers, awareness
// levels, methodologies and platforms of the rule engine, plus the output
// formats the AI writer knows.
func GetCatalog() http.HandlerFunc {
	c := copygen.Default()
	body := map[string]any{
		"triggers":      c.Triggers,
		"awareness":     c.Awareness,
		"methodologies": c.Methodologies,
		"platforms":     c.Platforms,
		"formats":       ai.Formats(),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}

type schemaBlock struct {
	formschema.Block
	Fields []formschema.Field `json:"fields"`
}

// GetSchema handles GET /api/schema. It returns the form blocks with their
// fields in display order.
func GetSchema() http.HandlerFunc {
	blocks := make([]schemaBlock, 0, len(formschema.Blocks()))
	for _, b := range formschema.Blocks() {
		blocks = append(blocks, schemaBlock{Block: b, Fields: formschema.FieldsByBlock(b.ID)})
	}
	body := map[string]any{"blocks": blocks}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}

// GetAgents handles GET /api/agents. Disabled agents are listed so the UI
// can show them as coming soon.
func GetAgents(aiEnabled bool) http.HandlerFunc {
	body := map[string]any{
		"agents":     formschema.Agents(),
		"ai_enabled": aiEnabled,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}

// GetSystemTemplates handles GET /api/templates/system.
func GetSystemTemplates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, formschema.SystemTemplates())
	}
}

type applyRequest struct {
	Form formschema.FormData `json:"form"`
}

// ApplySystemTemplate handles POST /api/templates/system/{id}/apply. It
// fills the empty answers of the posted form with the preset's defaults and
// returns the resulting field configuration.
func ApplySystemTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, ok := formschema.LookupSystemTemplate(id); !ok {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}

		var body applyRequest
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if body.Form == nil {
			body.Form = formschema.FormData{}
		}

		writeJSON(w, http.StatusOK, formschema.ApplySystemTemplate(id, body.Form))
	}
}
