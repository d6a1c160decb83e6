package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nouscopy/nouscopy/internal/formschema"
)

func TestGetCatalog(t *testing.T) {
	w := httptest.NewRecorder()
	GetCatalog().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}

	var got map[string][]any
	decodeBody(t, w, &got)
	for _, key := range []string{"triggers", "awareness", "methodologies", "platforms", "formats"} {
		if len(got[key]) == 0 {
			t.Errorf("catalog has no %s", key)
		}
	}
}

func TestGetSchema(t *testing.T) {
	w := httptest.NewRecorder()
	GetSchema().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/schema", nil))

	var got struct {
		Blocks []struct {
			ID     string             `json:"id"`
			Fields []formschema.Field `json:"fields"`
		} `json:"blocks"`
	}
	decodeBody(t, w, &got)
	if len(got.Blocks) != len(formschema.Blocks()) {
		t.Fatalf("got %d blocks, want %d", len(got.Blocks), len(formschema.Blocks()))
	}
	total := 0
	for _, b := range got.Blocks {
		total += len(b.Fields)
	}
	if total != len(formschema.Fields()) {
		t.Errorf("got %d fields across blocks, want %d", total, len(formschema.Fields()))
	}
}

func TestGetAgents(t *testing.T) {
	w := httptest.NewRecorder()
	GetAgents(true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/agents", nil))

	var got struct {
		Agents    []formschema.Agent `json:"agents"`
		AIEnabled bool               `json:"ai_enabled"`
	}
	decodeBody(t, w, &got)
	if !got.AIEnabled {
		t.Error("ai_enabled should be true")
	}
	if len(got.Agents) != len(formschema.Agents()) {
		t.Errorf("got %d agents, want %d", len(got.Agents), len(formschema.Agents()))
	}
}

func TestApplySystemTemplate(t *testing.T) {
	w := httptest.NewRecorder()
	ApplySystemTemplate().ServeHTTP(w, newRequest(t, http.MethodPost, "/", nil,
		map[string]any{"form": map[string]any{}}, "id", "vsl_alta_conversao"))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d; body: %s", w.Code, w.Body.String())
	}
	var applied formschema.Applied
	decodeBody(t, w, &applied)
	if !applied.Config.IsRequired("profissional_nome") {
		t.Error("profissional_nome should be required by the VSL preset")
	}

	w = httptest.NewRecorder()
	ApplySystemTemplate().ServeHTTP(w, newRequest(t, http.MethodPost, "/", nil,
		map[string]any{"form": map[string]any{}}, "id", "nao-existe"))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown preset got status %d, want %d", w.Code, http.StatusNotFound)
	}
}
