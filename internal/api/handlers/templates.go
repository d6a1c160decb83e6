package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nouscopy/nouscopy/internal/auth"
	"github.com/nouscopy/nouscopy/internal/formschema"
	"github.com/nouscopy/nouscopy/internal/models"
	"github.com/nouscopy/nouscopy/internal/storage"
)

// toUserTemplate decodes a stored template into a preset the schema can
// apply.
func toUserTemplate(m *models.Template) (formschema.UserTemplate, error) {
	tpl := formschema.UserTemplate{
		Name:           m.Name,
		Description:    m.Description,
		BaseTemplateID: m.BaseTemplateID,
	}
	if len(m.Presets) > 0 {
		if err := json.Unmarshal(m.Presets, &tpl.Presets); err != nil {
			return formschema.UserTemplate{}, fmt.Errorf("decoding presets of template %s: %w", m.ID, err)
		}
	}
	return tpl, nil
}

// ListTemplates handles GET /api/templates. The optional "search" query
// parameter filters by name and description.
func ListTemplates(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		templates, err := store.ListTemplates(ctx, userID, r.URL.Query().Get("search"))
		if err != nil {
			slog.Error("failed to list templates", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list templates")
			return
		}

		writeJSON(w, http.StatusOK, templates)
	}
}

// CreateTemplate handles POST /api/templates. The template is built from the
// answered fields of the posted form; settings decide per field whether the
// answer is saved and whether it is locked or required.
func CreateTemplate(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		var body struct {
			Name           string                               `json:"name"`
			Description    string                               `json:"description"`
			BaseTemplateID string                               `json:"base_template_id"`
			Form           formschema.FormData                  `json:"form"`
			Settings       map[string]formschema.PresetSettings `json:"settings"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		tpl, err := formschema.NewUserTemplate(body.Name, body.Description, body.BaseTemplateID, body.Form, body.Settings)
		if err != nil {
			if errors.Is(err, formschema.ErrTemplateNameRequired) {
				writeError(w, http.StatusBadRequest, "Nome do template é obrigatório")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		presets, err := json.Marshal(tpl.Presets)
		if err != nil {
			slog.Error("failed to encode presets", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save template")
			return
		}

		id, err := store.CreateTemplate(ctx, &models.Template{
			UserID:         userID,
			Name:           tpl.Name,
			Description:    tpl.Description,
			BaseTemplateID: tpl.BaseTemplateID,
			Presets:        presets,
		})
		if err != nil {
			slog.Error("failed to create template", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save template")
			return
		}

		saved, err := store.GetTemplate(ctx, userID, id)
		if err != nil {
			slog.Error("failed to reload template", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save template")
			return
		}

		slog.Info("template created", "user_id", userID, "id", id, "presets", len(tpl.Presets))
		writeJSON(w, http.StatusCreated, saved)
	}
}

// GetTemplate handles GET /api/templates/{id}.
func GetTemplate(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := loadTemplate(w, r, store)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, tmpl)
	}
}

// DeleteTemplate handles DELETE /api/templates/{id}.
func DeleteTemplate(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := store.DeleteTemplate(ctx, userID, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Template not found")
				return
			}
			slog.Error("failed to delete template", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to delete template")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ApplyTemplate handles POST /api/templates/{id}/apply. The base system
// preset is applied first, then the template's own values override the
// posted answers.
func ApplyTemplate(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := loadTemplate(w, r, store)
		if !ok {
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

		tpl, err := toUserTemplate(tmpl)
		if err != nil {
			slog.Error("failed to decode template", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to apply template")
			return
		}

		writeJSON(w, http.StatusOK, formschema.ApplyUserTemplate(tpl, body.Form))
	}
}

// loadTemplate fetches the {id} template of the signed-in user, writing the
// error response itself when it cannot.
func loadTemplate(w http.ResponseWriter, r *http.Request, store *storage.Store) (*models.Template, bool) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	tmpl, err := store.GetTemplate(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return nil, false
		}
		slog.Error("failed to get template", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return nil, false
	}
	return tmpl, true
}
