package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nouscopy/nouscopy/internal/auth"
	"github.com/nouscopy/nouscopy/internal/storage"
)

const maxPreferenceKeyLen = 64

// GetPreferences handles GET /api/preferences. It returns all of the
// signed-in user's preferences as a JSON object.
func GetPreferences(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		prefs, err := store.GetAllPreferences(ctx, userID)
		if err != nil {
			slog.Error("failed to get preferences", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get preferences")
			return
		}

		writeJSON(w, http.StatusOK, prefs)
	}
}

// UpdatePreferences handles PUT /api/preferences. It accepts a JSON object
// where each key-value pair is saved as a separate preference.
func UpdatePreferences(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		var body map[string]json.RawMessage
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		for key := range body {
			if key == "" || len(key) > maxPreferenceKeyLen {
				writeError(w, http.StatusBadRequest, "Invalid preference key")
				return
			}
		}

		for key, value := range body {
			if err := store.SetPreference(ctx, userID, key, value); err != nil {
				slog.Error("failed to set preference", "user_id", userID, "key", key, "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to save preferences")
				return
			}
		}

		prefs, err := store.GetAllPreferences(ctx, userID)
		if err != nil {
			slog.Error("failed to get preferences after save", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get preferences")
			return
		}

		writeJSON(w, http.StatusOK, prefs)
	}
}
