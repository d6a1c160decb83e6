package handlers

import (
	"log/slog"
	"net/http"

	"github.com/nouscopy/nouscopy/internal/auth"
	"github.com/nouscopy/nouscopy/internal/models"
	"github.com/nouscopy/nouscopy/internal/storage"
)

const recentActivityLimit = 5

// GetDashboard handles GET /api/dashboard. It returns how many copies and
// templates the user has and their latest generations.
func GetDashboard(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		copies, err := store.CountHistory(ctx, userID)
		if err != nil {
			slog.Error("failed to count history", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
			return
		}
		templates, err := store.CountTemplates(ctx, userID)
		if err != nil {
			slog.Error("failed to count templates", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
			return
		}
		recent, err := store.ListHistory(ctx, userID, "", recentActivityLimit)
		if err != nil {
			slog.Error("failed to list recent history", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
			return
		}

		writeJSON(w, http.StatusOK, models.Dashboard{
			CopiesGenerated:  copies,
			TemplatesCreated: templates,
			RecentActivity:   recent,
		})
	}
}
