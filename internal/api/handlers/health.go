package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nouscopy/nouscopy/internal/storage"
)

// Healthz handles GET /healthz. It reports 503 when the database does not
// answer a ping within two seconds.
func Healthz(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.DB().PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
