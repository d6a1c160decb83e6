package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/nouscopy/nouscopy/internal/auth"
	"github.com/nouscopy/nouscopy/internal/copygen"
	"github.com/nouscopy/nouscopy/internal/models"
	"github.com/nouscopy/nouscopy/internal/storage"
)

const defaultHistoryLimit = 50

// ListHistory handles GET /api/history. Optional "search" filters by title
// and platform; "limit" caps the number of entries (default 50).
func ListHistory(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		limit, err := parseLimit(r, defaultHistoryLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		entries, err := store.ListHistory(ctx, userID, r.URL.Query().Get("search"), limit)
		if err != nil {
			slog.Error("failed to list history", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list history")
			return
		}

		writeJSON(w, http.StatusOK, entries)
	}
}

// GetHistoryEntry handles GET /api/history/{id}.
func GetHistoryEntry(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, ok := loadHistoryEntry(w, r, store, "id")
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// DeleteHistoryEntry handles DELETE /api/history/{id}.
func DeleteHistoryEntry(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := store.DeleteHistoryEntry(ctx, userID, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "History entry not found")
				return
			}
			slog.Error("failed to delete history entry", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to delete history entry")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearHistory handles DELETE /api/history and reports how many entries
// were removed.
func ClearHistory(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.UserIDFromContext(ctx)

		n, err := store.ClearHistory(ctx, userID)
		if err != nil {
			slog.Error("failed to clear history", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to clear history")
			return
		}

		slog.Info("history cleared", "user_id", userID, "deleted", n)
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
	}
}

// ExportHistoryEntry handles GET /api/history/{id}/export. The copy is sent
// as a plain text attachment in the same layout as the clipboard text.
func ExportHistoryEntry(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, ok := loadHistoryEntry(w, r, store, "id")
		if !ok {
			return
		}

		text := entry.Title + "\n\n" + copygen.FormatText(entryCopy(entry)) + "\n"
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(entry)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
	}
}

// diffSpan is one run of text that is equal, inserted or deleted when going
// from the first copy to the second.
type diffSpan struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

type sectionDiff struct {
	Spans []diffSpan `json:"spans"`
	// Distance is the Levenshtein distance in characters.
	Distance int `json:"distance"`
}

type historyComparison struct {
	From *models.HistoryEntry `json:"from"`
	To   *models.HistoryEntry `json:"to"`
	Hook sectionDiff          `json:"hook"`
	Body sectionDiff          `json:"body"`
	CTA  sectionDiff          `json:"cta"`
}

// CompareHistory handles GET /api/history/{id}/compare/{other}. It diffs
// each section of two saved copies, which is how A/B variations are
// reviewed side by side.
func CompareHistory(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, ok := loadHistoryEntry(w, r, store, "id")
		if !ok {
			return
		}
		to, ok := loadHistoryEntry(w, r, store, "other")
		if !ok {
			return
		}

		dmp := diffmatchpatch.New()
		writeJSON(w, http.StatusOK, historyComparison{
			From: from,
			To:   to,
			Hook: diffSection(dmp, from.Hook, to.Hook),
			Body: diffSection(dmp, from.Body, to.Body),
			CTA:  diffSection(dmp, from.CTA, to.CTA),
		})
	}
}

func diffSection(dmp *diffmatchpatch.DiffMatchPatch, a, b string) sectionDiff {
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	spans := make([]diffSpan, 0, len(diffs))
	for _, d := range diffs {
		spans = append(spans, diffSpan{Op: diffOp(d.Type), Text: d.Text})
	}
	return sectionDiff{Spans: spans, Distance: dmp.DiffLevenshtein(diffs)}
}

func diffOp(op diffmatchpatch.Operation) string {
	switch op {
	case diffmatchpatch.DiffInsert:
		return "insert"
	case diffmatchpatch.DiffDelete:
		return "delete"
	default:
		return "equal"
	}
}

func entryCopy(e *models.HistoryEntry) copygen.Copy {
	return copygen.Copy{Hook: e.Hook, Body: e.Body, CTA: e.CTA}
}

// exportFilename builds an ASCII file name from the entry title.
func exportFilename(e *models.HistoryEntry) string {
	var b strings.Builder
	for _, r := range strings.ToLower(e.Title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if s := b.String(); s != "" && !strings.HasSuffix(s, "-") {
				b.WriteByte('-')
			}
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "copy"
	}
	return name + ".txt"
}

// loadHistoryEntry fetches the entry named by the given URL parameter,
// writing the error response itself when it cannot.
func loadHistoryEntry(w http.ResponseWriter, r *http.Request, store *storage.Store, param string) (*models.HistoryEntry, bool) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	id, err := pathID(r, param)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	entry, err := store.GetHistoryEntry(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "History entry not found")
			return nil, false
		}
		slog.Error("failed to get history entry", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get history entry")
		return nil, false
	}
	return entry, true
}
