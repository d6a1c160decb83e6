package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nouscopy/nouscopy/internal/competitor"
)

// ImportCompetitor handles POST /api/competitor/import. It fetches a
// competitor's page or feed and returns its text, ready to be pasted into
// the copy_concorrente field.
func ImportCompetitor(importer *competitor.Importer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URL string `json:"url"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := importer.Import(r.Context(), body.URL)
		if err != nil {
			switch {
			case errors.Is(err, competitor.ErrInvalidURL):
				writeError(w, http.StatusBadRequest, "URL inválida. Use um endereço http ou https.")
			case errors.Is(err, competitor.ErrBlockedAddress):
				writeError(w, http.StatusBadRequest, "Endereço não permitido. Use uma página pública.")
			case errors.Is(err, competitor.ErrNoContent):
				writeError(w, http.StatusUnprocessableEntity, "Não encontramos texto nessa página.")
			default:
				slog.Warn("competitor import failed", "url", body.URL, "error", err)
				writeError(w, http.StatusBadGateway, "Não foi possível acessar a página do concorrente.")
			}
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}
