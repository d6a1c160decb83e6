package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/nouscopy/nouscopy/internal/ai"
	"github.com/nouscopy/nouscopy/internal/auth"
	"github.com/nouscopy/nouscopy/internal/copygen"
	"github.com/nouscopy/nouscopy/internal/formschema"
	"github.com/nouscopy/nouscopy/internal/generate"
)

const msgNothingGenerated = "Não foi possível gerar as copies. Verifique os dados e tente novamente."

// briefRequest accepts either a legacy brief or form answers, which are
// adapted to a brief. UseAI and Model apply to form answers only.
type briefRequest struct {
	Brief *copygen.Brief      `json:"brief"`
	Form  formschema.FormData `json:"form"`
	UseAI bool                `json:"use_ai"`
	Model string              `json:"model"`
}

func (req briefRequest) toBrief() (copygen.Brief, bool) {
	switch {
	case req.Brief != nil:
		return *req.Brief, true
	case req.Form != nil:
		b := formschema.ToBrief(req.Form)
		b.UseAI = req.UseAI
		b.Model = req.Model
		return b, true
	}
	return copygen.Brief{}, false
}

// Generate handles POST /api/generate. It writes one copy from a brief or
// from form answers and records it in the user's history.
func Generate(svc *generate.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body briefRequest
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		b, ok := body.toBrief()
		if !ok {
			writeError(w, http.StatusBadRequest, "brief or form is required")
			return
		}

		res, err := svc.GenerateBrief(r.Context(), auth.UserIDFromContext(r.Context()), b)
		if err != nil {
			writeGenerateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GenerateAgent handles POST /api/agents/{id}/generate. Quantity defaults to
// one and is capped by the configured maximum.
func GenerateAgent(svc *generate.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := pathID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body struct {
			Form     formschema.FormData `json:"form"`
			Quantity int                 `json:"quantity"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if body.Form == nil {
			body.Form = formschema.FormData{}
		}

		res, err := svc.GenerateAgent(r.Context(), auth.UserIDFromContext(r.Context()), agentID, body.Form, body.Quantity)
		if err != nil {
			writeGenerateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Variations handles POST /api/variations. It returns A/B variations of the
// brief built around the other triggers.
func Variations(svc *generate.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			briefRequest
			Count int `json:"count"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		b, ok := body.toBrief()
		if !ok {
			writeError(w, http.StatusBadRequest, "brief or form is required")
			return
		}
		if body.Count < 0 || body.Count > len(copygen.Default().Triggers)-1 {
			writeError(w, http.StatusBadRequest, "count out of range")
			return
		}

		writeJSON(w, http.StatusOK, svc.Variations(b, body.Count))
	}
}

// writeGenerateError maps generation errors to status codes and the
// messages shown to users.
func writeGenerateError(w http.ResponseWriter, err error) {
	var fieldErrs formschema.FieldErrors
	var rateErr *generate.RateLimitError
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  fieldErrs.Error(),
			"fields": fieldErrs,
		})
	case errors.As(err, &rateErr):
		secs := int(math.Ceil(rateErr.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		writeError(w, http.StatusTooManyRequests, "Muitas gerações em pouco tempo. Aguarde alguns instantes e tente novamente.")
	case errors.Is(err, generate.ErrUnknownAgent):
		writeError(w, http.StatusNotFound, "Agente não encontrado")
	case errors.Is(err, generate.ErrAgentDisabled):
		writeError(w, http.StatusBadRequest, "Este agente ainda não está disponível")
	case errors.Is(err, generate.ErrAIUnavailable):
		writeError(w, http.StatusServiceUnavailable, ai.UserMessage(ai.ErrMissingKey))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "A geração demorou demais. Tente novamente.")
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads this response.
		w.WriteHeader(http.StatusServiceUnavailable)
	case errors.Is(err, generate.ErrNothingGenerated):
		slog.Warn("agent generation produced nothing", "error", err)
		if isProviderError(err) {
			writeError(w, http.StatusBadGateway, ai.UserMessage(err))
			return
		}
		writeError(w, http.StatusBadGateway, msgNothingGenerated)
	default:
		slog.Error("generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao gerar copy. Tente novamente.")
	}
}

// isProviderError reports whether err came from the AI provider and so has
// a specific user message.
func isProviderError(err error) bool {
	var apiErr *ai.APIError
	if errors.As(err, &apiErr) {
		return true
	}
	for _, target := range []error{
		ai.ErrMissingKey, ai.ErrMalformedKey, ai.ErrInvalidKey, ai.ErrRateLimited,
		ai.ErrQuotaExceeded, ai.ErrModelUnavailable, ai.ErrEmptyResponse,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
