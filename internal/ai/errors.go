package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingKey       = errors.New("ai: api key not configured")
	ErrMalformedKey     = errors.New("ai: api key has an unexpected format")
	ErrInvalidKey       = errors.New("ai: api key rejected")
	ErrRateLimited      = errors.New("ai: rate limited")
	ErrQuotaExceeded    = errors.New("ai: quota exceeded")
	ErrModelUnavailable = errors.New("ai: model unavailable")
	ErrEmptyResponse    = errors.New("ai: empty response")

	ErrCompetitorCopyRequired = errors.New("ai: competitor copy is required")
)

// APIError is an error reported by a provider's API. It unwraps to the
// sentinel matching its status and provider error code, if any.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s API error (status %d, %s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "insufficient_quota":
		return ErrQuotaExceeded
	case "rate_limit_exceeded", "rate_limit_error", "RESOURCE_EXHAUSTED":
		return ErrRateLimited
	case "invalid_api_key", "authentication_error", "permission_error", "UNAUTHENTICATED", "PERMISSION_DENIED":
		return ErrInvalidKey
	case "model_not_found", "not_found_error", "NOT_FOUND":
		return ErrModelUnavailable
	}

	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrInvalidKey
	case http.StatusNotFound:
		return ErrModelUnavailable
	}
	return nil
}

// UserMessage turns an AI error into the message shown to end users.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingKey):
		return "Chave da API de IA não configurada. Defina a chave do provedor no arquivo de configuração ou nas variáveis de ambiente."
	case errors.Is(err, ErrMalformedKey):
		return `A chave da API OpenAI parece estar incorreta. Ela deve começar com "sk-".`
	case errors.Is(err, ErrInvalidKey):
		return "Chave da API inválida ou não configurada. Verifique a chave do provedor de IA."
	case errors.Is(err, ErrQuotaExceeded):
		return "Cota da API esgotada. Verifique seu saldo na conta do provedor de IA."
	case errors.Is(err, ErrRateLimited):
		return "Limite de requisições excedido. Aguarde alguns instantes e tente novamente."
	case errors.Is(err, ErrModelUnavailable):
		return "Modelo não disponível. Verifique se você tem acesso ao modelo solicitado na sua conta."
	case errors.Is(err, ErrEmptyResponse):
		return "A IA não retornou nenhum conteúdo. Tente novamente."
	case errors.Is(err, ErrCompetitorCopyRequired):
		return "Copy do concorrente é obrigatória para gerar Estrutura Invisível"
	default:
		return "Erro ao gerar copy com IA: " + err.Error()
	}
}
