package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Compile-time interface check.
var _ Provider = (*AnthropicProvider)(nil)

const (
	anthropicAPIURL    = "https://api.anthropic.com"
	anthropicMaxTokens = 4096
)

// AnthropicProvider implements Provider using the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey string
	model  string
	client *resty.Client
}

// NewAnthropicProvider creates an AnthropicProvider. The client times out
// after the configured timeout, 60 seconds by default.
func NewAnthropicProvider(cfg ProviderConfig) *AnthropicProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicAPIURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicProvider{
		apiKey: cfg.APIKey,
		model:  model,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeoutOrDefault(cfg.Timeout)),
	}
}

// anthropicRequest is the request body for the Anthropic Messages API.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

// anthropicMessage is a single message in the Anthropic request.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body from the Anthropic Messages API.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Complete sends the prompt to the Messages API. A per-prompt model is only
// honoured when it names a Claude model; form model names target OpenAI.
func (p *AnthropicProvider) Complete(ctx context.Context, pr Prompt) (string, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return "", ErrMissingKey
	}

	model := p.model
	if strings.HasPrefix(pr.Model, "claude") {
		model = pr.Model
	}

	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: anthropicMaxTokens,
		System:    pr.Instructions,
		Messages: []anthropicMessage{
			{Role: "user", Content: pr.Input},
		},
	}

	slog.Debug("calling Anthropic API", "model", model)

	var out anthropicResponse
	var apiErr anthropicErrorResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", p.apiKey).
		SetHeader("anthropic-version", "2023-06-01").
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}

	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return "", &APIError{Provider: "anthropic", StatusCode: resp.StatusCode(), Code: apiErr.Error.Type, Message: msg}
	}

	var b strings.Builder
	for _, c := range out.Content {
		if c.Type == "text" {
			b.WriteString(c.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
