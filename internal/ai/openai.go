package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Compile-time interface check.
var _ Provider = (*OpenAIProvider)(nil)

const openaiAPIURL = "https://api.openai.com"

// OpenAIProvider implements Provider using the OpenAI Responses API.
type OpenAIProvider struct {
	apiKey string
	model  string
	client *resty.Client
}

// NewOpenAIProvider creates an OpenAIProvider. The client times out after
// the configured timeout, 60 seconds by default.
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openaiAPIURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{
		apiKey: cfg.APIKey,
		model:  model,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeoutOrDefault(cfg.Timeout)),
	}
}

// openaiRequest is the request body for the Responses API.
type openaiRequest struct {
	Model        string           `json:"model"`
	Instructions string           `json:"instructions,omitempty"`
	Input        string           `json:"input"`
	Reasoning    *openaiReasoning `json:"reasoning,omitempty"`
}

type openaiReasoning struct {
	Effort string `json:"effort"`
}

// openaiResponse is the subset of the Responses API reply we read.
type openaiResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

type openaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Complete sends the prompt to the Responses API. Model names are resolved
// through the model map, so legacy names still work.
func (p *OpenAIProvider) Complete(ctx context.Context, pr Prompt) (string, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return "", ErrMissingKey
	}
	if !strings.HasPrefix(p.apiKey, "sk-") {
		return "", ErrMalformedKey
	}

	model := p.model
	if pr.Model != "" {
		model = pr.Model
	}
	model = ResolveOpenAIModel(model)

	reqBody := openaiRequest{
		Model:        model,
		Instructions: pr.Instructions,
		Input:        pr.Input,
	}
	if usesReasoning(model) {
		reqBody.Reasoning = &openaiReasoning{Effort: "medium"}
	}

	slog.Debug("calling OpenAI API", "model", model)

	var out openaiResponse
	var apiErr openaiErrorResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/responses")
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}

	if resp.IsError() {
		code := apiErr.Error.Code
		if code == "" {
			code = apiErr.Error.Type
		}
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return "", &APIError{Provider: "openai", StatusCode: resp.StatusCode(), Code: code, Message: msg}
	}

	text := strings.TrimSpace(out.text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// text prefers the aggregated output_text and otherwise joins the
// output_text parts of every message item.
func (r *openaiResponse) text() string {
	if r.OutputText != "" {
		return r.OutputText
	}
	var parts []string
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" && c.Text != "" {
				parts = append(parts, c.Text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}
