package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// Compile-time interface check.
var _ Provider = (*GeminiProvider)(nil)

// GeminiProvider implements Provider using the Gemini API. The SDK client
// is created on first use.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string

	once      sync.Once
	client    *genai.Client
	clientErr error
}

// NewGeminiProvider creates a GeminiProvider.
func NewGeminiProvider(cfg ProviderConfig) *GeminiProvider {
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{apiKey: cfg.APIKey, model: model, baseURL: cfg.BaseURL}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		cc := &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		}
		if p.baseURL != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
		}
		p.client, p.clientErr = genai.NewClient(ctx, cc)
	})
	return p.client, p.clientErr
}

// Complete sends the prompt through the Gemini SDK. A per-prompt model is
// only honoured when it names a Gemini model.
func (p *GeminiProvider) Complete(ctx context.Context, pr Prompt) (string, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return "", ErrMissingKey
	}

	client, err := p.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating GenAI client: %w", err)
	}

	model := p.model
	if strings.HasPrefix(pr.Model, "gemini") {
		model = pr.Model
	}

	var cfg *genai.GenerateContentConfig
	if pr.Instructions != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(pr.Instructions, genai.RoleUser),
		}
	}

	slog.Debug("calling Gemini API", "model", model)

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(pr.Input), cfg)
	if err != nil {
		var gerr genai.APIError
		if errors.As(err, &gerr) {
			return "", &APIError{Provider: "gemini", StatusCode: gerr.Code, Code: gerr.Status, Message: gerr.Message}
		}
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
