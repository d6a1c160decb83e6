package ai

import (
	"context"
	"fmt"
)

// Provider is the interface that all LLM providers must implement.
type Provider interface {
	// Complete sends one prompt and returns the trimmed text of the reply.
	// Provider errors are returned as *APIError.
	Complete(ctx context.Context, p Prompt) (string, error)

	// Name identifies the provider in logs.
	Name() string
}

// NewProvider creates the appropriate provider based on config.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	case "gemini":
		return NewGeminiProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
