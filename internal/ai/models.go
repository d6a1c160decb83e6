package ai

import (
	"strings"
	"time"
)

// ProviderConfig holds the configuration needed to create an AI provider.
type ProviderConfig struct {
	Provider string // "openai" | "anthropic" | "gemini"
	APIKey   string
	Model    string
	Timeout  time.Duration

	// BaseURL overrides the provider endpoint. Empty means the public API.
	BaseURL string
}

// Prompt is a single completion request.
type Prompt struct {
	Instructions string
	Input        string

	// Model overrides the provider's configured model for this request.
	Model string
}

const (
	defaultTimeout        = 60 * time.Second
	defaultOpenAIModel    = "gpt-4.1"
	defaultAnthropicModel = "claude-haiku-4-5"
	defaultGeminiModel    = "gemini-2.5-flash"
)

// openaiModels maps model names accepted from forms to the models actually
// requested. Unknown names resolve to the default model.
var openaiModels = map[string]string{
	"gpt-5-nano":          "gpt-4.1",
	"gpt-4-turbo-preview": "gpt-4.1",
	"gpt-4":               "gpt-4.1",
	"gpt-3.5-turbo":       "gpt-4.1",
	"gpt-4o":              "gpt-4.1",
	"gpt-4o-mini":         "gpt-4.1",
	"gpt-5":               "gpt-5",
	"gpt-5.2":             "gpt-5.2",
	"gpt-4.1":             "gpt-4.1",
}

// ResolveOpenAIModel maps a requested model name to the model sent to the
// OpenAI API.
func ResolveOpenAIModel(name string) string {
	if m, ok := openaiModels[name]; ok {
		return m
	}
	return defaultOpenAIModel
}

// usesReasoning reports whether the model takes a reasoning effort.
func usesReasoning(model string) bool {
	return strings.Contains(model, "gpt-5") || strings.Contains(model, "o3")
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}
