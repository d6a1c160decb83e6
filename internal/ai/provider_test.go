package ai

import (
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ProviderConfig
		wantErr  bool
		wantType string
	}{
		{
			name: "openai provider",
			cfg: ProviderConfig{
				Provider: "openai",
				APIKey:   "sk-test",
				Model:    "gpt-4.1",
			},
			wantType: "*ai.OpenAIProvider",
		},
		{
			name: "anthropic provider",
			cfg: ProviderConfig{
				Provider: "anthropic",
				APIKey:   "test-key",
				Model:    "claude-haiku-4-5",
			},
			wantType: "*ai.AnthropicProvider",
		},
		{
			name: "gemini provider",
			cfg: ProviderConfig{
				Provider: "gemini",
				APIKey:   "test-key",
			},
			wantType: "*ai.GeminiProvider",
		},
		{
			name: "unsupported provider",
			cfg: ProviderConfig{
				Provider: "invalid",
				APIKey:   "test-key",
				Model:    "some-model",
			},
			wantErr: true,
		},
		{
			name: "empty provider",
			cfg: ProviderConfig{
				Provider: "",
				APIKey:   "test-key",
				Model:    "some-model",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.cfg)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if provider != nil {
					t.Fatal("expected nil provider when error occurs")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if provider == nil {
				t.Fatal("expected non-nil provider")
			}

			switch tt.wantType {
			case "*ai.OpenAIProvider":
				if _, ok := provider.(*OpenAIProvider); !ok {
					t.Errorf("expected *OpenAIProvider, got %T", provider)
				}
			case "*ai.AnthropicProvider":
				if _, ok := provider.(*AnthropicProvider); !ok {
					t.Errorf("expected *AnthropicProvider, got %T", provider)
				}
			case "*ai.GeminiProvider":
				if _, ok := provider.(*GeminiProvider); !ok {
					t.Errorf("expected *GeminiProvider, got %T", provider)
				}
			}
		})
	}
}

func TestResolveOpenAIModel(t *testing.T) {
	tests := map[string]string{
		"gpt-4-turbo-preview": "gpt-4.1",
		"gpt-4o-mini":         "gpt-4.1",
		"gpt-5":               "gpt-5",
		"gpt-5.2":             "gpt-5.2",
		"":                    "gpt-4.1",
		"something-else":      "gpt-4.1",
	}
	for in, want := range tests {
		if got := ResolveOpenAIModel(in); got != want {
			t.Errorf("ResolveOpenAIModel(%q) = %q, want %q", in, got, want)
		}
	}
}
