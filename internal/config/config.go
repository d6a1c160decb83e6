package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
)

// envPrefix namespaces every environment override, e.g.
// NOUSCOPY_SERVER_PORT or NOUSCOPY_AI_MODEL.
const envPrefix = "NOUSCOPY_"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `toml:"server" envPrefix:"SERVER_"`
	AI         AIConfig         `toml:"ai" envPrefix:"AI_"`
	Auth       AuthConfig       `toml:"auth" envPrefix:"AUTH_"`
	Redis      RedisConfig      `toml:"redis" envPrefix:"REDIS_"`
	Logging    LoggingConfig    `toml:"logging" envPrefix:"LOG_"`
	Generation GenerationConfig `toml:"generation" envPrefix:"GENERATION_"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                string   `toml:"host" env:"HOST"`
	Port                int      `toml:"port" env:"PORT"`
	ReadTimeoutSeconds  int      `toml:"read_timeout_seconds" env:"READ_TIMEOUT_SECONDS"`
	WriteTimeoutSeconds int      `toml:"write_timeout_seconds" env:"WRITE_TIMEOUT_SECONDS"`
	CORSOrigins         []string `toml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	AutoOpenBrowser     bool     `toml:"auto_open_browser" env:"AUTO_OPEN_BROWSER"`
}

// Addr is the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ReadTimeout is the HTTP server read timeout.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout is the HTTP server write timeout. It must outlast the AI
// provider timeout, since one request may wait on several provider calls.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// AIConfig holds AI provider settings.
type AIConfig struct {
	Provider       string `toml:"provider" env:"PROVIDER"`
	APIKey         string `toml:"api_key" env:"API_KEY"`
	Model          string `toml:"model" env:"MODEL"`
	TimeoutSeconds int    `toml:"timeout_seconds" env:"TIMEOUT_SECONDS"`
}

// Timeout is the per-request provider timeout.
func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret" env:"JWT_SECRET"`
	SessionTTLHours int    `toml:"session_ttl_hours" env:"SESSION_TTL_HOURS"`
}

// SessionTTL is how long a session stays valid after sign-in.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// RedisConfig holds the generation rate limiter settings. An empty URL
// disables rate limiting.
type RedisConfig struct {
	URL               string `toml:"url" env:"URL"`
	GeneratePerMinute int    `toml:"generate_per_minute" env:"GENERATE_PER_MINUTE"`
	Burst             int    `toml:"burst" env:"BURST"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}

// GenerationConfig holds copy generation limits.
type GenerationConfig struct {
	MaxQuantity            int `toml:"max_quantity" env:"MAX_QUANTITY"`
	DefaultDurationSeconds int `toml:"default_duration_seconds" env:"DEFAULT_DURATION_SECONDS"`
}

// providerKeys are the provider-specific key variables. They apply only
// when they match the configured provider.
type providerKeys struct {
	Generic   string `env:"AI_API_KEY"`
	OpenAI    string `env:"OPENAI_API_KEY"`
	Anthropic string `env:"ANTHROPIC_API_KEY"`
	Gemini    string `env:"GEMINI_API_KEY"`
}

const defaultConfigContent = `[server]
host = "localhost"
port = 8080
read_timeout_seconds = 15
write_timeout_seconds = 180
cors_origins = ["*"]
auto_open_browser = false

[ai]
provider = "openai"               # "openai", "anthropic" or "gemini"
api_key = ""                      # Your API key (or set OPENAI_API_KEY / AI_API_KEY)
model = "gpt-4.1"
timeout_seconds = 60

[auth]
jwt_secret = ""                   # At least 32 characters; random per start when empty
session_ttl_hours = 168

[redis]
url = ""                          # e.g. "redis://localhost:6379/0"; empty disables rate limiting
generate_per_minute = 10
burst = 5

[logging]
level = "info"                    # "debug", "info", "warn" or "error"
format = "text"                   # "text" or "json"

[generation]
max_quantity = 5
default_duration_seconds = 30
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// This catches cases like "port = 0" which would otherwise be silently
// replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	positive := []struct {
		section, key string
		value        int
	}{
		{"server", "read_timeout_seconds", cfg.Server.ReadTimeoutSeconds},
		{"server", "write_timeout_seconds", cfg.Server.WriteTimeoutSeconds},
		{"ai", "timeout_seconds", cfg.AI.TimeoutSeconds},
		{"auth", "session_ttl_hours", cfg.Auth.SessionTTLHours},
		{"generation", "max_quantity", cfg.Generation.MaxQuantity},
		{"generation", "default_duration_seconds", cfg.Generation.DefaultDurationSeconds},
	}
	for _, p := range positive {
		if md.IsDefined(p.section, p.key) && p.value < 1 {
			return fmt.Errorf("invalid %s.%s %d: must be >= 1", p.section, p.key, p.value)
		}
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 180
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.Auth.SessionTTLHours == 0 {
		cfg.Auth.SessionTTLHours = 168
	}
	if cfg.Redis.GeneratePerMinute == 0 {
		cfg.Redis.GeneratePerMinute = 10
	}
	if cfg.Redis.Burst == 0 {
		cfg.Redis.Burst = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Generation.MaxQuantity == 0 {
		cfg.Generation.MaxQuantity = 5
	}
	if cfg.Generation.DefaultDurationSeconds == 0 {
		cfg.Generation.DefaultDurationSeconds = 30
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. NOUSCOPY_AI_API_KEY (highest)
//  2. AI_API_KEY
//  3. the key variable of the configured provider (OPENAI_API_KEY,
//     ANTHROPIC_API_KEY or GEMINI_API_KEY)
func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return err
	}
	if _, ok := os.LookupEnv(envPrefix + "AI_API_KEY"); ok {
		return nil
	}

	var keys providerKeys
	if err := env.Parse(&keys); err != nil {
		return err
	}
	var specific string
	switch cfg.AI.Provider {
	case "openai":
		specific = keys.OpenAI
	case "anthropic":
		specific = keys.Anthropic
	case "gemini":
		specific = keys.Gemini
	}
	if specific != "" {
		cfg.AI.APIKey = specific
	}
	if keys.Generic != "" {
		cfg.AI.APIKey = keys.Generic
	}
	return nil
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "openai", "anthropic", "gemini":
		// valid
	default:
		return fmt.Errorf("invalid ai.provider %q: must be \"openai\", \"anthropic\" or \"gemini\"", cfg.AI.Provider)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q: must be one of debug, info, warn, error", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q: must be \"text\" or \"json\"", cfg.Logging.Format)
	}

	if cfg.Auth.JWTSecret != "" && len(cfg.Auth.JWTSecret) < 32 {
		return errors.New("invalid auth.jwt_secret: must be at least 32 characters")
	}

	if cfg.Generation.MaxQuantity > 20 {
		return fmt.Errorf("invalid generation.max_quantity %d: must be <= 20", cfg.Generation.MaxQuantity)
	}

	if cfg.AI.APIKey == "" {
		slog.Warn("ai.api_key is empty: AI generation is disabled until a key is set in the config file or the environment")
	}

	return nil
}
