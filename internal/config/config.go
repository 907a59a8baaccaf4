// Package config provides centralized configuration for the promptplay server.
// All configurable values are loaded from environment variables with sensible defaults.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration values.
type Config struct {
	// Port is the HTTP server listen port.
	Port string

	// DBPath is the path to the SQLite database file.
	DBPath string

	// AnthropicKey is the API key for the Anthropic service. When empty the
	// server runs with the stub producer.
	AnthropicKey string

	// AnthropicModel is the model identifier for generation requests.
	AnthropicModel string

	// MaxTokens is the token budget for a single generation session.
	MaxTokens int

	// SuggestMaxTokens is the token budget for a suggestion completion.
	SuggestMaxTokens int

	// StreamTimeout is the overall wall-clock limit a consumer enforces on
	// one in-flight session.
	StreamTimeout time.Duration

	// CORSOrigin is the allowed CORS origin. Defaults to "*".
	CORSOrigin string
}

// Load reads configuration from environment variables, applying defaults.
func Load() Config {
	return Config{
		Port:             envOr("PORT", "8080"),
		DBPath:           envOr("DB_PATH", "promptplay.db"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		MaxTokens:        envInt("MAX_TOKENS", 16000),
		SuggestMaxTokens: envInt("SUGGEST_MAX_TOKENS", 1000),
		StreamTimeout:    envDuration("STREAM_TIMEOUT", 120*time.Second),
		CORSOrigin:       envOr("CORS_ORIGIN", "*"),
	}
}

// UseStub returns true when no producer API key is configured.
func (c Config) UseStub() bool {
	return c.AnthropicKey == ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
