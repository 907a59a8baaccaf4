package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "ANTHROPIC_API_KEY", "MAX_TOKENS", "STREAM_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "promptplay.db" {
		t.Errorf("DBPath = %q, want promptplay.db", cfg.DBPath)
	}
	if cfg.MaxTokens != 16000 {
		t.Errorf("MaxTokens = %d, want 16000", cfg.MaxTokens)
	}
	if cfg.StreamTimeout != 120*time.Second {
		t.Errorf("StreamTimeout = %v, want 120s", cfg.StreamTimeout)
	}
	if !cfg.UseStub() {
		t.Error("UseStub = false, want true without an API key")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STREAM_TIMEOUT", "45s")
	t.Setenv("MAX_TOKENS", "8000")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.StreamTimeout != 45*time.Second {
		t.Errorf("StreamTimeout = %v, want 45s", cfg.StreamTimeout)
	}
	if cfg.MaxTokens != 8000 {
		t.Errorf("MaxTokens = %d, want 8000", cfg.MaxTokens)
	}
	if cfg.UseStub() {
		t.Error("UseStub = true, want false with an API key")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("STREAM_TIMEOUT", "soon")
	t.Setenv("MAX_TOKENS", "lots")

	cfg := Load()
	if cfg.StreamTimeout != 120*time.Second {
		t.Errorf("StreamTimeout = %v, want the 120s fallback", cfg.StreamTimeout)
	}
	if cfg.MaxTokens != 16000 {
		t.Errorf("MaxTokens = %d, want the 16000 fallback", cfg.MaxTokens)
	}
}
