package config

import (
	"testing"
	"time"
)

func TestLoadIncludesSyncDefaults(t *testing.T) {
	t.Setenv("DOCCHAT_API_URL", "")
	t.Setenv("DOCCHAT_POLL_INTERVAL", "")
	t.Setenv("DOCCHAT_MAX_TRANSCRIPT", "")
	t.Setenv("DOCCHAT_HTTP_TIMEOUT", "")

	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Fatalf("expected default api url, got %q", cfg.APIBaseURL)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("expected default poll interval 5s, got %v", cfg.PollInterval)
	}
	if cfg.MaxTranscript != 200 {
		t.Fatalf("expected default transcript cap 200, got %d", cfg.MaxTranscript)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("expected default http timeout 30s, got %v", cfg.HTTPTimeout)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("DOCCHAT_API_URL", "http://example.test:9000")
	t.Setenv("DOCCHAT_POLL_INTERVAL", "2s")
	t.Setenv("DOCCHAT_MAX_TRANSCRIPT", "50")
	t.Setenv("DOCCHAT_BREAKER_ENABLED", "false")

	cfg := Load()
	if cfg.APIBaseURL != "http://example.test:9000" {
		t.Fatalf("expected api url override, got %q", cfg.APIBaseURL)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("expected poll interval 2s, got %v", cfg.PollInterval)
	}
	if cfg.MaxTranscript != 50 {
		t.Fatalf("expected transcript cap 50, got %d", cfg.MaxTranscript)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DOCCHAT_POLL_INTERVAL", "soon")
	t.Setenv("DOCCHAT_MAX_TRANSCRIPT", "many")

	cfg := Load()
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("expected fallback poll interval, got %v", cfg.PollInterval)
	}
	if cfg.MaxTranscript != 200 {
		t.Fatalf("expected fallback transcript cap, got %d", cfg.MaxTranscript)
	}
}
