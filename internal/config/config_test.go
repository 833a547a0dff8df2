package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Model != "claude-sonnet-4-20250514" {
		t.Errorf("unexpected default model: %s", cfg.Model)
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("expected default max tokens 1000, got %d", cfg.MaxTokens)
	}
	if cfg.ExportDelay != 3*time.Second {
		t.Errorf("expected default export delay 3s, got %s", cfg.ExportDelay)
	}
	if cfg.SessionTTL != 60*time.Minute {
		t.Errorf("expected default session TTL 60m, got %s", cfg.SessionTTL)
	}
	if cfg.RateLimit.RequestsPerWindow != 10 || cfg.RateLimit.WindowDuration != time.Minute {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if !cfg.TranscriptLog.Enabled || cfg.TranscriptLog.QueueSize != 1000 {
		t.Errorf("unexpected transcript log defaults: %+v", cfg.TranscriptLog)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when ANTHROPIC_API_KEY is missing")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("PORT", "9090")
	t.Setenv("HEARING_MODEL", "claude-opus-4-20250514")
	t.Setenv("HEARING_MAX_TOKENS", "2000")
	t.Setenv("EXPORT_URL", "https://logs.example.com/api/save")
	t.Setenv("EXPORT_AUTH_TOKEN", "secret")
	t.Setenv("EXPORT_DELAY", "500ms")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("TRANSCRIPT_LOG_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected port override, got %s", cfg.Port)
	}
	if cfg.Model != "claude-opus-4-20250514" {
		t.Errorf("expected model override, got %s", cfg.Model)
	}
	if cfg.MaxTokens != 2000 {
		t.Errorf("expected max tokens override, got %d", cfg.MaxTokens)
	}
	if cfg.ExportDelay != 500*time.Millisecond {
		t.Errorf("expected export delay override, got %s", cfg.ExportDelay)
	}
	if cfg.RateLimit.RequestsPerWindow != 5 {
		t.Errorf("expected rate limit override, got %d", cfg.RateLimit.RequestsPerWindow)
	}
	if cfg.TranscriptLog.Enabled {
		t.Error("expected transcript log to be disabled")
	}
}

func TestLoadRejectsExportURLWithoutToken(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("EXPORT_URL", "https://logs.example.com/api/save")
	t.Setenv("EXPORT_AUTH_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when EXPORT_URL is set without EXPORT_AUTH_TOKEN")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:            "8080",
			AnthropicAPIKey: "k",
			Model:           "m",
			MaxTokens:       100,
			ExportDelay:     time.Second,
			SessionTTL:      time.Hour,
			RateLimit:       RateLimitConfig{RequestsPerWindow: 1, WindowDuration: time.Minute},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"zero export delay", func(c *Config) { c.ExportDelay = 0 }},
		{"zero session ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"zero rate limit", func(c *Config) { c.RateLimit.RequestsPerWindow = 0 }},
		{"zero rate window", func(c *Config) { c.RateLimit.WindowDuration = 0 }},
		{"log enabled without dir", func(c *Config) { c.TranscriptLog.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		frontendURL string
		want        bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:8080", true},
		{"https://hearing.example.com", false},
	}
	for _, tt := range tests {
		cfg := &Config{FrontendURL: tt.frontendURL}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tt.frontendURL, got, tt.want)
		}
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_BOOL", "yes")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "not-a-number")
	t.Setenv("TEST_DUR", "90s")

	if got := getEnv("TEST_STR", "fallback"); got != "value" {
		t.Errorf("getEnv = %q", got)
	}
	if got := getEnv("TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv fallback = %q", got)
	}
	if !getEnvBool("TEST_BOOL", false) {
		t.Error("getEnvBool should parse yes as true")
	}
	if got := getEnvInt("TEST_INT", 0); got != 42 {
		t.Errorf("getEnvInt = %d", got)
	}
	if got := getEnvInt("TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvInt bad value fallback = %d", got)
	}
	if got := getEnvDuration("TEST_DUR", time.Second); got != 90*time.Second {
		t.Errorf("getEnvDuration = %s", got)
	}
}
