package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anurajdeol90/team-digest/internal/apperr"
	pkgconfig "github.com/anurajdeol90/team-digest/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Logs.Label() != "./logs" {
		t.Errorf("label = %q", cfg.Logs.Label())
	}
	if cfg.Slack.Enabled() {
		t.Error("slack should be disabled without a webhook")
	}
}

func TestDigestConfig_ModeAlias(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Digest.Mode = "flat"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Digest.Mode != "flat-legacy" {
		t.Errorf("mode = %q, want flat-legacy", cfg.Digest.Mode)
	}
}

func TestConfig_InvalidWrapsSentinel(t *testing.T) {
	cases := map[string]func(*Config){
		"mode":    func(c *Config) { c.Digest.Mode = "sideways" },
		"format":  func(c *Config) { c.Digest.Format = "pdf" },
		"dir":     func(c *Config) { c.Logs.Dir = "" },
		"webhook": func(c *Config) { c.Slack.WebhookURL = "not a url" },
		"port":    func(c *Config) { c.App.HTTP.Port = 70000 },
		"auth":    func(c *Config) { c.Auth.Mode = "token" },
	}
	for name, mutate := range cases {
		cfg := NewDefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, apperr.ErrInvalidConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidConfig", name, err)
		}
	}
}

func TestConfig_LoadYAMLWithEnv(t *testing.T) {
	t.Setenv("TEAM_DIGEST_TEST_HOOK", "https://hooks.slack.com/services/T/B/X")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
logs:
  dir: ./team-logs
  source_label: team
digest:
  mode: by-owner
  owner_breakdown: true
slack:
  webhook_url: ${TEAM_DIGEST_TEST_HOOK}
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logs.Label() != "team" || cfg.Digest.Mode != "flat-by-owner" || !cfg.Digest.OwnerBreakdown {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Digest.EmitKPIs {
		t.Error("defaults should survive a partial file")
	}
	if cfg.Slack.WebhookURL != "https://hooks.slack.com/services/T/B/X" || cfg.Slack.Timeout != 5*time.Second {
		t.Errorf("slack = %+v", cfg.Slack)
	}
}
