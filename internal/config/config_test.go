package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalYAML = `
reputation:
  base_url: https://intel.example.com/api/v3/
identity:
  base_url: https://id.example.com
challenge:
  base_url: https://challenge.example.com
`

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Reputation.ProbeTarget != "8.8.8.8" {
		t.Fatalf("probe target = %q", cfg.Reputation.ProbeTarget)
	}
	if cfg.Partner.TokenPath != "/api/token" {
		t.Fatalf("token path = %q", cfg.Partner.TokenPath)
	}
	if cfg.MFA.SessionTTL != "15m" {
		t.Fatalf("session ttl = %q", cfg.MFA.SessionTTL)
	}
	if cfg.Cache.Kind != "memory" {
		t.Fatalf("cache kind = %q", cfg.Cache.Kind)
	}
}

func TestLoad_TrimsTrailingSlashFromBaseURLs(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Reputation.BaseURL != "https://intel.example.com/api/v3" {
		t.Fatalf("base url = %q", cfg.Reputation.BaseURL)
	}
}

func TestLoad_MissingRequiredBaseURLFailsStartup(t *testing.T) {
	_, err := Load(writeConfig(t, `
identity:
  base_url: https://id.example.com
challenge:
  base_url: https://challenge.example.com
`))
	if err == nil {
		t.Fatal("missing reputation.base_url must fail at startup")
	}
}

func TestLoad_PartnerIsOptional(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Partner.BaseURL != "" {
		t.Fatalf("partner base = %q, want empty", cfg.Partner.BaseURL)
	}
}

func TestLoad_InvalidDurationRejected(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
mfa:
  session_ttl: quince-minutos
`))
	if err == nil {
		t.Fatal("invalid duration must fail validation")
	}
}

func TestLoad_RedisKindRequiresAddr(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
cache:
  kind: redis
`))
	if err == nil {
		t.Fatal("cache.kind=redis without addr must fail")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REPUTATION_BASE_URL", "https://other.example.com/")
	t.Setenv("RATE_ENABLED", "true")
	t.Setenv("RATE_MAX_REQUESTS", "120")

	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Reputation.BaseURL != "https://other.example.com" {
		t.Fatalf("env override not applied: %q", cfg.Reputation.BaseURL)
	}
	if !cfg.Rate.Enabled || cfg.Rate.MaxRequests != 120 {
		t.Fatalf("rate overrides not applied: %+v", cfg.Rate)
	}
}

func TestDurationOr(t *testing.T) {
	if got := DurationOr("", 5*time.Second); got != 5*time.Second {
		t.Fatalf("empty = %v", got)
	}
	if got := DurationOr("2s", 5*time.Second); got != 2*time.Second {
		t.Fatalf("valid = %v", got)
	}
	if got := DurationOr("bogus", 5*time.Second); got != 5*time.Second {
		t.Fatalf("invalid = %v", got)
	}
}
