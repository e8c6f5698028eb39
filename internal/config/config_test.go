package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Storage.Backend != BackendMongo {
		t.Errorf("got backend %q", cfg.Storage.Backend)
	}
	if cfg.Shortener.SlugLength != 7 || cfg.Shortener.RedirectStatus != 302 {
		t.Errorf("unexpected shortener defaults: %+v", cfg.Shortener)
	}
	if cfg.RateLimit.AuthenticatedMax != 100 || cfg.RateLimit.AnonymousMax != 10 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.RateLimit.Window != 10*time.Minute {
		t.Errorf("got window %v", cfg.RateLimit.Window)
	}
	if cfg.Storage.Timeout != 3*time.Second || cfg.RateLimit.StoreTimeout != 200*time.Millisecond {
		t.Errorf("unexpected timeouts: %v / %v", cfg.Storage.Timeout, cfg.RateLimit.StoreTimeout)
	}
	if cfg.Security.TrustProxyHeaders {
		t.Error("proxy headers must not be trusted by default")
	}
}

func TestLoad_PostgresDSNOverride(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://u:p@db:5432/slugs")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Postgres.DSN != "postgres://u:p@db:5432/slugs" {
		t.Errorf("got DSN %q", cfg.Postgres.DSN)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"backend", "STORAGE_BACKEND", "sqlite", "STORAGE_BACKEND"},
		{"redirect status", "SHORTENER_REDIRECT_STATUS", "307", "SHORTENER_REDIRECT_STATUS"},
		{"slug too short", "SHORTENER_SLUG_LENGTH", "3", "SHORTENER_SLUG_LENGTH"},
		{"slug too long", "SHORTENER_SLUG_LENGTH", "33", "SHORTENER_SLUG_LENGTH"},
		{"zero limit", "RATE_LIMIT_ANONYMOUS_MAX", "0", "rate limit"},
		{"tiny window", "RATE_LIMIT_WINDOW", "10ms", "RATE_LIMIT_WINDOW"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_BlockedPatterns(t *testing.T) {
	t.Setenv("BLOCKED_PATTERNS", "casino, warez ,")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Shortener.BlockedPatterns) != 2 || cfg.Shortener.BlockedPatterns[1] != "warez" {
		t.Errorf("got %v", cfg.Shortener.BlockedPatterns)
	}
}
