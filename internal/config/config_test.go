package config

import (
	"os"
	"testing"
	"time"
)

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"PORT", "HTTP_PORT", "HTTP_HOST", "IGNITECALL_HTTP_ADDR", "IGNITECALL_CALENDAR_TIME_ZONE", "IGNITECALL_CORS_ALLOWED_ORIGINS", "IGNITECALL_AUTH_SESSION_TTL", "IGNITECALL_HTTP_TRUSTED_PROXIES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr() != "0.0.0.0:3333" {
		t.Fatalf("addr = %q, want %q", cfg.HTTPAddr(), "0.0.0.0:3333")
	}
	if cfg.SessionTTL != 720*time.Hour {
		t.Fatalf("session ttl = %s, want 720h", cfg.SessionTTL)
	}
	if cfg.TimeZone != time.UTC {
		t.Fatalf("time zone = %s, want UTC", cfg.TimeZone)
	}
	if len(cfg.HTTPTrustedProxies) != 0 {
		t.Fatalf("trusted proxies = %v, want none", cfg.HTTPTrustedProxies)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("cors origins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("IGNITECALL_HTTP_ADDR", "127.0.0.1:8080")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app")
	t.Setenv("IGNITECALL_CALENDAR_TIME_ZONE", "America/Sao_Paulo")
	t.Setenv("IGNITECALL_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("IGNITECALL_RATELIMIT_WINDOW", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr() != "127.0.0.1:8080" {
		t.Fatalf("addr = %q", cfg.HTTPAddr())
	}
	if cfg.DatabaseURL != "postgres://u:p@db:5432/app" {
		t.Fatalf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.TimeZone.String() != "America/Sao_Paulo" {
		t.Fatalf("time zone = %s", cfg.TimeZone)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Fatalf("rate limit window = %s", cfg.RateLimitWindow)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("IGNITECALL_AUTH_SESSION_TTL", "forever")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("IGNITECALL_HTTP_TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.HTTPTrustedProxies) != 2 || cfg.HTTPTrustedProxies[0] != "10.0.0.0/8" || cfg.HTTPTrustedProxies[1] != "192.0.2.10" {
		t.Fatalf("trusted proxies = %v", cfg.HTTPTrustedProxies)
	}

	t.Setenv("IGNITECALL_HTTP_TRUSTED_PROXIES", "not-an-ip")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid trusted proxy")
	}
}
