package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("API_BASE_URL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.APIBaseURL == "" {
		t.Fatal("expected default API base URL")
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("expected default session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.SessionCookie != "consola_session" {
		t.Fatalf("expected default session cookie name, got %s", cfg.SessionCookie)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE_URL", "http://localhost:4000")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("REDIS_TLS", "true")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if cfg.APIBaseURL != "http://localhost:4000" {
		t.Fatalf("expected API base URL override, got %s", cfg.APIBaseURL)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("expected session TTL override, got %s", cfg.SessionTTL)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis TLS enabled")
	}
}

func TestBadDurationFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	cfg := Load()
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("expected fallback TTL, got %s", cfg.SessionTTL)
	}
}
