package config

import (
	"testing"
	"time"
)

func TestLoad_PortFallbackAndLists(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , ,http://localhost:5173 ")
	t.Setenv("BALANCE_DUE_DAYS", "10")
	t.Setenv("TREK_CACHE_TTL", "90s")

	cfg := Load()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.HTTPAddr)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
		t.Fatalf("unexpected origins: %#v", cfg.CORSAllowedOrigins)
	}
	if cfg.Payments.BalanceDueDays != 10 {
		t.Fatalf("expected 10 balance due days, got %d", cfg.Payments.BalanceDueDays)
	}
	if cfg.TrekCacheTTL != 90*time.Second {
		t.Fatalf("expected 90s ttl, got %s", cfg.TrekCacheTTL)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("BALANCE_DUE_DAYS", "soon")
	t.Setenv("JWT_TTL", "forever")

	cfg := Load()
	if cfg.Payments.BalanceDueDays != 7 {
		t.Fatalf("expected default 7, got %d", cfg.Payments.BalanceDueDays)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("expected default ttl, got %s", cfg.Auth.TokenTTL)
	}
}

func TestLoad_PoolerURLTurnsOnSimpleProtocol(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@pooler:6543/db?pgbouncer=true")
	t.Setenv("DB_SIMPLE_PROTOCOL", "")
	t.Setenv("DB_APPLICATION_NAME", "")

	cfg := Load()
	if !cfg.DB.SimpleProtocol {
		t.Fatalf("expected simple protocol for pgbouncer url")
	}
	if cfg.DB.ApplicationName != "trekbooking-api" {
		t.Fatalf("unexpected application name %q", cfg.DB.ApplicationName)
	}
}

func TestDSNs_PreferURLs(t *testing.T) {
	cfg := Config{DB: DBConfig{User: "u", Password: "p", Host: "h", Port: "5432", Name: "n"}}
	if got := cfg.RuntimeDSN(); got != "postgres://u:p@h:5432/n?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}

	cfg.DatabaseURL = "postgres://pooler/db?pgbouncer=true"
	if got := cfg.RuntimeDSN(); got != cfg.DatabaseURL {
		t.Fatalf("expected DATABASE_URL, got %q", got)
	}
	if got := cfg.MigrationDSN(); got != cfg.DatabaseURL {
		t.Fatalf("expected fallback to DATABASE_URL, got %q", got)
	}

	cfg.DirectURL = "postgres://direct/db"
	if got := cfg.MigrationDSN(); got != cfg.DirectURL {
		t.Fatalf("expected DIRECT_URL, got %q", got)
	}
}
