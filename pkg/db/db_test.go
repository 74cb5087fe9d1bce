package db

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"trekbooking/pkg/config"
)

func TestPoolConfig_AppliesDBSettings(t *testing.T) {
	cfg := config.Config{
		DatabaseURL: "postgres://u:p@pooler:6543/n?sslmode=disable",
		DB: config.DBConfig{
			MaxConns:        7,
			ApplicationName: "trekbooking-test",
			SimpleProtocol:  true,
			MaxConnIdle:     time.Minute,
		},
	}
	pcfg, err := poolConfig(cfg)
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if pcfg.MaxConns != 7 {
		t.Fatalf("expected 7 max conns, got %d", pcfg.MaxConns)
	}
	if pcfg.MaxConnIdleTime != time.Minute {
		t.Fatalf("expected 1m idle, got %s", pcfg.MaxConnIdleTime)
	}
	if pcfg.ConnConfig.DefaultQueryExecMode != pgx.QueryExecModeSimpleProtocol {
		t.Fatalf("expected simple protocol, got %v", pcfg.ConnConfig.DefaultQueryExecMode)
	}
	if got := pcfg.ConnConfig.RuntimeParams["application_name"]; got != "trekbooking-test" {
		t.Fatalf("unexpected application_name %q", got)
	}
	if pcfg.ConnConfig.Host != "pooler" {
		t.Fatalf("expected DATABASE_URL host, got %q", pcfg.ConnConfig.Host)
	}
}

func TestPoolConfig_DefaultsKeepPreparedStatements(t *testing.T) {
	cfg := config.Config{DB: config.DBConfig{User: "u", Password: "p", Host: "h", Port: "5432", Name: "n"}}
	pcfg, err := poolConfig(cfg)
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if pcfg.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeSimpleProtocol {
		t.Fatalf("simple protocol should be opt-in")
	}
}
