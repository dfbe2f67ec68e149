package config

import (
	"testing"
	"time"
)

func TestResolveDefaults_AutoPicksSQLiteWithoutDSN(t *testing.T) {
	cfg := &Config{DBDriver: "auto", SQLitePath: "data/test.db"}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("ResolveDefaults: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaults_AutoPicksPostgresWithDSN(t *testing.T) {
	cfg := &Config{DBDriver: "auto", PostgresDSN: "postgres://localhost:5432/nutriplan"}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("ResolveDefaults: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaults_RejectsUnknownDriver(t *testing.T) {
	cfg := &Config{DBDriver: "mysql"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestResolveDefaults_PostgresRequiresDSN(t *testing.T) {
	cfg := &Config{DBDriver: "postgres"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("expected error when DSN missing")
	}
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	if !cfg.IsTesting() {
		t.Fatalf("expected testing environment, got %s", cfg.Environment)
	}
	if cfg.DBDriver != "sqlite" || cfg.SQLitePath != ":memory:" {
		t.Fatalf("expected in-memory sqlite, got driver=%s path=%s", cfg.DBDriver, cfg.SQLitePath)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("ResolveDefaults on testing config: %v", err)
	}
}

func TestStoreTimeout(t *testing.T) {
	cfg := &Config{StoreTimeoutSeconds: 5}
	if got := cfg.StoreTimeout(); got != 5*time.Second {
		t.Fatalf("StoreTimeout = %v", got)
	}
}
