package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Fatalf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected server addr default: %q", cfg.Server.Addr)
	}
	if cfg.Server.LogMode != "development" {
		t.Fatalf("unexpected log mode default: %q", cfg.Server.LogMode)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CV_DATABASE_HOST", "db.internal")
	t.Setenv("CV_DATABASE_PORT", "5433")
	t.Setenv("CV_DATABASE_PASSWORD", "hunter2")
	t.Setenv("CV_SERVER_ADDR", ":9090")
	t.Setenv("CV_SERVER_LOG_MODE", "production")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("CV_DATABASE_HOST not applied: host=%q", cfg.Database.Host)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("CV_DATABASE_PORT not applied: port=%d", cfg.Database.Port)
	}
	if cfg.Database.Password != "hunter2" {
		t.Errorf("CV_DATABASE_PASSWORD not applied: password=%q", cfg.Database.Password)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("CV_SERVER_ADDR not applied: addr=%q", cfg.Server.Addr)
	}
	if cfg.Server.LogMode != "production" {
		t.Errorf("CV_SERVER_LOG_MODE not applied: log mode=%q", cfg.Server.LogMode)
	}

	// Unset keys keep their defaults.
	if cfg.Database.DBName != "contractvault" {
		t.Errorf("unexpected dbname: %q", cfg.Database.DBName)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	contents := `database:
  host: pg.local
  dbname: contracts
server:
  addr: ":3001"
  allowed_origins:
    - https://app.example.com
    - https://admin.example.com
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Host != "pg.local" || cfg.Database.DBName != "contracts" {
		t.Fatalf("config file database values not applied: %+v", cfg.Database)
	}
	if cfg.Server.Addr != ":3001" {
		t.Fatalf("config file server addr not applied: %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("config file allowed origins not applied: %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadEnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database:\n  host: pg.local\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CV_DATABASE_HOST", "db.internal")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Fatalf("expected env override to beat config file, got %q", cfg.Database.Host)
	}
}
