package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validKey = "0123456789abcdef0123456789abcdef"

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
server:
  port: 9090
auth:
  secret: from-file
  token_ttl: 15m
credentials:
  key: `+validKey+`
redis:
  addr: localhost:6379
kafka:
  brokers: "k1:9092, k2:9092,"
`)
	t.Setenv("AUTH_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port from file, got %d", cfg.Server.Port)
	}
	if cfg.Auth.Secret != "from-env" {
		t.Fatalf("expected env to override secret, got %q", cfg.Auth.Secret)
	}
	if cfg.Auth.TokenTTL != 15*time.Minute {
		t.Fatalf("expected ttl 15m, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.Audience != "pet-admin" {
		t.Fatalf("expected default audience kept, got %q", cfg.Auth.Audience)
	}
	if !cfg.Redis.Enabled() || cfg.Database.Enabled() {
		t.Fatalf("unexpected enabled flags: redis=%v db=%v", cfg.Redis.Enabled(), cfg.Database.Enabled())
	}
	if got := cfg.Kafka.BrokerList(); len(got) != 2 || got[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", got)
	}
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("CREDENTIALS_KEY", "")

	if _, err := Load(writeFile(t, "credentials:\n  key: "+validKey+"\n")); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := Load(writeFile(t, "auth:\n  secret: s\ncredentials:\n  key: short\n")); !errors.Is(err, ErrInvalidCredsKey) {
		t.Fatalf("expected ErrInvalidCredsKey, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDatabaseConnString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, Name: "app", Username: "u", Password: "p w", SSLMode: "disable"}
	if got, want := d.ConnString(), "postgres://u:p%20w@db:5433/app?sslmode=disable"; got != want {
		t.Fatalf("ConnString = %q, want %q", got, want)
	}

	d.DSN = "postgres://explicit"
	if got := d.ConnString(); got != "postgres://explicit" {
		t.Fatalf("expected DSN to win, got %q", got)
	}
}
