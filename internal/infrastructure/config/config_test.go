package config_test

import (
	"testing"
	"time"

	"github.com/iho/achledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ENCRYPTION_KEY", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.ClaimPolicy != "partial" {
		t.Fatalf("expected partial claim policy by default, got %s", cfg.ClaimPolicy)
	}

	if len(cfg.BatchSchedule) != 2 || cfg.BatchSchedule[0] != "09:00" {
		t.Fatalf("unexpected default schedule: %v", cfg.BatchSchedule)
	}

	if cfg.CalendarStaleness != 24*time.Hour {
		t.Fatalf("expected 24h calendar staleness, got %s", cfg.CalendarStaleness)
	}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation to require an encryption key")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("ENCRYPTION_KEY", "local-development-secret")
	t.Setenv("CLAIM_POLICY", "strict")
	t.Setenv("BATCH_SCHEDULE", "08:30,12:00,16:45")
	t.Setenv("NACHA_ODFI", "11100002")
	t.Setenv("NACHA_VERIFY_OUTPUT", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if len(cfg.BatchSchedule) != 3 || cfg.BatchSchedule[2] != "16:45" {
		t.Fatalf("unexpected schedule: %v", cfg.BatchSchedule)
	}

	if !cfg.NACHAVerifyOutput {
		t.Fatalf("expected NACHA verification enabled")
	}

	if got := cfg.NACHASettings().ODFIIdentification; got != "11100002" {
		t.Fatalf("expected ODFI override, got %q", got)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "secret")
	t.Setenv("CLAIM_POLICY", "greedy")
	t.Setenv("MAX_ASSEMBLY_ATTEMPTS", "0")
	t.Setenv("MAX_TRANSFER_AMOUNT", "abc")
	t.Setenv("STORAGE_DRIVER", "sqlite")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation errors")
	}
}
