package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/infrastructure/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StorageDriver:         config.StorageMemory,
		EncryptionKey:         strings.Repeat("k", 32),
		MaxTransferAmount:     "1000000.00",
		ClaimPolicy:           "partial",
		MaxAssemblyAttempts:   3,
		CalendarStaleness:     time.Hour,
		StorageTimeout:        time.Second,
		RateLimitRPS:          100,
		RateLimitBurst:        100,
		SchedulerEnabled:      true,
		BatchSchedule:         []string{"09:00"},
		BatchLockTTL:          time.Minute,
		OutboxEnabled:         true,
		OutboxPollInterval:    time.Second,
		NACHAEntryDescription: "PAYMENT",
		NACHASECCode:          "PPD",
	}
}

func TestBuildApp_MemoryStorage(t *testing.T) {
	a, err := buildApp(context.Background(), memoryConfig(), zerolog.Nop(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer a.close()

	if a.scheduler == nil || a.publisher == nil {
		t.Fatal("expected scheduler and publisher to be configured")
	}

	for _, path := range []string{"/health", "/ready", "/metrics", "/api/v1/calendar/2024-07-04"} {
		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d: %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestBuildApp_DisabledWorkers(t *testing.T) {
	cfg := memoryConfig()
	cfg.SchedulerEnabled = false
	cfg.OutboxEnabled = false

	a, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer a.close()

	if a.scheduler != nil || a.publisher != nil {
		t.Fatal("expected no background workers")
	}
}

func TestBuildApp_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"missing key", func(c *config.Config) { c.EncryptionKey = "" }},
		{"short key", func(c *config.Config) { c.EncryptionKey = "short" }},
		{"bad schedule", func(c *config.Config) { c.BatchSchedule = []string{"25:00"} }},
		{"bad policy", func(c *config.Config) { c.ClaimPolicy = "greedy" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			tt.mutate(cfg)
			if _, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPPort = "0"
	cfg.HTTPShutdownTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zerolog.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
}
