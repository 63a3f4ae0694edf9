package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/adapter/http/handler"
	"github.com/iho/achledger/internal/adapter/http/middleware"
	"github.com/iho/achledger/internal/infrastructure/metrics"
	"github.com/iho/achledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransferHandler *handler.TransferHandler
	EntryHandler    *handler.EntryHandler
	CalendarHandler *handler.CalendarHandler
	BatchHandler    *handler.BatchHandler
	FileHandler     *handler.FileHandler
	HealthHandler   *handler.HealthHandler

	// Optional.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Metrics, cfg.Logger)
			r.Use(idempotency.Wrap)
		}

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Submit)
			r.Get("/{id}", cfg.TransferHandler.Get)
			r.Post("/{id}/cancel", cfg.TransferHandler.Cancel)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/{id}", cfg.EntryHandler.Get)
		})

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/between", cfg.CalendarHandler.Between)
			r.Get("/{date}", cfg.CalendarHandler.Info)
			r.Get("/{date}/add/{n}", cfg.CalendarHandler.AddDays)
		})

		r.Post("/batches", cfg.BatchHandler.Assemble)

		r.Route("/files", func(r chi.Router) {
			r.Get("/", cfg.FileHandler.List)
			r.Get("/reconciliation", cfg.FileHandler.Report)
			r.Get("/{id}", cfg.FileHandler.Get)
			r.Get("/{id}/content", cfg.FileHandler.Content)
			r.Post("/{id}/transmitted", cfg.FileHandler.Transmitted)
			r.Post("/{id}/failed", cfg.FileHandler.Failed)
			r.Post("/{id}/reconcile", cfg.FileHandler.Reconcile)
		})
	})

	return r
}
