package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency the service needs to be ready.
type Pinger func(ctx context.Context) error

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler. Each named check must pass
// for the service to report ready.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := map[string]string{"status": "ready"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, name+" unhealthy", err.Error())
			return
		}
		resp[name] = "ok"
	}

	writeJSON(w, http.StatusOK, resp)
}
