package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/infrastructure/logger"
	"github.com/iho/achledger/internal/infrastructure/metrics"
	"github.com/iho/achledger/internal/usecase"
)

// IdempotencyKeyHeader is the header name for idempotency keys.
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyMiddleware replays the stored response of a POST that already
// succeeded under the same key.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. A zero ttl
// uses usecase.IdempotencyKeyTTL.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, m *metrics.Metrics, log zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  log,
	}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		key = r.Method + " " + r.URL.Path + " " + key

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			logger.FromContext(r.Context(), m.logger).Error().Err(err).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			if cached == nil || string(cached) == usecase.IdempotencyPending {
				writeJSONError(w, http.StatusConflict, "request with this idempotency key is still in progress")
				return
			}
			m.metrics.IdempotentReplay()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			_, _ = w.Write(cached)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		log := logger.FromContext(r.Context(), m.logger)
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			if err := m.store.Update(r.Context(), key, recorder.body.Bytes(), m.ttl); err != nil {
				log.Warn().Err(err).Msg("failed to store idempotent response")
			}
			return
		}

		// let the client retry with the same key
		if err := m.store.Release(r.Context(), key); err != nil {
			log.Warn().Err(err).Msg("failed to release idempotency key")
		}
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
