package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/infrastructure/metrics"
)

func fastRetrier(m *metrics.Metrics) *Retrier {
	r := NewRetrier(zerolog.Nop(), m)
	r.maxRetries = 2
	r.initialInterval = 1 * time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = 50 * time.Millisecond
	return r
}

func TestRetrierRetriesOnRetryableError(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := fastRetrier(m)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return &pgconn.PgError{Code: pgErrDeadlock}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if got := testutil.ToFloat64(m.DBRetries); got != 1 {
		t.Fatalf("expected 1 recorded retry, got %v", got)
	}
}

func TestRetrierGivesUpAfterMaxRetries(t *testing.T) {
	r := fastRetrier(nil)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrSerializationFailure}
	})

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrSerializationFailure {
		t.Fatalf("expected serialization failure, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := NewRetrier(zerolog.Nop(), nil)
	attempts := 0
	permanentErr := errors.New("permanent")

	err := r.Retry(context.Background(), func() error {
		attempts++
		return permanentErr
	})

	if !errors.Is(err, permanentErr) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierHonoursCancelledContext(t *testing.T) {
	r := fastRetrier(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := r.Retry(ctx, func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrDeadlock}
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts > 1 {
		t.Fatalf("expected at most 1 attempt, got %d", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	retryableErr := &pgconn.PgError{Code: pgErrDeadlock}
	if !isRetryableError(retryableErr) {
		t.Fatalf("expected deadlock error to be retryable")
	}

	nonRetryable := errors.New("other")
	if isRetryableError(nonRetryable) {
		t.Fatalf("expected generic error to be non-retryable")
	}
}
