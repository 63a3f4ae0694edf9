package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultCalendarStaleness is how long a loaded holiday set is trusted.
	DefaultCalendarStaleness = 24 * time.Hour

	// HolidayRetryInterval limits how often a failing holiday store is asked
	// again while a previous set is still being served.
	HolidayRetryInterval = time.Minute

	// DefaultMaxAssemblyAttempts bounds the retries of one Assemble call.
	DefaultMaxAssemblyAttempts = 3

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyPending is the value an IdempotencyStore holds for a key whose
// first request is still running.
const IdempotencyPending = "processing"
