package usecase

import (
	"context"
	"time"

	"github.com/iho/achledger/internal/domain"
)

// EntryRepository defines data access for transaction entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.TransactionEntry) error
	GetByID(ctx context.Context, id string) (*domain.TransactionEntry, error)
	GetByGroup(ctx context.Context, groupID string) ([]*domain.TransactionEntry, error)
	// ListPendingDue returns PENDING entries with effective date on or before
	// through, ordered by effective date, sequence and id.
	ListPendingDue(ctx context.Context, through time.Time) ([]*domain.TransactionEntry, error)
	List(ctx context.Context, filter domain.EntryFilter) ([]*domain.TransactionEntry, error)
	// UpdateStatus moves the entry to next only if it is currently in
	// expected. It reports whether the row was updated.
	UpdateStatus(ctx context.Context, tx Transaction, id string, expected, next domain.EntryStatus, update domain.StatusUpdate) (bool, error)
}

// GroupRepository defines data access for transaction groups.
type GroupRepository interface {
	Create(ctx context.Context, tx Transaction, group *domain.TransactionGroup) error
	// GetByID returns the group with both entries populated.
	GetByID(ctx context.Context, id string) (*domain.TransactionGroup, error)
}

// FileRepository defines data access for generated NACHA files.
type FileRepository interface {
	Create(ctx context.Context, tx Transaction, file *domain.NACHAFile) error
	GetByID(ctx context.Context, id string) (*domain.NACHAFile, error)
	List(ctx context.Context, limit, offset int) ([]*domain.NACHAFile, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, expected, next domain.FileStatus, reason string, updatedAt time.Time) (bool, error)
}

// HolidayRepository loads the holiday list.
type HolidayRepository interface {
	ListHolidays(ctx context.Context) ([]domain.Holiday, error)
}

// SequenceGenerator hands out monotonically increasing batch numbers.
type SequenceGenerator interface {
	NextBatchNumber(ctx context.Context) (int64, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs fn while the storage layer reports a transient conflict
// such as a deadlock or serialization failure.
type Retrier interface {
	Retry(ctx context.Context, fn func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Encryptor protects account numbers at rest.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Clock tells the time.
type Clock interface {
	Now() time.Time
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// Locker hands out short leases shared between instances.
type Locker interface {
	// Acquire reports ok=false when someone else holds key. release is nil
	// unless ok.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
