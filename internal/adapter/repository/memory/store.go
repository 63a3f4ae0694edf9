// Package memory keeps the ledger in process memory. Transactions are
// serialized and buffer their writes until Commit, so conditional updates
// and rollback behave like the Postgres adapter.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

var (
	// ErrTxDone is returned when a finished transaction is used again.
	ErrTxDone = errors.New("memory: transaction already finished")
	// ErrForeignTx is returned when a repository receives a transaction it
	// did not create.
	ErrForeignTx = errors.New("memory: transaction is not a memory transaction")
)

// Hooks lets tests inject failures into the write path.
type Hooks struct {
	BeforeEntryCreate func(entry *domain.TransactionEntry) error
	BeforeFileCreate  func(file *domain.NACHAFile) error
}

type groupRow struct {
	group    domain.TransactionGroup
	debitID  string
	creditID string
}

// Store is the shared state behind every memory repository.
type Store struct {
	sem chan struct{}

	mu        sync.RWMutex
	entries   map[string]*domain.TransactionEntry
	groups    map[string]*groupRow
	files     map[string]*domain.NACHAFile
	outbox    []*domain.OutboxEvent
	holidays  []domain.Holiday
	holidayFn func() error
	entrySeq  int64
	batchSeq  int64
	hooks     Hooks
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sem:     make(chan struct{}, 1),
		entries: make(map[string]*domain.TransactionEntry),
		groups:  make(map[string]*groupRow),
		files:   make(map[string]*domain.NACHAFile),
	}
}

// SetHooks replaces the failure injection hooks.
func (s *Store) SetHooks(h Hooks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = h
}

// Tx buffers writes until Commit.
type Tx struct {
	store   *Store
	entries map[string]*domain.TransactionEntry
	order   []string
	groups  map[string]*groupRow
	files   map[string]*domain.NACHAFile
	outbox  []*domain.OutboxEvent
	done    bool
}

// TxManager begins memory transactions.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(s *Store) *TxManager {
	return &TxManager{store: s}
}

// Begin waits until no other transaction is open.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case m.store.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Tx{
		store:   m.store,
		entries: make(map[string]*domain.TransactionEntry),
		groups:  make(map[string]*groupRow),
		files:   make(map[string]*domain.NACHAFile),
	}, nil
}

// Commit applies the buffered writes.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	defer t.release()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range t.order {
		s.entries[id] = t.entries[id]
	}
	for id, g := range t.groups {
		s.groups[id] = g
	}
	for id, f := range t.files {
		s.files[id] = f
	}
	s.outbox = append(s.outbox, t.outbox...)

	return nil
}

// Rollback discards the buffered writes. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

func (t *Tx) release() {
	<-t.store.sem
}

func (t *Tx) putEntry(e *domain.TransactionEntry) {
	if _, ok := t.entries[e.ID]; !ok {
		t.order = append(t.order, e.ID)
	}
	t.entries[e.ID] = e
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, ErrForeignTx
	}
	if t.done {
		return nil, ErrTxDone
	}
	return t, nil
}

func duplicate(kind, id string) error {
	return fmt.Errorf("memory: duplicate %s %s", kind, id)
}
