package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(s *Store) *EntryRepository {
	return &EntryRepository{store: s}
}

// Create adds an entry and assigns its sequence.
func (r *EntryRepository) Create(_ context.Context, tx usecase.Transaction, entry *domain.TransactionEntry) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hooks.BeforeEntryCreate != nil {
		if err := s.hooks.BeforeEntryCreate(entry); err != nil {
			return err
		}
	}

	if _, ok := s.entries[entry.ID]; ok {
		return duplicate("entry", entry.ID)
	}
	if _, ok := t.entries[entry.ID]; ok {
		return duplicate("entry", entry.ID)
	}

	s.entrySeq++
	entry.Sequence = s.entrySeq
	t.putEntry(entry.Clone())

	return nil
}

// GetByID returns a committed entry.
func (r *EntryRepository) GetByID(_ context.Context, id string) (*domain.TransactionEntry, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	return e.Clone(), nil
}

// GetByGroup returns the debit leg followed by the credit leg.
func (r *EntryRepository) GetByGroup(_ context.Context, groupID string) ([]*domain.TransactionEntry, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TransactionEntry
	for _, e := range s.entries {
		if e.ParentTransactionID == groupID {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Type == domain.EntryTypeDebit && out[j].Type != domain.EntryTypeDebit
	})

	return out, nil
}

// ListPendingDue returns PENDING entries due on or before through in claim
// order.
func (r *EntryRepository) ListPendingDue(_ context.Context, through time.Time) ([]*domain.TransactionEntry, error) {
	through = domain.DateOf(through)

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TransactionEntry
	for _, e := range s.entries {
		if e.Status == domain.EntryStatusPending && !domain.DateOf(e.EffectiveDate).After(through) {
			out = append(out, e.Clone())
		}
	}
	sortClaimOrder(out)

	return out, nil
}

// List returns entries matching filter in claim order.
func (r *EntryRepository) List(_ context.Context, filter domain.EntryFilter) ([]*domain.TransactionEntry, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TransactionEntry
	for _, e := range s.entries {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.EffectiveBefore != nil && domain.DateOf(e.EffectiveDate).After(domain.DateOf(*filter.EffectiveBefore)) {
			continue
		}
		if filter.GroupID != "" && e.ParentTransactionID != filter.GroupID {
			continue
		}
		if filter.FileID != "" && (e.FileID == nil || *e.FileID != filter.FileID) {
			continue
		}
		out = append(out, e.Clone())
	}
	sortClaimOrder(out)

	return page(out, filter.Limit, filter.Offset), nil
}

// UpdateStatus moves the entry to next only when it is in expected, as
// seen by tx.
func (r *EntryRepository) UpdateStatus(
	_ context.Context,
	tx usecase.Transaction,
	id string,
	expected, next domain.EntryStatus,
	update domain.StatusUpdate,
) (bool, error) {
	t, err := asTx(tx)
	if err != nil {
		return false, err
	}

	s := r.store
	s.mu.RLock()
	current, ok := t.entries[id]
	if !ok {
		current, ok = s.entries[id]
	}
	s.mu.RUnlock()

	if !ok {
		return false, domain.ErrEntryNotFound
	}
	if current.Status != expected {
		return false, nil
	}

	updated := current.Clone()
	updated.Status = next
	updated.UpdatedAt = update.UpdatedAt
	if update.FileID != nil {
		fileID := *update.FileID
		updated.FileID = &fileID
	}
	if update.FailureReason != "" {
		updated.FailureReason = update.FailureReason
	}
	t.putEntry(updated)

	return true, nil
}

func sortClaimOrder(entries []*domain.TransactionEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.EffectiveDate.Equal(b.EffectiveDate) {
			return a.EffectiveDate.Before(b.EffectiveDate)
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.ID < b.ID
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
