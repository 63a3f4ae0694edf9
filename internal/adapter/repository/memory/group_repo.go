package memory

import (
	"context"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

// GroupRepository implements usecase.GroupRepository.
type GroupRepository struct {
	store *Store
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(s *Store) *GroupRepository {
	return &GroupRepository{store: s}
}

// Create stores the group header. Entries are written separately.
func (r *GroupRepository) Create(_ context.Context, tx usecase.Transaction, group *domain.TransactionGroup) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if group.DebitEntry == nil || group.CreditEntry == nil {
		return domain.ErrValidation
	}

	s := r.store
	s.mu.RLock()
	_, exists := s.groups[group.ID]
	s.mu.RUnlock()
	if _, pending := t.groups[group.ID]; exists || pending {
		return duplicate("group", group.ID)
	}

	row := &groupRow{
		group:    *group,
		debitID:  group.DebitEntry.ID,
		creditID: group.CreditEntry.ID,
	}
	row.group.DebitEntry, row.group.CreditEntry = nil, nil
	t.groups[group.ID] = row

	return nil
}

// GetByID returns the group with both entries as currently committed.
func (r *GroupRepository) GetByID(_ context.Context, id string) (*domain.TransactionGroup, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}

	debit, okDebit := s.entries[row.debitID]
	credit, okCredit := s.entries[row.creditID]
	if !okDebit || !okCredit {
		return nil, domain.ErrEntryNotFound
	}

	group := row.group
	group.DebitEntry = debit.Clone()
	group.CreditEntry = credit.Clone()

	return &group, nil
}
