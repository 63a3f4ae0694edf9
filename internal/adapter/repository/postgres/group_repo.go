package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/infrastructure/postgres/generated"
	"github.com/iho/achledger/internal/usecase"
)

// GroupRepository implements usecase.GroupRepository.
type GroupRepository struct {
	queries *generated.Queries
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db generated.DBTX) *GroupRepository {
	return &GroupRepository{queries: generated.New(db)}
}

// Create stores the group header. Entries are written separately.
func (r *GroupRepository) Create(ctx context.Context, tx usecase.Transaction, group *domain.TransactionGroup) error {
	if group.DebitEntry == nil || group.CreditEntry == nil {
		return domain.ErrValidation
	}

	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return mapError(queries.CreateGroup(ctx, generated.CreateGroupParams{
		ID:            group.ID,
		Description:   group.Description,
		DebitEntryID:  group.DebitEntry.ID,
		CreditEntryID: group.CreditEntry.ID,
		CreatedAt:     timeToPgTimestamptz(group.CreatedAt),
	}))
}

// GetByID returns the group with both entries.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*domain.TransactionGroup, error) {
	row, err := r.queries.GetGroupByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, mapError(err)
	}

	rows, err := r.queries.GetEntriesByGroup(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	group := &domain.TransactionGroup{
		ID:          row.ID,
		Description: row.Description,
		CreatedAt:   row.CreatedAt.Time,
	}
	for _, e := range rows {
		switch e.ID {
		case row.DebitEntryID:
			group.DebitEntry = rowToEntry(e)
		case row.CreditEntryID:
			group.CreditEntry = rowToEntry(e)
		}
	}
	if group.DebitEntry == nil || group.CreditEntry == nil {
		return nil, domain.ErrEntryNotFound
	}

	return group, nil
}
