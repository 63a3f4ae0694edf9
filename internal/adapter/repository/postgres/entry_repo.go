package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/infrastructure/postgres/generated"
	"github.com/iho/achledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository. db is usually a
// *pgxpool.Pool.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Create inserts an entry and stores the sequence the database assigned.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionEntry) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	seq, err := queries.CreateEntry(ctx, generated.CreateEntryParams{
		ID:                  entry.ID,
		ParentTransactionID: entry.ParentTransactionID,
		Type:                string(entry.Type),
		RoutingNumber:       entry.RoutingNumber,
		AccountNumber:       entry.AccountNumber,
		AccountMask:         entry.AccountMask,
		AccountHolderName:   entry.AccountHolderName,
		AccountType:         string(entry.AccountType),
		Amount:              decimalToNumeric(entry.Amount),
		EffectiveDate:       dateToPg(entry.EffectiveDate),
		Status:              string(entry.Status),
		CreatedAt:           timeToPgTimestamptz(entry.CreatedAt),
		UpdatedAt:           timeToPgTimestamptz(entry.UpdatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	entry.Sequence = seq
	return nil
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.TransactionEntry, error) {
	row, err := r.queries.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, mapError(err)
	}

	return rowToEntry(row), nil
}

// GetByGroup returns the debit leg followed by the credit leg.
func (r *EntryRepository) GetByGroup(ctx context.Context, groupID string) ([]*domain.TransactionEntry, error) {
	rows, err := r.queries.GetEntriesByGroup(ctx, groupID)
	if err != nil {
		return nil, mapError(err)
	}
	return rowsToEntries(rows), nil
}

// ListPendingDue returns PENDING entries due on or before through in claim
// order.
func (r *EntryRepository) ListPendingDue(ctx context.Context, through time.Time) ([]*domain.TransactionEntry, error) {
	rows, err := r.queries.ListPendingDueEntries(ctx, dateToPg(through))
	if err != nil {
		return nil, mapError(err)
	}
	return rowsToEntries(rows), nil
}

// List returns entries matching filter in claim order.
func (r *EntryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.TransactionEntry, error) {
	limit, offset := pageArgs(filter.Limit, filter.Offset)
	params := generated.ListEntriesParams{
		GroupID: textOrNull(filter.GroupID),
		FileID:  textOrNull(filter.FileID),
		Limit:   limit,
		Offset:  offset,
	}
	if filter.Status != nil {
		params.Status = textOrNull(string(*filter.Status))
	}
	if filter.EffectiveBefore != nil {
		params.EffectiveBefore = dateToPg(*filter.EffectiveBefore)
	}

	rows, err := r.queries.ListEntries(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return rowsToEntries(rows), nil
}

// UpdateStatus runs a conditional UPDATE ... WHERE status = expected. A
// missing row is reported as ErrEntryNotFound, a row in another status as
// (false, nil).
func (r *EntryRepository) UpdateStatus(
	ctx context.Context,
	tx usecase.Transaction,
	id string,
	expected, next domain.EntryStatus,
	update domain.StatusUpdate,
) (bool, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return false, err
	}

	var fileID pgtype.Text
	if update.FileID != nil {
		fileID = pgtype.Text{String: *update.FileID, Valid: true}
	}

	n, err := queries.UpdateEntryStatus(ctx, generated.UpdateEntryStatusParams{
		Next:          string(next),
		FileID:        fileID,
		FailureReason: update.FailureReason,
		UpdatedAt:     timeToPgTimestamptz(update.UpdatedAt),
		ID:            id,
		Expected:      string(expected),
	})
	if err != nil {
		return false, mapError(err)
	}
	if n == 1 {
		return true, nil
	}

	if _, err := queries.GetEntryStatus(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrEntryNotFound
		}
		return false, mapError(err)
	}
	return false, nil
}

func rowsToEntries(rows []generated.TransactionEntry) []*domain.TransactionEntry {
	entries := make([]*domain.TransactionEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries
}

func rowToEntry(row generated.TransactionEntry) *domain.TransactionEntry {
	entry := &domain.TransactionEntry{
		ID:                  row.ID,
		ParentTransactionID: row.ParentTransactionID,
		Type:                domain.EntryType(row.Type),
		RoutingNumber:       row.RoutingNumber,
		AccountNumber:       row.AccountNumber,
		AccountMask:         row.AccountMask,
		AccountHolderName:   row.AccountHolderName,
		AccountType:         domain.AccountType(row.AccountType),
		Amount:              numericToDecimal(row.Amount),
		EffectiveDate:       pgToDate(row.EffectiveDate),
		Status:              domain.EntryStatus(row.Status),
		FailureReason:       row.FailureReason,
		Sequence:            row.Sequence,
		CreatedAt:           row.CreatedAt.Time,
		UpdatedAt:           row.UpdatedAt.Time,
	}
	if row.FileID.Valid {
		fileID := row.FileID.String
		entry.FileID = &fileID
	}
	return entry
}
