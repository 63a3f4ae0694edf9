package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/infrastructure/logger"
	"github.com/iho/achledger/internal/infrastructure/metrics"
)

// BusinessDayChecker is the part of the calendar the ledger needs.
type BusinessDayChecker interface {
	IsBusinessDay(ctx context.Context, date time.Time) (bool, error)
}

// LedgerConfig wires a LedgerUseCase.
type LedgerConfig struct {
	TxManager TransactionManager
	Entries   EntryRepository
	Groups    GroupRepository
	Outbox    OutboxRepository
	Calendar  BusinessDayChecker
	Encryptor Encryptor
	IDGen     IDGenerator
	Retrier   Retrier // optional
	Clock     Clock   // optional
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	MaxAmount decimal.Decimal
	Timeout   time.Duration
}

// LedgerUseCase owns the lifecycle of transaction entries and groups.
type LedgerUseCase struct {
	txManager TransactionManager
	entries   EntryRepository
	groups    GroupRepository
	outbox    OutboxRepository
	calendar  BusinessDayChecker
	encryptor Encryptor
	idGen     IDGenerator
	retrier   Retrier
	clock     Clock
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	maxAmount decimal.Decimal
	timeout   time.Duration
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(cfg LedgerConfig) *LedgerUseCase {
	uc := &LedgerUseCase{
		txManager: cfg.TxManager,
		entries:   cfg.Entries,
		groups:    cfg.Groups,
		outbox:    cfg.Outbox,
		calendar:  cfg.Calendar,
		encryptor: cfg.Encryptor,
		idGen:     cfg.IDGen,
		retrier:   cfg.Retrier,
		clock:     cfg.Clock,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		maxAmount: cfg.MaxAmount,
		timeout:   cfg.Timeout,
	}

	if uc.retrier == nil {
		uc.retrier = onceRetrier{}
	}
	if uc.clock == nil {
		uc.clock = SystemClock{}
	}
	if uc.timeout <= 0 {
		uc.timeout = DefaultTransactionTimeout
	}
	if uc.maxAmount.IsZero() {
		uc.maxAmount = decimal.RequireFromString(domain.MaxTransferAmount)
	}

	return uc
}

// Submit validates req and records its debit and credit entries as one
// PENDING transaction group.
func (uc *LedgerUseCase) Submit(ctx context.Context, req domain.TransferRequest) (*domain.TransactionGroup, error) {
	group, err := uc.submit(ctx, req)
	if err != nil {
		uc.metrics.TransferRejected(errorKind(err))
		return nil, err
	}

	uc.metrics.TransferSubmitted(group.DebitEntry.Amount.InexactFloat64())
	logger.FromContext(ctx, uc.logger).Info().
		Str("group_id", group.ID).
		Str("amount", group.DebitEntry.Amount.StringFixed(domain.MaxAmountDecimals)).
		Str("effective_date", domain.FormatDate(group.DebitEntry.EffectiveDate)).
		Msg("transfer submitted")

	return group, nil
}

func (uc *LedgerUseCase) submit(ctx context.Context, req domain.TransferRequest) (*domain.TransactionGroup, error) {
	// 1. Validate everything that needs no storage
	if err := req.Validate(uc.maxAmount); err != nil {
		return nil, err
	}

	effective := domain.DateOf(req.EffectiveDate)
	ok, err := uc.calendar.IsBusinessDay(ctx, effective)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEffectiveDateNotBusinessDay, domain.FormatDate(effective))
	}

	// 2. Build the pair with encrypted account numbers
	now := uc.clock.Now().UTC()
	group := &domain.TransactionGroup{
		ID:          uc.idGen.Generate(),
		Description: req.Description,
		CreatedAt:   now,
	}

	group.DebitEntry, err = uc.newEntry(group.ID, domain.EntryTypeDebit, req.Debit, req.Amount, effective, now)
	if err != nil {
		return nil, err
	}
	group.CreditEntry, err = uc.newEntry(group.ID, domain.EntryTypeCredit, req.Credit, req.Amount, effective, now)
	if err != nil {
		return nil, err
	}

	if err := group.Validate(); err != nil {
		return nil, err
	}

	// 3. Persist atomically
	err = uc.retrier.Retry(ctx, func() error {
		return uc.persistGroup(ctx, group, now)
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return group, nil
}

func (uc *LedgerUseCase) newEntry(
	groupID string,
	typ domain.EntryType,
	party domain.TransferParty,
	amount decimal.Decimal,
	effective, now time.Time,
) (*domain.TransactionEntry, error) {
	ciphertext, err := uc.encryptor.Encrypt(party.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("encrypt account number: %w", err)
	}

	return &domain.TransactionEntry{
		ID:                  uc.idGen.Generate(),
		ParentTransactionID: groupID,
		Type:                typ,
		RoutingNumber:       party.RoutingNumber,
		AccountNumber:       ciphertext,
		AccountMask:         domain.MaskAccountNumber(party.AccountNumber),
		AccountHolderName:   domain.NormalizeName(party.HolderName),
		AccountType:         party.AccountType,
		Amount:              amount.Round(domain.MaxAmountDecimals),
		EffectiveDate:       effective,
		Status:              domain.EntryStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

func (uc *LedgerUseCase) persistGroup(ctx context.Context, group *domain.TransactionGroup, now time.Time) error {
	txCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.groups.Create(txCtx, tx, group); err != nil {
		return err
	}
	for _, e := range group.Entries() {
		if err := uc.entries.Create(txCtx, tx, e); err != nil {
			return err
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   group.ID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferSubmitted,
		Payload:       domain.TransferSubmittedPayload(group),
		CreatedAt:     now,
	}
	if err := uc.outbox.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// Cancel moves both legs of a transfer from PENDING to CANCELLED. id may be
// a group id or the id of either entry.
func (uc *LedgerUseCase) Cancel(ctx context.Context, id string) error {
	group, err := uc.resolveGroup(ctx, id)
	if err != nil {
		return err
	}

	for _, e := range group.Entries() {
		if e.Status != domain.EntryStatusPending {
			return fmt.Errorf("%w: entry %s is %s", domain.ErrEntryNotPending, e.ID, e.Status)
		}
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.cancelGroup(ctx, group)
	})
	if err != nil {
		return storageErr(err)
	}

	uc.metrics.TransferCancelled()
	logger.FromContext(ctx, uc.logger).Info().Str("group_id", group.ID).Msg("transfer cancelled")

	return nil
}

func (uc *LedgerUseCase) cancelGroup(ctx context.Context, group *domain.TransactionGroup) error {
	txCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := uc.clock.Now().UTC()
	for _, e := range group.Entries() {
		ok, err := uc.entries.UpdateStatus(txCtx, tx, e.ID,
			domain.EntryStatusPending, domain.EntryStatusCancelled,
			domain.StatusUpdate{UpdatedAt: now})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: entry %s changed concurrently", domain.ErrEntryNotPending, e.ID)
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   group.ID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCancelled,
		Payload: map[string]any{
			"group_id":  group.ID,
			"entry_ids": []string{group.DebitEntry.ID, group.CreditEntry.ID},
		},
		CreatedAt: now,
	}
	if err := uc.outbox.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

func (uc *LedgerUseCase) resolveGroup(ctx context.Context, id string) (*domain.TransactionGroup, error) {
	group, err := uc.GetGroup(ctx, id)
	if err == nil || !errors.Is(err, domain.ErrGroupNotFound) {
		return group, err
	}

	entry, err := uc.GetEntry(ctx, id)
	if errors.Is(err, domain.ErrEntryNotFound) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	return uc.GetGroup(ctx, entry.ParentTransactionID)
}

// MarkProcessed claims PENDING entries for fileID inside tx. It returns the
// ids it actually claimed; when that is fewer than requested the error is
// ErrConcurrentModification.
func (uc *LedgerUseCase) MarkProcessed(ctx context.Context, tx Transaction, entryIDs []string, fileID string) ([]string, error) {
	now := uc.clock.Now().UTC()
	claimed := make([]string, 0, len(entryIDs))

	for _, id := range entryIDs {
		ok, err := uc.entries.UpdateStatus(ctx, tx, id,
			domain.EntryStatusPending, domain.EntryStatusProcessed,
			domain.StatusUpdate{UpdatedAt: now, FileID: &fileID})
		if err != nil {
			return claimed, storageErr(err)
		}
		if ok {
			claimed = append(claimed, id)
		}
	}

	if len(claimed) < len(entryIDs) {
		return claimed, fmt.Errorf("%w: claimed %d of %d entries",
			domain.ErrConcurrentModification, len(claimed), len(entryIDs))
	}

	return claimed, nil
}

// MarkFailed moves entries to FAILED in their own transaction.
func (uc *LedgerUseCase) MarkFailed(ctx context.Context, entryIDs []string, reason string) error {
	err := uc.retrier.Retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, uc.timeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := uc.MarkFailedTx(txCtx, tx, entryIDs, reason); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})

	return storageErr(err)
}

// MarkFailedTx moves PENDING or PROCESSED entries to FAILED inside tx.
func (uc *LedgerUseCase) MarkFailedTx(ctx context.Context, tx Transaction, entryIDs []string, reason string) error {
	if len(entryIDs) == 0 {
		return nil
	}

	now := uc.clock.Now().UTC()
	update := domain.StatusUpdate{UpdatedAt: now, FailureReason: reason}

	for _, id := range entryIDs {
		ok, err := uc.entries.UpdateStatus(ctx, tx, id, domain.EntryStatusPending, domain.EntryStatusFailed, update)
		if err != nil {
			return err
		}
		if !ok {
			ok, err = uc.entries.UpdateStatus(ctx, tx, id, domain.EntryStatusProcessed, domain.EntryStatusFailed, update)
			if err != nil {
				return err
			}
		}
		if !ok {
			entry, err := uc.entries.GetByID(ctx, id)
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: entry %s is %s", domain.ErrEntryTerminal, id, entry.Status)
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entryIDs[0],
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeEntriesFailed,
		Payload: map[string]any{
			"entry_ids": entryIDs,
			"reason":    reason,
		},
		CreatedAt: now,
	}
	if err := uc.outbox.Create(ctx, tx, event); err != nil {
		return err
	}

	uc.metrics.EntriesMarkedFailed(len(entryIDs))
	return nil
}

// PendingDue returns PENDING entries due on or before through, in claim
// order. Account numbers stay encrypted.
func (uc *LedgerUseCase) PendingDue(ctx context.Context, through time.Time) ([]*domain.TransactionEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	entries, err := uc.entries.ListPendingDue(ctx, domain.DateOf(through))
	return entries, storageErr(err)
}

// DecryptEntries returns copies of entries with plaintext account numbers.
func (uc *LedgerUseCase) DecryptEntries(entries []*domain.TransactionEntry) ([]*domain.TransactionEntry, error) {
	out := make([]*domain.TransactionEntry, len(entries))
	for i, e := range entries {
		plain, err := uc.encryptor.Decrypt(e.AccountNumber)
		if err != nil {
			return nil, fmt.Errorf("decrypt entry %s: %w", e.ID, err)
		}
		c := e.Clone()
		c.AccountNumber = plain
		out[i] = c
	}
	return out, nil
}

// GetGroup returns a transfer with both entries.
func (uc *LedgerUseCase) GetGroup(ctx context.Context, id string) (*domain.TransactionGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	group, err := uc.groups.GetByID(ctx, id)
	return group, storageErr(err)
}

// GetEntry returns a single entry.
func (uc *LedgerUseCase) GetEntry(ctx context.Context, id string) (*domain.TransactionEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	entry, err := uc.entries.GetByID(ctx, id)
	return entry, storageErr(err)
}

// ListEntries returns entries matching filter.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.TransactionEntry, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	entries, err := uc.entries.List(ctx, filter)
	return entries, storageErr(err)
}

// onceRetrier runs the operation a single time.
type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, fn func() error) error {
	return fn()
}
