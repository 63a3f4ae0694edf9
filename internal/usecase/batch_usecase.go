package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/infrastructure/logger"
	"github.com/iho/achledger/internal/infrastructure/metrics"
	"github.com/iho/achledger/internal/nacha"
)

// ClaimPolicy decides what happens when another run claimed part of a
// batch first.
type ClaimPolicy string

const (
	// ClaimPolicyPartial commits a file with whatever entries were claimed.
	ClaimPolicyPartial ClaimPolicy = "partial"
	// ClaimPolicyStrict discards the batch and retries with a fresh selection.
	ClaimPolicyStrict ClaimPolicy = "strict"
)

// EntryLedger is the part of the ledger the assembler drives.
type EntryLedger interface {
	PendingDue(ctx context.Context, through time.Time) ([]*domain.TransactionEntry, error)
	DecryptEntries(entries []*domain.TransactionEntry) ([]*domain.TransactionEntry, error)
	MarkProcessed(ctx context.Context, tx Transaction, entryIDs []string, fileID string) ([]string, error)
	MarkFailedTx(ctx context.Context, tx Transaction, entryIDs []string, reason string) error
}

// FileEncoder renders a batch.
type FileEncoder interface {
	Encode(batch *domain.Batch, settings nacha.Settings) (*nacha.Result, error)
}

// BatchConfig wires a BatchUseCase.
type BatchConfig struct {
	TxManager     TransactionManager
	Ledger        EntryLedger
	Files         FileRepository
	Sequence      SequenceGenerator
	Outbox        OutboxRepository
	Encoder       FileEncoder
	Verifier      func(content []byte) error // optional conformance check
	IDGen         IDGenerator
	Clock         Clock // optional
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
	Settings      nacha.Settings
	Policy        ClaimPolicy
	MaxAttempts   int
	RetryInterval time.Duration
	Timeout       time.Duration
}

// BatchUseCase assembles PENDING entries into NACHA files.
type BatchUseCase struct {
	txManager     TransactionManager
	ledger        EntryLedger
	files         FileRepository
	sequence      SequenceGenerator
	outbox        OutboxRepository
	encoder       FileEncoder
	verifier      func(content []byte) error
	idGen         IDGenerator
	clock         Clock
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	settings      nacha.Settings
	policy        ClaimPolicy
	maxAttempts   int
	retryInterval time.Duration
	timeout       time.Duration
}

// NewBatchUseCase creates a new BatchUseCase.
func NewBatchUseCase(cfg BatchConfig) *BatchUseCase {
	uc := &BatchUseCase{
		txManager:     cfg.TxManager,
		ledger:        cfg.Ledger,
		files:         cfg.Files,
		sequence:      cfg.Sequence,
		outbox:        cfg.Outbox,
		encoder:       cfg.Encoder,
		verifier:      cfg.Verifier,
		idGen:         cfg.IDGen,
		clock:         cfg.Clock,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		settings:      cfg.Settings,
		policy:        cfg.Policy,
		maxAttempts:   cfg.MaxAttempts,
		retryInterval: cfg.RetryInterval,
		timeout:       cfg.Timeout,
	}

	if uc.clock == nil {
		uc.clock = SystemClock{}
	}
	if uc.policy == "" {
		uc.policy = ClaimPolicyPartial
	}
	if uc.maxAttempts <= 0 {
		uc.maxAttempts = DefaultMaxAssemblyAttempts
	}
	if uc.retryInterval <= 0 {
		uc.retryInterval = 50 * time.Millisecond
	}
	if uc.timeout <= 0 {
		uc.timeout = DefaultTransactionTimeout
	}

	return uc
}

// Assemble turns every PENDING entry due on or before targetDate into NACHA
// files, one per effective date. An empty selection yields an empty result.
func (uc *BatchUseCase) Assemble(ctx context.Context, targetDate time.Time) (*domain.AssemblyResult, error) {
	start := time.Now()
	result := &domain.AssemblyResult{TargetDate: domain.DateOf(targetDate)}
	log := logger.FromContext(ctx, uc.logger).With().
		Str("target_date", domain.FormatDate(result.TargetDate)).
		Logger()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.retryInterval
	b.MaxInterval = 20 * uc.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(uc.maxAttempts-1)), ctx)

	err := backoff.Retry(func() error {
		result.Attempts++

		err := uc.assembleOnce(ctx, result)
		if errors.Is(err, domain.ErrConcurrentModification) {
			log.Warn().Err(err).Int("attempt", result.Attempts).Msg("batch claim lost a race, retrying")
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, policy)

	if err != nil {
		uc.metrics.AssemblyFinished("error", time.Since(start).Seconds())
		log.Error().Err(err).Int("attempts", result.Attempts).Int("files", len(result.Files)).Msg("batch assembly failed")

		if errors.Is(err, domain.ErrConcurrentModification) {
			return result, fmt.Errorf("%w after %d attempts: %v", domain.ErrBatchAssemblyFailed, result.Attempts, err)
		}
		return result, storageErr(err)
	}

	uc.metrics.AssemblyFinished("ok", time.Since(start).Seconds())
	log.Info().
		Int("files", len(result.Files)).
		Int("entries", result.EntryCount()).
		Int("attempts", result.Attempts).
		Int("conflicts", result.Conflicts).
		Msg("batch assembly finished")

	return result, nil
}

func (uc *BatchUseCase) assembleOnce(ctx context.Context, result *domain.AssemblyResult) error {
	pending, err := uc.ledger.PendingDue(ctx, result.TargetDate)
	if err != nil {
		return err
	}

	for _, group := range groupByEffectiveDate(pending) {
		if err := uc.assembleBatch(ctx, group.date, group.entries, result); err != nil {
			return err
		}
	}

	return nil
}

type dateGroup struct {
	date    time.Time
	entries []*domain.TransactionEntry
}

// groupByEffectiveDate splits an ordered selection by effective date,
// keeping the selection order inside and across groups.
func groupByEffectiveDate(entries []*domain.TransactionEntry) []dateGroup {
	var groups []dateGroup
	index := make(map[time.Time]int)

	for _, e := range entries {
		d := domain.DateOf(e.EffectiveDate)
		i, ok := index[d]
		if !ok {
			i = len(groups)
			index[d] = i
			groups = append(groups, dateGroup{date: d})
		}
		groups[i].entries = append(groups[i].entries, e)
	}

	return groups
}

// assembleBatch encodes one batch, claims its entries and stores the file
// in a single transaction.
func (uc *BatchUseCase) assembleBatch(ctx context.Context, date time.Time, entries []*domain.TransactionEntry, result *domain.AssemblyResult) error {
	log := logger.FromContext(ctx, uc.logger)

	// 1. Decrypt and encode outside the transaction
	plain, err := uc.ledger.DecryptEntries(entries)
	if err != nil {
		return err
	}

	batchNumber, err := uc.nextBatchNumber(ctx)
	if err != nil {
		return err
	}

	batch, err := domain.NewBatch(plain, date, batchNumber)
	if err != nil {
		return err
	}

	settings := uc.settings
	settings.CreatedAt = uc.clock.Now().UTC()

	encoded, err := uc.encode(batch, settings)
	if err != nil {
		return err
	}

	// 2. Claim and persist
	txCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	fileID := uc.idGen.Generate()
	claimed, err := uc.ledger.MarkProcessed(txCtx, tx, batch.EntryIDs(), fileID)
	conflict := errors.Is(err, domain.ErrConcurrentModification)
	if err != nil && !conflict {
		return err
	}

	// 3. Lost part of the race
	if conflict {
		result.Conflicts++
		uc.metrics.Claimed(0, true)

		if uc.policy == ClaimPolicyStrict {
			return err
		}
		if len(claimed) == 0 {
			log.Info().Int64("batch_number", batchNumber).Msg("all entries claimed by a concurrent run, dropping batch")
			return nil
		}

		log.Warn().
			Int64("batch_number", batchNumber).
			Int("selected", len(batch.Entries)).
			Int("claimed", len(claimed)).
			Msg("partial claim, re-encoding with claimed entries")

		if batch, err = batch.Subset(claimed); err != nil {
			return err
		}
		if encoded, err = uc.encode(batch, settings); err != nil {
			return err
		}
	}

	file := newNACHAFile(fileID, batch, encoded, settings.CreatedAt)
	if err := uc.files.Create(txCtx, tx, file); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   file.ID,
		AggregateType: domain.AggregateTypeNACHAFile,
		EventType:     domain.EventTypeFileGenerated,
		Payload:       domain.FilePayload(file),
		CreatedAt:     file.CreatedAt,
	}
	if err := uc.outbox.Create(txCtx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	uc.metrics.Claimed(len(file.EntryIDs), false)
	uc.metrics.FileGenerated(file.TotalDebit, file.TotalCredit, len(encoded.Warnings))
	for _, w := range encoded.Warnings {
		log.Warn().Str("file_id", file.ID).Msg(w)
	}
	log.Info().
		Str("file_id", file.ID).
		Str("file_name", file.FileName).
		Int("entries", len(file.EntryIDs)).
		Int64("total_debit", file.TotalDebit).
		Int64("total_credit", file.TotalCredit).
		Msg("nacha file generated")

	result.Files = append(result.Files, file)
	result.Warnings = append(result.Warnings, encoded.Warnings...)

	return nil
}

func (uc *BatchUseCase) nextBatchNumber(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	return uc.sequence.NextBatchNumber(ctx)
}

func (uc *BatchUseCase) encode(batch *domain.Batch, settings nacha.Settings) (*nacha.Result, error) {
	res, err := uc.encoder.Encode(batch, settings)
	if err != nil {
		if !errors.Is(err, domain.ErrEncoding) {
			err = fmt.Errorf("%w: %v", domain.ErrEncoding, err)
		}
		return nil, err
	}

	if uc.verifier != nil {
		if err := uc.verifier(res.Content); err != nil {
			if !errors.Is(err, domain.ErrEncoding) {
				err = fmt.Errorf("%w: %v", domain.ErrEncoding, err)
			}
			return nil, err
		}
	}

	return res, nil
}

func newNACHAFile(id string, batch *domain.Batch, res *nacha.Result, now time.Time) *domain.NACHAFile {
	return &domain.NACHAFile{
		ID:                id,
		FileName:          res.FileName,
		EffectiveDate:     batch.EffectiveDate,
		EntryIDs:          batch.EntryIDs(),
		BatchNumber:       batch.BatchNumber,
		RecordCount:       res.RecordCount,
		BlockCount:        res.BlockCount,
		EntryAddendaCount: res.EntryAddendaCount,
		EntryHash:         res.EntryHash,
		TotalDebit:        res.TotalDebit,
		TotalCredit:       res.TotalCredit,
		Content:           res.Content,
		Status:            domain.FileStatusGenerated,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// MarkFileTransmitted records that the transport delivered the file.
func (uc *BatchUseCase) MarkFileTransmitted(ctx context.Context, fileID string) (*domain.NACHAFile, error) {
	err := uc.transition(ctx, fileID, domain.FileStatusTransmitted, "", nil)
	if err != nil {
		return nil, storageErr(err)
	}

	uc.metrics.FileTransmitted()
	logger.FromContext(ctx, uc.logger).Info().Str("file_id", fileID).Msg("nacha file transmitted")

	return uc.GetFile(ctx, fileID)
}

// MarkFileFailed records a transmission failure and fails every entry of
// the file in the same transaction.
func (uc *BatchUseCase) MarkFileFailed(ctx context.Context, fileID, reason string) (*domain.NACHAFile, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: failure reason is required", domain.ErrValidation)
	}

	file, err := uc.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !file.Status.CanTransitionTo(domain.FileStatusFailed) {
		return nil, fmt.Errorf("%w: file %s is %s", domain.ErrFileNotGenerated, fileID, file.Status)
	}

	err = uc.transition(ctx, fileID, domain.FileStatusFailed, reason, func(txCtx context.Context, tx Transaction) error {
		return uc.ledger.MarkFailedTx(txCtx, tx, file.EntryIDs, reason)
	})
	if err != nil {
		return nil, storageErr(err)
	}

	uc.metrics.FileFailed()
	logger.FromContext(ctx, uc.logger).Warn().
		Str("file_id", fileID).
		Int("entries", len(file.EntryIDs)).
		Str("reason", reason).
		Msg("nacha file failed")

	return uc.GetFile(ctx, fileID)
}

func (uc *BatchUseCase) transition(
	ctx context.Context,
	fileID string,
	next domain.FileStatus,
	reason string,
	also func(ctx context.Context, tx Transaction) error,
) error {
	txCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := uc.clock.Now().UTC()
	ok, err := uc.files.UpdateStatus(txCtx, tx, fileID, domain.FileStatusGenerated, next, reason, now)
	if err != nil {
		return err
	}
	if !ok {
		file, err := uc.files.GetByID(txCtx, fileID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: file %s is %s", domain.ErrFileNotGenerated, fileID, file.Status)
	}

	if also != nil {
		if err := also(txCtx, tx); err != nil {
			return err
		}
	}

	eventType := domain.EventTypeFileTransmitted
	if next == domain.FileStatusFailed {
		eventType = domain.EventTypeFileFailed
	}
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   fileID,
		AggregateType: domain.AggregateTypeNACHAFile,
		EventType:     eventType,
		Payload: map[string]any{
			"file_id": fileID,
			"status":  string(next),
			"reason":  reason,
		},
		CreatedAt: now,
	}
	if err := uc.outbox.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// GetFile returns a generated file including its content.
func (uc *BatchUseCase) GetFile(ctx context.Context, id string) (*domain.NACHAFile, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	file, err := uc.files.GetByID(ctx, id)
	return file, storageErr(err)
}

// ListFiles returns files newest first.
func (uc *BatchUseCase) ListFiles(ctx context.Context, limit, offset int) ([]*domain.NACHAFile, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	files, err := uc.files.List(ctx, limit, offset)
	return files, storageErr(err)
}
