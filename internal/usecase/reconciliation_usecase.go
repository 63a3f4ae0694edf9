package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/nacha"
)

// ReconciliationUseCase checks generated files against the ledger.
type ReconciliationUseCase struct {
	files    FileRepository
	entries  EntryRepository
	verifier func(content []byte) (*nacha.Summary, error)
	clock    Clock
}

// NewReconciliationUseCase creates a new reconciliation use case. A nil
// verifier uses nacha.Verify.
func NewReconciliationUseCase(
	files FileRepository,
	entries EntryRepository,
	verifier func(content []byte) (*nacha.Summary, error),
	clock Clock,
) *ReconciliationUseCase {
	if verifier == nil {
		verifier = nacha.Verify
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReconciliationUseCase{
		files:    files,
		entries:  entries,
		verifier: verifier,
		clock:    clock,
	}
}

// ReconciliationResult is the outcome of checking one file.
type ReconciliationResult struct {
	FileID         string
	FileName       string
	RecordedDebit  int64
	LedgerDebit    int64
	RecordedCredit int64
	LedgerCredit   int64
	EntryCount     int
	Problems       []string
	IsReconciled   bool
	LastChecked    time.Time
}

// ReconcileFile compares a file with the entries that reference it and
// with its own parsed content.
func (uc *ReconciliationUseCase) ReconcileFile(ctx context.Context, fileID string) (*ReconciliationResult, error) {
	file, err := uc.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, storageErr(err)
	}

	entries, err := uc.entries.List(ctx, domain.EntryFilter{FileID: fileID, Limit: len(file.EntryIDs) + 1})
	if err != nil {
		return nil, storageErr(err)
	}

	result := &ReconciliationResult{
		FileID:         file.ID,
		FileName:       file.FileName,
		RecordedDebit:  file.TotalDebit,
		RecordedCredit: file.TotalCredit,
		EntryCount:     len(entries),
		LastChecked:    uc.clock.Now().UTC(),
	}

	// 1. Ledger side
	listed := make(map[string]bool, len(file.EntryIDs))
	for _, id := range file.EntryIDs {
		listed[id] = true
	}
	for _, e := range entries {
		if !listed[e.ID] {
			result.Problems = append(result.Problems, fmt.Sprintf("entry %s references the file but is not listed in it", e.ID))
		}
		delete(listed, e.ID)

		cents, err := domain.ToCents(e.Amount)
		if err != nil {
			return nil, err
		}
		if e.Type == domain.EntryTypeDebit {
			result.LedgerDebit += cents
		} else {
			result.LedgerCredit += cents
		}
	}
	for _, id := range file.EntryIDs {
		if !listed[id] {
			continue
		}
		result.Problems = append(result.Problems, fmt.Sprintf("entry %s is listed but does not reference the file", id))
	}
	if result.LedgerDebit != file.TotalDebit || result.LedgerCredit != file.TotalCredit {
		result.Problems = append(result.Problems, fmt.Sprintf(
			"ledger totals debit=%d credit=%d differ from file totals debit=%d credit=%d",
			result.LedgerDebit, result.LedgerCredit, file.TotalDebit, file.TotalCredit))
	}

	// 2. Content side
	summary, err := uc.verifier(file.Content)
	if err != nil {
		result.Problems = append(result.Problems, fmt.Sprintf("content does not parse: %v", err))
	} else {
		if int64(summary.TotalDebit) != file.TotalDebit || int64(summary.TotalCredit) != file.TotalCredit {
			result.Problems = append(result.Problems, "content totals differ from the file record")
		}
		if int64(summary.EntryHash) != file.EntryHash {
			result.Problems = append(result.Problems, "content entry hash differs from the file record")
		}
		if summary.EntryAddendaCount != len(file.EntryIDs) {
			result.Problems = append(result.Problems, "content entry count differs from the file record")
		}
	}

	result.IsReconciled = len(result.Problems) == 0
	return result, nil
}

// ReconciliationReport summarises every file.
type ReconciliationReport struct {
	TotalFiles      int
	ReconciledFiles int
	Discrepancies   []*ReconciliationResult
	CheckedAt       time.Time
}

// GenerateReconciliationReport reconciles all files page by page.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     uc.clock.Now().UTC(),
	}

	for offset := 0; ; offset += domain.MaxPageSize {
		files, err := uc.files.List(ctx, domain.MaxPageSize, offset)
		if err != nil {
			return nil, storageErr(err)
		}

		for _, f := range files {
			result, err := uc.ReconcileFile(ctx, f.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile file %s: %w", f.ID, err)
			}
			report.TotalFiles++
			if result.IsReconciled {
				report.ReconciledFiles++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(files) < domain.MaxPageSize {
			return report, nil
		}
	}
}
