package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

var march4 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// withURLParams attaches chi route parameters to req.
func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleGroup() *domain.TransactionGroup {
	leg := func(id string, typ domain.EntryType) *domain.TransactionEntry {
		return &domain.TransactionEntry{
			ID:                  id,
			ParentTransactionID: "g-1",
			Type:                typ,
			Status:              domain.EntryStatusPending,
			Amount:              decimal.RequireFromString("25.00"),
			EffectiveDate:       march4,
			RoutingNumber:       "021000021",
			AccountMask:         "****4321",
			AccountType:         domain.AccountTypeChecking,
			AccountHolderName:   "ALICE",
		}
	}
	return &domain.TransactionGroup{
		ID:          "g-1",
		DebitEntry:  leg("e-1", domain.EntryTypeDebit),
		CreditEntry: leg("e-2", domain.EntryTypeCredit),
	}
}

func sampleFile() *domain.NACHAFile {
	return &domain.NACHAFile{
		ID:            "f-1",
		FileName:      "ACH_20240304_0000001.txt",
		Status:        domain.FileStatusGenerated,
		EffectiveDate: march4,
		BatchNumber:   1,
		EntryIDs:      []string{"e-1", "e-2"},
		TotalDebit:    2500,
		TotalCredit:   2500,
		Content:       []byte("101 021000021 0110000152403040000A094101\n"),
	}
}

type transferServiceStub struct {
	submitFn func(ctx context.Context, req domain.TransferRequest) (*domain.TransactionGroup, error)
	getFn    func(ctx context.Context, id string) (*domain.TransactionGroup, error)
	cancelFn func(ctx context.Context, id string) error
}

func (s *transferServiceStub) Submit(ctx context.Context, req domain.TransferRequest) (*domain.TransactionGroup, error) {
	return s.submitFn(ctx, req)
}

func (s *transferServiceStub) GetGroup(ctx context.Context, id string) (*domain.TransactionGroup, error) {
	return s.getFn(ctx, id)
}

func (s *transferServiceStub) Cancel(ctx context.Context, id string) error {
	return s.cancelFn(ctx, id)
}

type entryServiceStub struct {
	getFn  func(ctx context.Context, id string) (*domain.TransactionEntry, error)
	listFn func(ctx context.Context, filter domain.EntryFilter) ([]*domain.TransactionEntry, error)
}

func (s *entryServiceStub) GetEntry(ctx context.Context, id string) (*domain.TransactionEntry, error) {
	return s.getFn(ctx, id)
}

func (s *entryServiceStub) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.TransactionEntry, error) {
	return s.listFn(ctx, filter)
}

type fileServiceStub struct {
	file        *domain.NACHAFile
	err         error
	failReason  string
	transmitted bool
}

func (s *fileServiceStub) GetFile(ctx context.Context, id string) (*domain.NACHAFile, error) {
	return s.file, s.err
}

func (s *fileServiceStub) ListFiles(ctx context.Context, limit, offset int) ([]*domain.NACHAFile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.NACHAFile{s.file}, nil
}

func (s *fileServiceStub) MarkFileTransmitted(ctx context.Context, fileID string) (*domain.NACHAFile, error) {
	s.transmitted = true
	return s.file, s.err
}

func (s *fileServiceStub) MarkFileFailed(ctx context.Context, fileID, reason string) (*domain.NACHAFile, error) {
	s.failReason = reason
	return s.file, s.err
}

type reconcilerStub struct{}

func (reconcilerStub) ReconcileFile(ctx context.Context, fileID string) (*usecase.ReconciliationResult, error) {
	return &usecase.ReconciliationResult{FileID: fileID, LedgerDebit: 2500, RecordedDebit: 2500, IsReconciled: true}, nil
}

func (reconcilerStub) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return &usecase.ReconciliationReport{TotalFiles: 1, ReconciledFiles: 1}, nil
}
