package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

// EntryResponse represents a ledger entry in API responses. The account
// number is only ever shown masked.
type EntryResponse struct {
	ID            string    `json:"id"`
	TransferID    string    `json:"transfer_id"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Amount        string    `json:"amount"`
	EffectiveDate string    `json:"effective_date"`
	RoutingNumber string    `json:"routing_number"`
	AccountMask   string    `json:"account_mask"`
	AccountType   string    `json:"account_type"`
	HolderName    string    `json:"holder_name"`
	FileID        *string   `json:"file_id,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	Sequence      int64     `json:"sequence"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.TransactionEntry) *EntryResponse {
	return &EntryResponse{
		ID:            e.ID,
		TransferID:    e.ParentTransactionID,
		Type:          string(e.Type),
		Status:        string(e.Status),
		Amount:        e.Amount.StringFixed(2),
		EffectiveDate: domain.FormatDate(e.EffectiveDate),
		RoutingNumber: e.RoutingNumber,
		AccountMask:   e.AccountMask,
		AccountType:   string(e.AccountType),
		HolderName:    e.AccountHolderName,
		FileID:        e.FileID,
		FailureReason: e.FailureReason,
		Sequence:      e.Sequence,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.TransactionEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// TransferResponse represents a transaction group in API responses.
type TransferResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Amount        string         `json:"amount"`
	EffectiveDate string         `json:"effective_date"`
	Description   string         `json:"description,omitempty"`
	Debit         *EntryResponse `json:"debit"`
	Credit        *EntryResponse `json:"credit"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TransferFromDomain converts a transaction group to response.
func TransferFromDomain(g *domain.TransactionGroup) *TransferResponse {
	return &TransferResponse{
		ID:            g.ID,
		Status:        string(g.Status()),
		Amount:        g.DebitEntry.Amount.StringFixed(2),
		EffectiveDate: domain.FormatDate(g.DebitEntry.EffectiveDate),
		Description:   g.Description,
		Debit:         EntryFromDomain(g.DebitEntry),
		Credit:        EntryFromDomain(g.CreditEntry),
		CreatedAt:     g.CreatedAt,
	}
}

// FileResponse describes a generated NACHA file without its content.
type FileResponse struct {
	ID                string    `json:"id"`
	FileName          string    `json:"file_name"`
	Status            string    `json:"status"`
	EffectiveDate     string    `json:"effective_date"`
	BatchNumber       int64     `json:"batch_number"`
	EntryIDs          []string  `json:"entry_ids"`
	EntryHash         int64     `json:"entry_hash"`
	TotalDebit        string    `json:"total_debit"`
	TotalCredit       string    `json:"total_credit"`
	RecordCount       int       `json:"record_count"`
	BlockCount        int       `json:"block_count"`
	EntryAddendaCount int       `json:"entry_addenda_count"`
	FailureReason     string    `json:"failure_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FileFromDomain converts a NACHA file to response.
func FileFromDomain(f *domain.NACHAFile) *FileResponse {
	return &FileResponse{
		ID:                f.ID,
		FileName:          f.FileName,
		Status:            string(f.Status),
		EffectiveDate:     domain.FormatDate(f.EffectiveDate),
		BatchNumber:       f.BatchNumber,
		EntryIDs:          f.EntryIDs,
		EntryHash:         f.EntryHash,
		TotalDebit:        centsToDollars(f.TotalDebit),
		TotalCredit:       centsToDollars(f.TotalCredit),
		RecordCount:       f.RecordCount,
		BlockCount:        f.BlockCount,
		EntryAddendaCount: f.EntryAddendaCount,
		FailureReason:     f.FailureReason,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

// FilesFromDomain converts NACHA files to responses.
func FilesFromDomain(files []*domain.NACHAFile) []*FileResponse {
	result := make([]*FileResponse, len(files))
	for i, f := range files {
		result[i] = FileFromDomain(f)
	}
	return result
}

// AssemblyResponse reports the outcome of a batch run.
type AssemblyResponse struct {
	TargetDate string          `json:"target_date"`
	Files      []*FileResponse `json:"files"`
	EntryCount int             `json:"entry_count"`
	Warnings   []string        `json:"warnings,omitempty"`
	Attempts   int             `json:"attempts"`
	Conflicts  int             `json:"conflicts"`
}

// AssemblyFromDomain converts an assembly result to response.
func AssemblyFromDomain(r *domain.AssemblyResult) *AssemblyResponse {
	return &AssemblyResponse{
		TargetDate: domain.FormatDate(r.TargetDate),
		Files:      FilesFromDomain(r.Files),
		EntryCount: r.EntryCount(),
		Warnings:   r.Warnings,
		Attempts:   r.Attempts,
		Conflicts:  r.Conflicts,
	}
}

// BusinessDayResponse describes one calendar day.
type BusinessDayResponse struct {
	Date            string `json:"date"`
	IsBusinessDay   bool   `json:"is_business_day"`
	IsWeekend       bool   `json:"is_weekend"`
	IsHoliday       bool   `json:"is_holiday"`
	HolidayName     string `json:"holiday_name,omitempty"`
	NextBusinessDay string `json:"next_business_day"`
}

// BusinessDayFromDomain converts calendar info to response.
func BusinessDayFromDomain(info domain.BusinessDayInfo) *BusinessDayResponse {
	return &BusinessDayResponse{
		Date:            domain.FormatDate(info.Date),
		IsBusinessDay:   info.IsBusinessDay,
		IsWeekend:       info.IsWeekend,
		IsHoliday:       info.IsHoliday,
		HolidayName:     info.HolidayName,
		NextBusinessDay: domain.FormatDate(info.NextBusinessDay),
	}
}

// AddBusinessDaysResponse is the result of adding n business days to a date.
type AddBusinessDaysResponse struct {
	Date   string `json:"date"`
	Days   int    `json:"days"`
	Result string `json:"result"`
}

// BusinessDaysBetweenResponse counts business days in [start, end).
type BusinessDaysBetweenResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Count int    `json:"count"`
}

// ReconciliationResponse reports how a file compares with the ledger.
type ReconciliationResponse struct {
	FileID         string    `json:"file_id"`
	FileName       string    `json:"file_name"`
	RecordedDebit  string    `json:"recorded_debit"`
	LedgerDebit    string    `json:"ledger_debit"`
	RecordedCredit string    `json:"recorded_credit"`
	LedgerCredit   string    `json:"ledger_credit"`
	EntryCount     int       `json:"entry_count"`
	Problems       []string  `json:"problems,omitempty"`
	IsReconciled   bool      `json:"is_reconciled"`
	LastChecked    time.Time `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		FileID:         r.FileID,
		FileName:       r.FileName,
		RecordedDebit:  centsToDollars(r.RecordedDebit),
		LedgerDebit:    centsToDollars(r.LedgerDebit),
		RecordedCredit: centsToDollars(r.RecordedCredit),
		LedgerCredit:   centsToDollars(r.LedgerCredit),
		EntryCount:     r.EntryCount,
		Problems:       r.Problems,
		IsReconciled:   r.IsReconciled,
		LastChecked:    r.LastChecked,
	}
}

// ReconciliationReportResponse summarises a check of every file.
type ReconciliationReportResponse struct {
	TotalFiles      int                       `json:"total_files"`
	ReconciledFiles int                       `json:"reconciled_files"`
	Discrepancies   []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt       time.Time                 `json:"checked_at"`
}

// ReportFromResult converts a reconciliation report to response.
func ReportFromResult(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	out := &ReconciliationReportResponse{
		TotalFiles:      r.TotalFiles,
		ReconciledFiles: r.ReconciledFiles,
		Discrepancies:   make([]*ReconciliationResponse, len(r.Discrepancies)),
		CheckedAt:       r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		out.Discrepancies[i] = ReconciliationFromResult(d)
	}
	return out
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func centsToDollars(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
