package domain

import "time"

// Event types
const (
	EventTypeTransferSubmitted = "transfer.submitted"
	EventTypeTransferCancelled = "transfer.cancelled"
	EventTypeEntriesFailed     = "entries.failed"
	EventTypeFileGenerated     = "nacha_file.generated"
	EventTypeFileTransmitted   = "nacha_file.transmitted"
	EventTypeFileFailed        = "nacha_file.failed"
)

// Aggregate types
const (
	AggregateTypeTransfer  = "transaction_group"
	AggregateTypeNACHAFile = "nacha_file"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Payload       map[string]any
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Published     bool
}

// TransferSubmittedPayload builds the payload of a transfer.submitted event.
// Payloads never carry account numbers or holder names.
func TransferSubmittedPayload(g *TransactionGroup) map[string]any {
	return map[string]any{
		"group_id":        g.ID,
		"debit_entry_id":  g.DebitEntry.ID,
		"credit_entry_id": g.CreditEntry.ID,
		"amount":          g.DebitEntry.Amount.StringFixed(MaxAmountDecimals),
		"effective_date":  FormatDate(g.DebitEntry.EffectiveDate),
	}
}

// FilePayload builds the payload shared by nacha_file.* events.
func FilePayload(f *NACHAFile) map[string]any {
	return map[string]any{
		"file_id":        f.ID,
		"file_name":      f.FileName,
		"effective_date": FormatDate(f.EffectiveDate),
		"batch_number":   f.BatchNumber,
		"entry_count":    len(f.EntryIDs),
		"total_debit":    f.TotalDebit,
		"total_credit":   f.TotalCredit,
		"status":         string(f.Status),
	}
}
