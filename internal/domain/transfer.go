package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferParty identifies the bank account on one side of a transfer.
type TransferParty struct {
	RoutingNumber string
	AccountNumber string
	AccountType   AccountType
	HolderName    string
}

// TransferRequest asks the ledger to move Amount from Debit to Credit on
// EffectiveDate. CreditAmount is optional; when set it must equal Amount.
type TransferRequest struct {
	EffectiveDate time.Time
	Amount        decimal.Decimal
	CreditAmount  *decimal.Decimal
	Debit         TransferParty
	Credit        TransferParty
	Description   string
}

// Validate checks everything that does not need the calendar or storage.
func (r *TransferRequest) Validate(maxAmount decimal.Decimal) error {
	if err := ValidateParty(r.Debit); err != nil {
		return err
	}
	if err := ValidateParty(r.Credit); err != nil {
		return err
	}

	if err := ValidateAmount(r.Amount, maxAmount); err != nil {
		return err
	}
	if r.CreditAmount != nil && !r.CreditAmount.Equal(r.Amount) {
		return ErrAmountMismatch
	}

	if r.EffectiveDate.IsZero() {
		return ErrMissingEffectiveDate
	}

	return ValidateDescription(r.Description)
}

// ValidateParty validates one side of a transfer.
func ValidateParty(p TransferParty) error {
	if err := ValidateRoutingNumber(p.RoutingNumber); err != nil {
		return err
	}
	if err := ValidateAccountNumber(p.AccountNumber); err != nil {
		return err
	}
	if !p.AccountType.Valid() {
		return ErrInvalidAccountType
	}
	return ValidateHolderName(p.HolderName)
}

// TransactionGroup links the debit and credit entries of one transfer.
type TransactionGroup struct {
	CreatedAt   time.Time
	DebitEntry  *TransactionEntry
	CreditEntry *TransactionEntry
	ID          string
	Description string
}

// Validate checks the pairing invariants of the group.
func (g *TransactionGroup) Validate() error {
	if g.DebitEntry == nil || g.CreditEntry == nil {
		return ErrValidation
	}
	if g.DebitEntry.Type != EntryTypeDebit || g.CreditEntry.Type != EntryTypeCredit {
		return ErrValidation
	}
	if !g.DebitEntry.Amount.Equal(g.CreditEntry.Amount) {
		return ErrAmountMismatch
	}
	if !SameDay(g.DebitEntry.EffectiveDate, g.CreditEntry.EffectiveDate) {
		return ErrEffectiveDateMismatch
	}
	if g.DebitEntry.ParentTransactionID != g.ID || g.CreditEntry.ParentTransactionID != g.ID {
		return ErrValidation
	}
	return nil
}

// Status summarises the group: the shared status when both legs agree,
// otherwise the status of the leg that moved furthest.
func (g *TransactionGroup) Status() EntryStatus {
	dr, cr := g.DebitEntry.Status, g.CreditEntry.Status
	if dr == cr {
		return dr
	}
	if dr == EntryStatusFailed || cr == EntryStatusFailed {
		return EntryStatusFailed
	}
	if dr == EntryStatusPending {
		return cr
	}
	return dr
}

// Entries returns the debit leg followed by the credit leg.
func (g *TransactionGroup) Entries() []*TransactionEntry {
	return []*TransactionEntry{g.DebitEntry, g.CreditEntry}
}
