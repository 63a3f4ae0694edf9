package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the direction of a ledger entry.
type EntryType string

const (
	EntryTypeDebit  EntryType = "DR"
	EntryTypeCredit EntryType = "CR"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	return t == EntryTypeDebit || t == EntryTypeCredit
}

// EntryStatus is the lifecycle state of a ledger entry.
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "PENDING"
	EntryStatusProcessed EntryStatus = "PROCESSED"
	EntryStatusFailed    EntryStatus = "FAILED"
	EntryStatusCancelled EntryStatus = "CANCELLED"
)

var entryTransitions = map[EntryStatus][]EntryStatus{
	EntryStatusPending:   {EntryStatusProcessed, EntryStatusCancelled, EntryStatusFailed},
	EntryStatusProcessed: {EntryStatusFailed},
}

// Valid reports whether s is a known status.
func (s EntryStatus) Valid() bool {
	switch s {
	case EntryStatusPending, EntryStatusProcessed, EntryStatusFailed, EntryStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s EntryStatus) IsTerminal() bool {
	return len(entryTransitions[s]) == 0
}

// CanTransitionTo reports whether s -> next is allowed.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	for _, allowed := range entryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseEntryStatus converts a user supplied status.
func ParseEntryStatus(s string) (EntryStatus, error) {
	status := EntryStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown entry status %q", ErrValidation, s)
	}
	return status, nil
}

// AccountType selects the ACH transaction code family for an entry.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == AccountTypeChecking || t == AccountTypeSavings
}

// TransactionEntry is one side of a transfer. AccountNumber holds ciphertext
// everywhere except inside a Batch handed to the encoder.
type TransactionEntry struct {
	CreatedAt           time.Time
	UpdatedAt           time.Time
	EffectiveDate       time.Time
	Amount              decimal.Decimal
	ID                  string
	ParentTransactionID string
	RoutingNumber       string
	AccountNumber       string
	AccountMask         string
	AccountHolderName   string
	AccountType         AccountType
	Type                EntryType
	Status              EntryStatus
	FileID              *string
	FailureReason       string
	Sequence            int64
}

// Clone returns a copy that shares no pointers with e.
func (e *TransactionEntry) Clone() *TransactionEntry {
	c := *e
	if e.FileID != nil {
		id := *e.FileID
		c.FileID = &id
	}
	return &c
}

// StatusUpdate carries the fields written together with a status change.
type StatusUpdate struct {
	UpdatedAt     time.Time
	FileID        *string
	FailureReason string
}

// EntryFilter selects entries for listing.
type EntryFilter struct {
	Status          *EntryStatus
	EffectiveBefore *time.Time
	GroupID         string
	FileID          string
	Limit           int
	Offset          int
}

// MaskAccountNumber keeps the last four characters of an account number.
func MaskAccountNumber(account string) string {
	if len(account) <= 4 {
		return "****"
	}
	return "****" + account[len(account)-4:]
}
