package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match on these with errors.Is; the specific errors
// below wrap exactly one of them.
var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrInvalidState           = errors.New("invalid state transition")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrStorageTimeout         = errors.New("storage timeout")
	ErrEncoding               = errors.New("nacha encoding failed")
	ErrBatchAssemblyFailed    = errors.New("batch assembly failed")
)

var (
	// Transfer errors
	ErrInvalidRoutingNumber        = fmt.Errorf("%w: invalid routing number", ErrValidation)
	ErrInvalidAccountNumber        = fmt.Errorf("%w: invalid account number", ErrValidation)
	ErrInvalidAccountType          = fmt.Errorf("%w: invalid account type", ErrValidation)
	ErrInvalidHolderName           = fmt.Errorf("%w: invalid account holder name", ErrValidation)
	ErrInvalidAmount               = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrAmountPrecision             = fmt.Errorf("%w: amount must have at most 2 decimal places", ErrValidation)
	ErrAmountTooLarge              = fmt.Errorf("%w: amount exceeds maximum allowed", ErrValidation)
	ErrAmountMismatch              = fmt.Errorf("%w: debit and credit amounts differ", ErrValidation)
	ErrEffectiveDateMismatch       = fmt.Errorf("%w: debit and credit effective dates differ", ErrValidation)
	ErrMissingEffectiveDate        = fmt.Errorf("%w: effective date is required", ErrValidation)
	ErrEffectiveDateNotBusinessDay = fmt.Errorf("%w: effective date is not a business day", ErrValidation)
	ErrDescriptionTooLong          = fmt.Errorf("%w: description too long", ErrValidation)

	// Calendar errors
	ErrInvalidBusinessDayCount = fmt.Errorf("%w: business day count must not be negative", ErrValidation)
	ErrInvalidDate             = fmt.Errorf("%w: invalid date", ErrValidation)

	// Lookup errors
	ErrEntryNotFound = fmt.Errorf("entry %w", ErrNotFound)
	ErrGroupNotFound = fmt.Errorf("transaction group %w", ErrNotFound)
	ErrFileNotFound  = fmt.Errorf("nacha file %w", ErrNotFound)

	// Lifecycle errors
	ErrEntryNotPending  = fmt.Errorf("%w: entry is not pending", ErrInvalidState)
	ErrEntryTerminal    = fmt.Errorf("%w: entry already in a terminal state", ErrInvalidState)
	ErrFileNotGenerated = fmt.Errorf("%w: file is not in generated state", ErrInvalidState)
)
