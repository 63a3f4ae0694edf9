package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAccountNumberLength = 17 // DFI account number field width
	MaxHolderNameLength    = 255
	MaxDescriptionLength   = 255
	MaxAmountDecimals      = 2
	MaxTransferAmount      = "99999999.99" // largest amount an entry detail record can carry
	MaxPageSize            = 1000
	DefaultPageSize        = 50
)

// ValidateAmount checks sign, precision and the upper bound.
func ValidateAmount(amount, maxAmount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Round(MaxAmountDecimals)) {
		return ErrAmountPrecision
	}

	if maxAmount.IsZero() {
		maxAmount = decimal.RequireFromString(MaxTransferAmount)
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, maxAmount.StringFixed(MaxAmountDecimals))
	}

	return nil
}

// ToCents converts a validated amount to integer cents.
func ToCents(amount decimal.Decimal) (int64, error) {
	cents := amount.Shift(MaxAmountDecimals)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, ErrAmountPrecision
	}
	if !cents.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// ValidateAccountNumber accepts 1 to 17 letters, digits or hyphens.
func ValidateAccountNumber(account string) error {
	if account == "" {
		return fmt.Errorf("%w: account number cannot be empty", ErrInvalidAccountNumber)
	}
	if len(account) > MaxAccountNumberLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidAccountNumber, MaxAccountNumberLength)
	}

	for _, c := range account {
		isDigit := c >= '0' && c <= '9'
		isLetter := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
		if !isDigit && !isLetter && c != '-' {
			return fmt.Errorf("%w: contains forbidden characters", ErrInvalidAccountNumber)
		}
	}

	return nil
}

// ValidateHolderName validates the account holder name.
func ValidateHolderName(name string) error {
	name = NormalizeName(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidHolderName)
	}
	if len(name) > MaxHolderNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidHolderName, MaxHolderNameLength)
	}

	return nil
}

// ValidateDescription bounds the free-text transfer description.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}
	return nil
}

// NormalizeName trims and collapses internal whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
