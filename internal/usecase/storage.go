package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/achledger/internal/domain"
)

// storageErr maps a deadline hit while talking to storage onto
// ErrStorageTimeout and leaves every other error untouched.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrStorageTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrStorageTimeout, err)
	}
	return err
}

// errorKind labels err for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, domain.ErrStorageTimeout):
		return "timeout"
	default:
		return "internal"
	}
}
