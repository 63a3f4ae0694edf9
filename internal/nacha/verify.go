package nacha

import (
	"bytes"
	"fmt"

	"github.com/moov-io/ach"

	"github.com/iho/achledger/internal/domain"
)

// Summary is what an independent parser read back from a file.
type Summary struct {
	BatchCount        int
	EntryAddendaCount int
	EntryHash         int
	TotalDebit        int
	TotalCredit       int
}

// Verify parses content with moov-io/ach and runs its full validation.
func Verify(content []byte) (*Summary, error) {
	file, err := ach.NewReader(bytes.NewReader(content)).Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}

	return &Summary{
		BatchCount:        file.Control.BatchCount,
		EntryAddendaCount: file.Control.EntryAddendaCount,
		EntryHash:         file.Control.EntryHash,
		TotalDebit:        file.Control.TotalDebitEntryDollarAmountInFile,
		TotalCredit:       file.Control.TotalCreditEntryDollarAmountInFile,
	}, nil
}

// VerifyContent is Verify for callers that only need the verdict.
func VerifyContent(content []byte) error {
	_, err := Verify(content)
	return err
}
