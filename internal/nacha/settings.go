// Package nacha renders ledger batches as NACHA formatted ACH files.
package nacha

import (
	"fmt"
	"time"

	"github.com/iho/achledger/internal/domain"
)

// Standard entry class codes supported by the encoder.
const (
	SECPPD = "PPD"
	SECCCD = "CCD"
	SECWEB = "WEB"
)

// Settings holds the originator configuration stamped into every file.
type Settings struct {
	CreatedAt                time.Time
	ImmediateDestination     string
	ImmediateDestinationName string
	ImmediateOrigin          string
	ImmediateOriginName      string
	CompanyName              string
	CompanyIdentification    string
	CompanyDiscretionaryData string
	CompanyEntryDescription  string
	ODFIIdentification       string
	StandardEntryClass       string
	FileIDModifier           string
	ReferenceCode            string
}

// Validate checks the settings that must be exact for a file to be accepted.
func (s Settings) Validate() error {
	if s.CreatedAt.IsZero() {
		return fmt.Errorf("%w: creation time not set", domain.ErrEncoding)
	}
	if err := domain.ValidateRoutingNumber(s.ImmediateDestination); err != nil {
		return fmt.Errorf("%w: immediate destination: %v", domain.ErrEncoding, err)
	}
	if !isDigits(s.ImmediateOrigin) || (len(s.ImmediateOrigin) != 9 && len(s.ImmediateOrigin) != 10) {
		return fmt.Errorf("%w: immediate origin must be 9 or 10 digits", domain.ErrEncoding)
	}
	if len(s.ODFIIdentification) != 8 || !isDigits(s.ODFIIdentification) {
		return fmt.Errorf("%w: ODFI identification must be 8 digits", domain.ErrEncoding)
	}
	if s.CompanyName == "" || s.CompanyIdentification == "" {
		return fmt.Errorf("%w: company name and identification are required", domain.ErrEncoding)
	}
	if s.CompanyEntryDescription == "" {
		return fmt.Errorf("%w: company entry description is required", domain.ErrEncoding)
	}

	switch s.standardEntryClass() {
	case SECPPD, SECCCD, SECWEB:
	default:
		return fmt.Errorf("%w: unsupported standard entry class %q", domain.ErrEncoding, s.StandardEntryClass)
	}

	if m := s.FileIDModifier; m != "" && (len(m) != 1 || !isFileIDModifier(m[0])) {
		return fmt.Errorf("%w: file id modifier must be one of A-Z or 0-9", domain.ErrEncoding)
	}

	return nil
}

func (s Settings) standardEntryClass() string {
	if s.StandardEntryClass == "" {
		return SECPPD
	}
	return s.StandardEntryClass
}

const fileIDModifiers = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// fileIDModifier returns the configured modifier, or one derived from the
// batch number so files created on the same day differ.
func (s Settings) fileIDModifier(batchNumber int64) string {
	if s.FileIDModifier != "" {
		return s.FileIDModifier
	}
	i := (batchNumber - 1) % int64(len(fileIDModifiers))
	if i < 0 {
		i = 0
	}
	return fileIDModifiers[i : i+1]
}

func isFileIDModifier(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
