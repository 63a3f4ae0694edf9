package nacha

import (
	"fmt"
	"strings"
	"time"

	"github.com/iho/achledger/internal/domain"
)

// Record type codes
const (
	recordFileHeader   = "1"
	recordBatchHeader  = "5"
	recordEntryDetail  = "6"
	recordBatchControl = "8"
	recordFileControl  = "9"
)

// Service class codes
const (
	ServiceClassMixed   = 200
	ServiceClassCredits = 220
	ServiceClassDebits  = 225
)

// Transaction codes for live (non-prenote) entries.
const (
	CodeCheckingCredit = 22
	CodeCheckingDebit  = 27
	CodeSavingsCredit  = 32
	CodeSavingsDebit   = 37
)

const (
	blockingFactor  = 10
	maxBatchNumber  = 9_999_999
	maxEntryAmount  = 9_999_999_999
	individualIDLen = 15
)

// Result is an encoded file plus the control figures written into it.
type Result struct {
	Content           []byte
	FileName          string
	Warnings          []string
	TraceNumbers      []string
	EntryHash         int64
	TotalDebit        int64
	TotalCredit       int64
	RecordCount       int
	BlockCount        int
	BatchCount        int
	EntryAddendaCount int
}

// Encoder renders batches. It holds no state; a zero value is ready to use.
type Encoder struct{}

// NewEncoder creates an Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode renders batch as a single-batch NACHA file. The output depends only
// on its arguments.
func (e *Encoder) Encode(batch *domain.Batch, s Settings) (*Result, error) {
	if batch == nil || len(batch.Entries) == 0 {
		return nil, fmt.Errorf("%w: empty batch", domain.ErrEncoding)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		FileName:   FileName(batch.EffectiveDate, batch.BatchNumber),
		BatchCount: 1,
	}
	lines := make([]string, 0, len(batch.Entries)+4+blockingFactor)
	batchNumber := batchNumberField(batch.BatchNumber)

	header, err := fileHeader(s, batch.BatchNumber, &res.Warnings)
	if err != nil {
		return nil, err
	}
	lines = append(lines, header)

	serviceClass := serviceClassCode(batch)
	bh, err := batchHeader(s, serviceClass, batch.EffectiveDate, batchNumber, &res.Warnings)
	if err != nil {
		return nil, err
	}
	lines = append(lines, bh)

	routings := make([]string, 0, len(batch.Entries))
	for i, entry := range batch.Entries {
		trace := s.ODFIIdentification + fmt.Sprintf("%07d", i+1)
		line, cents, err := entryDetail(entry, trace, &res.Warnings)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.ID, err)
		}
		lines = append(lines, line)
		res.TraceNumbers = append(res.TraceNumbers, trace)
		routings = append(routings, entry.RoutingNumber)

		if entry.Type == domain.EntryTypeDebit {
			res.TotalDebit += cents
		} else {
			res.TotalCredit += cents
		}
	}
	res.EntryAddendaCount = len(batch.Entries)

	res.EntryHash, err = domain.EntryHash(routings)
	if err != nil {
		return nil, err
	}
	if res.EntryHash != batch.EntryHash || res.TotalDebit != batch.TotalDebit || res.TotalCredit != batch.TotalCredit {
		return nil, fmt.Errorf("%w: batch control totals do not match entries", domain.ErrEncoding)
	}

	bc, err := batchControl(s, serviceClass, res, batchNumber)
	if err != nil {
		return nil, err
	}
	lines = append(lines, bc)

	// File control is the last non-filler record.
	res.RecordCount = padToBlock(len(lines) + 1)
	res.BlockCount = res.RecordCount / blockingFactor

	fc, err := fileControl(res)
	if err != nil {
		return nil, err
	}
	lines = append(lines, fc)

	filler := strings.Repeat("9", RecordLength)
	for len(lines) < res.RecordCount {
		lines = append(lines, filler)
	}

	var b strings.Builder
	b.Grow(len(lines) * (RecordLength + 1))
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	res.Content = []byte(b.String())

	return res, nil
}

// FileName returns the canonical name of the file for a batch.
func FileName(effectiveDate time.Time, batchNumber int64) string {
	return fmt.Sprintf("ACH_%s_%07d.ach", domain.DateOf(effectiveDate).Format("20060102"), batchNumberField(batchNumber))
}

func fileHeader(s Settings, batchNumber int64, warnings *[]string) (string, error) {
	origin := s.ImmediateOrigin
	if len(origin) == 9 {
		origin = " " + origin
	}

	return newRecord(warnings).
		raw(recordFileHeader).
		raw("01").
		raw(" "+s.ImmediateDestination).
		raw(origin).
		raw(s.CreatedAt.Format("060102")).
		raw(s.CreatedAt.Format("1504")).
		raw(s.fileIDModifier(batchNumber)).
		raw("094").
		numeric("blocking factor", blockingFactor, 2).
		raw("1").
		alpha("immediate destination name", s.ImmediateDestinationName, 23).
		alpha("immediate origin name", s.ImmediateOriginName, 23).
		alpha("reference code", s.ReferenceCode, 8).
		String()
}

func batchHeader(s Settings, serviceClass int, effective time.Time, batchNumber int64, warnings *[]string) (string, error) {
	return newRecord(warnings).
		raw(recordBatchHeader).
		numeric("service class code", int64(serviceClass), 3).
		alpha("company name", s.CompanyName, 16).
		alpha("company discretionary data", s.CompanyDiscretionaryData, 20).
		alpha("company identification", s.CompanyIdentification, 10).
		raw(s.standardEntryClass()).
		alpha("company entry description", s.CompanyEntryDescription, 10).
		raw(s.CreatedAt.Format("060102")).
		raw(domain.DateOf(effective).Format("060102")).
		blank(3).
		raw("1").
		digits("ODFI identification", s.ODFIIdentification, 8).
		numeric("batch number", batchNumber, 7).
		String()
}

func entryDetail(e *domain.TransactionEntry, trace string, warnings *[]string) (string, int64, error) {
	if err := domain.ValidateRoutingNumber(e.RoutingNumber); err != nil {
		return "", 0, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	if !e.Amount.IsPositive() {
		return "", 0, fmt.Errorf("%w: amount must be positive", domain.ErrEncoding)
	}
	cents, err := domain.ToCents(e.Amount)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	if cents > maxEntryAmount {
		return "", 0, fmt.Errorf("%w: amount %s overflows the entry amount field", domain.ErrEncoding, e.Amount)
	}

	code, err := transactionCode(e)
	if err != nil {
		return "", 0, err
	}

	line, err := newRecord(warnings).
		raw(recordEntryDetail).
		numeric("transaction code", int64(code), 2).
		raw(e.RoutingNumber[:8]).
		raw(e.RoutingNumber[8:9]).
		alpha("DFI account number", e.AccountNumber, 17).
		numeric("amount", cents, 10).
		raw(individualID(e.ParentTransactionID)).
		alpha("individual name", e.AccountHolderName, 22).
		blank(2).
		raw("0").
		digits("trace number", trace, 15).
		String()

	return line, cents, err
}

func batchControl(s Settings, serviceClass int, res *Result, batchNumber int64) (string, error) {
	return newRecord(&res.Warnings).
		raw(recordBatchControl).
		numeric("service class code", int64(serviceClass), 3).
		numeric("entry/addenda count", int64(res.EntryAddendaCount), 6).
		numeric("entry hash", res.EntryHash, 10).
		numeric("total debit", res.TotalDebit, 12).
		numeric("total credit", res.TotalCredit, 12).
		alpha("company identification", s.CompanyIdentification, 10).
		blank(19).
		blank(6).
		digits("ODFI identification", s.ODFIIdentification, 8).
		numeric("batch number", batchNumber, 7).
		String()
}

func fileControl(res *Result) (string, error) {
	return newRecord(&res.Warnings).
		raw(recordFileControl).
		numeric("batch count", int64(res.BatchCount), 6).
		numeric("block count", int64(res.BlockCount), 6).
		numeric("entry/addenda count", int64(res.EntryAddendaCount), 8).
		numeric("entry hash", res.EntryHash, 10).
		numeric("total debit", res.TotalDebit, 12).
		numeric("total credit", res.TotalCredit, 12).
		blank(39).
		String()
}

func serviceClassCode(b *domain.Batch) int {
	switch {
	case b.DebitCount > 0 && b.CreditCount > 0:
		return ServiceClassMixed
	case b.CreditCount > 0:
		return ServiceClassCredits
	default:
		return ServiceClassDebits
	}
}

func transactionCode(e *domain.TransactionEntry) (int, error) {
	savings := e.AccountType == domain.AccountTypeSavings

	switch e.Type {
	case domain.EntryTypeDebit:
		if savings {
			return CodeSavingsDebit, nil
		}
		return CodeCheckingDebit, nil
	case domain.EntryTypeCredit:
		if savings {
			return CodeSavingsCredit, nil
		}
		return CodeCheckingCredit, nil
	}

	return 0, fmt.Errorf("%w: unknown entry type %q", domain.ErrEncoding, e.Type)
}

// individualID uses the tail of the transfer id, which is the random part
// of a ULID, so the field never needs truncation.
func individualID(groupID string) string {
	id := sanitize(groupID)
	if len(id) > individualIDLen {
		id = id[len(id)-individualIDLen:]
	}
	return id + strings.Repeat(" ", individualIDLen-len(id))
}

func batchNumberField(n int64) int64 {
	if n <= 0 {
		return 1
	}
	return (n-1)%maxBatchNumber + 1
}

func padToBlock(n int) int {
	if rem := n % blockingFactor; rem != 0 {
		return n + blockingFactor - rem
	}
	return n
}
