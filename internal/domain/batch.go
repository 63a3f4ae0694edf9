package domain

import (
	"fmt"
	"strconv"
	"time"
)

const entryHashModulus = 10_000_000_000

// Batch is the set of entries rendered into one NACHA batch. Entries carry
// plaintext account numbers and keep the order they were selected in.
type Batch struct {
	EffectiveDate time.Time
	Entries       []*TransactionEntry
	BatchNumber   int64
	TotalDebit    int64
	TotalCredit   int64
	DebitCount    int
	CreditCount   int
	EntryHash     int64
}

// NewBatch computes totals and the entry hash for entries due on
// effectiveDate.
func NewBatch(entries []*TransactionEntry, effectiveDate time.Time, batchNumber int64) (*Batch, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: batch has no entries", ErrValidation)
	}
	if batchNumber <= 0 {
		return nil, fmt.Errorf("%w: batch number must be positive", ErrValidation)
	}

	b := &Batch{
		EffectiveDate: DateOf(effectiveDate),
		Entries:       entries,
		BatchNumber:   batchNumber,
	}

	routings := make([]string, 0, len(entries))
	for _, e := range entries {
		if !SameDay(e.EffectiveDate, b.EffectiveDate) {
			return nil, fmt.Errorf("%w: entry %s is due %s, batch is for %s",
				ErrValidation, e.ID, FormatDate(e.EffectiveDate), FormatDate(b.EffectiveDate))
		}

		cents, err := ToCents(e.Amount)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}

		switch e.Type {
		case EntryTypeDebit:
			b.TotalDebit += cents
			b.DebitCount++
		case EntryTypeCredit:
			b.TotalCredit += cents
			b.CreditCount++
		default:
			return nil, fmt.Errorf("%w: entry %s has unknown type %q", ErrValidation, e.ID, e.Type)
		}

		routings = append(routings, e.RoutingNumber)
	}

	hash, err := EntryHash(routings)
	if err != nil {
		return nil, err
	}
	b.EntryHash = hash

	return b, nil
}

// EntryIDs returns the ids of the batch entries in order.
func (b *Batch) EntryIDs() []string {
	ids := make([]string, len(b.Entries))
	for i, e := range b.Entries {
		ids[i] = e.ID
	}
	return ids
}

// Subset returns a new batch containing only the entries whose ids are in
// keep, preserving order and batch number.
func (b *Batch) Subset(keep []string) (*Batch, error) {
	wanted := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		wanted[id] = struct{}{}
	}

	entries := make([]*TransactionEntry, 0, len(keep))
	for _, e := range b.Entries {
		if _, ok := wanted[e.ID]; ok {
			entries = append(entries, e)
		}
	}

	return NewBatch(entries, b.EffectiveDate, b.BatchNumber)
}

// EntryHash sums the first eight digits of each routing number and keeps
// the low ten digits of the total.
func EntryHash(routingNumbers []string) (int64, error) {
	var sum int64
	for _, rn := range routingNumbers {
		prefix := RoutingPrefix(rn)
		if len(prefix) != 8 {
			return 0, fmt.Errorf("%w: routing number %q too short", ErrEncoding, rn)
		}
		n, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: routing number %q is not numeric", ErrEncoding, rn)
		}
		sum += n
	}
	return sum % entryHashModulus, nil
}

// AssemblyResult reports what one Assemble call produced.
type AssemblyResult struct {
	TargetDate time.Time
	Files      []*NACHAFile
	Warnings   []string
	Attempts   int
	Conflicts  int
}

// EntryCount returns the number of entries claimed across all files.
func (r *AssemblyResult) EntryCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.EntryIDs)
	}
	return n
}
