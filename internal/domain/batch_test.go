package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func entry(id string, typ EntryType, routing, amount, date string) *TransactionEntry {
	return &TransactionEntry{
		ID:            id,
		Type:          typ,
		RoutingNumber: routing,
		Amount:        decimal.RequireFromString(amount),
		EffectiveDate: day(date),
		Status:        EntryStatusPending,
		AccountType:   AccountTypeChecking,
	}
}

func TestNewBatch(t *testing.T) {
	t.Parallel()

	entries := []*TransactionEntry{
		entry("e1", EntryTypeDebit, "021000021", "150.00", "2024-01-02"),
		entry("e2", EntryTypeCredit, "111000025", "150.00", "2024-01-02"),
		entry("e3", EntryTypeDebit, "011000015", "0.99", "2024-01-02"),
	}

	b, err := NewBatch(entries, day("2024-01-02"), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.TotalDebit != 15099 {
		t.Errorf("TotalDebit = %d, want 15099", b.TotalDebit)
	}
	if b.TotalCredit != 15000 {
		t.Errorf("TotalCredit = %d, want 15000", b.TotalCredit)
	}
	if b.DebitCount != 2 || b.CreditCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", b.DebitCount, b.CreditCount)
	}
	// 02100002 + 11100002 + 01100001
	if b.EntryHash != 14300005 {
		t.Errorf("EntryHash = %d, want 14300005", b.EntryHash)
	}
	if got := b.EntryIDs(); len(got) != 3 || got[0] != "e1" || got[2] != "e3" {
		t.Errorf("EntryIDs() = %v", got)
	}
}

func TestNewBatch_Rejects(t *testing.T) {
	t.Parallel()

	if _, err := NewBatch(nil, day("2024-01-02"), 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty batch, got %v", err)
	}

	mixed := []*TransactionEntry{
		entry("e1", EntryTypeDebit, "021000021", "1.00", "2024-01-02"),
		entry("e2", EntryTypeCredit, "111000025", "1.00", "2024-01-03"),
	}
	if _, err := NewBatch(mixed, day("2024-01-02"), 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for mixed dates, got %v", err)
	}

	bad := []*TransactionEntry{entry("e1", EntryTypeDebit, "0210", "1.00", "2024-01-02")}
	if _, err := NewBatch(bad, day("2024-01-02"), 1); !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding for short routing, got %v", err)
	}
}

func TestEntryHash_KeepsLowTenDigits(t *testing.T) {
	t.Parallel()

	routings := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		routings = append(routings, "999999999")
	}

	hash, err := EntryHash(routings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 200 * 99999999 = 19999999800
	if hash != 9999999800 {
		t.Fatalf("EntryHash = %d, want 9999999800", hash)
	}
}

func TestBatch_Subset(t *testing.T) {
	t.Parallel()

	b, err := NewBatch([]*TransactionEntry{
		entry("e1", EntryTypeDebit, "021000021", "10.00", "2024-01-02"),
		entry("e2", EntryTypeCredit, "111000025", "10.00", "2024-01-02"),
	}, day("2024-01-02"), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub, err := b.Subset([]string{"e2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.BatchNumber != 3 || len(sub.Entries) != 1 || sub.TotalDebit != 0 || sub.TotalCredit != 1000 {
		t.Fatalf("unexpected subset: %+v", sub)
	}
}
