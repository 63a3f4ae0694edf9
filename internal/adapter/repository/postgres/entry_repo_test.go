package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/achledger/internal/domain"
)

var (
	testNow       = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	testEffective = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
)

var entryColumns = []string{
	"id", "parent_transaction_id", "type", "routing_number", "account_number", "account_mask",
	"account_holder_name", "account_type", "amount", "effective_date", "status", "file_id",
	"failure_reason", "sequence", "created_at", "updated_at",
}

func testStatusUpdate() domain.StatusUpdate {
	return domain.StatusUpdate{UpdatedAt: testNow}
}

func entryRow(rows *pgxmock.Rows, id, groupID string, typ domain.EntryType, status domain.EntryStatus, seq int64) *pgxmock.Rows {
	return rows.AddRow(
		id, groupID, string(typ), "021000021", "ciphertext", "****6789",
		"Jane Doe", "checking", decimalToNumeric(decimal.RequireFromString("150.25")),
		dateToPg(testEffective), string(status), pgtype.Text{},
		"", seq, timeToPgTimestamptz(testNow), timeToPgTimestamptz(testNow),
	)
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestEntryRepositoryCreateAssignsSequence(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectQuery("INSERT INTO transaction_entries").
		WithArgs("e1", "g1", "DR", "021000021", "ciphertext", "****6789", "Jane Doe", "checking",
			pgxmock.AnyArg(), dateToPg(testEffective), "PENDING", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"sequence"}).AddRow(int64(42)))

	tx := beginTx(t, mockPool)
	entry := &domain.TransactionEntry{
		ID:                  "e1",
		ParentTransactionID: "g1",
		Type:                domain.EntryTypeDebit,
		RoutingNumber:       "021000021",
		AccountNumber:       "ciphertext",
		AccountMask:         "****6789",
		AccountHolderName:   "Jane Doe",
		AccountType:         domain.AccountTypeChecking,
		Amount:              decimal.RequireFromString("150.25"),
		EffectiveDate:       testEffective,
		Status:              domain.EntryStatusPending,
		CreatedAt:           testNow,
		UpdatedAt:           testNow,
	}

	if err := NewEntryRepository(mockPool).Create(context.Background(), tx, entry); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.Sequence != 42 {
		t.Fatalf("sequence = %d, want 42", entry.Sequence)
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepositoryCreateDuplicate(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectQuery("INSERT INTO transaction_entries").
		WithArgs(anyArgs(13)...).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "transaction_entries_pkey"})

	tx := beginTx(t, mockPool)
	err := NewEntryRepository(mockPool).Create(context.Background(), tx, &domain.TransactionEntry{ID: "e1"})
	if !errors.Is(err, domain.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepositoryGetByID(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT (.+) FROM transaction_entries WHERE id").
		WithArgs("e1").
		WillReturnRows(entryRow(pgxmock.NewRows(entryColumns), "e1", "g1", domain.EntryTypeDebit, domain.EntryStatusPending, 7))

	entry, err := NewEntryRepository(mockPool).GetByID(context.Background(), "e1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if !entry.Amount.Equal(decimal.RequireFromString("150.25")) {
		t.Fatalf("amount = %s, want 150.25", entry.Amount)
	}
	if !entry.EffectiveDate.Equal(testEffective) {
		t.Fatalf("effective date = %v, want %v", entry.EffectiveDate, testEffective)
	}
	if entry.FileID != nil {
		t.Fatalf("expected no file id, got %q", *entry.FileID)
	}
	if entry.Sequence != 7 || entry.Status != domain.EntryStatusPending || entry.Type != domain.EntryTypeDebit {
		t.Fatalf("unexpected entry %+v", entry)
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM transaction_entries WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewEntryRepository(mockPool).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestEntryRepositoryListPendingDue(t *testing.T) {
	mockPool := newMockPool(t)
	rows := pgxmock.NewRows(entryColumns)
	entryRow(rows, "e1", "g1", domain.EntryTypeDebit, domain.EntryStatusPending, 1)
	entryRow(rows, "e2", "g1", domain.EntryTypeCredit, domain.EntryStatusPending, 2)
	mockPool.ExpectQuery("WHERE status = 'PENDING' AND effective_date <= \\$1").
		WithArgs(dateToPg(testEffective)).
		WillReturnRows(rows)

	entries, err := NewEntryRepository(mockPool).ListPendingDue(context.Background(), testEffective.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("ListPendingDue: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "e1" || entries[1].ID != "e2" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepositoryListBindsFilter(t *testing.T) {
	mockPool := newMockPool(t)
	status := domain.EntryStatusProcessed
	mockPool.ExpectQuery("FROM transaction_entries").
		WithArgs(
			pgtype.Text{String: "PROCESSED", Valid: true},
			pgtype.Date{},
			pgtype.Text{},
			pgtype.Text{String: "f1", Valid: true},
			int32(10),
			int32(20),
		).
		WillReturnRows(pgxmock.NewRows(entryColumns))

	entries, err := NewEntryRepository(mockPool).List(context.Background(), domain.EntryFilter{
		Status: &status,
		FileID: "f1",
		Limit:  10,
		Offset: 20,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepositoryUpdateStatus(t *testing.T) {
	fileID := "f1"
	update := domain.StatusUpdate{UpdatedAt: testNow, FileID: &fileID}

	tests := []struct {
		name    string
		setup   func(pgxmock.PgxPoolIface)
		want    bool
		wantErr error
	}{
		{
			name: "claimed",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectExec("UPDATE transaction_entries").
					WithArgs("PROCESSED", pgtype.Text{String: "f1", Valid: true}, "", pgxmock.AnyArg(), "e1", "PENDING").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			want: true,
		},
		{
			name: "lost race",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectExec("UPDATE transaction_entries").
					WithArgs("PROCESSED", pgtype.Text{String: "f1", Valid: true}, "", pgxmock.AnyArg(), "e1", "PENDING").
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				m.ExpectQuery("SELECT status FROM transaction_entries").
					WithArgs("e1").
					WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("CANCELLED"))
			},
			want: false,
		},
		{
			name: "missing",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectExec("UPDATE transaction_entries").
					WithArgs("PROCESSED", pgtype.Text{String: "f1", Valid: true}, "", pgxmock.AnyArg(), "e1", "PENDING").
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				m.ExpectQuery("SELECT status FROM transaction_entries").
					WithArgs("e1").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrEntryNotFound,
		},
		{
			name: "timeout",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectExec("UPDATE transaction_entries").
					WithArgs("PROCESSED", pgtype.Text{String: "f1", Valid: true}, "", pgxmock.AnyArg(), "e1", "PENDING").
					WillReturnError(context.DeadlineExceeded)
			},
			wantErr: domain.ErrStorageTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			mockPool.ExpectBegin()
			tt.setup(mockPool)

			tx := beginTx(t, mockPool)
			ok, err := NewEntryRepository(mockPool).UpdateStatus(
				context.Background(), tx, "e1", domain.EntryStatusPending, domain.EntryStatusProcessed, update)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				assertExpectations(t, mockPool)
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
			if ok != tt.want {
				t.Fatalf("updated = %v, want %v", ok, tt.want)
			}
			assertExpectations(t, mockPool)
		})
	}
}

func TestGroupRepositoryGetByID(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM transaction_groups WHERE id").
		WithArgs("g1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "description", "debit_entry_id", "credit_entry_id", "created_at"}).
			AddRow("g1", "rent", "e1", "e2", timeToPgTimestamptz(testNow)))
	rows := pgxmock.NewRows(entryColumns)
	entryRow(rows, "e1", "g1", domain.EntryTypeDebit, domain.EntryStatusPending, 1)
	entryRow(rows, "e2", "g1", domain.EntryTypeCredit, domain.EntryStatusPending, 2)
	mockPool.ExpectQuery("WHERE parent_transaction_id = \\$1").
		WithArgs("g1").
		WillReturnRows(rows)

	group, err := NewGroupRepository(mockPool).GetByID(context.Background(), "g1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if group.DebitEntry.ID != "e1" || group.CreditEntry.ID != "e2" || group.Description != "rent" {
		t.Fatalf("unexpected group %+v", group)
	}

	assertExpectations(t, mockPool)
}

func TestGroupRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM transaction_groups WHERE id").
		WithArgs("g1").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewGroupRepository(mockPool).GetByID(context.Background(), "g1")
	if !errors.Is(err, domain.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}
