package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/achledger/internal/adapter/repository/memory"
	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/nacha"
	"github.com/iho/achledger/internal/usecase"
	"github.com/iho/achledger/internal/usecase/mocks"
)

// Friday 2024-03-01 10:00 UTC.
var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testSettings() nacha.Settings {
	return nacha.Settings{
		ImmediateDestination:     "021000021",
		ImmediateDestinationName: "Federal Reserve Bank",
		ImmediateOrigin:          "111000025",
		ImmediateOriginName:      "My Bank",
		CompanyName:              "Acme Payroll",
		CompanyIdentification:    "1234567890",
		CompanyEntryDescription:  "PAYMENT",
		ODFIIdentification:       "11100002",
		StandardEntryClass:       nacha.SECPPD,
	}
}

type fixture struct {
	store    *memory.Store
	clock    *mocks.MockClock
	entries  *memory.EntryRepository
	groups   *memory.GroupRepository
	files    *memory.FileRepository
	outbox   *memory.OutboxRepository
	calendar *usecase.BusinessDayCalendar
	ledger   *usecase.LedgerUseCase
	batch    *usecase.BatchUseCase
}

func newFixture(t *testing.T, configure ...func(*usecase.BatchConfig)) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.SetHolidays([]domain.Holiday{
		{Date: day("2024-01-01"), Name: "New Year's Day"},
		{Date: day("2024-05-27"), Name: "Memorial Day"},
		{Date: day("2000-07-04"), Name: "Independence Day", Recurring: true},
	})

	f := &fixture{
		store:   store,
		clock:   mocks.NewMockClock(now),
		entries: memory.NewEntryRepository(store),
		groups:  memory.NewGroupRepository(store),
		files:   memory.NewFileRepository(store),
		outbox:  memory.NewOutboxRepository(store),
	}

	log := zerolog.Nop()
	idGen := mocks.NewMockIDGenerator()
	txManager := memory.NewTxManager(store)

	f.calendar = usecase.NewBusinessDayCalendar(memory.NewHolidayRepository(store), f.clock, 0, nil, log)
	f.ledger = usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager: txManager,
		Entries:   f.entries,
		Groups:    f.groups,
		Outbox:    f.outbox,
		Calendar:  f.calendar,
		Encryptor: mocks.ReverseEncryptor{},
		IDGen:     idGen,
		Clock:     f.clock,
		Logger:    log,
	})

	cfg := usecase.BatchConfig{
		TxManager:     txManager,
		Ledger:        f.ledger,
		Files:         f.files,
		Sequence:      memory.NewSequenceGenerator(store),
		Outbox:        f.outbox,
		Encoder:       nacha.NewEncoder(),
		IDGen:         idGen,
		Clock:         f.clock,
		Logger:        log,
		Settings:      testSettings(),
		RetryInterval: time.Millisecond,
	}
	for _, c := range configure {
		c(&cfg)
	}
	f.batch = usecase.NewBatchUseCase(cfg)

	return f
}

func transfer(amount string, effective time.Time) domain.TransferRequest {
	return domain.TransferRequest{
		Amount:        decimal.RequireFromString(amount),
		EffectiveDate: effective,
		Debit: domain.TransferParty{
			RoutingNumber: "021000021",
			AccountNumber: "123456789",
			AccountType:   domain.AccountTypeChecking,
			HolderName:    "Jane Doe",
		},
		Credit: domain.TransferParty{
			RoutingNumber: "011000015",
			AccountNumber: "987654321",
			AccountType:   domain.AccountTypeSavings,
			HolderName:    "Acme Supplies LLC",
		},
		Description: "invoice 42",
	}
}

func (f *fixture) submit(t *testing.T, amount string, effective time.Time) *domain.TransactionGroup {
	t.Helper()

	g, err := f.ledger.Submit(context.Background(), transfer(amount, effective))
	if err != nil {
		t.Fatalf("submit %s on %s: %v", amount, domain.FormatDate(effective), err)
	}
	return g
}

func (f *fixture) allEntries(t *testing.T) []*domain.TransactionEntry {
	t.Helper()

	entries, err := f.entries.List(context.Background(), domain.EntryFilter{})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	return entries
}

func (f *fixture) events(t *testing.T) []*domain.OutboxEvent {
	t.Helper()

	events, err := f.outbox.GetUnpublished(context.Background(), 1000)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	return events
}
