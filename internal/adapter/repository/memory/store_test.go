package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase/mocks"
)

var effective = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func pendingEntry(id string) *domain.TransactionEntry {
	return &domain.TransactionEntry{
		ID:                  id,
		ParentTransactionID: "g-" + id,
		Type:                domain.EntryTypeDebit,
		RoutingNumber:       "021000021",
		AccountNumber:       "ciphertext",
		AccountType:         domain.AccountTypeChecking,
		Amount:              decimal.NewFromInt(10),
		EffectiveDate:       effective,
		Status:              domain.EntryStatusPending,
	}
}

func seed(t *testing.T, s *Store, ids ...string) {
	t.Helper()
	ctx := context.Background()

	tx, err := NewTxManager(s).Begin(ctx)
	require.NoError(t, err)
	repo := NewEntryRepository(s)
	for _, id := range ids {
		require.NoError(t, repo.Create(ctx, tx, pendingEntry(id)))
	}
	require.NoError(t, tx.Commit(ctx))
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewEntryRepository(s)

	tx, err := NewTxManager(s).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, pendingEntry("e1")))
	require.NoError(t, tx.Rollback(ctx))

	_, err = repo.GetByID(ctx, "e1")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestTx_RollbackAfterCommitIsNoop(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := NewTxManager(s).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, NewEntryRepository(s).Create(ctx, tx, pendingEntry("e1")))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))

	_, err = NewEntryRepository(s).GetByID(ctx, "e1")
	require.NoError(t, err)

	assert.ErrorIs(t, tx.Commit(ctx), ErrTxDone)
}

func TestTx_WritesInvisibleUntilCommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seed(t, s, "e1")
	repo := NewEntryRepository(s)

	tx, err := NewTxManager(s).Begin(ctx)
	require.NoError(t, err)

	fileID := "f1"
	ok, err := repo.UpdateStatus(ctx, tx, "e1", domain.EntryStatusPending, domain.EntryStatusProcessed,
		domain.StatusUpdate{UpdatedAt: effective, FileID: &fileID})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusPending, got.Status)

	// the transaction sees its own write
	ok, err = repo.UpdateStatus(ctx, tx, "e1", domain.EntryStatusPending, domain.EntryStatusCancelled,
		domain.StatusUpdate{UpdatedAt: effective})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tx.Commit(ctx))

	got, err = repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusProcessed, got.Status)
	require.NotNil(t, got.FileID)
	assert.Equal(t, "f1", *got.FileID)
}

func TestTx_BeginHonoursContext(t *testing.T) {
	s := NewStore()
	mgr := NewTxManager(s)

	tx, err := mgr.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = mgr.Begin(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEntryRepository_ConditionalUpdateRace(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seed(t, s, "e1")
	repo := NewEntryRepository(s)
	mgr := NewTxManager(s)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := mgr.Begin(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			defer func() { _ = tx.Rollback(ctx) }()

			ok, err := repo.UpdateStatus(ctx, tx, "e1", domain.EntryStatusPending, domain.EntryStatusCancelled,
				domain.StatusUpdate{UpdatedAt: effective})
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
			_ = tx.Commit(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestEntryRepository_ListPendingDueOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewEntryRepository(s)

	later := pendingEntry("a-later")
	later.EffectiveDate = effective.AddDate(0, 0, 1)
	notDue := pendingEntry("b-not-due")
	notDue.EffectiveDate = effective.AddDate(0, 0, 7)

	tx, err := NewTxManager(s).Begin(ctx)
	require.NoError(t, err)
	for _, e := range []*domain.TransactionEntry{later, pendingEntry("z-first"), notDue, pendingEntry("y-second")} {
		require.NoError(t, repo.Create(ctx, tx, e))
	}
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.ListPendingDue(ctx, effective.AddDate(0, 0, 1))
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"z-first", "y-second", "a-later"}, ids)
}

func TestEntryRepository_HookAbortsCreate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("disk full")
	s.SetHooks(Hooks{BeforeEntryCreate: func(e *domain.TransactionEntry) error {
		if e.ID == "e2" {
			return boom
		}
		return nil
	}})
	repo := NewEntryRepository(s)

	tx, err := NewTxManager(s).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, pendingEntry("e1")))
	assert.ErrorIs(t, repo.Create(ctx, tx, pendingEntry("e2")), boom)
	require.NoError(t, tx.Rollback(ctx))

	all, err := repo.List(ctx, domain.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewFileRepository(s)
	mgr := NewTxManager(s)

	tx, err := mgr.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, &domain.NACHAFile{
		ID:       "f1",
		Status:   domain.FileStatusGenerated,
		EntryIDs: []string{"e1"},
		Content:  []byte("101"),
	}))
	require.NoError(t, tx.Commit(ctx))

	tx, err = mgr.Begin(ctx)
	require.NoError(t, err)
	ok, err := repo.UpdateStatus(ctx, tx, "f1", domain.FileStatusGenerated, domain.FileStatusFailed, "timeout", effective)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.UpdateStatus(ctx, tx, "f1", domain.FileStatusGenerated, domain.FileStatusTransmitted, "", effective)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, tx.Commit(ctx))

	f, err := repo.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, domain.FileStatusFailed, f.Status)
	assert.Equal(t, "timeout", f.FailureReason)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewOutboxRepository(s)

	tx, err := NewTxManager(s).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, &domain.OutboxEvent{ID: "ev1", CreatedAt: effective}))
	require.NoError(t, repo.Create(ctx, tx, &domain.OutboxEvent{ID: "ev2", CreatedAt: effective.Add(time.Second)}))
	require.NoError(t, tx.Commit(ctx))

	events, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ev1", events[0].ID)

	require.NoError(t, repo.MarkPublished(ctx, "ev1", effective))
	events, err = repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, repo.DeletePublished(ctx, effective.Add(time.Hour)))
	assert.ErrorIs(t, repo.MarkPublished(ctx, "ev1", effective), domain.ErrNotFound)
}

func TestSequenceGenerator_Monotonic(t *testing.T) {
	ctx := context.Background()
	gen := NewSequenceGenerator(NewStore())

	first, err := gen.NextBatchNumber(ctx)
	require.NoError(t, err)
	second, err := gen.NextBatchNumber(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestHolidayRepository_FederalHolidaysFollowClock(t *testing.T) {
	ctx := context.Background()
	clock := mocks.NewMockClock(time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC))

	s := NewStore()
	s.SetHolidays([]domain.Holiday{{Date: time.Date(2030, 3, 15, 0, 0, 0, 0, time.UTC), Name: "Bank Closure"}})
	repo := NewHolidayRepository(s).WithFederalHolidays(clock)

	holidays, err := repo.ListHolidays(ctx)
	require.NoError(t, err)
	set := domain.NewHolidaySet(holidays)

	for _, d := range []time.Time{
		time.Date(2030, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 11, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, ok := set.Lookup(d)
		assert.True(t, ok, "expected %s to be a holiday", domain.FormatDate(d))
	}
	_, ok := set.Lookup(time.Date(2032, 11, 25, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok, "2032 holidays should not be listed yet")

	clock.Set(time.Date(2032, 2, 1, 12, 0, 0, 0, time.UTC))
	holidays, err = repo.ListHolidays(ctx)
	require.NoError(t, err)
	_, ok = domain.NewHolidaySet(holidays).Lookup(time.Date(2032, 11, 25, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok, "expected Thanksgiving 2032 after the year changed")
}
