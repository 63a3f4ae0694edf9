package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

// HolidayRepository serves a configurable holiday list.
type HolidayRepository struct {
	store *Store
	clock usecase.Clock
}

// NewHolidayRepository creates a new HolidayRepository.
func NewHolidayRepository(s *Store) *HolidayRepository {
	return &HolidayRepository{store: s}
}

// WithFederalHolidays adds the federal holiday schedule for the clock's
// year and the next one to every ListHolidays answer.
func (r *HolidayRepository) WithFederalHolidays(clock usecase.Clock) *HolidayRepository {
	r.clock = clock
	return r
}

// SetHolidays replaces the stored holiday list.
func (s *Store) SetHolidays(holidays []domain.Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays = append([]domain.Holiday(nil), holidays...)
}

// FailHolidayLoads makes ListHolidays return fn's error while it is non-nil.
func (s *Store) FailHolidayLoads(fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidayFn = fn
}

// ListHolidays returns the stored holidays.
func (r *HolidayRepository) ListHolidays(ctx context.Context) ([]domain.Holiday, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.holidayFn != nil {
		if err := s.holidayFn(); err != nil {
			return nil, err
		}
	}

	out := append([]domain.Holiday(nil), s.holidays...)
	if r.clock != nil {
		year := r.clock.Now().Year()
		out = append(out, domain.DefaultFederalHolidays(year)...)
		out = append(out, domain.DefaultFederalHolidays(year+1)...)
	}
	return out, nil
}

// SequenceGenerator hands out batch numbers outside any transaction, like a
// database sequence.
type SequenceGenerator struct {
	store *Store
}

// NewSequenceGenerator creates a new SequenceGenerator.
func NewSequenceGenerator(s *Store) *SequenceGenerator {
	return &SequenceGenerator{store: s}
}

// NextBatchNumber returns the next batch number, starting at 1.
func (g *SequenceGenerator) NextBatchNumber(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s := g.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batchSeq++
	return s.batchSeq, nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(s *Store) *OutboxRepository {
	return &OutboxRepository{store: s}
}

// Create buffers an event in tx.
func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	c := *event
	t.outbox = append(t.outbox, &c)
	return nil
}

// GetUnpublished returns the oldest unpublished events.
func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.OutboxEvent
	for _, e := range s.outbox {
		if !e.Published {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return page(out, limit, 0), nil
}

// MarkPublished flags an event as published.
func (r *OutboxRepository) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.outbox {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

// DeletePublished drops events published before the cutoff.
func (r *OutboxRepository) DeletePublished(_ context.Context, before time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.outbox[:0]
	for _, e := range s.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	s.outbox = kept

	return nil
}

var (
	_ usecase.EntryRepository    = (*EntryRepository)(nil)
	_ usecase.GroupRepository    = (*GroupRepository)(nil)
	_ usecase.FileRepository     = (*FileRepository)(nil)
	_ usecase.HolidayRepository  = (*HolidayRepository)(nil)
	_ usecase.SequenceGenerator  = (*SequenceGenerator)(nil)
	_ usecase.OutboxRepository   = (*OutboxRepository)(nil)
	_ usecase.TransactionManager = (*TxManager)(nil)
)
