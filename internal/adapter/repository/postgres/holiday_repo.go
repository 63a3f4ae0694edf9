package postgres

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/infrastructure/postgres/generated"
	"github.com/iho/achledger/internal/usecase"
)

// HolidayRepository reads the holidays table.
type HolidayRepository struct {
	queries *generated.Queries
	clock   usecase.Clock

	mu         sync.Mutex
	seededYear int
}

// NewHolidayRepository creates a new HolidayRepository.
func NewHolidayRepository(db generated.DBTX) *HolidayRepository {
	return &HolidayRepository{queries: generated.New(db)}
}

// WithFederalHolidays makes ListHolidays insert the federal holiday
// schedule for the clock's year and the next one each time the year
// changes. Rows already present for a date are left alone.
func (r *HolidayRepository) WithFederalHolidays(clock usecase.Clock) *HolidayRepository {
	r.clock = clock
	return r
}

// ListHolidays returns every configured holiday ordered by date.
func (r *HolidayRepository) ListHolidays(ctx context.Context) ([]domain.Holiday, error) {
	if err := r.seedFederal(ctx); err != nil {
		return nil, err
	}

	rows, err := r.queries.ListHolidays(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	holidays := make([]domain.Holiday, 0, len(rows))
	for _, row := range rows {
		holidays = append(holidays, domain.Holiday{
			Date:      pgToDate(row.Date),
			Name:      row.Name,
			Recurring: row.Recurring,
		})
	}
	return holidays, nil
}

// SeedHolidays inserts holidays as non-recurring rows. Dates that already
// have a row keep it.
func (r *HolidayRepository) SeedHolidays(ctx context.Context, holidays []domain.Holiday) error {
	params := generated.SeedHolidaysParams{
		Dates: make([]pgtype.Date, len(holidays)),
		Names: make([]string, len(holidays)),
	}
	for i, h := range holidays {
		params.Dates[i] = dateToPg(h.Date)
		params.Names[i] = h.Name
	}
	return mapError(r.queries.SeedHolidays(ctx, params))
}

func (r *HolidayRepository) seedFederal(ctx context.Context) error {
	if r.clock == nil {
		return nil
	}
	year := r.clock.Now().Year()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seededYear == year {
		return nil
	}
	federal := append(domain.DefaultFederalHolidays(year), domain.DefaultFederalHolidays(year+1)...)
	if err := r.SeedHolidays(ctx, federal); err != nil {
		return err
	}
	r.seededYear = year
	return nil
}

// SequenceGenerator draws batch numbers from nacha_batch_number_seq.
// nextval is not transactional, so a rolled back batch leaves a gap.
type SequenceGenerator struct {
	queries *generated.Queries
}

// NewSequenceGenerator creates a new SequenceGenerator.
func NewSequenceGenerator(db generated.DBTX) *SequenceGenerator {
	return &SequenceGenerator{queries: generated.New(db)}
}

// NextBatchNumber returns the next batch number.
func (g *SequenceGenerator) NextBatchNumber(ctx context.Context) (int64, error) {
	n, err := g.queries.NextBatchNumber(ctx)
	return n, mapError(err)
}
