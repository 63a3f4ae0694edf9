package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/infrastructure/logger"
	"github.com/iho/achledger/internal/infrastructure/metrics"
)

// BusinessDayCalendar answers business-day questions against a cached
// holiday set loaded through a HolidayRepository.
type BusinessDayCalendar struct {
	repo      HolidayRepository
	clock     Clock
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	staleness time.Duration
	timeout   time.Duration

	mu          sync.Mutex
	set         *domain.HolidaySet
	loadedAt    time.Time
	lastAttempt time.Time
	year        int
	fallback    bool
}

// NewBusinessDayCalendar creates a calendar. A zero staleness uses
// DefaultCalendarStaleness.
func NewBusinessDayCalendar(
	repo HolidayRepository,
	clock Clock,
	staleness time.Duration,
	m *metrics.Metrics,
	log zerolog.Logger,
) *BusinessDayCalendar {
	if staleness <= 0 {
		staleness = DefaultCalendarStaleness
	}
	if clock == nil {
		clock = SystemClock{}
	}

	return &BusinessDayCalendar{
		repo:      repo,
		clock:     clock,
		metrics:   m,
		logger:    log,
		staleness: staleness,
		timeout:   DefaultTransactionTimeout,
	}
}

// IsBusinessDay reports whether date is neither a weekend day nor a holiday.
func (c *BusinessDayCalendar) IsBusinessDay(ctx context.Context, date time.Time) (bool, error) {
	set, err := c.holidays(ctx)
	if err != nil {
		return false, err
	}
	return set.IsBusinessDay(date), nil
}

// NextBusinessDay returns the first business day strictly after date.
func (c *BusinessDayCalendar) NextBusinessDay(ctx context.Context, date time.Time) (time.Time, error) {
	set, err := c.holidays(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return set.NextBusinessDay(date), nil
}

// PreviousBusinessDay returns the last business day strictly before date.
func (c *BusinessDayCalendar) PreviousBusinessDay(ctx context.Context, date time.Time) (time.Time, error) {
	set, err := c.holidays(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return set.PreviousBusinessDay(date), nil
}

// AddBusinessDays applies NextBusinessDay n times. n must not be negative.
func (c *BusinessDayCalendar) AddBusinessDays(ctx context.Context, date time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, domain.ErrInvalidBusinessDayCount
	}
	set, err := c.holidays(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return set.AddBusinessDays(date, n)
}

// BusinessDaysBetween counts business days in [start, end).
func (c *BusinessDayCalendar) BusinessDaysBetween(ctx context.Context, start, end time.Time) (int, error) {
	set, err := c.holidays(ctx)
	if err != nil {
		return 0, err
	}
	return set.BusinessDaysBetween(start, end), nil
}

// Info describes a single day.
func (c *BusinessDayCalendar) Info(ctx context.Context, date time.Time) (domain.BusinessDayInfo, error) {
	set, err := c.holidays(ctx)
	if err != nil {
		return domain.BusinessDayInfo{}, err
	}
	return set.Info(date), nil
}

// holidays returns the current holiday set, refreshing it first when it is
// stale or was built for another year. It only fails when ctx is done.
func (c *BusinessDayCalendar) holidays(ctx context.Context) (*domain.HolidaySet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	sameYear := c.set != nil && now.Year() == c.year

	if sameYear && !c.fallback && now.Sub(c.loadedAt) < c.staleness {
		return c.set, nil
	}
	// A failed refresh is not retried on every call.
	if sameYear && now.Sub(c.lastAttempt) < HolidayRetryInterval {
		return c.set, nil
	}

	c.refresh(ctx, now)
	return c.set, nil
}

func (c *BusinessDayCalendar) refresh(ctx context.Context, now time.Time) {
	log := logger.FromContext(ctx, c.logger)
	c.lastAttempt = now

	loadCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	holidays, err := c.repo.ListHolidays(loadCtx)
	if err == nil {
		c.set = domain.NewHolidaySet(holidays)
		c.loadedAt = now
		c.year = now.Year()
		c.fallback = false
		c.metrics.HolidayLoad("ok")
		log.Debug().Int("holidays", c.set.Len()).Msg("holiday set loaded")
		return
	}

	c.metrics.HolidayLoad("error")

	if c.set != nil && now.Year() == c.year {
		log.Warn().Err(err).Time("loaded_at", c.loadedAt).Msg("holiday refresh failed, keeping last known set")
		return
	}

	// No usable set: federal schedule for this year and next, merged with
	// whatever was loaded before.
	fallback := append(c.set.Holidays(), domain.DefaultFederalHolidays(now.Year())...)
	fallback = append(fallback, domain.DefaultFederalHolidays(now.Year()+1)...)

	c.set = domain.NewHolidaySet(fallback)
	c.year = now.Year()
	c.fallback = true
	log.Warn().Err(err).Int("holidays", c.set.Len()).Msg("holiday store unavailable, using federal holiday defaults")
}
