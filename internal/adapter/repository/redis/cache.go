package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/infrastructure/metrics"
	"github.com/iho/achledger/internal/usecase"
)

const holidayKey = "cache:holidays"

type cachedHoliday struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring,omitempty"`
}

// HolidayCache shares one holiday list between instances. Redis failures
// fall through to the wrapped repository.
type HolidayCache struct {
	client  *redis.Client
	next    usecase.HolidayRepository
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHolidayCache creates a new HolidayCache.
func NewHolidayCache(client *redis.Client, next usecase.HolidayRepository, ttl time.Duration, m *metrics.Metrics, log zerolog.Logger) *HolidayCache {
	return &HolidayCache{
		client:  client,
		next:    next,
		ttl:     ttl,
		metrics: m,
		logger:  log,
	}
}

// ListHolidays returns the cached list, loading it on a miss.
func (c *HolidayCache) ListHolidays(ctx context.Context) ([]domain.Holiday, error) {
	raw, err := c.client.Get(ctx, holidayKey).Bytes()
	switch {
	case err == nil:
		holidays, decodeErr := decodeHolidays(raw)
		if decodeErr == nil {
			return holidays, nil
		}
		c.logger.Warn().Err(decodeErr).Msg("dropping unreadable holiday cache entry")
	case !errors.Is(err, redis.Nil):
		c.metrics.RedisError("holiday_get")
		c.logger.Warn().Err(err).Msg("holiday cache read failed")
	}

	holidays, err := c.next.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}

	raw, err = encodeHolidays(holidays)
	if err == nil {
		err = c.client.Set(ctx, holidayKey, raw, c.ttl).Err()
	}
	if err != nil {
		c.metrics.RedisError("holiday_set")
		c.logger.Warn().Err(err).Msg("holiday cache write failed")
	}

	return holidays, nil
}

// Invalidate drops the cached list.
func (c *HolidayCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, holidayKey).Err()
}

func encodeHolidays(holidays []domain.Holiday) ([]byte, error) {
	out := make([]cachedHoliday, len(holidays))
	for i, h := range holidays {
		out[i] = cachedHoliday{Date: domain.FormatDate(h.Date), Name: h.Name, Recurring: h.Recurring}
	}
	return json.Marshal(out)
}

func decodeHolidays(raw []byte) ([]domain.Holiday, error) {
	var in []cachedHoliday
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}

	out := make([]domain.Holiday, len(in))
	for i, h := range in {
		d, err := domain.ParseDate(h.Date)
		if err != nil {
			return nil, err
		}
		out[i] = domain.Holiday{Date: d, Name: h.Name, Recurring: h.Recurring}
	}
	return out, nil
}
