package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/iho/achledger/internal/domain"
)

func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// countingHolidays is a HolidayRepository that counts loads.
type countingHolidays struct {
	holidays []domain.Holiday
	err      error
	calls    atomic.Int32
}

func (c *countingHolidays) ListHolidays(context.Context) ([]domain.Holiday, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.holidays, nil
}

var errLoad = errors.New("postgres down")
