package redis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/domain"
)

func newYear() domain.Holiday {
	d, _ := domain.ParseDate("2024-01-01")
	return domain.Holiday{Date: d, Name: "New Year's Day"}
}

func TestHolidayCache_LoadsOnceAndShares(t *testing.T) {
	client, _ := newTestRedisClient(t)
	next := &countingHolidays{holidays: []domain.Holiday{newYear()}}
	ctx := context.Background()

	first := NewHolidayCache(client, next, time.Hour, nil, zerolog.Nop())
	second := NewHolidayCache(client, next, time.Hour, nil, zerolog.Nop())

	got, err := first.ListHolidays(ctx)
	if err != nil {
		t.Fatalf("ListHolidays: %v", err)
	}
	if len(got) != 1 || got[0].Name != "New Year's Day" {
		t.Fatalf("unexpected holidays %+v", got)
	}

	got, err = second.ListHolidays(ctx)
	if err != nil {
		t.Fatalf("ListHolidays: %v", err)
	}
	if len(got) != 1 || !got[0].Date.Equal(newYear().Date) {
		t.Fatalf("unexpected cached holidays %+v", got)
	}

	if n := next.calls.Load(); n != 1 {
		t.Fatalf("expected one load from the repository, got %d", n)
	}
}

func TestHolidayCache_Expires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	next := &countingHolidays{holidays: []domain.Holiday{newYear()}}
	cache := NewHolidayCache(client, next, time.Minute, nil, zerolog.Nop())
	ctx := context.Background()

	if _, err := cache.ListHolidays(ctx); err != nil {
		t.Fatalf("ListHolidays: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := cache.ListHolidays(ctx); err != nil {
		t.Fatalf("ListHolidays: %v", err)
	}

	if n := next.calls.Load(); n != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", n)
	}
}

func TestHolidayCache_RedisDownFallsThrough(t *testing.T) {
	client, mr := newTestRedisClient(t)
	next := &countingHolidays{holidays: []domain.Holiday{newYear()}}
	cache := NewHolidayCache(client, next, time.Hour, nil, zerolog.Nop())
	mr.Close()

	got, err := cache.ListHolidays(context.Background())
	if err != nil {
		t.Fatalf("expected repository result when redis is down, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected holidays %+v", got)
	}
}

func TestHolidayCache_RepositoryErrorNotCached(t *testing.T) {
	client, mr := newTestRedisClient(t)
	next := &countingHolidays{err: errLoad}
	cache := NewHolidayCache(client, next, time.Hour, nil, zerolog.Nop())

	if _, err := cache.ListHolidays(context.Background()); err != errLoad {
		t.Fatalf("expected %v, got %v", errLoad, err)
	}
	if mr.Exists(holidayKey) {
		t.Fatal("failed load must not be cached")
	}
}

func TestHolidayCache_InvalidateAndCorruptEntry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	next := &countingHolidays{holidays: []domain.Holiday{newYear()}}
	cache := NewHolidayCache(client, next, time.Hour, nil, zerolog.Nop())
	ctx := context.Background()

	if err := mr.Set(holidayKey, "{not json"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	got, err := cache.ListHolidays(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected reload over corrupt entry, got %+v err=%v", got, err)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if mr.Exists(holidayKey) {
		t.Fatal("expected key to be deleted")
	}
}
