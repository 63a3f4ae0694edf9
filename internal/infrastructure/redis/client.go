package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrDisabled is returned by NewClient when no URL is configured.
var ErrDisabled = errors.New("redis disabled")

// Options tunes the client beyond what the URL carries.
type Options struct {
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewClient creates a Redis client from redisURL and pings it. An empty
// URL returns ErrDisabled.
func NewClient(ctx context.Context, redisURL string, opts ...Options) (*redis.Client, error) {
	if redisURL == "" {
		return nil, ErrDisabled
	}

	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	for _, o := range opts {
		apply(parsed, o)
	}

	client := redis.NewClient(parsed)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func apply(dst *redis.Options, o Options) {
	if o.PoolSize > 0 {
		dst.PoolSize = o.PoolSize
	}
	if o.DialTimeout > 0 {
		dst.DialTimeout = o.DialTimeout
	}
	if o.ReadTimeout > 0 {
		dst.ReadTimeout = o.ReadTimeout
	}
	if o.WriteTimeout > 0 {
		dst.WriteTimeout = o.WriteTimeout
	}
}
