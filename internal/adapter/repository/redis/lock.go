package redis

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements usecase.Locker with SET NX PX.
type Locker struct {
	client *redis.Client
	prefix string
}

// NewLocker creates a new Locker.
func NewLocker(client *redis.Client) *Locker {
	return &Locker{
		client: client,
		prefix: "lock:",
	}
}

// Acquire takes key for ttl.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	fullKey := l.prefix + key
	token := ulid.Make().String()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err()
	}
	return release, true, nil
}
