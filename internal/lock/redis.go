package lock

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a lease based lock shared by every API instance. Each key
// is SET NX with a random token and a TTL, so a crashed holder frees its
// keys once the lease runs out.
type RedisLocker struct {
	rdb    *redis.Client
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
	prefix string
}

func NewRedisLocker(rdb *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		rdb:    rdb,
		ttl:    ttl,
		wait:   wait,
		poll:   25 * time.Millisecond,
		prefix: "lock:",
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, keys []string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	token := uuid.NewString()
	held := make([]string, 0, len(keys))

	release := func() {
		// release must work after the caller's context is gone
		rctx, rcancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer rcancel()
		for i := len(held) - 1; i >= 0; i-- {
			releaseScript.Run(rctx, l.rdb, []string{held[i]}, token)
		}
	}

	for _, key := range keys {
		key = l.prefix + key
		if err := l.acquireOne(ctx, key, token); err != nil {
			release()
			return nil, err
		}
		held = append(held, key)
	}

	return sync.OnceFunc(release), nil
}

func (l *RedisLocker) acquireOne(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		switch {
		case err != nil && ctx.Err() == nil:
			return err
		case err == nil && ok:
			return nil
		}

		select {
		case <-ctx.Done():
			return timeoutErr(ctx.Err())
		case <-ticker.C:
		}
	}
}

var _ Locker = (*RedisLocker)(nil)
var _ Locker = (*LocalLocker)(nil)
