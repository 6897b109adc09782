package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level Redis failures reported by
// [RedisKV].
var ErrRedisUnavailable = errors.New("token: redis unavailable")

// RedisKV is a [KV] backend over Redis. It lets multiple processes of the
// same origin share one credential set: a CLI and a long-running agent, or
// sibling instances observing the logout broadcast flag.
type RedisKV struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisKV creates a Redis-backed [KV]. Keys are namespaced under prefix
// ("idc" when empty).
func NewRedisKV(client redis.UniversalClient, prefix string) *RedisKV {
	if prefix == "" {
		prefix = "idc"
	}
	return &RedisKV{
		redis:  client,
		prefix: prefix,
	}
}

func (r *RedisKV) key(name string) string {
	return r.prefix + ":" + name
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.redis.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return value, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.redis.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *RedisKV) Del(ctx context.Context, keys ...string) error {
	namespaced := make([]string, 0, len(keys))
	for _, key := range keys {
		namespaced = append(namespaced, r.key(key))
	}
	if err := r.redis.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// WatchFlag polls key at the given interval and delivers each non-empty value
// it observes, so sibling processes can react to the logout broadcast. The
// returned channel closes when ctx is done. Polling keeps the backend
// requirements minimal; keyspace notifications are deliberately not required.
func (r *RedisKV) WatchFlag(ctx context.Context, key string, interval time.Duration) <-chan string {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last string
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				value, err := r.Get(ctx, key)
				if err != nil {
					last = ""
					continue
				}
				if value == "" || value == last {
					continue
				}
				last = value
				select {
				case out <- value:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
