package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisKVTest(t *testing.T) (*RedisKV, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := NewRedisKV(rdb, "idc-test")
	return kv, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisKVRoundTrip(t *testing.T) {
	kv, _, done := newRedisKVTest(t)
	defer done()
	ctx := context.Background()

	if err := kv.Set(ctx, "access_token", "tok", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := kv.Get(ctx, "access_token")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "tok" {
		t.Fatalf("expected tok, got %q", got)
	}

	if err := kv.Del(ctx, "access_token"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := kv.Get(ctx, "access_token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisKVPrefixesKeys(t *testing.T) {
	kv, mr, done := newRedisKVTest(t)
	defer done()
	ctx := context.Background()

	if err := kv.Set(ctx, "refresh_token", "r", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("idc-test:refresh_token") {
		t.Fatal("expected namespaced key in redis")
	}
}

func TestRedisKVTTL(t *testing.T) {
	kv, mr, done := newRedisKVTest(t)
	defer done()
	ctx := context.Background()

	if err := kv.Set(ctx, LogoutEventKey, "true", time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, err := kv.Get(ctx, LogoutEventKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestRedisKVUnavailable(t *testing.T) {
	kv, mr, done := newRedisKVTest(t)
	done()
	_ = mr

	if _, err := kv.Get(context.Background(), "access_token"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if err := kv.Set(context.Background(), "access_token", "v", 0); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}

func TestWatchFlagDeliversBroadcast(t *testing.T) {
	kv, _, done := newRedisKVTest(t)
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events := kv.WatchFlag(ctx, LogoutEventKey, 10*time.Millisecond)

	if err := kv.Set(ctx, LogoutEventKey, "true", 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case value := <-events:
		if value != "true" {
			t.Fatalf("expected broadcast value true, got %q", value)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for broadcast")
	}

	cancel()
	for range events {
	}
}
