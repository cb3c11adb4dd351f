package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubKV struct {
	values  map[string]string
	ttls    map[string]time.Duration
	failGet error
	failSet error
}

func newStubKV() *stubKV {
	return &stubKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubKV) Get(ctx context.Context, key string) *redis.StringCmd {
	if s.failGet != nil {
		return redis.NewStringResult("", s.failGet)
	}
	val, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (s *stubKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if s.failSet != nil {
		return redis.NewStatusResult("", s.failSet)
	}
	s.values[key] = string(value.([]byte))
	s.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (s *stubKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestUsageCache_RoundTrip(t *testing.T) {
	kv := newStubKV()
	c := newUsageCache(kv, 5*time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "key-1"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "key-1", map[string]any{"credits_used": 12.0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, ok, err := c.Get(ctx, "key-1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if stats["credits_used"] != 12.0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if _, ok, _ := c.Get(ctx, "key-2"); ok {
		t.Fatalf("snapshots must be scoped per credential")
	}

	for k, ttl := range kv.ttls {
		if strings.Contains(k, "key-1") {
			t.Fatalf("cache key must not embed the credential: %s", k)
		}
		if ttl != 5*time.Minute {
			t.Fatalf("unexpected ttl: %s", ttl)
		}
	}

	if err := c.Invalidate(ctx, "key-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key-1"); ok {
		t.Fatalf("expected miss after invalidation")
	}
}

func TestUsageCache_Errors(t *testing.T) {
	kv := newStubKV()
	c := newUsageCache(kv, 0)
	if c.ttl != DefaultTTL {
		t.Fatalf("expected default ttl, got %s", c.ttl)
	}
	ctx := context.Background()

	kv.values[key("k")] = "not-json"
	if _, _, err := c.Get(ctx, "k"); err == nil {
		t.Fatalf("expected decode error")
	}

	kv.failGet = errors.New("connection refused")
	if _, ok, err := c.Get(ctx, "k"); err == nil || ok {
		t.Fatalf("expected GET error, got ok=%v err=%v", ok, err)
	}

	kv.failSet = errors.New("READONLY")
	if err := c.Set(ctx, "k", map[string]any{}); err == nil {
		t.Fatalf("expected SET error")
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint("a") == Fingerprint("b") {
		t.Fatalf("expected distinct fingerprints")
	}
	if len(Fingerprint("a")) != 16 || Fingerprint("a") != Fingerprint("a") {
		t.Fatalf("expected stable 16-char fingerprint")
	}
}
