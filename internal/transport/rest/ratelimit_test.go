package rest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestLocalLimiter_BurstThenDeny(t *testing.T) {
	l := NewLocalLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		if err != nil || !ok {
			t.Fatalf("request %d = (%v, %v), want allowed", i, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "10.0.0.1"); ok {
		t.Fatalf("4th request allowed, want denied")
	}
	if ok, _ := l.Allow(ctx, "10.0.0.2"); !ok {
		t.Fatalf("other key denied, want allowed")
	}
}

func TestLocalLimiter_DropsIdleBuckets(t *testing.T) {
	clock := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	l := NewLocalLimiter(1, time.Minute)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	for _, key := range []string{"10.0.0.1", "10.0.0.2"} {
		if ok, _ := l.Allow(ctx, key); !ok {
			t.Fatalf("%s denied, want allowed", key)
		}
	}
	if ok, _ := l.Allow(ctx, "10.0.0.1"); ok {
		t.Fatalf("second request allowed, want denied")
	}
	if n := l.size(); n != 2 {
		t.Fatalf("buckets = %d, want 2", n)
	}

	clock = clock.Add(time.Minute + time.Second)
	if ok, _ := l.Allow(ctx, "10.0.0.3"); !ok {
		t.Fatalf("new key denied, want allowed")
	}
	if n := l.size(); n != 1 {
		t.Fatalf("buckets after idle window = %d, want 1", n)
	}
	if ok, _ := l.Allow(ctx, "10.0.0.1"); !ok {
		t.Fatalf("key denied after idle window, want allowed")
	}
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	addr := os.Getenv("IGNITECALL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set IGNITECALL_TEST_REDIS_ADDR to run redis limiter tests")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRedisLimiter(rdb, 2, time.Minute, "rl-test-"+uuid.NewString())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		if err != nil || !ok {
			t.Fatalf("request %d = (%v, %v), want allowed", i, ok, err)
		}
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow error: %v", err)
	}
	if ok {
		t.Fatalf("3rd request allowed, want denied")
	}
}
