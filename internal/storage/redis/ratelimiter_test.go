package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, cooldown time.Duration) (*KeygenRateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewKeygenRateLimiter(client, cooldown, zap.NewNop()), mr
}

func TestKeygenRateLimiterAllowThenDeny(t *testing.T) {
	limiter, _ := newTestLimiter(t, 300*time.Second)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, 42)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !allowed {
		t.Fatal("first attempt should be allowed")
	}

	allowed, err = limiter.Allow(ctx, 42)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if allowed {
		t.Fatal("second attempt inside the window should be denied")
	}
}

func TestKeygenRateLimiterAllowsAfterExpiry(t *testing.T) {
	limiter, mr := newTestLimiter(t, 300*time.Second)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, 7); !allowed {
		t.Fatal("first attempt should be allowed")
	}

	mr.FastForward(301 * time.Second)

	allowed, err := limiter.Allow(ctx, 7)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !allowed {
		t.Fatal("attempt after cooldown expiry should be allowed")
	}
}

func TestKeygenRateLimiterIsPerUser(t *testing.T) {
	limiter, _ := newTestLimiter(t, 300*time.Second)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, 1); !allowed {
		t.Fatal("first attempt for user 1 should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, 2); !allowed {
		t.Fatal("user 2 should not share user 1's cooldown")
	}
}
