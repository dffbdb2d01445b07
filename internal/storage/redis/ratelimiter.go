package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/secretkey"
)

const keygenCooldownKeyFmt = "keygen:cooldown:%d"

// KeygenRateLimiter enforces the per-user cooldown between key
// regenerations. The first attempt inside an empty window records itself
// and is allowed; further attempts are denied until the window expires.
type KeygenRateLimiter struct {
	client   *redis.Client
	cooldown time.Duration
	logger   *zap.Logger
}

func NewKeygenRateLimiter(client *redis.Client, cooldown time.Duration, logger *zap.Logger) *KeygenRateLimiter {
	return &KeygenRateLimiter{
		client:   client,
		cooldown: cooldown,
		logger:   logger.Named("KeygenRateLimiter"),
	}
}

var _ secretkey.RateLimiter = (*KeygenRateLimiter)(nil)

func (l *KeygenRateLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	key := fmt.Sprintf(keygenCooldownKeyFmt, userID)

	// SET NX both checks and records the attempt atomically.
	ok, err := l.client.SetNX(ctx, key, time.Now().UTC().Unix(), l.cooldown).Result()
	if err != nil {
		l.logger.Error("Failed to check keygen cooldown", zap.Int64("user_id", userID), zap.Error(err))
		return false, fmt.Errorf("redis error checking keygen cooldown: %w", err)
	}

	if !ok {
		l.logger.Debug("Key generation denied by cooldown", zap.Int64("user_id", userID))
	}
	return ok, nil
}
