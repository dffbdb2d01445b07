package secretkey

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("secret key not found")

	// ErrCooldown is returned when a regeneration attempt falls inside the
	// per-user cooldown window.
	ErrCooldown = errors.New("key generation rate limit exceeded")
)

type Repository interface {
	// Upsert stores the key for its user, overwriting any prior value.
	Upsert(ctx context.Context, key *SecretKey) error
	FindByUserID(ctx context.Context, userID int64) (*SecretKey, error)
	// FindByValue resolves a presented key value to its single owner.
	FindByValue(ctx context.Context, value string) (*SecretKey, error)
	// Delete removes the user's key. Deleting an absent key is not an error.
	Delete(ctx context.Context, userID int64) error
	CountActive(ctx context.Context) (int64, error)
}

// RateLimiter gates key regeneration per user. Allow records the attempt
// and reports whether it may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}
