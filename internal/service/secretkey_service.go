package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/admin"
	"github.com/borrzu/verify-service/internal/domain/secretkey"
	"github.com/borrzu/verify-service/internal/ierr"
	"github.com/borrzu/verify-service/internal/metrics"
	"github.com/borrzu/verify-service/internal/util"
)

// Actor identifies the authenticated operator performing a key operation.
type Actor struct {
	Role       admin.Role
	SiteUserID int64
}

// CanManage reports whether the actor may modify the given user's key.
// Admins manage anyone; plain accounts only themselves.
func (a Actor) CanManage(userID int64) bool {
	if a.Role == admin.RoleAdmin {
		return true
	}
	return a.SiteUserID != 0 && a.SiteUserID == userID
}

type SecretKeyService struct {
	repo    secretkey.Repository
	limiter secretkey.RateLimiter
	logger  *zap.Logger
}

func NewSecretKeyService(repo secretkey.Repository, limiter secretkey.RateLimiter, logger *zap.Logger) *SecretKeyService {
	return &SecretKeyService{
		repo:    repo,
		limiter: limiter,
		logger:  logger.Named("SecretKeyService"),
	}
}

// Generate issues a fresh key for the user, overwriting any prior value.
// The permission check and the cooldown gate both run before any key
// material is produced.
func (s *SecretKeyService) Generate(ctx context.Context, actor Actor, userID int64) (*secretkey.SecretKey, error) {
	if !actor.CanManage(userID) {
		s.logger.Warn("Key generation denied by permissions",
			zap.Int64("user_id", userID),
			zap.Int64("actor_user_id", actor.SiteUserID),
		)
		metrics.KeyGenerations.WithLabelValues("forbidden").Inc()
		return nil, fmt.Errorf("%w: cannot manage keys for user %d", ierr.ErrForbidden, userID)
	}

	allowed, err := s.limiter.Allow(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	if !allowed {
		s.logger.Info("Key generation denied by cooldown", zap.Int64("user_id", userID))
		metrics.KeyGenerations.WithLabelValues("cooldown").Inc()
		return nil, secretkey.ErrCooldown
	}

	value, err := util.GenerateSecretKey()
	if err != nil {
		s.logger.Error("Failed to generate key value", zap.Error(err))
		return nil, fmt.Errorf("%w: failed generating key: %v", ierr.ErrInternalServer, err)
	}

	key := &secretkey.SecretKey{
		UserID:      userID,
		Value:       value,
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.repo.Upsert(ctx, key); err != nil {
		return nil, fmt.Errorf("repository error storing secret key: %w", err)
	}

	s.logger.Info("Secret key generated", zap.Int64("user_id", userID))
	metrics.KeyGenerations.WithLabelValues("ok").Inc()
	return key, nil
}

// Get returns the user's key metadata, or secretkey.ErrNotFound.
func (s *SecretKeyService) Get(ctx context.Context, actor Actor, userID int64) (*secretkey.SecretKey, error) {
	if !actor.CanManage(userID) {
		return nil, fmt.Errorf("%w: cannot view keys for user %d", ierr.ErrForbidden, userID)
	}
	return s.repo.FindByUserID(ctx, userID)
}

// Delete removes the user's key. Idempotent.
func (s *SecretKeyService) Delete(ctx context.Context, actor Actor, userID int64) error {
	if !actor.CanManage(userID) {
		s.logger.Warn("Key deletion denied by permissions",
			zap.Int64("user_id", userID),
			zap.Int64("actor_user_id", actor.SiteUserID),
		)
		return fmt.Errorf("%w: cannot manage keys for user %d", ierr.ErrForbidden, userID)
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("repository error deleting secret key: %w", err)
	}

	s.logger.Info("Secret key deleted", zap.Int64("user_id", userID))
	return nil
}

// VerifyValue resolves a presented raw key value to its owner. A value
// authenticates only when exactly one user holds it.
func (s *SecretKeyService) VerifyValue(ctx context.Context, value string) (*secretkey.SecretKey, error) {
	key, err := s.repo.FindByValue(ctx, value)
	if err != nil {
		return nil, err
	}
	return key, nil
}
