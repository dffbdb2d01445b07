package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/config"
	"github.com/borrzu/verify-service/internal/domain/purchase"
	"github.com/borrzu/verify-service/internal/domain/secretkey"
	"github.com/borrzu/verify-service/internal/domain/user"
	"github.com/borrzu/verify-service/internal/ierr"
)

// InstallationStatus is the answer to the unauthenticated status probe.
type InstallationStatus struct {
	SiteURL        string
	SiteName       string
	Version        string
	Active         bool
	HasActiveKeys  bool
	TotalUsers     int64
	CommerceActive bool
}

// VerificationService answers the questions the external platform polls
// for: installation status, user existence, and purchase history.
type VerificationService struct {
	users     user.Repository
	keys      secretkey.Repository
	purchases purchase.Repository
	commerce  config.CommerceConfig
	site      config.SiteConfig
	logger    *zap.Logger
}

func NewVerificationService(
	users user.Repository,
	keys secretkey.Repository,
	purchases purchase.Repository,
	commerce config.CommerceConfig,
	site config.SiteConfig,
	logger *zap.Logger,
) *VerificationService {
	return &VerificationService{
		users:     users,
		keys:      keys,
		purchases: purchases,
		commerce:  commerce,
		site:      site,
		logger:    logger.Named("VerificationService"),
	}
}

func (s *VerificationService) Status(ctx context.Context) (*InstallationStatus, error) {
	activeKeys, err := s.keys.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository error counting active keys: %w", err)
	}

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository error counting users: %w", err)
	}

	return &InstallationStatus{
		SiteURL:        s.site.URL,
		SiteName:       s.site.Name,
		Version:        s.site.Version,
		Active:         true,
		HasActiveKeys:  activeKeys > 0,
		TotalUsers:     totalUsers,
		CommerceActive: s.commerce.Enabled,
	}, nil
}

// VerifyUser looks the user up by email, falling back to username when the
// email is unknown and a username was supplied.
func (s *VerificationService) VerifyUser(ctx context.Context, email, username string) (*user.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		s.logger.Error("Failed to look up user by email", zap.Error(err))
		return nil, fmt.Errorf("repository error finding user by email: %w", err)
	}

	if username != "" {
		u, err = s.users.FindByUsername(ctx, username)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, user.ErrNotFound) {
			s.logger.Error("Failed to look up user by username", zap.Error(err))
			return nil, fmt.Errorf("repository error finding user by username: %w", err)
		}
	}

	return nil, ierr.ErrUserNotFound
}

// VerifyPurchase reports whether the user identified by email has bought
// the product. Unknown email is ErrUserNotFound; a disabled commerce
// backend is ErrCommerceUnavailable regardless of the user.
func (s *VerificationService) VerifyPurchase(ctx context.Context, email string, productID int64) (bool, *user.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return false, nil, ierr.ErrUserNotFound
		}
		s.logger.Error("Failed to look up user for purchase check", zap.Error(err))
		return false, nil, fmt.Errorf("repository error finding user by email: %w", err)
	}

	if !s.commerce.Enabled {
		s.logger.Warn("Purchase check requested while commerce backend is disabled",
			zap.Int64("user_id", u.ID),
			zap.Int64("product_id", productID),
		)
		return false, u, ierr.ErrCommerceUnavailable
	}

	purchased, err := s.purchases.HasPurchased(ctx, u.ID, productID)
	if err != nil {
		return false, u, fmt.Errorf("repository error checking purchase: %w", err)
	}

	return purchased, u, nil
}
