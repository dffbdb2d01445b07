package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/config"
	"github.com/borrzu/verify-service/internal/domain/admin"
	"github.com/borrzu/verify-service/internal/ierr"
	"github.com/borrzu/verify-service/internal/storage/memstorage"
)

type AccessClaims struct {
	Role       admin.Role `json:"role"`
	SiteUserID int64      `json:"site_user_id,omitempty"`
	jwt.RegisteredClaims
}

type AuthService struct {
	accounts admin.Repository
	cfg      *config.AuthConfig
	logger   *zap.Logger
}

func NewAuthService(accounts admin.Repository, cfg *config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		cfg:      cfg,
		logger:   logger.Named("AuthService"),
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	acc, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, admin.ErrNotFound) {
			return "", ierr.ErrInvalidCredentials
		}
		s.logger.Error("Failed to look up admin account", zap.Error(err))
		return "", fmt.Errorf("repository error finding admin account: %w", err)
	}

	if !memstorage.CheckPassword(acc.PasswordHash, password) {
		s.logger.Info("Password mismatch on login", zap.String("username", username))
		return "", ierr.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := AccessClaims{
		Role:       acc.Role,
		SiteUserID: acc.SiteUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   acc.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return "", fmt.Errorf("%w: could not sign token: %v", ierr.ErrInternalServer, err)
	}

	s.logger.Info("Access token issued", zap.String("username", username), zap.String("role", string(acc.Role)))
	return signed, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, rawToken string) (*AccessClaims, error) {
	var claims AccessClaims
	token, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(s.cfg.Issuer))

	if err != nil {
		s.logger.Warn("Token validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ierr.ErrInvalidToken
	}

	return &claims, nil
}
