package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/user"
)

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger.Named("UserRepository"),
	}
}

var _ user.Repository = (*UserRepository)(nil)

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, email, username, display_name, registered_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `
		SELECT id, email, username, display_name, registered_at
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`
	return r.scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		r.logger.Error("Failed to count users", zap.Error(err))
		return 0, fmt.Errorf("db error counting users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		r.logger.Error("Failed to scan user row", zap.Error(err))
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &u, nil
}
