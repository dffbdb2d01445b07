package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/secretkey"
)

type SecretKeyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSecretKeyRepository(db *pgxpool.Pool, logger *zap.Logger) *SecretKeyRepository {
	return &SecretKeyRepository{
		db:     db,
		logger: logger.Named("SecretKeyRepository"),
	}
}

var _ secretkey.Repository = (*SecretKeyRepository)(nil)

func (r *SecretKeyRepository) Upsert(ctx context.Context, key *secretkey.SecretKey) error {
	query := `
		INSERT INTO secret_keys (user_id, key_value, generated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET key_value = EXCLUDED.key_value, generated_at = EXCLUDED.generated_at
	`
	_, err := r.db.Exec(ctx, query, key.UserID, key.Value, key.GeneratedAt)
	if err != nil {
		r.logger.Error("Failed to upsert secret key", zap.Int64("user_id", key.UserID), zap.Error(err))
		return fmt.Errorf("db error upserting secret key: %w", err)
	}

	r.logger.Info("Secret key stored", zap.Int64("user_id", key.UserID))
	return nil
}

func (r *SecretKeyRepository) FindByUserID(ctx context.Context, userID int64) (*secretkey.SecretKey, error) {
	query := `SELECT user_id, key_value, generated_at FROM secret_keys WHERE user_id = $1`
	return r.scanKey(r.db.QueryRow(ctx, query, userID))
}

func (r *SecretKeyRepository) FindByValue(ctx context.Context, value string) (*secretkey.SecretKey, error) {
	query := `SELECT user_id, key_value, generated_at FROM secret_keys WHERE key_value = $1`
	return r.scanKey(r.db.QueryRow(ctx, query, value))
}

func (r *SecretKeyRepository) Delete(ctx context.Context, userID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM secret_keys WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error("Failed to delete secret key", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("db error deleting secret key: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Debug("Delete requested for absent secret key", zap.Int64("user_id", userID))
	}
	return nil
}

func (r *SecretKeyRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM secret_keys`).Scan(&count); err != nil {
		r.logger.Error("Failed to count active secret keys", zap.Error(err))
		return 0, fmt.Errorf("db error counting secret keys: %w", err)
	}
	return count, nil
}

func (r *SecretKeyRepository) scanKey(row pgx.Row) (*secretkey.SecretKey, error) {
	var key secretkey.SecretKey
	err := row.Scan(&key.UserID, &key.Value, &key.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, secretkey.ErrNotFound
		}
		r.logger.Error("Failed to scan secret key row", zap.Error(err))
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &key, nil
}
