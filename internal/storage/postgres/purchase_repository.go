package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/purchase"
)

type PurchaseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPurchaseRepository(db *pgxpool.Pool, logger *zap.Logger) *PurchaseRepository {
	return &PurchaseRepository{
		db:     db,
		logger: logger.Named("PurchaseRepository"),
	}
}

var _ purchase.Repository = (*PurchaseRepository)(nil)

func (r *PurchaseRepository) HasPurchased(ctx context.Context, userID int64, productID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1
			  AND oi.product_id = $2
			  AND o.status = 'completed'
		)
	`
	var purchased bool
	if err := r.db.QueryRow(ctx, query, userID, productID).Scan(&purchased); err != nil {
		r.logger.Error("Failed to query purchase history",
			zap.Int64("user_id", userID),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return false, fmt.Errorf("db error checking purchase: %w", err)
	}
	return purchased, nil
}
