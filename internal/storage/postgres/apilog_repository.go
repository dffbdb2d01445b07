package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/apilog"
)

type APILogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAPILogRepository(db *pgxpool.Pool, logger *zap.Logger) *APILogRepository {
	return &APILogRepository{
		db:     db,
		logger: logger.Named("APILogRepository"),
	}
}

var _ apilog.Repository = (*APILogRepository)(nil)

func (r *APILogRepository) Insert(ctx context.Context, entry *apilog.Entry) error {
	query := `
		INSERT INTO api_logs (request_id, user_id, endpoint, headers, request_data, response_data, status_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
		RETURNING id, created_at
	`
	var createdAt any
	if !entry.CreatedAt.IsZero() {
		createdAt = entry.CreatedAt
	}

	err := r.db.QueryRow(ctx, query,
		entry.RequestID,
		entry.UserID,
		entry.Endpoint,
		entry.Headers,
		entry.RequestData,
		entry.ResponseData,
		entry.StatusCode,
		createdAt,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert api log entry",
			zap.String("endpoint", entry.Endpoint),
			zap.Int64("user_id", entry.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("db error inserting api log entry: %w", err)
	}

	return nil
}

func (r *APILogRepository) List(ctx context.Context, filter apilog.Filter, page, perPage int) ([]*apilog.Entry, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = apilog.DefaultPerPage
	}

	where, args := buildLogFilter(filter)

	// The count query shares the WHERE clause with the row query so the
	// reported total always matches the filtered set.
	countQuery := `SELECT COUNT(*) FROM api_logs` + where
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count api log entries", zap.Error(err))
		return nil, 0, fmt.Errorf("db error counting api log entries: %w", err)
	}

	rowQuery := fmt.Sprintf(`
		SELECT id, request_id, user_id, endpoint, headers, request_data, response_data, status_code, created_at
		FROM api_logs%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	rowArgs := append(args, perPage, (page-1)*perPage)

	rows, err := r.db.Query(ctx, rowQuery, rowArgs...)
	if err != nil {
		r.logger.Error("Failed to query api log entries", zap.Error(err))
		return nil, 0, fmt.Errorf("db error listing api log entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*apilog.Entry, 0, perPage)
	for rows.Next() {
		var e apilog.Entry
		err := rows.Scan(
			&e.ID,
			&e.RequestID,
			&e.UserID,
			&e.Endpoint,
			&e.Headers,
			&e.RequestData,
			&e.ResponseData,
			&e.StatusCode,
			&e.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan api log row", zap.Error(err))
			return nil, 0, fmt.Errorf("database scan error during list: %w", err)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating api log rows", zap.Error(err))
		return nil, 0, fmt.Errorf("database iteration error on list: %w", err)
	}

	return entries, total, nil
}

// buildLogFilter renders the WHERE clause and positional args for a filter.
// Calendar dates are widened to full days so an equal DateFrom/DateTo pair
// covers that whole day.
func buildLogFilter(filter apilog.Filter) (string, []any) {
	var conds []string
	var args []any

	if filter.Endpoint != "" {
		args = append(args, "%"+filter.Endpoint+"%")
		conds = append(conds, fmt.Sprintf("endpoint ILIKE $%d", len(args)))
	}
	if filter.StatusCode != 0 {
		args = append(args, filter.StatusCode)
		conds = append(conds, fmt.Sprintf("status_code = $%d", len(args)))
	}
	if !filter.DateFrom.IsZero() {
		from := startOfDay(filter.DateFrom)
		args = append(args, from)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !filter.DateTo.IsZero() {
		to := startOfDay(filter.DateTo).Add(24*time.Hour - time.Second)
		args = append(args, to)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
