package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/apilog"
)

type RecordAPILogHandler struct {
	repo   apilog.Repository
	logger *zap.Logger
}

func NewRecordAPILogHandler(repo apilog.Repository, logger *zap.Logger) *RecordAPILogHandler {
	return &RecordAPILogHandler{
		repo:   repo,
		logger: logger.Named("RecordAPILogHandler"),
	}
}

func (h *RecordAPILogHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeAPILogRecord {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	var p RecordAPILogPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.logger.Error("Failed to unmarshal api log payload", zap.Error(err), zap.ByteString("payload", t.Payload()))
		return fmt.Errorf("invalid payload: %v", err)
	}

	entry := &apilog.Entry{
		RequestID:    p.RequestID,
		UserID:       p.UserID,
		Endpoint:     p.Endpoint,
		Headers:      p.Headers,
		RequestData:  p.RequestData,
		ResponseData: p.ResponseData,
		StatusCode:   p.StatusCode,
		CreatedAt:    p.CreatedAt,
	}

	if err := h.repo.Insert(ctx, entry); err != nil {
		h.logger.Error("Failed to persist api log entry",
			zap.String("request_id", p.RequestID.String()),
			zap.String("endpoint", p.Endpoint),
			zap.Error(err),
		)
		return fmt.Errorf("repository error persisting api log entry: %w", err)
	}

	h.logger.Debug("API log entry persisted",
		zap.Int64("id", entry.ID),
		zap.String("endpoint", entry.Endpoint),
		zap.Int("status_code", entry.StatusCode),
	)
	return nil
}
