package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/apilog"
	"github.com/borrzu/verify-service/internal/metrics"
	"github.com/borrzu/verify-service/internal/tasks"
)

// Enqueuer is the slice of asynq.Client the log service needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// APILogService records api interactions and reads them back. Recording is
// fire-and-forget: entries travel through the task queue and failures only
// reach the diagnostic logger, never the caller.
type APILogService struct {
	enqueuer Enqueuer
	repo     apilog.Repository
	logger   *zap.Logger
}

func NewAPILogService(enqueuer Enqueuer, repo apilog.Repository, logger *zap.Logger) *APILogService {
	return &APILogService{
		enqueuer: enqueuer,
		repo:     repo,
		logger:   logger.Named("APILogService"),
	}
}

// RecordParams describes one api interaction. Headers, RequestData and
// ResponseData accept any JSON-serializable value; strings pass through
// unchanged.
type RecordParams struct {
	UserID       int64
	Endpoint     string
	Headers      any
	RequestData  any
	ResponseData any
	StatusCode   int
	Duration     time.Duration
}

func (s *APILogService) Record(params RecordParams) {
	responsePayload := map[string]any{
		"body":        params.ResponseData,
		"duration_ms": params.Duration.Milliseconds(),
	}

	payload := tasks.RecordAPILogPayload{
		RequestID:    uuid.New(),
		UserID:       params.UserID,
		Endpoint:     params.Endpoint,
		Headers:      marshalLoggable(params.Headers),
		RequestData:  marshalLoggable(params.RequestData),
		ResponseData: marshalLoggable(responsePayload),
		StatusCode:   params.StatusCode,
		CreatedAt:    time.Now().UTC(),
	}

	task, err := tasks.NewRecordAPILogTask(payload)
	if err != nil {
		metrics.LogWriteFailures.Inc()
		s.logger.Error("Failed to build api log task",
			zap.String("endpoint", params.Endpoint),
			zap.Error(err),
		)
		return
	}

	if _, err := s.enqueuer.Enqueue(task); err != nil {
		metrics.LogWriteFailures.Inc()
		s.logger.Error("Failed to enqueue api log entry",
			zap.String("endpoint", params.Endpoint),
			zap.Int("status_code", params.StatusCode),
			zap.Error(err),
		)
		return
	}

	s.logger.Debug("API log entry enqueued",
		zap.String("request_id", payload.RequestID.String()),
		zap.String("endpoint", params.Endpoint),
	)
}

func (s *APILogService) List(ctx context.Context, filter apilog.Filter, page, perPage int) ([]*apilog.Entry, int64, error) {
	entries, total, err := s.repo.List(ctx, filter, page, perPage)
	if err != nil {
		s.logger.Error("Failed to list api log entries", zap.Error(err))
		return nil, 0, fmt.Errorf("repository error listing api log entries: %w", err)
	}
	return entries, total, nil
}

// marshalLoggable renders structured values as JSON text for storage.
func marshalLoggable(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
