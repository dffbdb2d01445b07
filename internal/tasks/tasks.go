package tasks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeAPILogRecord = "apilog:record"
)

// RecordAPILogPayload carries one api log entry to the worker that
// persists it.
type RecordAPILogPayload struct {
	RequestID    uuid.UUID `json:"request_id"`
	UserID       int64     `json:"user_id"`
	Endpoint     string    `json:"endpoint"`
	Headers      string    `json:"headers"`
	RequestData  string    `json:"request_data"`
	ResponseData string    `json:"response_data"`
	StatusCode   int       `json:"status_code"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewRecordAPILogTask(payload RecordAPILogPayload, opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	allOpts := append(opts, asynq.MaxRetry(3), asynq.Queue("low"))
	return asynq.NewTask(TypeAPILogRecord, payloadBytes, allOpts...), nil
}
