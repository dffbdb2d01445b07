package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/borrzu/verify-service/internal/domain/apilog"
)

type ListLogsRequest struct {
	Endpoint   string `form:"endpoint"`
	StatusCode int    `form:"status_code" binding:"omitempty,gte=100,lte=599"`
	DateFrom   string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo     string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page,default=1" binding:"omitempty,gte=1"`
	PerPage    int    `form:"per_page,default=20" binding:"omitempty,gte=1,lte=100"`
}

type LogEntryResponse struct {
	ID           int64     `json:"id"`
	RequestID    uuid.UUID `json:"request_id"`
	UserID       int64     `json:"user_id"`
	Endpoint     string    `json:"endpoint"`
	Headers      string    `json:"headers"`
	RequestData  string    `json:"request_data"`
	ResponseData string    `json:"response_data"`
	StatusCode   int       `json:"status_code"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewLogEntryResponse(e *apilog.Entry) *LogEntryResponse {
	return &LogEntryResponse{
		ID:           e.ID,
		RequestID:    e.RequestID,
		UserID:       e.UserID,
		Endpoint:     e.Endpoint,
		Headers:      e.Headers,
		RequestData:  e.RequestData,
		ResponseData: e.ResponseData,
		StatusCode:   e.StatusCode,
		CreatedAt:    e.CreatedAt,
	}
}

type PaginatedLogsResponse struct {
	Entries    []*LogEntryResponse `json:"entries"`
	TotalItems int64               `json:"total_items"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"per_page"`
}
