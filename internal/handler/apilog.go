package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/apilog"
	"github.com/borrzu/verify-service/internal/handler/dto"
	"github.com/borrzu/verify-service/internal/ierr"
	"github.com/borrzu/verify-service/internal/service"
)

type APILogHandler struct {
	service *service.APILogService
	logger  *zap.Logger
}

func NewAPILogHandler(service *service.APILogService, logger *zap.Logger) *APILogHandler {
	return &APILogHandler{
		service: service,
		logger:  logger.Named("APILogHandler"),
	}
}

// List serves the paginated, filterable log viewer.
func (h *APILogHandler) List(c *gin.Context) {
	var req dto.ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("Failed to bind log list query", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	filter := apilog.Filter{
		Endpoint:   req.Endpoint,
		StatusCode: req.StatusCode,
	}
	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			_ = c.Error(fmt.Errorf("%w: invalid date_from", ierr.ErrValidation))
			return
		}
		filter.DateFrom = from
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			_ = c.Error(fmt.Errorf("%w: invalid date_to", ierr.ErrValidation))
			return
		}
		filter.DateTo = to
	}

	entries, total, err := h.service.List(c.Request.Context(), filter, req.Page, req.PerPage)
	if err != nil {
		h.logger.Error("Service failed to list api logs", zap.Error(err))
		_ = c.Error(err)
		return
	}

	responses := make([]*dto.LogEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = dto.NewLogEntryResponse(e)
	}

	c.JSON(http.StatusOK, dto.PaginatedLogsResponse{
		Entries:    responses,
		TotalItems: total,
		Page:       req.Page,
		PerPage:    req.PerPage,
	})
}
