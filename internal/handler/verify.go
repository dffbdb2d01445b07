package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/apilog"
	"github.com/borrzu/verify-service/internal/handler/dto"
	"github.com/borrzu/verify-service/internal/handler/middleware"
	"github.com/borrzu/verify-service/internal/ierr"
	"github.com/borrzu/verify-service/internal/metrics"
	"github.com/borrzu/verify-service/internal/service"
)

const (
	endpointVerify         = "/borrzu/v1/verify"
	endpointVerifyUser     = "/borrzu/v1/verify-user"
	endpointVerifyPurchase = "/borrzu/v1/verify-purchase"
)

type VerifyHandler struct {
	verification *service.VerificationService
	audit        *service.APILogService
	logger       *zap.Logger
}

func NewVerifyHandler(verification *service.VerificationService, audit *service.APILogService, logger *zap.Logger) *VerifyHandler {
	return &VerifyHandler{
		verification: verification,
		audit:        audit,
		logger:       logger.Named("VerifyHandler"),
	}
}

// Status answers the unauthenticated installation probe. 428 signals that
// the commerce backend prerequisite is missing.
func (h *VerifyHandler) Status(c *gin.Context) {
	start := time.Now()

	status, err := h.verification.Status(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to assemble installation status", zap.Error(err))
		h.record(c, apilog.SystemUserID, endpointVerify, nil, gin.H{"error": "status check failed"}, http.StatusInternalServerError, start)
		_ = c.Error(err)
		return
	}

	resp := dto.StatusResponse{
		SiteURL:        status.SiteURL,
		SiteName:       status.SiteName,
		Version:        status.Version,
		Active:         status.Active,
		HasActiveKeys:  status.HasActiveKeys,
		TotalUsers:     status.TotalUsers,
		CommerceActive: status.CommerceActive,
	}

	httpStatus := http.StatusOK
	if !status.CommerceActive {
		httpStatus = http.StatusPreconditionRequired
		resp.Message = "Commerce backend is not active on this installation"
	}

	h.record(c, apilog.SystemUserID, endpointVerify, nil, resp, httpStatus, start)
	c.JSON(httpStatus, resp)
}

// VerifyUser checks that a user exists, by email with username fallback.
func (h *VerifyHandler) VerifyUser(c *gin.Context) {
	start := time.Now()
	owner := middleware.GetKeyOwner(c)

	var req dto.VerifyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind verify-user request", zap.Error(err))
		h.record(c, owner, endpointVerifyUser, nil, gin.H{"error": "invalid request body"}, http.StatusBadRequest, start)
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	u, err := h.verification.VerifyUser(c.Request.Context(), req.Email, req.Username)
	if err != nil {
		if errors.Is(err, ierr.ErrUserNotFound) {
			resp := dto.VerifyUserResponse{
				Exists:  false,
				Message: "No user matches the given email or username",
			}
			h.record(c, owner, endpointVerifyUser, req, resp, http.StatusNotFound, start)
			c.JSON(http.StatusNotFound, resp)
			return
		}

		h.logger.Error("Service failed to verify user", zap.Error(err))
		h.record(c, owner, endpointVerifyUser, req, gin.H{"error": "verification failed"}, http.StatusInternalServerError, start)
		_ = c.Error(err)
		return
	}

	resp := dto.VerifyUserResponse{
		Exists:   true,
		Message:  "User exists",
		UserData: dto.NewUserData(u),
	}
	h.record(c, owner, endpointVerifyUser, req, resp, http.StatusOK, start)
	c.JSON(http.StatusOK, resp)
}

// VerifyPurchase checks whether the user bought the product.
func (h *VerifyHandler) VerifyPurchase(c *gin.Context) {
	start := time.Now()
	owner := middleware.GetKeyOwner(c)

	var req dto.VerifyPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind verify-purchase request", zap.Error(err))
		h.record(c, owner, endpointVerifyPurchase, nil, gin.H{"error": "invalid request body"}, http.StatusBadRequest, start)
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	purchased, u, err := h.verification.VerifyPurchase(c.Request.Context(), req.Email, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, ierr.ErrUserNotFound):
			resp := dto.VerifyPurchaseResponse{
				Message: "No user matches the given email",
			}
			h.record(c, owner, endpointVerifyPurchase, req, resp, http.StatusNotFound, start)
			c.JSON(http.StatusNotFound, resp)
			return
		case errors.Is(err, ierr.ErrCommerceUnavailable):
			resp := dto.VerifyPurchaseResponse{
				Message: "The commerce backend is not available",
			}
			h.record(c, owner, endpointVerifyPurchase, req, resp, http.StatusInternalServerError, start)
			c.JSON(http.StatusInternalServerError, resp)
			return
		}

		h.logger.Error("Service failed to verify purchase", zap.Error(err))
		h.record(c, owner, endpointVerifyPurchase, req, gin.H{"error": "verification failed"}, http.StatusInternalServerError, start)
		_ = c.Error(err)
		return
	}

	resp := dto.VerifyPurchaseResponse{
		HasPurchased: &purchased,
		Message:      "Purchase check completed",
		UserID:       u.ID,
		ProductID:    req.ProductID,
	}
	h.record(c, owner, endpointVerifyPurchase, req, resp, http.StatusOK, start)
	c.JSON(http.StatusOK, resp)
}

func (h *VerifyHandler) record(c *gin.Context, userID int64, endpoint string, request, response any, status int, start time.Time) {
	metrics.VerificationRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	h.audit.Record(service.RecordParams{
		UserID:       userID,
		Endpoint:     endpoint,
		Headers:      sanitizedHeaders(c),
		RequestData:  request,
		ResponseData: response,
		StatusCode:   status,
		Duration:     time.Since(start),
	})
}

// sanitizedHeaders copies the request headers with credentials masked.
func sanitizedHeaders(c *gin.Context) map[string][]string {
	headers := make(map[string][]string, len(c.Request.Header))
	for name, values := range c.Request.Header {
		switch name {
		case middleware.SecretKeyHeader, "Authorization":
			headers[name] = []string{"[redacted]"}
		default:
			headers[name] = values
		}
	}
	return headers
}
