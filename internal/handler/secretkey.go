package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/secretkey"
	"github.com/borrzu/verify-service/internal/handler/dto"
	"github.com/borrzu/verify-service/internal/handler/middleware"
	"github.com/borrzu/verify-service/internal/ierr"
	"github.com/borrzu/verify-service/internal/service"
)

type SecretKeyHandler struct {
	service *service.SecretKeyService
	logger  *zap.Logger
}

func NewSecretKeyHandler(service *service.SecretKeyService, logger *zap.Logger) *SecretKeyHandler {
	return &SecretKeyHandler{
		service: service,
		logger:  logger.Named("SecretKeyHandler"),
	}
}

// Generate regenerates the user's key. The new value appears only in this
// response; it is stored but never listed again.
func (h *SecretKeyHandler) Generate(c *gin.Context) {
	userID, actor, ok := h.requestIdentity(c)
	if !ok {
		return
	}

	key, err := h.service.Generate(c.Request.Context(), actor, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Secret key regenerated via handler", zap.Int64("user_id", userID))
	c.JSON(http.StatusOK, dto.GenerateKeyResponse{
		UserID:      key.UserID,
		Key:         key.Value,
		GeneratedAt: key.GeneratedAt,
	})
}

// Get reports whether the user holds a key, without revealing the value.
func (h *SecretKeyHandler) Get(c *gin.Context) {
	userID, actor, ok := h.requestIdentity(c)
	if !ok {
		return
	}

	key, err := h.service.Get(c.Request.Context(), actor, userID)
	if err != nil {
		if errors.Is(err, secretkey.ErrNotFound) {
			c.JSON(http.StatusOK, dto.SecretKeyInfoResponse{UserID: userID, HasKey: false})
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SecretKeyInfoResponse{
		UserID:      key.UserID,
		HasKey:      true,
		GeneratedAt: &key.GeneratedAt,
	})
}

// Delete removes the user's key. Idempotent, so an absent key still yields
// 204.
func (h *SecretKeyHandler) Delete(c *gin.Context) {
	userID, actor, ok := h.requestIdentity(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, userID); err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Secret key deleted via handler", zap.Int64("user_id", userID))
	c.Status(http.StatusNoContent)
}

func (h *SecretKeyHandler) requestIdentity(c *gin.Context) (int64, service.Actor, bool) {
	idStr := c.Param("id")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID <= 0 {
		h.logger.Warn("Invalid user id in key request", zap.String("id_param", idStr))
		_ = c.Error(fmt.Errorf("%w: invalid user id", ierr.ErrValidation))
		return 0, service.Actor{}, false
	}

	claims := middleware.GetAccessClaims(c)
	if claims == nil {
		_ = c.Error(ierr.ErrUnauthorized)
		return 0, service.Actor{}, false
	}

	return userID, service.Actor{Role: claims.Role, SiteUserID: claims.SiteUserID}, true
}
