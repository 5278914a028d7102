package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/procurement/internal/repository/mongodb"
	"github.com/mamadbah2/procurement/internal/service/canvass"
	"github.com/mamadbah2/procurement/internal/service/requests"
)

// statusFor maps service sentinels onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, requests.ErrInvalidRequest),
		errors.Is(err, requests.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, canvass.ErrSignerMismatch):
		return http.StatusForbidden
	case errors.Is(err, mongodb.ErrNotFound),
		errors.Is(err, canvass.ErrSessionNotFound),
		errors.Is(err, canvass.ErrIndexOutOfRange),
		errors.Is(err, canvass.ErrUnknownDivision),
		errors.Is(err, canvass.ErrUnknownSupplier),
		errors.Is(err, canvass.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, mongodb.ErrDuplicate),
		errors.Is(err, canvass.ErrSessionExists),
		errors.Is(err, canvass.ErrRequestNotApproved),
		errors.Is(err, canvass.ErrStageIncomplete),
		errors.Is(err, canvass.ErrStageNotReached),
		errors.Is(err, canvass.ErrSessionClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}
