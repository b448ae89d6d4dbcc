package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/repository"
	"github.com/mamadbah2/apigest/internal/service/backup"
	"github.com/mamadbah2/apigest/internal/service/sales"
	"github.com/mamadbah2/apigest/internal/service/traceability"
)

var validationErrors = []error{
	traceability.ErrInvalidPackaging,
	traceability.ErrInvalidHarvest,
	sales.ErrEmptyCart,
	sales.ErrMissingClient,
	backup.ErrInvalidBackup,
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	fields := []zap.Field{zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err)}

	switch {
	case status == http.StatusInsufficientStorage:
		logger.Warn("storage quota exceeded", fields...)
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", fields...)
	default:
		logger.Debug("request rejected", fields...)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func respondBadRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
