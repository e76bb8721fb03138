// Package respond writes service errors as JSON HTTP responses.
package respond

import (
	"errors"
	"net/http"

	"files-manager/internal/model/apperr"
	"files-manager/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts the request. Internal failures are logged and their details
// never reach the client.
func Error(c *gin.Context, err error) {
	code := Status(err)
	if code == http.StatusInternalServerError {
		logger.GetLogger(c.Request.Context()).Error("request failed",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.AbortWithStatusJSON(code, gin.H{"error": "Internal server error"})
		return
	}

	msg := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		msg = appErr.Msg
	}
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}
