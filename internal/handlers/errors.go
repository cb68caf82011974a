package handlers

import (
	"errors"
	"net/http"

	"coke_oven/internal/models"
	"coke_oven/internal/service"

	"github.com/gin-gonic/gin"
)

const errInternal = "internal error"

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case models.IsValidation(err), errors.Is(err, service.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateRecord):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotInitialized), errors.Is(err, models.ErrLockUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err under logKey and writes it as JSON. Server-side
// failures are logged as errors and hidden from the client.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code := statusFor(err)
	if h.log != nil {
		fields := append([]interface{}{"err", err, "status", code, "request_id", c.GetString(requestIDKey), "operator", c.GetInt(operatorIDKey)}, kv...)
		if code >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = errInternal
	}
	c.JSON(code, gin.H{"error": msg})
}
