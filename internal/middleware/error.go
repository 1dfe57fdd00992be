package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"threadline/internal/apperr"
)

type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	TraceID   string `json:"trace_id,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// RespondError maps err onto a status code and writes the JSON error body.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Code: "INTERNAL_ERROR", Message: "Internal server error"}

	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		status, resp.Code, resp.Message = http.StatusUnauthorized, "UNAUTHORIZED", "login required"
	case errors.Is(err, apperr.ErrValidationFailed):
		status, resp.Code, resp.Message = http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error()
	case apperr.IsStore(err):
		// checked before the sentinels below: a store failure may wrap them
		status, resp.Code, resp.Message = http.StatusBadGateway, "STORE_FAILURE", "storage is unavailable, try again"
		resp.Retryable = true
	case errors.Is(err, apperr.ErrNotFound):
		status, resp.Code, resp.Message = http.StatusNotFound, "NOT_FOUND", "not found"
	case errors.Is(err, apperr.ErrConflict):
		status, resp.Code, resp.Message = http.StatusConflict, "CONFLICT", "already exists"
	}

	resp.TraceID = traceID(c)
	if status >= http.StatusInternalServerError {
		Log(c).Error().Err(err).Str("trace_id", resp.TraceID).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Abort writes an error body with an explicit status and message.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message, TraceID: traceID(c)})
}

func traceID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
