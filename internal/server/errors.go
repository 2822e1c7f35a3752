package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/logger"
)

type errorPayload struct {
	Type    string              `json:"type"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	errUnauthenticated = errors.New("unauthenticated")
	errForbidden       = errors.New("forbidden")
)

// ErrorHandlingMiddleware renders the last error a handler recorded with
// AbortWithError.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if status == http.StatusInternalServerError {
			logger.WithContext(c.Request.Context()).Error().Err(lastErr.Err).
				Str("path", c.FullPath()).
				Msg("Request failed")
		}
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return apperr.Validation("request", "invalid request body")
}

// mapError picks the HTTP status for an error. Rows of other tenants are
// reported exactly like missing rows.
func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "unauthorized"}
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "subscription does not allow access"}
	}

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  apperr.FieldsOf(err),
		}
	case apperr.KindConflict:
		msg := "conflict"
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Message != "" {
			msg = appErr.Message
		}
		return http.StatusConflict, errorPayload{Type: "conflict", Message: msg}
	case apperr.KindNotFound, apperr.KindUnauthorized:
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: "not found"}
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout, errorPayload{Type: "timeout", Message: "the request timed out"}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}
