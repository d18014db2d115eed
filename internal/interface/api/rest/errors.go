package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/internal/application/services"
	"filevault-api/internal/infrastructure/db/postgres"
	"filevault-api/internal/interface/api/rest/middleware"
)

// statusOf maps service errors onto HTTP statuses. The second value is the message exposed to
// clients; an empty message means the error is internal and must only be logged.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFoundOrForbidden):
		// expiry and exhaustion stay indistinguishable from a missing share
		return http.StatusNotFound, services.ErrNotFoundOrForbidden.Error()
	case errors.Is(err, services.ErrTermsNotAccepted):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrQuotaExceeded):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, services.ErrNameCollision),
		errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrExtensionNotAllowed),
		errors.Is(err, services.ErrInvalidName),
		errors.Is(err, services.ErrInvalidShareOptions):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, postgres.ErrTransient):
		return http.StatusServiceUnavailable, "temporarily unavailable, retry later"
	}
	return http.StatusInternalServerError, ""
}

// abortWithError writes the mapped status. Internal failures are logged with op and answered
// with fallback so storage details never leak.
func abortWithError(c *gin.Context, logger *zap.Logger, op, fallback string, err error) {
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		fields := []zap.Field{zap.Error(err), zap.String("route", c.FullPath())}
		if id, ok := middleware.ActorID(c); ok {
			fields = append(fields, zap.String("user_id", id.String()))
		}
		logger.Error(op+"() error", fields...)
	}
	if msg == "" {
		msg = fallback
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string, details any) {
	body := gin.H{"error": msg}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
