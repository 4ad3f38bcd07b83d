// Package response maps service errors onto the JSON error envelope.
package response

import (
	"errors"
	"net/http"

	"navibu-api/internal/domain/apperr"
	"navibu-api/internal/logger"

	"github.com/gin-gonic/gin"
)

// Status returns the HTTP status for err and whether the error text is safe to show.
func Status(err error) (int, bool) {
	switch {
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrAlreadyVerified),
		errors.Is(err, apperr.ErrInvalidOrExpiredCode):
		return http.StatusBadRequest, true
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusUnauthorized, true
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, true
	default:
		return http.StatusInternalServerError, false
	}
}

// Error writes {"error": ...} and aborts the chain. Unclassified errors are
// logged and answered with a generic message.
func Error(c *gin.Context, err error) {
	status, public := Status(err)
	msg := err.Error()
	switch {
	case errors.Is(err, apperr.ErrNotificationFailed):
		msg = "Email could not be sent. Please try again."
	case !public:
		logger.Log.Errorw("request failed", "path", c.FullPath(), "err", err)
		msg = "Internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// BadRequest is for malformed input caught before the service is called.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
