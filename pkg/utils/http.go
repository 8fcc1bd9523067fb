package utils

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/tylerheal/clientportal/internal/errors"
)

// statusFor is the single place the error taxonomy meets HTTP.
func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps a domain error onto a JSON response. Unexpected errors
// surface their description in the body; this server is an internal
// admin/client tool, not a public API.
func RespondError(c *gin.Context, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		appErr = apperrors.Internal(err.Error(), err)
	}

	status := statusFor(appErr.Kind)
	c.JSON(status, gin.H{
		"error":   appErr.Code,
		"message": appErr.Message,
	})

	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"route":  c.FullPath(),
			"status": status,
			"code":   appErr.Code,
		}).WithError(appErr.Err).Error(appErr.Message)
		CaptureSentryError(c, appErr.Err, appErr.Code)
	}
}

// GetClientIP extracts the client IP from the request
func GetClientIP(c *gin.Context) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	forwarded := c.GetHeader("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	realIP := c.GetHeader("X-Real-IP")
	if realIP != "" {
		return strings.TrimSpace(realIP)
	}

	return c.ClientIP()
}
