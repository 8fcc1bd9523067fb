package utils

import (
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// CaptureSentryError forwards an error to Sentry when a hub is attached to
// the request; a no-op otherwise.
func CaptureSentryError(c *gin.Context, err error, context string) {
	if c == nil {
		if err != nil {
			sentry.CaptureException(err)
		}
		return
	}

	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("context", context)
		scope.SetRequest(c.Request)
		if err != nil {
			hub.CaptureException(err)
		} else {
			hub.CaptureMessage(context)
		}
	})
}
