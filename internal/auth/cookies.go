package auth

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tylerheal/clientportal/internal/sessions"
)

// SessionCookieName is the fixed name of the portal session cookie.
const SessionCookieName = "portal_session"

func shouldUseSecureCookies(c *gin.Context) bool {
	if value := strings.ToLower(strings.TrimSpace(os.Getenv("SECURE_COOKIES"))); value != "" {
		return value != "false"
	}
	if c != nil {
		if proto := strings.ToLower(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto"))); proto == "https" {
			return true
		}
	}
	return c.Request.TLS != nil
}

// SetSessionCookie attaches the session token as an HttpOnly, SameSite=Lax
// cookie with the fixed session TTL.
func SetSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessions.TTL.Seconds()),
		HttpOnly: true,
		Secure:   shouldUseSecureCookies(c),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   shouldUseSecureCookies(c),
		SameSite: http.SameSiteLaxMode,
	})
}
