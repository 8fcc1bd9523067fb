package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/sessions"
	"github.com/tylerheal/clientportal/pkg/utils"
)

// CurrentUser resolves the session cookie to a fresh user record, or nil
// when the request carries no valid session.
func CurrentUser(c *gin.Context) *models.User {
	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}
	user, err := sessions.Resolve(token)
	if err != nil {
		logrus.WithError(err).Error("auth: session resolution failed")
		return nil
	}
	return user
}

func setUserContext(c *gin.Context, user *models.User) {
	c.Set("user", user)
	c.Set("user_id", user.ID)
	c.Set("role", user.Role)
}

// ContextUser returns the authenticated user stored by the middleware.
func ContextUser(c *gin.Context) *models.User {
	if value, exists := c.Get("user"); exists {
		if user, ok := value.(*models.User); ok {
			return user
		}
	}
	return nil
}

// RequireAPI gates API routes: 401 without a session, 403 on role mismatch.
func RequireAPI(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			utils.RespondError(c, apperrors.ErrUnauthenticated)
			c.Abort()
			return
		}
		if role != "" && user.Role != role {
			utils.RespondError(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		setUserContext(c, user)
		c.Next()
	}
}

// RequirePage gates HTML page routes: any auth failure redirects to /login.
func RequirePage(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || (role != "" && user.Role != role) {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		setUserContext(c, user)
		c.Next()
	}
}
