package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/database"
	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/sessions"
	"github.com/tylerheal/clientportal/pkg/utils"
)

func dashboardPath(role string) string {
	if role == models.RoleAdmin {
		return "/admin"
	}
	return "/client"
}

// HandleLogin handles user login. Accepts form- or JSON-encoded credentials
// and answers with a 303 redirect to the role dashboard.
func HandleLogin(c *gin.Context) {
	var req struct {
		Email    string `form:"email" json:"email"`
		Password string `form:"password" json:"password"`
	}
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, apperrors.Validation("Email and password are required"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		utils.RespondError(c, apperrors.Validation("Email and password are required"))
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.RespondError(c, apperrors.ErrInvalidCredentials)
			return
		}
		utils.RespondError(c, apperrors.Internal("Failed to query user", err))
		return
	}

	if !CheckPassword(req.Password, user.PasswordHash) {
		utils.RespondError(c, apperrors.ErrInvalidCredentials)
		return
	}

	token, err := sessions.Create(user.ID)
	if err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to create session", err))
		return
	}

	SetSessionCookie(c, token)
	logrus.WithField("email", user.Email).Info("auth: login")
	c.Redirect(http.StatusSeeOther, dashboardPath(user.Role))
}

// HandleSignup registers a new client account and signs it in.
func HandleSignup(c *gin.Context) {
	var req struct {
		Email     string `form:"email" json:"email"`
		Password  string `form:"password" json:"password"`
		FirstName string `form:"first_name" json:"first_name"`
		LastName  string `form:"last_name" json:"last_name"`
		Company   string `form:"company" json:"company"`
	}
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, apperrors.Validation("Missing fields"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	if email == "" || req.Password == "" || name == "" {
		utils.RespondError(c, apperrors.Validation("Missing fields"))
		return
	}

	var existing models.User
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.RespondError(c, apperrors.Conflict("Email already exists"))
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to hash password", err))
		return
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleClient,
		Company:      strings.TrimSpace(req.Company),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to create user", err))
		return
	}

	token, err := sessions.Create(user.ID)
	if err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to create session", err))
		return
	}

	SetSessionCookie(c, token)
	logrus.WithField("email", user.Email).Info("auth: signup")
	c.Redirect(http.StatusSeeOther, "/client")
}

// HandleLogout destroys the current session.
func HandleLogout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookieName); err == nil {
		if err := sessions.Destroy(token); err != nil {
			logrus.WithError(err).Warn("auth: failed to destroy session")
		}
	}
	ClearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}
