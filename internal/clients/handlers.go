package clients

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/auth"
	"github.com/tylerheal/clientportal/internal/database"
	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/notify"
	"github.com/tylerheal/clientportal/internal/settings"
	"github.com/tylerheal/clientportal/pkg/utils"
)

// sendInvite is swapped out in tests.
var sendInvite = notify.Send

// HandleListClients lists client accounts, newest first.
func HandleListClients(c *gin.Context) {
	var rows []models.User
	if err := database.DB.Where("role = ?", models.RoleClient).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to list clients", err))
		return
	}
	c.JSON(http.StatusOK, rows)
}

// HandleInviteClient creates a client account with a generated password and
// emails the credentials. The inviting admin is recorded on the account.
func HandleInviteClient(c *gin.Context) {
	admin := auth.ContextUser(c)

	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Company string `json:"company"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.Validation("Name and email are required"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		utils.RespondError(c, apperrors.Validation("Name and email are required"))
		return
	}

	var existing models.User
	if err := database.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, apperrors.Conflict("An account with this email already exists"))
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.RespondError(c, apperrors.Internal("Failed to check existing account", err))
		return
	}

	password := generatePassword()
	hash, err := auth.HashPassword(password)
	if err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to hash password", err))
		return
	}

	client := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleClient,
		Company:      req.Company,
		InvitedBy:    &admin.ID,
	}
	if err := database.DB.Create(&client).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to create client", err))
		return
	}

	portalURL := settings.Str(settings.Section(settings.SectionBranding), "portal_url", requestOrigin(c))
	go sendInvite("invite_client", []string{client.Email}, map[string]interface{}{
		"client_name": client.Name,
		"email":       client.Email,
		"password":    password,
		"portal_url":  portalURL,
	})

	c.JSON(http.StatusCreated, client)
}

func generatePassword() string {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.GetHeader("X-Forwarded-Proto") == "https" || c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
