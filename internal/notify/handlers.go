package notify

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/database"
	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/pkg/utils"
)

// HandleListEmailTemplates returns every email template ordered by slug.
func HandleListEmailTemplates(c *gin.Context) {
	var templates []models.EmailTemplate
	if err := database.DB.Order("slug ASC").Find(&templates).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to list email templates", err))
		return
	}
	c.JSON(http.StatusOK, templates)
}

// HandleUpdateEmailTemplate edits subject and body in place. Slugs are
// immutable once seeded, so only those two fields ever change.
func HandleUpdateEmailTemplate(c *gin.Context) {
	slug := c.Param("slug")

	var req struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.Validation("Invalid template payload"))
		return
	}

	var tpl models.EmailTemplate
	if err := database.DB.Where("slug = ?", slug).First(&tpl).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.RespondError(c, apperrors.NotFound("Email template not found"))
			return
		}
		utils.RespondError(c, apperrors.Internal("Failed to load email template", err))
		return
	}

	tpl.Subject = req.Subject
	tpl.Body = req.Body
	if err := database.DB.Save(&tpl).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to update email template", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
