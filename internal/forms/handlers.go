package forms

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/database"
	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/pkg/utils"
)

type templateRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Schema      map[string]interface{} `json:"schema"`
}

// HandleListTemplates lists reusable intake-form templates by name.
func HandleListTemplates(c *gin.Context) {
	var rows []models.FormTemplate
	if err := database.DB.Order("name ASC").Find(&rows).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to list form templates", err))
		return
	}
	c.JSON(http.StatusOK, rows)
}

// HandleCreateTemplate stores a new intake-form template.
func HandleCreateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.Validation("Invalid template payload"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.RespondError(c, apperrors.Validation("Name is required"))
		return
	}

	tpl := models.FormTemplate{Name: req.Name, Description: req.Description}
	if req.Schema != nil {
		tpl.Schema = models.MustJSON(req.Schema)
	}
	if err := database.DB.Create(&tpl).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to create form template", err))
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

// HandleUpdateTemplate edits an intake-form template in place.
func HandleUpdateTemplate(c *gin.Context) {
	tpl, err := load(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req templateRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		utils.RespondError(c, apperrors.Validation("Invalid template payload"))
		return
	}

	if strings.TrimSpace(req.Name) != "" {
		tpl.Name = req.Name
	}
	tpl.Description = req.Description
	if req.Schema != nil {
		tpl.Schema = models.MustJSON(req.Schema)
	}

	if saveErr := database.DB.Save(tpl).Error; saveErr != nil {
		utils.RespondError(c, apperrors.Internal("Failed to update form template", saveErr))
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// HandleDeleteTemplate removes an intake-form template. Services hold their
// own schema copy, so deletion never breaks an existing service form.
func HandleDeleteTemplate(c *gin.Context) {
	tpl, err := load(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if delErr := database.DB.Delete(tpl).Error; delErr != nil {
		utils.RespondError(c, apperrors.Internal("Failed to delete form template", delErr))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func load(c *gin.Context) (*models.FormTemplate, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, apperrors.Validation("Invalid template id")
	}

	var tpl models.FormTemplate
	if dbErr := database.DB.First(&tpl, uint(id)).Error; dbErr != nil {
		if dbErr == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Form template not found")
		}
		return nil, apperrors.Internal("Failed to load form template", dbErr)
	}
	return &tpl, nil
}
