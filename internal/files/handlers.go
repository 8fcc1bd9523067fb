package files

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/auth"
	"github.com/tylerheal/clientportal/internal/database"
	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/pkg/utils"
)

// HandleClientListFiles lists downloads visible to the caller: shared files
// (no owner) plus the caller's own.
func HandleClientListFiles(c *gin.Context) {
	user := auth.ContextUser(c)

	var rows []models.File
	if err := database.DB.Where("user_id IS NULL OR user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to list files", err))
		return
	}
	c.JSON(http.StatusOK, rows)
}

// HandleAdminListFiles lists every file record.
func HandleAdminListFiles(c *gin.Context) {
	var rows []models.File
	if err := database.DB.Order("created_at DESC").Find(&rows).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to list files", err))
		return
	}
	c.JSON(http.StatusOK, rows)
}

// HandleCreateFile registers a download link, shared or client-scoped.
func HandleCreateFile(c *gin.Context) {
	var req struct {
		UserID      *uint  `json:"user_id"`
		Name        string `json:"name"`
		URL         string `json:"url"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.Validation("Invalid file payload"))
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.URL) == "" {
		utils.RespondError(c, apperrors.Validation("Name and URL are required"))
		return
	}

	file := models.File{
		UserID:      req.UserID,
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
	}
	if err := database.DB.Create(&file).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to create file", err))
		return
	}
	c.JSON(http.StatusCreated, file)
}

// HandleDeleteFile removes a file record.
func HandleDeleteFile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, apperrors.Validation("Invalid file id"))
		return
	}

	var file models.File
	if dbErr := database.DB.First(&file, uint(id)).Error; dbErr != nil {
		if dbErr == gorm.ErrRecordNotFound {
			utils.RespondError(c, apperrors.NotFound("File not found"))
			return
		}
		utils.RespondError(c, apperrors.Internal("Failed to load file", dbErr))
		return
	}

	if delErr := database.DB.Delete(&file).Error; delErr != nil {
		utils.RespondError(c, apperrors.Internal("Failed to delete file", delErr))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
