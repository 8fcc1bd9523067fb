package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/pkg/utils"
)

// HandleGetSettings returns every settings section.
func HandleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, All())
}

// HandleUpdateSection replaces one settings section.
func HandleUpdateSection(c *gin.Context) {
	section := c.Param("section")

	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.RespondError(c, apperrors.Validation("Invalid settings payload"))
		return
	}

	if err := Save(section, data); err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to save settings", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
