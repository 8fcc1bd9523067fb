package services

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/database"
	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/settings"
	"github.com/tylerheal/clientportal/pkg/utils"
)

// serviceView decorates a catalog row with the portal currency so clients
// can render prices without a second settings call.
type serviceView struct {
	models.Service
	Currency string `json:"currency"`
}

type serviceRequest struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Price        float64                `json:"price"`
	BillingCycle string                 `json:"billing_cycle"`
	IsActive     *bool                  `json:"is_active"`
	FormSchema   map[string]interface{} `json:"form_schema"`
}

// HandleListServices lists active services ordered by name.
func HandleListServices(c *gin.Context) {
	var rows []models.Service
	if err := database.DB.Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to list services", err))
		return
	}

	currency := settings.Str(settings.Section(settings.SectionBilling), "currency", "$")
	views := make([]serviceView, 0, len(rows))
	for _, row := range rows {
		views = append(views, serviceView{Service: row, Currency: currency})
	}
	c.JSON(http.StatusOK, views)
}

// HandleCreateService adds a catalog entry.
func HandleCreateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.Validation("Invalid service payload"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.RespondError(c, apperrors.Validation("Name is required"))
		return
	}
	if req.Price < 0 {
		utils.RespondError(c, apperrors.Validation("Price must not be negative"))
		return
	}

	service := models.Service{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		BillingCycle: req.BillingCycle,
		IsActive:     true,
	}
	if req.BillingCycle == "" {
		service.BillingCycle = "one-off"
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	if len(req.FormSchema) > 0 {
		service.FormSchema = models.MustJSON(req.FormSchema)
	}

	if err := database.DB.Create(&service).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to create service", err))
		return
	}
	c.JSON(http.StatusCreated, service)
}

// HandleUpdateService edits a catalog entry in place. Existing orders keep
// their snapshotted price regardless.
func HandleUpdateService(c *gin.Context) {
	service, err := load(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req serviceRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		utils.RespondError(c, apperrors.Validation("Invalid service payload"))
		return
	}
	if req.Price < 0 {
		utils.RespondError(c, apperrors.Validation("Price must not be negative"))
		return
	}

	if strings.TrimSpace(req.Name) != "" {
		service.Name = req.Name
	}
	service.Description = req.Description
	service.Price = req.Price
	if req.BillingCycle != "" {
		service.BillingCycle = req.BillingCycle
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	if req.FormSchema != nil {
		service.FormSchema = models.MustJSON(req.FormSchema)
	}

	if saveErr := database.DB.Save(service).Error; saveErr != nil {
		utils.RespondError(c, apperrors.Internal("Failed to update service", saveErr))
		return
	}
	c.JSON(http.StatusOK, service)
}

// HandleDeleteService deactivates a service instead of deleting it, so
// existing orders keep a resolvable reference.
func HandleDeleteService(c *gin.Context) {
	service, err := load(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	service.IsActive = false
	if saveErr := database.DB.Save(service).Error; saveErr != nil {
		utils.RespondError(c, apperrors.Internal("Failed to deactivate service", saveErr))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func load(c *gin.Context) (*models.Service, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, apperrors.Validation("Invalid service id")
	}

	var service models.Service
	if dbErr := database.DB.First(&service, uint(id)).Error; dbErr != nil {
		if dbErr == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Service not found")
		}
		return nil, apperrors.Internal("Failed to load service", dbErr)
	}
	return &service, nil
}
