package orders

import (
	"io"
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

// orderView flattens the joined client and service names into the order row
// the dashboards render.
type orderView struct {
	models.Order
	ClientName  string `json:"client_name,omitempty"`
	ClientEmail string `json:"client_email,omitempty"`
	ServiceName string `json:"service_name"`
}

func toView(order models.Order, withClient bool) orderView {
	view := orderView{Order: order, ServiceName: order.Service.Name}
	if withClient {
		view.ClientName = order.User.Name
		view.ClientEmail = order.User.Email
	}
	return view
}

func orderID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperrors.Validation("Invalid order id")
	}
	return uint(id), nil
}

// HandleAdminListOrders lists every order, optionally filtered by payment
// status, newest first.
func HandleAdminListOrders(c *gin.Context) {
	query := database.DB.Preload("User").Preload("Service").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("payment_status = ?", status)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to list orders", err))
		return
	}

	views := make([]orderView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row, true))
	}
	c.JSON(http.StatusOK, views)
}

// HandleUpdatePaymentStatus overwrites an order's settlement state.
func HandleUpdatePaymentStatus(c *gin.Context) {
	id, err := orderID(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// An absent or blank status falls back to pending; the field is
	// otherwise free text.
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		utils.RespondError(c, apperrors.Validation("Invalid payment payload"))
		return
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = "pending"
	}

	order, updateErr := UpdatePaymentStatus(id, status)
	if updateErr != nil {
		utils.RespondError(c, updateErr)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HandleClientListOrders lists the caller's own orders, newest first.
func HandleClientListOrders(c *gin.Context) {
	user := auth.ContextUser(c)

	var rows []models.Order
	if err := database.DB.Preload("Service").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to list orders", err))
		return
	}

	views := make([]orderView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row, false))
	}
	c.JSON(http.StatusOK, views)
}

// HandleCreateOrder places a new order for the calling client.
func HandleCreateOrder(c *gin.Context) {
	user := auth.ContextUser(c)

	var req struct {
		ServiceID uint                   `json:"service_id" binding:"required"`
		Responses map[string]interface{} `json:"responses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.Validation("Service is required"))
		return
	}

	order, err := CreateOrder(user, req.ServiceID, req.Responses)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// HandleGetOrder returns one order. Clients only see their own; a foreign
// order answers 404, not 403, so order ids are not probeable.
func HandleGetOrder(c *gin.Context) {
	user := auth.ContextUser(c)
	id, err := orderID(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var order models.Order
	if dbErr := database.DB.Preload("Service").First(&order, id).Error; dbErr != nil {
		if dbErr == gorm.ErrRecordNotFound {
			utils.RespondError(c, apperrors.NotFound("Order not found"))
			return
		}
		utils.RespondError(c, apperrors.Internal("Failed to load order", dbErr))
		return
	}
	if user.Role != models.RoleAdmin && order.UserID != user.ID {
		utils.RespondError(c, apperrors.NotFound("Order not found"))
		return
	}
	c.JSON(http.StatusOK, toView(order, false))
}

// HandleCreateCheckout creates a provider checkout session for an order.
func HandleCreateCheckout(c *gin.Context) {
	user := auth.ContextUser(c)
	id, err := orderID(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	_, session, checkoutErr := CreateCheckout(user, id)
	if checkoutErr != nil {
		utils.RespondError(c, checkoutErr)
		return
	}
	c.JSON(http.StatusOK, session)
}
