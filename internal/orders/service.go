package orders

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/database"
	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/notify"
	"github.com/tylerheal/clientportal/internal/payments"
	"github.com/tylerheal/clientportal/internal/settings"
)

// CreateOrder places an order for an active service on behalf of user. The
// service price and the portal currency are snapshotted onto the order so
// later catalog edits never change what an existing order owes.
func CreateOrder(user *models.User, serviceID uint, responses map[string]interface{}) (*models.Order, error) {
	var service models.Service
	if err := database.DB.First(&service, serviceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.Validation("Service unavailable")
		}
		return nil, apperrors.Internal("Failed to load service", err)
	}
	if !service.IsActive {
		return nil, apperrors.Validation("Service unavailable")
	}

	billing := settings.Section(settings.SectionBilling)
	order := models.Order{
		UserID:      user.ID,
		ServiceID:   service.ID,
		TotalAmount: service.Price,
		Currency:    settings.Str(billing, "currency", "$"),
	}
	if len(responses) > 0 {
		order.FormData = models.MustJSON(responses)
	}
	if err := database.DB.Create(&order).Error; err != nil {
		return nil, apperrors.Internal("Failed to create order", err)
	}

	ctx := map[string]interface{}{
		"order_id":     order.ID,
		"client_name":  user.Name,
		"client_email": user.Email,
		"service_name": service.Name,
		"total_amount": fmt.Sprintf("%.2f", order.TotalAmount),
		"currency":     order.Currency,
	}
	go notify.Send("order_new_admin", []string{notify.AdminAddress()}, ctx)
	go notify.Send("order_confirmation_client", []string{user.Email}, ctx)

	return &order, nil
}

// UpdatePaymentStatus overwrites the settlement state; the value is free
// text so operators can record provider-specific states.
func UpdatePaymentStatus(orderID uint, status string) (*models.Order, error) {
	var order models.Order
	if err := database.DB.First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Internal("Failed to load order", err)
	}

	order.PaymentStatus = status
	if err := database.DB.Save(&order).Error; err != nil {
		return nil, apperrors.Internal("Failed to update order", err)
	}
	return &order, nil
}

// CreateCheckout asks the configured payment provider for a hosted checkout
// page and persists the reference on the order. A degraded provider answer
// (no URL) is stored as-is and returned without error.
func CreateCheckout(user *models.User, orderID uint) (*models.Order, payments.CheckoutSession, error) {
	var order models.Order
	if err := database.DB.Preload("Service").First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, payments.CheckoutSession{}, apperrors.NotFound("Order not found")
		}
		return nil, payments.CheckoutSession{}, apperrors.Internal("Failed to load order", err)
	}
	if user.Role != models.RoleAdmin && order.UserID != user.ID {
		return nil, payments.CheckoutSession{}, apperrors.NotFound("Order not found")
	}

	session := payments.CreateSession(&order, order.Service.Name)
	if session.CheckoutURL != nil {
		order.CheckoutURL = *session.CheckoutURL
		order.ExternalID = session.ExternalID
		order.PaymentProvider = session.Provider
		if err := database.DB.Save(&order).Error; err != nil {
			return nil, payments.CheckoutSession{}, apperrors.Internal("Failed to persist checkout session", err)
		}
	}
	return &order, session, nil
}
