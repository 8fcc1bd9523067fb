package dashboard

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tylerheal/clientportal/internal/auth"
	"github.com/tylerheal/clientportal/internal/database"
	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/settings"
	"github.com/tylerheal/clientportal/pkg/utils"
)

type recentOrder struct {
	ID            uint      `json:"id"`
	ClientName    string    `json:"client_name"`
	ServiceName   string    `json:"service_name"`
	TotalAmount   float64   `json:"total_amount"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type openThread struct {
	ID         uint      `json:"id"`
	Subject    string    `json:"subject"`
	ClientName string    `json:"client_name"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type activityEntry struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// HandleAdminOverview aggregates the admin dashboard metrics.
func HandleAdminOverview(c *gin.Context) {
	db := database.DB

	var activeClients, activeServices, openTickets int64
	db.Model(&models.User{}).Where("role = ?", models.RoleClient).Count(&activeClients)
	db.Model(&models.Service{}).Where("is_active = ?", true).Count(&activeServices)
	db.Model(&models.Ticket{}).Where("status != ?", "closed").Count(&openTickets)

	// MRR counts orders in active fulfillment, whatever their billing cycle.
	var mrr float64
	db.Model(&models.Order{}).
		Where("status = ?", "active").
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&mrr)

	var orders []models.Order
	if err := db.Preload("User").Preload("Service").
		Order("created_at DESC").
		Limit(5).
		Find(&orders).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to load recent orders", err))
		return
	}
	recent := make([]recentOrder, 0, len(orders))
	for _, order := range orders {
		recent = append(recent, recentOrder{
			ID:            order.ID,
			ClientName:    order.User.Name,
			ServiceName:   order.Service.Name,
			TotalAmount:   order.TotalAmount,
			PaymentStatus: order.PaymentStatus,
			CreatedAt:     order.CreatedAt,
		})
	}

	var tickets []models.Ticket
	if err := db.Preload("User").
		Where("status != ?", "closed").
		Order("updated_at DESC").
		Limit(5).
		Find(&tickets).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to load open tickets", err))
		return
	}
	threads := make([]openThread, 0, len(tickets))
	for _, ticket := range tickets {
		threads = append(threads, openThread{
			ID:         ticket.ID,
			Subject:    ticket.Subject,
			ClientName: ticket.User.Name,
			Status:     ticket.Status,
			UpdatedAt:  ticket.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"active_clients":      activeClients,
		"active_services":     activeServices,
		"open_tickets":        openTickets,
		"mrr":                 mrr,
		"recent_orders":       recent,
		"open_ticket_threads": threads,
		"currency":            settings.Str(settings.Section(settings.SectionBilling), "currency", "$"),
	})
}

// HandleClientOverview aggregates the client dashboard metrics for the
// calling user.
func HandleClientOverview(c *gin.Context) {
	user := auth.ContextUser(c)
	db := database.DB

	var activeServices, openOrders, openTickets int64
	db.Model(&models.Service{}).Where("is_active = ?", true).Count(&activeServices)
	db.Model(&models.Order{}).Where("user_id = ? AND status != ?", user.ID, "completed").Count(&openOrders)
	db.Model(&models.Ticket{}).Where("user_id = ? AND status != ?", user.ID, "closed").Count(&openTickets)

	var outstanding float64
	db.Model(&models.Order{}).
		Where("user_id = ? AND payment_status != ?", user.ID, "paid").
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&outstanding)

	var upcoming []models.Order
	if err := db.Where("user_id = ? AND payment_status != ?", user.ID, "paid").
		Order("COALESCE(due_date, created_at) ASC").
		Limit(5).
		Find(&upcoming).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to load upcoming payments", err))
		return
	}

	activity, err := recentActivity(user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active_services":     activeServices,
		"open_orders":         openOrders,
		"outstanding_balance": outstanding,
		"open_tickets":        openTickets,
		"upcoming_payments":   upcoming,
		"activity":            activity,
		"currency":            settings.Str(settings.Section(settings.SectionBilling), "currency", "$"),
	})
}

// recentActivity merges the user's latest orders and tickets into one feed.
func recentActivity(userID uint) ([]activityEntry, error) {
	var orders []models.Order
	if err := database.DB.Preload("Service").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(6).
		Find(&orders).Error; err != nil {
		return nil, apperrors.Internal("Failed to load order activity", err)
	}

	var tickets []models.Ticket
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(6).
		Find(&tickets).Error; err != nil {
		return nil, apperrors.Internal("Failed to load ticket activity", err)
	}

	entries := make([]activityEntry, 0, len(orders)+len(tickets))
	for _, order := range orders {
		entries = append(entries, activityEntry{
			Title:       "Order placed",
			Description: order.Service.Name + " order submitted",
			Timestamp:   order.CreatedAt,
		})
	}
	for _, ticket := range tickets {
		entries = append(entries, activityEntry{
			Title:       "Ticket created",
			Description: ticket.Subject + " ticket opened",
			Timestamp:   ticket.CreatedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > 6 {
		entries = entries[:6]
	}
	return entries, nil
}
