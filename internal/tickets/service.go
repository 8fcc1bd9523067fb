package tickets

import (
	"strings"

	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/database"
	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/notify"
)

// CreateTicket opens a ticket with its first message in one transaction, so
// a ticket can never exist without an opening message.
func CreateTicket(user *models.User, subject, message string) (*models.Ticket, error) {
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	if subject == "" || message == "" {
		return nil, apperrors.Validation("Subject and message are required")
	}

	ticket := models.Ticket{UserID: user.ID, Subject: subject}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		first := models.TicketMessage{
			TicketID: ticket.ID,
			UserID:   &user.ID,
			Message:  message,
			IsStaff:  user.Role == models.RoleAdmin,
		}
		return tx.Create(&first).Error
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to create ticket", err)
	}

	go notify.Send("ticket_new_admin", []string{notify.AdminAddress()}, map[string]interface{}{
		"ticket_id":   ticket.ID,
		"client_name": user.Name,
		"subject":     ticket.Subject,
		"message":     message,
	})
	return &ticket, nil
}

// Reply appends a message to a ticket and reopens it. Staff replies notify
// the ticket owner; client replies notify the admin address.
func Reply(author *models.User, ticket *models.Ticket, message string) (*models.TicketMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.Validation("Message is required")
	}

	isStaff := author.Role == models.RoleAdmin
	reply := models.TicketMessage{
		TicketID: ticket.ID,
		UserID:   &author.ID,
		Message:  message,
		IsStaff:  isStaff,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		// Any reply reopens the thread; UpdatedAt doubles as last-activity.
		ticket.Status = "open"
		return tx.Save(ticket).Error
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to save reply", err)
	}

	ctx := map[string]interface{}{
		"ticket_id": ticket.ID,
		"subject":   ticket.Subject,
		"message":   message,
	}
	if isStaff {
		var owner models.User
		if dbErr := database.DB.First(&owner, ticket.UserID).Error; dbErr == nil {
			ctx["client_name"] = owner.Name
			go notify.Send("ticket_reply_client", []string{owner.Email}, ctx)
		}
	} else {
		ctx["client_name"] = author.Name
		go notify.Send("ticket_new_admin", []string{notify.AdminAddress()}, ctx)
	}
	return &reply, nil
}

// Load fetches a ticket, scoped to its owner unless the caller is staff.
// Foreign tickets answer not-found rather than forbidden.
func Load(user *models.User, ticketID uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := database.DB.First(&ticket, ticketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Ticket not found")
		}
		return nil, apperrors.Internal("Failed to load ticket", err)
	}
	if user.Role != models.RoleAdmin && ticket.UserID != user.ID {
		return nil, apperrors.NotFound("Ticket not found")
	}
	return &ticket, nil
}
