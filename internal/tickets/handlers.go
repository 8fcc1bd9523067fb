package tickets

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tylerheal/clientportal/internal/auth"
	"github.com/tylerheal/clientportal/internal/database"
	apperrors "github.com/tylerheal/clientportal/internal/errors"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/pkg/utils"
)

type ticketView struct {
	models.Ticket
	ClientName  string `json:"client_name,omitempty"`
	ClientEmail string `json:"client_email,omitempty"`
}

// messageView carries the author's display name alongside each thread entry.
type messageView struct {
	models.TicketMessage
	AuthorName string `json:"author_name"`
}

func ticketID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperrors.Validation("Invalid ticket id")
	}
	return uint(id), nil
}

func threadFor(ticket *models.Ticket) ([]messageView, error) {
	var rows []models.TicketMessage
	if err := database.DB.Where("ticket_id = ?", ticket.ID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Internal("Failed to load ticket messages", err)
	}

	// Resolve author names in one query rather than per message.
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		if row.UserID != nil {
			ids = append(ids, *row.UserID)
		}
	}
	names := map[uint]string{}
	if len(ids) > 0 {
		var authors []models.User
		if err := database.DB.Where("id IN ?", ids).Find(&authors).Error; err != nil {
			return nil, apperrors.Internal("Failed to load message authors", err)
		}
		for _, author := range authors {
			names[author.ID] = author.Name
		}
	}

	views := make([]messageView, 0, len(rows))
	for _, row := range rows {
		view := messageView{TicketMessage: row}
		if row.UserID != nil {
			view.AuthorName = names[*row.UserID]
		}
		views = append(views, view)
	}
	return views, nil
}

func respondThread(c *gin.Context, ticket *models.Ticket, withClient bool) {
	messages, err := threadFor(ticket)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	view := ticketView{Ticket: *ticket}
	if withClient {
		var owner models.User
		if dbErr := database.DB.First(&owner, ticket.UserID).Error; dbErr == nil {
			view.ClientName = owner.Name
			view.ClientEmail = owner.Email
		}
	}
	c.JSON(http.StatusOK, gin.H{"ticket": view, "messages": messages})
}

// HandleAdminListTickets lists every ticket, optionally filtered by a
// subject search, most recently active first.
func HandleAdminListTickets(c *gin.Context) {
	query := database.DB.Preload("User").Order("updated_at DESC")
	if q := c.Query("q"); q != "" {
		query = query.Where("subject LIKE ?", "%"+q+"%")
	}

	var rows []models.Ticket
	if err := query.Find(&rows).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to list tickets", err))
		return
	}

	views := make([]ticketView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ticketView{
			Ticket:      row,
			ClientName:  row.User.Name,
			ClientEmail: row.User.Email,
		})
	}
	c.JSON(http.StatusOK, views)
}

// HandleAdminGetTicket returns one ticket with its full message thread.
func HandleAdminGetTicket(c *gin.Context) {
	user := auth.ContextUser(c)
	id, err := ticketID(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ticket, loadErr := Load(user, id)
	if loadErr != nil {
		utils.RespondError(c, loadErr)
		return
	}
	respondThread(c, ticket, true)
}

// HandleClientListTickets lists the caller's tickets, most recently active
// first.
func HandleClientListTickets(c *gin.Context) {
	user := auth.ContextUser(c)

	query := database.DB.Where("user_id = ?", user.ID).Order("updated_at DESC")
	if q := c.Query("q"); q != "" {
		query = query.Where("subject LIKE ?", "%"+q+"%")
	}

	var rows []models.Ticket
	if err := query.Find(&rows).Error; err != nil {
		utils.RespondError(c, apperrors.Internal("Failed to list tickets", err))
		return
	}
	c.JSON(http.StatusOK, rows)
}

// HandleCreateTicket opens a new ticket for the calling client.
func HandleCreateTicket(c *gin.Context) {
	user := auth.ContextUser(c)

	var req struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.Validation("Subject and message are required"))
		return
	}

	ticket, err := CreateTicket(user, req.Subject, req.Message)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// HandleGetTicket returns one of the caller's tickets with its thread.
func HandleGetTicket(c *gin.Context) {
	user := auth.ContextUser(c)
	id, err := ticketID(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ticket, loadErr := Load(user, id)
	if loadErr != nil {
		utils.RespondError(c, loadErr)
		return
	}
	respondThread(c, ticket, false)
}

// HandleReply appends a reply to a ticket the caller can see.
func HandleReply(c *gin.Context) {
	user := auth.ContextUser(c)
	id, err := ticketID(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.Validation("Message is required"))
		return
	}

	ticket, loadErr := Load(user, id)
	if loadErr != nil {
		utils.RespondError(c, loadErr)
		return
	}

	reply, replyErr := Reply(user, ticket, req.Message)
	if replyErr != nil {
		utils.RespondError(c, replyErr)
		return
	}
	c.JSON(http.StatusCreated, reply)
}
