package tickets

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/auth"
	"github.com/tylerheal/clientportal/internal/database/testdb"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/sessions"
)

func ticketRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	admin := router.Group("/api/admin", auth.RequireAPI(models.RoleAdmin))
	admin.GET("/tickets", HandleAdminListTickets)
	admin.GET("/tickets/:id", HandleAdminGetTicket)
	admin.POST("/tickets/:id/reply", HandleReply)

	client := router.Group("/api/client", auth.RequireAPI(models.RoleClient))
	client.GET("/tickets", HandleClientListTickets)
	client.POST("/tickets", HandleCreateTicket)
	client.GET("/tickets/:id", HandleGetTicket)
	client.POST("/tickets/:id/reply", HandleReply)
	return router
}

func sessionFor(t *testing.T, db *gorm.DB, email, role string) *http.Cookie {
	t.Helper()
	user := models.User{Name: "User " + email, Email: email, Role: role}
	require.NoError(t, db.Create(&user).Error)
	token, err := sessions.Create(user.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func request(router *gin.Engine, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTicketThreadEndToEnd(t *testing.T) {
	db := testdb.Setup(t)
	router := ticketRouter()
	clientCookie := sessionFor(t, db, "ada@example.com", models.RoleClient)
	adminCookie := sessionFor(t, db, "admin@example.com", models.RoleAdmin)

	// Client opens a ticket.
	w := request(router, http.MethodPost, "/api/client/tickets",
		`{"subject": "Site down", "message": "Nothing loads."}`, clientCookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var ticket models.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))

	// Admin sees it in the list with the client joined in.
	w = request(router, http.MethodGet, "/api/admin/tickets", "", adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []struct {
		ID         uint   `json:"id"`
		Subject    string `json:"subject"`
		ClientName string `json:"client_name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Site down", listed[0].Subject)
	assert.Equal(t, "User ada@example.com", listed[0].ClientName)

	// Admin replies; client reads the thread.
	w = request(router, http.MethodPost,
		fmt.Sprintf("/api/admin/tickets/%d/reply", ticket.ID),
		`{"message": "Looking into it now."}`, adminCookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(router, http.MethodGet,
		fmt.Sprintf("/api/client/tickets/%d", ticket.ID), "", clientCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Ticket   models.Ticket `json:"ticket"`
		Messages []struct {
			Message    string `json:"message"`
			IsStaff    bool   `json:"is_staff"`
			AuthorName string `json:"author_name"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.Messages, 2)
	assert.False(t, detail.Messages[0].IsStaff)
	assert.True(t, detail.Messages[1].IsStaff)
	assert.Equal(t, "User admin@example.com", detail.Messages[1].AuthorName)
}

func TestAdminTicketSearch(t *testing.T) {
	db := testdb.Setup(t)
	router := ticketRouter()
	clientCookie := sessionFor(t, db, "ada@example.com", models.RoleClient)
	adminCookie := sessionFor(t, db, "admin@example.com", models.RoleAdmin)

	for _, subject := range []string{"Billing question", "Site down", "Billing refund"} {
		w := request(router, http.MethodPost, "/api/client/tickets",
			fmt.Sprintf(`{"subject": %q, "message": "details"}`, subject), clientCookie)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := request(router, http.MethodGet, "/api/admin/tickets?q=Billing", "", adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)
}

func TestClientTicketAccessScoped(t *testing.T) {
	db := testdb.Setup(t)
	router := ticketRouter()
	ownerCookie := sessionFor(t, db, "owner@example.com", models.RoleClient)
	otherCookie := sessionFor(t, db, "other@example.com", models.RoleClient)

	w := request(router, http.MethodPost, "/api/client/tickets",
		`{"subject": "Private", "message": "Mine"}`, ownerCookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var ticket models.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))

	w = request(router, http.MethodGet,
		fmt.Sprintf("/api/client/tickets/%d", ticket.ID), "", otherCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(router, http.MethodPost,
		fmt.Sprintf("/api/client/tickets/%d/reply", ticket.ID),
		`{"message": "sneaky"}`, otherCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
