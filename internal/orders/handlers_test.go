package orders

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tylerheal/clientportal/internal/auth"
	"github.com/tylerheal/clientportal/internal/database/testdb"
	"github.com/tylerheal/clientportal/internal/models"
)

func portalRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/signup", auth.HandleSignup)
	router.POST("/auth/login", auth.HandleLogin)

	admin := router.Group("/api/admin", auth.RequireAPI(models.RoleAdmin))
	admin.GET("/orders", HandleAdminListOrders)
	admin.PUT("/orders/:id/payment", HandleUpdatePaymentStatus)

	client := router.Group("/api/client", auth.RequireAPI(models.RoleClient))
	client.GET("/orders", HandleClientListOrders)
	client.POST("/orders", HandleCreateOrder)
	client.GET("/orders/:id", HandleGetOrder)
	client.POST("/orders/:id/checkout", HandleCreateCheckout)
	return router
}

func signUp(t *testing.T, router *gin.Engine, email string) *http.Cookie {
	t.Helper()
	form := url.Values{
		"email":      {email},
		"password":   {"pw123456"},
		"first_name": {"Test"},
		"last_name":  {"Client"},
	}
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("signup did not set a session cookie")
	return nil
}

func doJSON(router *gin.Engine, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOrderLifecycleEndToEnd(t *testing.T) {
	db := testdb.Setup(t)
	service := models.Service{Name: "SEO Audit", Price: 49.00, BillingCycle: "one-off", IsActive: true}
	require.NoError(t, db.Create(&service).Error)

	router := portalRouter()
	cookie := signUp(t, router, "ada@example.com")

	// Place the order.
	w := doJSON(router, http.MethodPost, "/api/client/orders",
		fmt.Sprintf(`{"service_id": %d, "responses": {"domain": "example.com"}}`, service.ID), cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 49.00, created.TotalAmount)
	assert.Equal(t, "pending", created.PaymentStatus)

	// It shows up in the client's list with the service name joined in.
	w = doJSON(router, http.MethodGet, "/api/client/orders", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []struct {
		ID          uint    `json:"id"`
		ServiceName string  `json:"service_name"`
		TotalAmount float64 `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "SEO Audit", listed[0].ServiceName)
	assert.Equal(t, 49.00, listed[0].TotalAmount)

	// Checkout with no provider configured degrades to a null URL.
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/client/orders/%d/checkout", created.ID), "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var session map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Nil(t, session["checkout_url"])
}

func TestAdminOrderListAndPaymentUpdate(t *testing.T) {
	db := testdb.Setup(t)
	service := models.Service{Name: "SEO Audit", Price: 49.00, IsActive: true}
	require.NoError(t, db.Create(&service).Error)

	router := portalRouter()
	clientCookie := signUp(t, router, "client@example.com")

	w := doJSON(router, http.MethodPost, "/api/client/orders",
		fmt.Sprintf(`{"service_id": %d}`, service.ID), clientCookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Promote a second account to admin directly; signup never grants it.
	adminCookie := signUp(t, router, "admin@example.com")
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "admin@example.com").
		Update("role", models.RoleAdmin).Error)

	w = doJSON(router, http.MethodGet, "/api/admin/orders", "", adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var all []struct {
		ID          uint   `json:"id"`
		ClientName  string `json:"client_name"`
		ServiceName string `json:"service_name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, "Test Client", all[0].ClientName)
	assert.Equal(t, "SEO Audit", all[0].ServiceName)

	w = doJSON(router, http.MethodPut,
		fmt.Sprintf("/api/admin/orders/%d/payment", created.ID), `{"status": "paid"}`, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	// Filter matches the new state.
	w = doJSON(router, http.MethodGet, "/api/admin/orders?status=paid", "", adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	w = doJSON(router, http.MethodGet, "/api/admin/orders?status=pending", "", adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 0)
}

func TestPaymentUpdateWithoutStatusResetsToPending(t *testing.T) {
	db := testdb.Setup(t)
	service := models.Service{Name: "SEO Audit", Price: 49.00, IsActive: true}
	require.NoError(t, db.Create(&service).Error)

	router := portalRouter()
	clientCookie := signUp(t, router, "client@example.com")

	w := doJSON(router, http.MethodPost, "/api/client/orders",
		fmt.Sprintf(`{"service_id": %d}`, service.ID), clientCookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	adminCookie := signUp(t, router, "admin@example.com")
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "admin@example.com").
		Update("role", models.RoleAdmin).Error)

	w = doJSON(router, http.MethodPut,
		fmt.Sprintf("/api/admin/orders/%d/payment", created.ID), `{"status": "paid"}`, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	// An empty payload is not an error; it resets the state to pending.
	w = doJSON(router, http.MethodPut,
		fmt.Sprintf("/api/admin/orders/%d/payment", created.ID), `{}`, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, created.ID).Error)
	assert.Equal(t, "pending", reloaded.PaymentStatus)
}

func TestClientCannotSeeForeignOrder(t *testing.T) {
	db := testdb.Setup(t)
	service := models.Service{Name: "SEO Audit", Price: 49.00, IsActive: true}
	require.NoError(t, db.Create(&service).Error)

	router := portalRouter()
	ownerCookie := signUp(t, router, "owner@example.com")
	otherCookie := signUp(t, router, "other@example.com")

	w := doJSON(router, http.MethodPost, "/api/client/orders",
		fmt.Sprintf(`{"service_id": %d}`, service.ID), ownerCookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/client/orders/%d", created.ID), "", otherCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/client/orders/%d", created.ID), "", ownerCookie)
	assert.Equal(t, http.StatusOK, w.Code)
}
