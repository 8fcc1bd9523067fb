package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/database/testdb"
	"github.com/tylerheal/clientportal/internal/models"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/login", HandleLogin)
	router.POST("/auth/signup", HandleSignup)
	router.POST("/auth/logout", HandleLogout)
	router.GET("/protected", RequireAPI(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func postForm(router *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string) models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	user := models.User{Name: "Seeded User", Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestSignupCreatesClientAndSignsIn(t *testing.T) {
	db := testdb.Setup(t)
	router := testRouter()

	w := postForm(router, "/auth/signup", url.Values{
		"email":      {"Ada@Example.com"},
		"password":   {"hunter22"},
		"first_name": {"Ada"},
		"last_name":  {"Lovelace"},
		"company":    {"Analytical Engines"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/client", w.Header().Get("Location"))

	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	var user models.User
	require.NoError(t, db.Where("email = ?", "ada@example.com").First(&user).Error)
	assert.Equal(t, models.RoleClient, user.Role)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "Analytical Engines", user.Company)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
}

func TestSignupAlwaysCreatesClientRole(t *testing.T) {
	db := testdb.Setup(t)
	router := testRouter()

	// A role field in the payload must not grant admin.
	w := postForm(router, "/auth/signup", url.Values{
		"email":      {"mallory@example.com"},
		"password":   {"pw"},
		"first_name": {"Mallory"},
		"last_name":  {"M"},
		"role":       {"admin"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "mallory@example.com").First(&user).Error)
	assert.Equal(t, models.RoleClient, user.Role)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	db := testdb.Setup(t)
	seedUser(t, db, "ada@example.com", "pw", models.RoleClient)
	router := testRouter()

	w := postForm(router, "/auth/signup", url.Values{
		"email":      {"ada@example.com"},
		"password":   {"pw"},
		"first_name": {"Ada"},
		"last_name":  {"L"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupMissingFields(t *testing.T) {
	testdb.Setup(t)
	router := testRouter()

	w := postForm(router, "/auth/signup", url.Values{
		"email":    {"x@example.com"},
		"password": {"pw"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRedirectsByRole(t *testing.T) {
	db := testdb.Setup(t)
	seedUser(t, db, "admin@example.com", "adminpw", models.RoleAdmin)
	seedUser(t, db, "client@example.com", "clientpw", models.RoleClient)
	router := testRouter()

	w := postForm(router, "/auth/login", url.Values{
		"email":    {"admin@example.com"},
		"password": {"adminpw"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	w = postForm(router, "/auth/login", url.Values{
		"email":    {"client@example.com"},
		"password": {"clientpw"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/client", w.Header().Get("Location"))
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	db := testdb.Setup(t)
	seedUser(t, db, "ada@example.com", "pw", models.RoleClient)
	router := testRouter()

	w := postForm(router, "/auth/login", url.Values{
		"email":    {"  ADA@example.COM  "},
		"password": {"pw"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := testdb.Setup(t)
	seedUser(t, db, "ada@example.com", "correct", models.RoleClient)
	router := testRouter()

	w := postForm(router, "/auth/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postForm(router, "/auth/login", url.Values{
		"email":    {"ghost@example.com"},
		"password": {"whatever"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAPIGatesByRole(t *testing.T) {
	db := testdb.Setup(t)
	seedUser(t, db, "admin@example.com", "adminpw", models.RoleAdmin)
	seedUser(t, db, "client@example.com", "clientpw", models.RoleClient)
	router := testRouter()

	// No cookie at all.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")

	// Client session hitting an admin route.
	login := postForm(router, "/auth/login", url.Values{
		"email":    {"client@example.com"},
		"password": {"clientpw"},
	})
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(sessionCookie(t, login))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	// Admin session passes.
	login = postForm(router, "/auth/login", url.Values{
		"email":    {"admin@example.com"},
		"password": {"adminpw"},
	})
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(sessionCookie(t, login))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	db := testdb.Setup(t)
	seedUser(t, db, "ada@example.com", "pw", models.RoleClient)
	router := testRouter()

	login := postForm(router, "/auth/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"pw"},
	})
	cookie := sessionCookie(t, login)

	w := postForm(router, "/auth/logout", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Where("token = ?", cookie.Value).Count(&count).Error)
	assert.Zero(t, count)
}
