package pages

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tylerheal/clientportal/internal/auth"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/render"
	"github.com/tylerheal/clientportal/internal/settings"
)

var (
	renderer   *render.Renderer
	staticRoot string
)

// Init points the page handlers at the template and static asset
// directories. Must run before the router serves traffic.
func Init(templatesDir, staticDir string) {
	renderer = render.New(templatesDir)
	root, err := filepath.Abs(staticDir)
	if err != nil {
		root = staticDir
	}
	staticRoot = root
}

func pageOptions() render.PageOptions {
	branding := settings.Section(settings.SectionBranding)
	return render.PageOptions{
		Title:   settings.Str(branding, "brand_name", "Client Portal"),
		Context: map[string]interface{}{"branding": branding},
		LayoutContext: map[string]interface{}{
			"logo_url":   settings.Str(branding, "logo_url", ""),
			"brand_name": settings.Str(branding, "brand_name", "Client Portal"),
		},
	}
}

func respondPage(c *gin.Context, contentTemplate string, opts render.PageOptions) {
	html, err := renderer.Page(contentTemplate, opts)
	if err != nil {
		logrus.WithError(err).WithField("template", contentTemplate).Error("pages: render failed")
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func dashboardPath(user *models.User) string {
	if user.Role == models.RoleAdmin {
		return "/admin"
	}
	return "/client"
}

// HandleLogin serves the login page, or forwards an authenticated visitor
// straight to their dashboard. Also mounted at /.
func HandleLogin(c *gin.Context) {
	if user := auth.CurrentUser(c); user != nil {
		c.Redirect(http.StatusSeeOther, dashboardPath(user))
		return
	}
	opts := pageOptions()
	respondPage(c, "login.html", opts)
}

// HandleSignup serves the signup page; authenticated visitors go to the
// client dashboard instead.
func HandleSignup(c *gin.Context) {
	if auth.CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, "/client")
		return
	}
	opts := pageOptions()
	respondPage(c, "signup.html", opts)
}

var adminTemplates = map[string]string{
	"/":         "admin_overview.html",
	"/services": "admin_services.html",
	"/orders":   "admin_orders.html",
	"/tickets":  "admin_tickets.html",
	"/clients":  "admin_clients.html",
	"/forms":    "admin_forms.html",
	"/settings": "admin_settings.html",
}

var clientTemplates = map[string]string{
	"/":         "client_dashboard.html",
	"/services": "client_services.html",
	"/orders":   "client_orders.html",
	"/tickets":  "client_tickets.html",
	"/files":    "client_files.html",
}

// HandleAdmin serves the admin shell with the section matching the sub-path;
// unknown sections fall back to the overview.
func HandleAdmin(c *gin.Context) {
	sub := c.Param("path")
	if sub == "" {
		sub = "/"
	}
	sub = strings.TrimSuffix(sub, "/")
	if sub == "" {
		sub = "/"
	}

	contentTemplate, ok := adminTemplates[sub]
	if !ok {
		contentTemplate = adminTemplates["/"]
	}

	opts := pageOptions()
	opts.Layout = "admin.html"
	opts.Scripts = []string{"/static/js/admin.js"}
	respondPage(c, contentTemplate, opts)
}

// HandleClient serves the client shell with the section matching the
// sub-path; unknown sections fall back to the dashboard.
func HandleClient(c *gin.Context) {
	user := auth.ContextUser(c)

	sub := c.Param("path")
	if sub == "" {
		sub = "/"
	}
	sub = strings.TrimSuffix(sub, "/")
	if sub == "" {
		sub = "/"
	}

	contentTemplate, ok := clientTemplates[sub]
	if !ok {
		contentTemplate = clientTemplates["/"]
	}

	opts := pageOptions()
	opts.Layout = "client.html"
	opts.Scripts = []string{"/static/js/client.js"}
	opts.ContentContext = map[string]interface{}{"user_name": user.Name}
	respondPage(c, contentTemplate, opts)
}

// HandleStatic serves files under the static root. Paths that resolve
// outside the root are refused, not merely missed.
func HandleStatic(c *gin.Context) {
	relative := strings.TrimPrefix(c.Param("filepath"), "/")
	resolved, err := filepath.Abs(filepath.Join(staticRoot, relative))
	if err != nil || !strings.HasPrefix(resolved, staticRoot+string(os.PathSeparator)) {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		c.String(http.StatusNotFound, "Not Found")
		return
	}
	c.File(resolved)
}
