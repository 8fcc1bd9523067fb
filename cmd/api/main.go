package main

import (
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tylerheal/clientportal/internal/auth"
	"github.com/tylerheal/clientportal/internal/bootstrap"
	"github.com/tylerheal/clientportal/internal/clients"
	"github.com/tylerheal/clientportal/internal/config"
	"github.com/tylerheal/clientportal/internal/dashboard"
	"github.com/tylerheal/clientportal/internal/database"
	"github.com/tylerheal/clientportal/internal/files"
	"github.com/tylerheal/clientportal/internal/forms"
	"github.com/tylerheal/clientportal/internal/health"
	"github.com/tylerheal/clientportal/internal/middleware"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/notify"
	"github.com/tylerheal/clientportal/internal/orders"
	"github.com/tylerheal/clientportal/internal/pages"
	"github.com/tylerheal/clientportal/internal/services"
	"github.com/tylerheal/clientportal/internal/settings"
	"github.com/tylerheal/clientportal/internal/tickets"
)

func main() {
	config.Load()

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		opts := sentry.ClientOptions{
			Dsn:         dsn,
			Environment: os.Getenv("SENTRY_ENVIRONMENT"),
			Release:     os.Getenv("SENTRY_RELEASE"),
		}
		if err := sentry.Init(opts); err != nil {
			log.Printf("Sentry initialization failed: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.RunMigrations(models.All()...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := bootstrap.Run(); err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}

	pages.Init(
		config.GetEnv("TEMPLATES_DIR", "web/templates"),
		config.GetEnv("STATIC_DIR", "web/static"),
	)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	}))
	router.Use(cors.New(middleware.CORSConfig()))
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	router.GET("/health", health.HandleHealthCheck)
	router.GET("/ready", health.HandleSystemReady)

	// Pages and static assets
	router.GET("/", pages.HandleLogin)
	router.GET("/login", pages.HandleLogin)
	router.GET("/signup", pages.HandleSignup)
	router.GET("/static/*filepath", pages.HandleStatic)
	// The catch-all covers /admin/ and below; bare /admin reaches it through
	// gin's trailing-slash redirect.
	router.GET("/admin/*path", auth.RequirePage(models.RoleAdmin), pages.HandleAdmin)
	router.GET("/client/*path", auth.RequirePage(models.RoleClient), pages.HandleClient)

	// Auth
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", middleware.LoginRateLimit(), auth.HandleLogin)
		authRoutes.POST("/signup", middleware.LoginRateLimit(), auth.HandleSignup)
		authRoutes.POST("/logout", auth.HandleLogout)
	}

	// Admin API
	admin := router.Group("/api/admin", auth.RequireAPI(models.RoleAdmin))
	{
		admin.GET("/overview", dashboard.HandleAdminOverview)

		admin.GET("/services", services.HandleListServices)
		admin.POST("/services", services.HandleCreateService)
		admin.PUT("/services/:id", services.HandleUpdateService)
		admin.DELETE("/services/:id", services.HandleDeleteService)

		admin.GET("/orders", orders.HandleAdminListOrders)
		admin.PUT("/orders/:id/payment", orders.HandleUpdatePaymentStatus)

		admin.GET("/tickets", tickets.HandleAdminListTickets)
		admin.GET("/tickets/:id", tickets.HandleAdminGetTicket)
		admin.POST("/tickets/:id/reply", tickets.HandleReply)

		admin.GET("/clients", clients.HandleListClients)
		admin.POST("/clients/invite", clients.HandleInviteClient)

		admin.GET("/forms", forms.HandleListTemplates)
		admin.POST("/forms", forms.HandleCreateTemplate)
		admin.PUT("/forms/:id", forms.HandleUpdateTemplate)
		admin.DELETE("/forms/:id", forms.HandleDeleteTemplate)

		admin.GET("/settings", settings.HandleGetSettings)
		admin.PUT("/settings/:section", settings.HandleUpdateSection)

		admin.GET("/email-templates", notify.HandleListEmailTemplates)
		admin.PUT("/email-templates/:slug", notify.HandleUpdateEmailTemplate)

		admin.GET("/files", files.HandleAdminListFiles)
		admin.POST("/files", files.HandleCreateFile)
		admin.DELETE("/files/:id", files.HandleDeleteFile)
	}

	// Client API
	client := router.Group("/api/client", auth.RequireAPI(models.RoleClient))
	{
		client.GET("/overview", dashboard.HandleClientOverview)
		client.GET("/services", services.HandleListServices)

		client.GET("/orders", orders.HandleClientListOrders)
		client.POST("/orders", orders.HandleCreateOrder)
		client.GET("/orders/:id", orders.HandleGetOrder)
		client.POST("/orders/:id/checkout", orders.HandleCreateCheckout)

		client.GET("/tickets", tickets.HandleClientListTickets)
		client.POST("/tickets", tickets.HandleCreateTicket)
		client.GET("/tickets/:id", tickets.HandleGetTicket)
		client.POST("/tickets/:id/reply", tickets.HandleReply)

		client.GET("/files", files.HandleClientListFiles)
	}

	host := config.GetEnv("HOST", "0.0.0.0")
	port := config.GetEnv("PORT", "8000")
	addr := host + ":" + port
	log.Printf("Client portal listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
