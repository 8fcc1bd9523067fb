package bootstrap

import (
	"github.com/sirupsen/logrus"

	"github.com/tylerheal/clientportal/internal/auth"
	"github.com/tylerheal/clientportal/internal/config"
	"github.com/tylerheal/clientportal/internal/database"
	"github.com/tylerheal/clientportal/internal/models"
)

var defaultEmailTemplates = []models.EmailTemplate{
	{
		Slug:    "order_new_admin",
		Name:    "New order notification (admin)",
		Subject: "New order from {{client_name}}",
		Body:    "A new order for {{service_name}} has been placed by {{client_name}}. Total: {{currency}}{{total_amount}}.",
	},
	{
		Slug:    "order_confirmation_client",
		Name:    "Order confirmation (client)",
		Subject: "We received your order for {{service_name}}",
		Body:    "Hi {{client_name}},\n\nThanks for ordering {{service_name}}. We will review it and get back to you shortly.",
	},
	{
		Slug:    "ticket_new_admin",
		Name:    "New ticket (admin)",
		Subject: "Support request from {{client_name}}",
		Body:    "A new support ticket \"{{subject}}\" was opened by {{client_name}}.",
	},
	{
		Slug:    "ticket_reply_client",
		Name:    "Ticket reply (client)",
		Subject: "New reply to \"{{subject}}\"",
		Body:    "Hi {{client_name}},\n\nWe have responded to your ticket \"{{subject}}\". Log in to view the message.",
	},
	{
		Slug:    "invite_client",
		Name:    "Client invitation",
		Subject: "You have been invited to the client portal",
		Body:    "Hi {{client_name}},\n\nWe created an account for you. Use the following password to sign in: {{password}}\n\nPortal URL: {{portal_url}}",
	},
	{
		Slug:    "payment_reminder",
		Name:    "Payment reminder",
		Subject: "Payment reminder for {{service_name}}",
		Body:    "Hi {{client_name}},\n\nThis is a friendly reminder that payment for {{service_name}} is {{payment_status}}. Please complete the payment.",
	},
}

// Run seeds the initial admin account and the default email templates.
// Idempotent: reruns on every boot and touches nothing that already exists.
func Run() error {
	if err := ensureAdmin(); err != nil {
		return err
	}
	return ensureEmailTemplates()
}

func ensureAdmin() error {
	var count int64
	if err := database.DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := config.GetEnv("ADMIN_EMAIL", "admin@example.com")
	password := config.GetEnv("ADMIN_PASSWORD", "admin123!")
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		return err
	}
	logrus.WithField("email", email).Info("bootstrap: seeded admin account")
	return nil
}

func ensureEmailTemplates() error {
	for _, tpl := range defaultEmailTemplates {
		// Attrs apply on create only, so admin edits survive restarts.
		var existing models.EmailTemplate
		if err := database.DB.Where(models.EmailTemplate{Slug: tpl.Slug}).
			Attrs(tpl).
			FirstOrCreate(&existing).Error; err != nil {
			return err
		}
	}
	return nil
}
