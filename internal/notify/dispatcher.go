package notify

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/database"
	"github.com/tylerheal/clientportal/internal/mail"
	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/render"
	"github.com/tylerheal/clientportal/internal/settings"
)

// deliver is swapped out in tests.
var deliver = mail.Send

// Send renders the template identified by slug against ctx and delivers it
// to recipients, best-effort. It is a silent no-op when no recipients remain
// after blank filtering, when outbound mail is unconfigured, or when the
// slug has no template. Delivery failures are logged and swallowed:
// notification must never fail the domain operation that triggered it.
func Send(slug string, recipients []string, ctx map[string]interface{}) {
	to := make([]string, 0, len(recipients))
	for _, addr := range recipients {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			to = append(to, trimmed)
		}
	}
	if len(to) == 0 {
		return
	}

	cfg := EmailConfig()
	if !cfg.Configured() {
		return
	}

	var tpl models.EmailTemplate
	if err := database.DB.Where("slug = ?", slug).First(&tpl).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logrus.WithError(err).WithField("slug", slug).Error("notify: template lookup failed")
		}
		return
	}

	subject := render.Render(tpl.Subject, ctx)
	body := render.Render(tpl.Body, ctx)

	if err := deliver(cfg, to, subject, body); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"slug": slug,
			"to":   strings.Join(to, ","),
		}).Error("notify: email send failed")
	}
}

// EmailConfig assembles SMTP settings from the email settings section.
func EmailConfig() mail.Config {
	section := settings.Section(settings.SectionEmail)

	port := 587
	switch v := section["smtp_port"].(type) {
	case float64:
		port = int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}

	useTLS := true
	switch v := section["smtp_tls"].(type) {
	case bool:
		useTLS = v
	case string:
		useTLS = strings.ToLower(v) != "false"
	}

	return mail.Config{
		Host:      settings.Str(section, "smtp_host", ""),
		Port:      port,
		Username:  settings.Str(section, "smtp_username", ""),
		Password:  settings.Str(section, "smtp_password", ""),
		FromEmail: settings.Str(section, "from_email", ""),
		FromName:  settings.Str(section, "from_name", ""),
		UseTLS:    useTLS,
	}
}

// AdminAddress returns the configured admin notification address, if any.
func AdminAddress() string {
	return settings.Str(settings.Section(settings.SectionEmail), "from_email", "")
}
