package mail

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Config carries SMTP delivery settings, sourced from the email settings
// section at send time so admin edits apply without a restart.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}

// Configured reports whether outbound mail can be attempted at all.
func (c Config) Configured() bool {
	return c.Host != ""
}

func (c Config) fromHeader() string {
	from := c.FromEmail
	if from == "" {
		from = "no-reply@example.com"
	}
	name := c.FromName
	if name == "" {
		name = "Client Portal"
	}
	return fmt.Sprintf("%s <%s>", name, from)
}

func buildMessage(cfg Config, to []string, subject, body string) []byte {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", cfg.fromHeader())
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}

// Send delivers one message. Port 465 with TLS enabled uses an implicit TLS
// connection; any other port negotiates STARTTLS when TLS is enabled. PLAIN
// auth is used when credentials are present.
func Send(cfg Config, to []string, subject, body string) error {
	if !cfg.Configured() {
		return fmt.Errorf("smtp host not configured")
	}

	port := cfg.Port
	if port == 0 {
		port = 587
	}
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", port))
	message := buildMessage(cfg, to, subject, body)

	var client *smtp.Client
	var err error
	if cfg.UseTLS && port == 465 {
		conn, dialErr := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
		if dialErr != nil {
			return fmt.Errorf("smtp tls dial: %w", dialErr)
		}
		client, err = smtp.NewClient(conn, cfg.Host)
		if err != nil {
			conn.Close()
			return fmt.Errorf("smtp client: %w", err)
		}
	} else {
		client, err = smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial: %w", err)
		}
		if cfg.UseTLS {
			if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				client.Close()
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}
	defer client.Quit()

	if cfg.Username != "" && cfg.Password != "" {
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(cfg.FromEmail); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, recipient := range to {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return nil
}
