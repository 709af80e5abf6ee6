// Package contact delivers contact-form submissions by email.
package contact

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Zachkp/zach-dev/internal/config"
)

// ErrNotConfigured is returned when SMTP credentials are missing.
var ErrNotConfigured = errors.New("SMTP credentials not configured")

// Message is one contact-form submission.
type Message struct {
	Name    string `form:"fullName" json:"fullName" binding:"required,max=200"`
	Email   string `form:"email"    json:"email"    binding:"required,email"`
	Message string `form:"message"  json:"message"  binding:"required,max=5000"`
}

// Sender delivers a contact message.
type Sender interface {
	Send(m Message) error
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends messages through an authenticated SMTP relay.
type Mailer struct {
	cfg  config.SMTPConfig
	send SendFunc
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// WithSendFunc replaces the SMTP transport.
func (m *Mailer) WithSendFunc(fn SendFunc) *Mailer {
	m.send = fn
	return m
}

func (m *Mailer) recipient() string {
	if m.cfg.To != "" {
		return m.cfg.To
	}
	return m.cfg.User
}

func (m *Mailer) Send(msg Message) error {
	if m.cfg.User == "" || m.cfg.Pass == "" {
		return ErrNotConfigured
	}

	to := m.recipient()
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	if err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.User, []string{to}, Compose(m.cfg.User, to, msg)); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}

// Compose renders the email. Header values are stripped of CR and LF.
func Compose(from, to string, msg Message) []byte {
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, msg.Name, msg.Email, msg.Message)

	var b strings.Builder
	b.WriteString("To: " + headerValue(to) + "\r\n")
	b.WriteString("Subject: Portfolio Contact: " + headerValue(msg.Name) + "\r\n")
	b.WriteString("From: " + headerValue(from) + "\r\n")
	b.WriteString("Reply-To: " + headerValue(msg.Email) + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")
	return []byte(b.String())
}

func headerValue(s string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}
