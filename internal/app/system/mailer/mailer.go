// internal/app/system/mailer/mailer.go

// Package mailer sends the invitation emails over SMTP. Delivery is not
// guaranteed; callers record the invitation first and report a send
// failure as a caveat, never as a rollback.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Email is one outgoing message with both plain-text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends messages through one SMTP server.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Log      *zap.Logger
}

// New builds a Mailer from SMTP settings.
func New(host string, port int, username, password, from, fromName string, log *zap.Logger) *Mailer {
	return &Mailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		FromName: fromName,
		Log:      log,
	}
}

// Send delivers the email as multipart/alternative. Each message carries
// a uuid Message-ID so a delivery can be chased through the SMTP logs.
func (m *Mailer) Send(e Email) error {
	msgID := uuid.NewString()
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	msg := m.build(e, msgID)
	if err := smtp.SendMail(addr, auth, m.From, []string{e.To}, msg); err != nil {
		m.Log.Error("smtp send failed",
			zap.String("to", e.To),
			zap.String("message_id", msgID),
			zap.Error(err),
		)
		return fmt.Errorf("send mail: %w", err)
	}
	m.Log.Info("mail sent",
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("message_id", msgID),
	)
	return nil
}

func (m *Mailer) build(e Email, msgID string) []byte {
	boundary := "b-" + msgID

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.FromName, m.From)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", msgID, m.Host)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(e.TextBody)
	b.WriteString("\r\n")

	if e.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(e.HTMLBody)
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
