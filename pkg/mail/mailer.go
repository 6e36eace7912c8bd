package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/orono-schools/tst-bank-api/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail over a plain SMTP relay.
type SMTPMailer struct {
	cfg config.NotificationsConfig
}

// NewSMTPMailer builds a mailer from the notifications config.
func NewSMTPMailer(cfg config.NotificationsConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers one message. The context is consulted before dialing; net/smtp
// itself does not support cancellation mid-send.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}

	from := m.cfg.FromAddress
	headers := []string{
		fmt.Sprintf("From: %s <%s>", m.cfg.FromName, from),
		fmt.Sprintf("To: %s", strings.Join(msg.To, ", ")),
		fmt.Sprintf("Subject: %s", msg.Subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	body := strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.HTML

	if err := smtp.SendMail(addr, auth, from, msg.To, []byte(body)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// NopMailer discards all messages. Used when notifications are disabled.
type NopMailer struct{}

func (NopMailer) Send(context.Context, Message) error { return nil }
