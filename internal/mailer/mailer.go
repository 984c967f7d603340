package mailer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/autopulse/backend/internal/config"
	"github.com/wneessen/go-mail"
)

// Mailer delivers one plain-text message. Implementations: SMTPMailer
// (real sending) and LogMailer (dry run).
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New selects the transport from config: SMTP when enabled, otherwise
// the log-only dry run.
func New(cfg config.EmailConfig) (Mailer, error) {
	if !cfg.Enabled {
		return &LogMailer{}, nil
	}
	return NewSMTPMailer(cfg)
}

// LogMailer prints the message to the log instead of sending it.
type LogMailer struct{}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	divider := strings.Repeat("=", 60)
	log.Printf("\n%s\nEMAIL SENT TO: %s\nSUBJECT: %s\nBODY:\n%s\n%s\n", divider, to, subject, body, divider)
	return nil
}

// SMTPMailer relays messages through an SMTP server.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg config.EmailConfig) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
