package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"trekbooking/pkg/config"
)

type Message struct {
	To        string
	Subject   string
	PlainText string
	HTML      string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// NewMailer returns a SendGrid mailer when an API key is configured, otherwise a mailer
// that only logs.
func NewMailer(cfg config.MailConfig) Mailer {
	if strings.TrimSpace(cfg.SendGridAPIKey) == "" {
		return LogMailer{}
	}
	return &SendGridMailer{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func (s *SendGridMailer) Send(ctx context.Context, m Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", m.To)
	message := mail.NewSingleEmail(from, m.Subject, to, m.PlainText, m.HTML)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Message) error {
	log.Printf("[notify] action=send_skipped to=%s subject=%q", m.To, m.Subject)
	return nil
}
