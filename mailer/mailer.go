package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/linesmerrill/victim-dao-api/config"
	templates "github.com/linesmerrill/victim-dao-api/templates/html"
)

// Mailer sends a transactional email. body is plain text, providers that
// support HTML get it wrapped in the generic template.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New picks the provider named in the config. Unknown providers and missing
// keys fall back to logging the mail.
func New(conf config.MailConfig) Mailer {
	switch conf.Provider {
	case "sendgrid":
		if conf.SendGridAPIKey != "" {
			return &SendGridMailer{APIKey: conf.SendGridAPIKey, FromEmail: conf.FromEmail, FromName: conf.FromName}
		}
	case "resend":
		if conf.ResendAPIKey != "" {
			return &ResendMailer{client: resend.NewClient(conf.ResendAPIKey), FromEmail: conf.FromEmail, FromName: conf.FromName}
		}
	}
	if conf.Provider != "log" {
		zap.S().Warnw("mail provider not configured, mails will only be logged", "provider", conf.Provider)
	}
	return LogMailer{}
}

// SendGridMailer sends through the SendGrid v3 API
type SendGridMailer struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// Send sends a single email
func (s *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	from := mail.NewEmail(s.FromName, s.FromEmail)
	msg := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), body, templates.RenderEmail(subject, body))
	client := sendgrid.NewSendClient(s.APIKey)
	resp, err := client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// ResendMailer sends through the Resend API
type ResendMailer struct {
	client    *resend.Client
	FromEmail string
	FromName  string
}

// Send sends a single email
func (r *ResendMailer) Send(ctx context.Context, to, subject, body string) error {
	from := r.FromEmail
	if r.FromName != "" {
		from = fmt.Sprintf("%s <%s>", r.FromName, r.FromEmail)
	}
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    templates.RenderEmail(subject, body),
		Text:    body,
	}
	sent, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	zap.S().Debugw("email sent", "provider", "resend", "id", sent.Id)
	return nil
}

// LogMailer writes mails to the log instead of sending them
type LogMailer struct{}

// Send logs the mail
func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	zap.S().Infow("email not sent, no provider configured",
		"to", to,
		"subject", subject,
	)
	return nil
}

// SendAsync sends in the background so the request is never held up by the
// provider. Failures are only logged.
func SendAsync(m Mailer, to, subject, body string) {
	if m == nil {
		return
	}
	go func() {
		if err := m.Send(context.Background(), to, subject, body); err != nil {
			zap.S().Errorw("failed to send email",
				"to", to,
				"subject", subject,
				"error", err)
		}
	}()
}
