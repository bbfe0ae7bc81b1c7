// Package mailer abstracts outgoing email behind a Sender interface.
// The production implementation uses the Resend API; a log-only
// fallback keeps development environments working without an API key.
package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v3"
)

// Sender delivers the two kinds of mail the platform sends.
type Sender interface {
	// SendActivationCode mails the one-time activation code issued at
	// registration.
	SendActivationCode(ctx context.Context, toEmail, name, code string) error
	// SendAnswerNotification tells a question's author that someone
	// replied.
	SendAnswerNotification(ctx context.Context, toEmail, name, courseName, question string) error
}

type resendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender builds a Sender backed by the Resend API. The from
// address must belong to a domain verified with Resend.
func NewResendSender(apiKey, from string) Sender {
	return &resendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *resendSender) SendActivationCode(ctx context.Context, toEmail, name, code string) error {
	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto;">
  <h2>Activate your account</h2>
  <p>Hello %s,</p>
  <p>Your activation code is:</p>
  <p style="font-size:28px;font-weight:bold;letter-spacing:4px;">%s</p>
  <p>The code expires in 5 minutes. If you did not register, you can ignore this email.</p>
</div>`, name, code)
	return s.send(ctx, toEmail, "Activate your account", html)
}

func (s *resendSender) SendAnswerNotification(ctx context.Context, toEmail, name, courseName, question string) error {
	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto;">
  <h2>Question reply</h2>
  <p>Hello %s,</p>
  <p>Your question in <b>%s</b> has a new reply:</p>
  <blockquote>%s</blockquote>
</div>`, name, courseName, question)
	return s.send(ctx, toEmail, "You have a new reply to your question", html)
}

func (s *resendSender) send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email %q to %s: %w", subject, to, err)
	}
	return nil
}

// logSender writes mail to the process log instead of sending it.
type logSender struct{}

// NewLogSender returns the development fallback Sender.
func NewLogSender() Sender { return logSender{} }

func (logSender) SendActivationCode(_ context.Context, toEmail, name, code string) error {
	log.Printf("mail (log only): activation code for %s <%s>: %s", name, toEmail, code)
	return nil
}

func (logSender) SendAnswerNotification(_ context.Context, toEmail, name, courseName, question string) error {
	log.Printf("mail (log only): answer notification for %s <%s> in %q (question: %.60s)", name, toEmail, courseName, question)
	return nil
}
