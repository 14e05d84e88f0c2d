package mail

import (
	"context"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/craftline/marketplace/internal/config"
)

// Notifier is the outbound notification capability. Checkout treats a
// failed send as non-fatal, so implementations must not panic and
// should bound their own work with the given context.
type Notifier interface {
	Send(ctx context.Context, subject, body, to string) error
}

const (
	sendTimeout = 10 * time.Second
	maxAttempts = 2
)

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTP_HOST, cfg.SMTP_PORT, cfg.SMTP_USER, cfg.SMTP_PASS),
		from:   cfg.SMTP_FROM,
	}
}

// Send delivers one plain-text message with at most one retry inside a
// single timeout window.
func (m *SMTPMailer) Send(ctx context.Context, subject, body, to string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		done := make(chan error, 1)
		go func() {
			done <- m.dialAndSend(subject, body, to)
		}()

		select {
		case err := <-done:
			if err == nil {
				return nil
			}
			lastErr = err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (m *SMTPMailer) dialAndSend(subject, body, to string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}
