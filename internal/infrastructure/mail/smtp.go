// Package mail sends verification codes over SMTP.
package mail

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

const subject = "Your Russian Intonation verification code"

// Config captures the SMTP settings for outbound verification mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers verification codes by email. Delivery is best-effort:
// the caller logs failures and registration never depends on the outcome.
type SMTPSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPSender{client: client, from: from}, nil
}

// Send emails the verification code to the address.
func (s *SMTPSender) Send(ctx context.Context, email, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hello!\n\nYour Russian Intonation verification code is: %s\n\nEnter this code in the app to complete your registration.\n", code))

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
