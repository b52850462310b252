package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"IntelDigest/internal/config"
	"IntelDigest/internal/ports"
)

// SMTPMailer delivers the digest over authenticated SMTP with mandatory
// STARTTLS. It connects per send; the daemon sends once a day, so holding a
// connection open buys nothing.
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *slog.Logger
}

var _ ports.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer validates nothing up front; a misconfigured mailer fails on
// first send with the server's actual error.
func NewSMTPMailer(cfg config.MailConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// Send builds a multipart message (HTML with plain-text alternative) and
// delivers it to every configured recipient in one SMTP session.
func (m *SMTPMailer) Send(ctx context.Context, subject, htmlBody, textBody string) error {
	recipients := m.cfg.RecipientList()
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.User); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, textBody)
	msg.AddAlternativeString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.User),
		gomail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("build smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send digest mail: %w", err)
	}
	if m.logger != nil {
		m.logger.Info("digest mail sent", "recipients", len(recipients), "subject", subject)
	}
	return nil
}
