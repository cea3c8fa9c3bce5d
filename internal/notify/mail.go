package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"

	"reward-admin/internal/config"

	mail "github.com/go-mail/mail/v2"
)

type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer sends notifications by e-mail. Messages without an address are skipped.
type Mailer struct {
	from   string
	sender sender
}

// NewMailer returns nil when SMTP is not configured.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	if !cfg.Configured() {
		return nil
	}
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}
	return &Mailer{from: cfg.From, sender: d}
}

func (m *Mailer) Notify(_ context.Context, msg Message) error {
	if m == nil || msg.Email == "" {
		return nil
	}
	mm := mail.NewMessage()
	mm.SetHeader("From", m.from)
	mm.SetHeader("To", msg.Email)
	mm.SetHeader("Subject", msg.Title)
	mm.SetBody("text/html", "<p>"+html.EscapeString(msg.Body)+"</p>")

	if err := m.sender.DialAndSend(mm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.Email, err)
	}
	return nil
}
