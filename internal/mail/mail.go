// Package mail delivers outbound application mail.
package mail

import (
	"log/slog"

	"critica/internal/config"
	"critica/internal/middleware"

	"gopkg.in/gomail.v2"
)

// Message is an outbound mail the application wants delivered.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages. Delivery is send-and-forget from the caller's
// perspective: a failed send is reported but never undoes prior state.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail through an SMTP relay using gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates an SMTPSender from configuration.
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

// Send dials the relay and delivers the message.
func (s *SMTPSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return s.dialer.DialAndSend(m)
}

// LogSender writes mail to the log instead of delivering it. Used in
// development and tests where no SMTP relay is configured.
type LogSender struct{}

// Send logs the message.
func (s *LogSender) Send(msg Message) error {
	middleware.Logger.Info("mail (not delivered, no SMTP configured)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}

// NewSender picks the SMTP sender when a relay is configured and the
// log-only sender otherwise.
func NewSender(cfg *config.Config) Sender {
	if cfg.SMTPHost == "" {
		return &LogSender{}
	}
	return NewSMTPSender(cfg)
}
