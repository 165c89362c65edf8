package mail

import (
	"context"
	"log/slog"
)

type Message struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	IsHTML      bool
	Embeds      map[string]string
	Attachments []string
}

type MailSender interface {
	Send(ctx context.Context, message *Message) error
}

// LogMailSender writes messages to the log instead of delivering them. Used
// for local development.
type LogMailSender struct{}

func (s *LogMailSender) Send(ctx context.Context, message *Message) error {
	slog.Info("Mail message", "to", message.To, "subject", message.Subject)
	slog.Debug("Mail message body", "body", message.Body)
	return ctx.Err()
}

func NewLogMailSender() *LogMailSender {
	return &LogMailSender{}
}
