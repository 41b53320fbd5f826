package mail

import (
	"context"
	"io"
	"log/slog"
)

const (
	// DriverSMTP selects SMTP delivery.
	DriverSMTP = "smtp"
	// DriverLog selects the logging sender.
	DriverLog = "log"
)

// Message represents an email payload.
type Message struct {
	// From overrides the configured default sender.
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// Log is a Mail that writes a log line instead of sending. Bodies are never
// logged because they carry one-time codes.
type Log struct{}

// NewLog returns a Log sender.
func NewLog() *Log { return &Log{} }

func (*Log) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To)+len(msg.Cc)+len(msg.Bcc) == 0 {
		return ErrNoRecipients
	}

	slog.InfoContext(ctx, "mail not sent, log driver active", "to_count", len(msg.To), "subject", msg.Subject)
	return nil
}

func (*Log) Close() error { return nil }
