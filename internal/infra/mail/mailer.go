package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"example.com/storefront/internal/usecase/notification"
)

// SMTPMailer delivers plain-text mail through an SMTP relay such as Mailpit.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	now  func() time.Time
}

func NewSMTPMailer(addr, from string, auth smtp.Auth) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from, auth: auth, now: time.Now}
}

func (m *SMTPMailer) Send(ctx context.Context, msg notification.Message) error {
	if len(msg.To) == 0 {
		return errors.New("mail: no recipients")
	}
	raw := buildMessage(m.from, msg, m.now())

	// net/smtp has no context support; the send is abandoned, not aborted, on ctx end.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.addr, m.auth, m.from, msg.To, raw)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail via %s: %w", m.addr, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from string, msg notification.Message, now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg notification.Message) error {
	m.logger.Info("mail not sent, no SMTP relay configured",
		slog.Any("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
