package mail

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/usecase/notification"
)

func TestBuildMessage(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	raw := string(buildMessage("shop@example.com", notification.Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Order AMP2025000001\r\nBcc: evil@example.com",
		Body:    "line one\nline two",
	}, now))

	require.Contains(t, raw, "To: a@example.com, b@example.com\r\n")
	require.Contains(t, raw, "Subject: Order AMP2025000001  Bcc: evil@example.com\r\n")
	require.NotContains(t, raw, "\r\nBcc:")
	require.True(t, strings.HasSuffix(raw, "\r\n\r\nline one\r\nline two"))
}

func TestSMTPMailer_Errors(t *testing.T) {
	m := NewSMTPMailer("127.0.0.1:1", "shop@example.com", nil)

	err := m.Send(context.Background(), notification.Message{})
	require.Error(t, err)

	err = m.Send(context.Background(), notification.Message{To: []string{"a@example.com"}, Subject: "x"})
	require.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, m.Send(context.Background(), notification.Message{To: []string{"a@example.com"}, Subject: "Hello"}))
	require.Contains(t, buf.String(), `"subject":"Hello"`)
}
