package notification

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/domain/money"
	domorder "example.com/storefront/internal/domain/order"
	"example.com/storefront/internal/domain/record"
)

type mockMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *mockMailer) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func testOrder() domorder.Order {
	return domorder.Order{
		ID:            "AMP2025000001",
		Customer:      domorder.Customer{Name: "Ada", Email: "ada@example.com"},
		Items:         []domorder.Item{{Name: "Tee", Quantity: 3, UnitPrice: money.New(1500, money.GBP), LineTotal: money.New(4500, money.GBP)}},
		Subtotal:      money.New(4500, money.GBP),
		ShippingCost:  money.New(499, money.GBP),
		Total:         money.New(4999, money.GBP),
		PaymentMethod: domorder.PaymentPayPal,
	}
}

func TestOrderPlaced_SendsCustomerAndAdminMail(t *testing.T) {
	mailer := &mockMailer{}
	d := NewDispatcher(mailer, "admin@example.com", nil)

	d.OrderPlaced(testOrder())
	d.Wait()

	require.Len(t, mailer.sent, 2)
	var recipients []string
	for _, m := range mailer.sent {
		recipients = append(recipients, m.To...)
		require.Contains(t, m.Body, "Total: £49.99")
	}
	require.ElementsMatch(t, []string{"ada@example.com", "admin@example.com"}, recipients)
}

func TestOrderPlaced_FailureIsLoggedOnly(t *testing.T) {
	var buf bytes.Buffer
	mailer := &mockMailer{err: errors.New("smtp down")}
	d := NewDispatcher(mailer, "", slog.New(slog.NewJSONHandler(&buf, nil)))

	d.OrderPlaced(testOrder())
	d.Wait()

	require.Contains(t, buf.String(), "notification failed")
	require.Contains(t, buf.String(), "smtp down")
}

func TestLeadReceived(t *testing.T) {
	mailer := &mockMailer{}
	d := NewDispatcher(mailer, "admin@example.com", nil)

	d.LeadReceived(record.CollectionDistributors, record.Record{"id": "abc", "company": "Acme"})
	d.Wait()

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "New distributor applications submission abc", mailer.sent[0].Subject)
	require.Contains(t, mailer.sent[0].Body, "company: Acme")
}

func TestLeadReceived_NoAdminConfigured(t *testing.T) {
	mailer := &mockMailer{}
	d := NewDispatcher(mailer, "", nil)

	d.LeadReceived(record.CollectionContacts, record.Record{"id": "abc"})
	d.Wait()

	require.Empty(t, mailer.sent)
}
