package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	domorder "example.com/storefront/internal/domain/order"
	"example.com/storefront/internal/domain/record"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher sends notifications in the background. Failures are logged and
// never reach the caller.
type Dispatcher struct {
	mailer     Mailer
	adminEmail string
	timeout    time.Duration
	logger     *slog.Logger
	wg         sync.WaitGroup
}

func NewDispatcher(mailer Mailer, adminEmail string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		mailer:     mailer,
		adminEmail: adminEmail,
		timeout:    15 * time.Second,
		logger:     logger,
	}
}

func (d *Dispatcher) OrderPlaced(o domorder.Order) {
	d.dispatch("order_confirmation", o.ID, Message{
		To:      []string{o.Customer.Email},
		Subject: fmt.Sprintf("Order %s received", o.ID),
		Body:    orderBody(o),
	})
	if d.adminEmail != "" {
		d.dispatch("admin_order_alert", o.ID, Message{
			To:      []string{d.adminEmail},
			Subject: fmt.Sprintf("New order %s (%s, %s)", o.ID, o.Total.Format(), o.PaymentMethod),
			Body:    orderBody(o),
		})
	}
}

func (d *Dispatcher) LeadReceived(collection string, rec record.Record) {
	if d.adminEmail == "" {
		return
	}
	d.dispatch("admin_lead_alert", rec.ID(), Message{
		To:      []string{d.adminEmail},
		Subject: fmt.Sprintf("New %s submission %s", strings.ReplaceAll(collection, "_", " "), rec.ID()),
		Body:    recordBody(rec),
	})
}

// Wait blocks until every in-flight notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(kind, ref string, msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.mailer.Send(ctx, msg); err != nil {
			d.logger.Error("notification failed",
				slog.String("kind", kind),
				slog.String("ref", ref),
				slog.Any("error", err),
			)
			return
		}
		d.logger.Info("notification sent", slog.String("kind", kind), slog.String("ref", ref))
	}()
}

func orderBody(o domorder.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order: %s\n", o.ID)
	fmt.Fprintf(&b, "Customer: %s <%s> %s\n", o.Customer.Name, o.Customer.Email, o.Customer.Phone)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s = %s", it.Name, it.Quantity, it.UnitPrice.Format(), it.LineTotal.Format())
		if it.Size != "" || it.Color != "" {
			fmt.Fprintf(&b, " (%s %s)", it.Size, it.Color)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Subtotal: %s\n", o.Subtotal.Format())
	fmt.Fprintf(&b, "Shipping (%s): %s\n", o.ShippingMethod, o.ShippingCost.Format())
	fmt.Fprintf(&b, "Total: %s\n", o.Total.Format())
	fmt.Fprintf(&b, "Payment: %s\n", o.PaymentMethod)
	if a := o.Customer.Address; a != nil {
		fmt.Fprintf(&b, "Ship to: %s, %s, %s %s, %s\n", a.Line1, a.City, a.State, a.PostalCode, a.Country)
	}
	return b.String()
}

func recordBody(rec record.Record) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, rec[k])
	}
	return b.String()
}
