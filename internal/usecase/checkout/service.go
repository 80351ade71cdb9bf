package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	domcart "example.com/storefront/internal/domain/cart"
	"example.com/storefront/internal/domain/money"
	domorder "example.com/storefront/internal/domain/order"
	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/domain/record"
	domsession "example.com/storefront/internal/domain/session"
	domshipping "example.com/storefront/internal/domain/shipping"
	cartuc "example.com/storefront/internal/usecase/cart"
	"example.com/storefront/internal/validation"
)

type State string

const (
	StateBuilding   State = "building"
	StateValidating State = "validating"
	StateCommitting State = "committing"
	StateCommitted  State = "committed"
	StateRejected   State = "rejected"
	StateFailed     State = "failed"
)

type CustomerInput struct {
	Name  string `json:"name" validate:"max=200"`
	Email string `json:"email" validate:"max=254"`
	Phone string `json:"phone" validate:"max=50"`
}

// Request is the strongly typed checkout submission.
type Request struct {
	Customer         CustomerInput     `json:"customer"`
	Shipping         *domorder.Address `json:"shipping,omitempty" validate:"-"`
	PaymentMethod    string            `json:"payment_method" validate:"max=32"`
	ShippingMethod   string            `json:"shipping_method" validate:"max=32"`
	Currency         string            `json:"selected_currency" validate:"max=8"`
	IdempotencyToken string            `json:"idempotency_token" validate:"max=128"`
	Notes            string            `json:"notes,omitempty" validate:"max=2000"`
}

type Result struct {
	State   State
	OrderID string
	Order   *domorder.Order
}

type Quote struct {
	Method          domshipping.Method
	Subtotal        money.Money
	Shipping        money.Money
	Total           money.Money
	RequiresAddress bool
}

type Snapshotter interface {
	Snapshot(ctx context.Context, c domcart.Cart, currency string) (domcart.Snapshot, error)
}

type ShippingCalculator interface {
	Cost(subtotal money.Money, method domshipping.Method) money.Money
	ResolveMethod(requested domshipping.Method) (domshipping.Method, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *domorder.Order) (*domorder.Order, error)
}

type TokenGuard interface {
	Validate(sess *domsession.Context, submitted string) bool
	Rotate(sess *domsession.Context) string
}

type Notifier interface {
	OrderPlaced(o domorder.Order)
}

type Options struct {
	DefaultCurrency     string
	SupportedCurrencies []string
	Clock               func() time.Time
	Logger              *slog.Logger
	// Validator defaults to validation.New().
	Validator           *validator.Validate
}

type Service struct {
	snapshots  Snapshotter
	shipping   ShippingCalculator
	orders     OrderRepository
	guard      TokenGuard
	notifier   Notifier
	validate   *validator.Validate
	currencies map[string]bool
	defCur     string
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(snapshots Snapshotter, shipping ShippingCalculator, orders OrderRepository, guard TokenGuard, notifier Notifier, opts Options) *Service {
	s := &Service{
		snapshots:  snapshots,
		shipping:   shipping,
		orders:     orders,
		guard:      guard,
		notifier:   notifier,
		validate:   opts.Validator,
		currencies: make(map[string]bool),
		defCur:     money.NormalizeCurrency(opts.DefaultCurrency),
		now:        opts.Clock,
		logger:     opts.Logger,
	}
	if s.defCur == "" {
		s.defCur = money.GBP
	}
	for _, c := range opts.SupportedCurrencies {
		s.currencies[money.NormalizeCurrency(c)] = true
	}
	s.currencies[s.defCur] = true
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.validate == nil {
		s.validate = validation.New()
	}
	return s
}

// Submit runs a checkout attempt to completion. On success the session's cart
// is cleared and its token rotated; on any failure the session is left alone.
func (s *Service) Submit(ctx context.Context, sess *domsession.Context, req Request) (Result, error) {
	if !s.guard.Validate(sess, req.IdempotencyToken) {
		return Result{State: StateRejected}, newValidationError(KindStaleForm, "",
			"This form has expired or was already submitted. Please reload the page and try again.", ErrStaleForm)
	}

	currency, err := s.currencyFor(sess, req.Currency)
	if err != nil {
		return Result{State: StateRejected}, err
	}
	if sess.Cart.IsEmpty() {
		return Result{State: StateRejected}, ErrEmptyCart
	}

	snap, err := s.snapshots.Snapshot(ctx, sess.Cart, currency)
	if err != nil {
		return Result{State: StateRejected}, mapSnapshotError(err)
	}

	method, customer, payment, err := s.validateRequest(req, currency)
	if err != nil {
		return Result{State: StateRejected}, err
	}

	shippingCost := s.shipping.Cost(snap.Subtotal, method)
	total, err := snap.Subtotal.Add(shippingCost)
	if err != nil {
		return Result{State: StateFailed}, fmt.Errorf("compute total: %w", err)
	}

	now := s.now().UTC()
	o := &domorder.Order{
		Customer:       customer,
		Items:          domorder.ItemsFromSnapshot(snap),
		Subtotal:       snap.Subtotal,
		ShippingCost:   shippingCost,
		Total:          total,
		Currency:       currency,
		ShippingMethod: method,
		Status:         payment.InitialStatus(),
		PaymentMethod:  payment,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var created *domorder.Order
	err = record.WithBusyRetry(ctx, 1, 50*time.Millisecond, func() error {
		var err error
		created, err = s.orders.Create(ctx, o)
		return err
	})
	if err != nil {
		s.logger.Error("order commit failed",
			slog.String("session_id", sess.ID),
			slog.String("currency", currency),
			slog.Int64("total", total.Amount),
			slog.Any("error", err),
		)
		return Result{State: StateFailed}, fmt.Errorf("commit order: %w", err)
	}

	sess.Cart.Clear()
	sess.ShippingMethod = method
	s.guard.Rotate(sess)

	s.logger.Info("order committed",
		slog.String("order_id", created.ID),
		slog.String("currency", created.Currency),
		slog.Int64("total", created.Total.Amount),
		slog.String("payment_method", string(created.PaymentMethod)),
	)
	if s.notifier != nil {
		s.notifier.OrderPlaced(*created)
	}

	return Result{State: StateCommitted, OrderID: created.ID, Order: created}, nil
}

// Quote recomputes totals for a shipping method without touching the session.
func (s *Service) Quote(ctx context.Context, sess *domsession.Context, requested string) (Quote, error) {
	m, err := domshipping.ParseMethod(requested)
	if err != nil {
		return Quote{}, newValidationError(KindValidation, "shipping_method", "Please choose a valid shipping method.", err)
	}
	method, err := s.shipping.ResolveMethod(m)
	if err != nil {
		return Quote{}, newValidationError(KindValidation, "shipping_method", "The selected shipping method is not available.", err)
	}
	if sess.Cart.IsEmpty() {
		return Quote{}, ErrEmptyCart
	}
	currency, err := s.currencyFor(sess, "")
	if err != nil {
		return Quote{}, err
	}

	snap, err := s.snapshots.Snapshot(ctx, sess.Cart, currency)
	if err != nil {
		return Quote{}, mapSnapshotError(err)
	}
	cost := s.shipping.Cost(snap.Subtotal, method)
	total, err := snap.Subtotal.Add(cost)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Method:          method,
		Subtotal:        snap.Subtotal,
		Shipping:        cost,
		Total:           total,
		RequiresAddress: method.RequiresAddress(),
	}, nil
}

func (s *Service) Currencies() []string {
	out := make([]string, 0, len(s.currencies))
	for c := range s.currencies {
		out = append(out, c)
	}
	return out
}

// SupportsCurrency reports whether c can be selected for a session.
func (s *Service) SupportsCurrency(c string) bool {
	return s.currencies[money.NormalizeCurrency(c)]
}

func (s *Service) DefaultCurrency() string {
	return s.defCur
}

// SessionCurrency is the currency the session is browsing in.
func (s *Service) SessionCurrency(sess *domsession.Context) string {
	c, _ := s.currencyFor(sess, "")
	return c
}

func (s *Service) currencyFor(sess *domsession.Context, requested string) (string, error) {
	if c := money.NormalizeCurrency(requested); c != "" {
		if !s.currencies[c] {
			return "", newValidationError(KindValidation, "selected_currency",
				fmt.Sprintf("Currency %s is not supported.", c), ErrUnsupportedCurrency)
		}
		return c, nil
	}
	if c := money.NormalizeCurrency(sess.Currency); c != "" && s.currencies[c] {
		return c, nil
	}
	return s.defCur, nil
}

func (s *Service) validateRequest(req Request, currency string) (domshipping.Method, domorder.Customer, domorder.PaymentMethod, error) {
	var none domorder.Customer

	if err := s.validate.Struct(req); err != nil {
		return "", none, "", lengthError(err)
	}

	requested, err := domshipping.ParseMethod(req.ShippingMethod)
	if err != nil {
		return "", none, "", newValidationError(KindValidation, "shipping_method", "Please choose a valid shipping method.", err)
	}
	method, err := s.shipping.ResolveMethod(requested)
	if err != nil {
		return "", none, "", newValidationError(KindValidation, "shipping_method", "The selected shipping method is not available.", err)
	}

	customer := domorder.Customer{
		Name:  strings.TrimSpace(req.Customer.Name),
		Email: strings.TrimSpace(req.Customer.Email),
		Phone: strings.TrimSpace(req.Customer.Phone),
	}
	if customer.Name == "" {
		return "", none, "", fieldRequired("name")
	}
	if customer.Email == "" {
		return "", none, "", fieldRequired("email")
	}
	if err := s.validate.Var(customer.Email, "email"); err != nil {
		return "", none, "", newValidationError(KindValidation, "email", "Please enter a valid email address.", ErrInvalidField)
	}
	if customer.Phone == "" {
		return "", none, "", fieldRequired("phone")
	}

	if method.RequiresAddress() {
		if req.Shipping == nil {
			return "", none, "", newValidationError(KindValidation, "shipping", "A delivery address is required.", ErrInvalidField)
		}
		addr := trimAddress(*req.Shipping)
		if err := s.validate.Struct(addr); err != nil {
			return "", none, "", addressError(err)
		}
		customer.Address = &addr
	}

	payment, err := checkPayment(req.PaymentMethod, currency)
	if err != nil {
		return "", none, "", err
	}
	return method, customer, payment, nil
}

func checkPayment(raw, currency string) (domorder.PaymentMethod, error) {
	p := domorder.PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", newValidationError(KindPayment, "payment_method", "Please choose a payment method.", domorder.ErrInvalidPayment)
	}
	if p.ConfirmsOutOfBand() {
		return "", newValidationError(KindPayment, "payment_method",
			"Card payments are completed on the secure card checkout at /checkout/card.", ErrGatewayRequired)
	}
	if !domorder.PaymentAllowed(currency, p) {
		return "", newValidationError(KindPayment, "payment_method",
			fmt.Sprintf("Payment method %s is not available for %s.", p, currency), ErrPaymentNotAllowed)
	}
	return p, nil
}

func fieldRequired(field string) *ValidationError {
	return newValidationError(KindValidation, field, "This field is required.", ErrInvalidField)
}

func trimAddress(a domorder.Address) domorder.Address {
	return domorder.Address{
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

func addressError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := "shipping." + fe.Field()
		if fe.Tag() == "required" {
			return fieldRequired(field)
		}
		return newValidationError(KindValidation, field, "This field is too long.", ErrInvalidField)
	}
	return newValidationError(KindValidation, "shipping", "The delivery address is invalid.", ErrInvalidField)
}

// lengthError reports the first over-long field of a request.
func lengthError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return newValidationError(KindValidation, verrs[0].Field(), "This field is too long.", ErrInvalidField)
	}
	return newValidationError(KindValidation, "", "The checkout form is invalid.", ErrInvalidField)
}

func mapSnapshotError(err error) error {
	le, ok := cartuc.IsLineError(err)
	if !ok {
		return err
	}
	switch {
	case errors.Is(le.Err, domproduct.ErrNotPriced):
		return &PricingError{Line: le.Index, ProductID: le.ProductID, Err: le.Err}
	case errors.Is(le.Err, domproduct.ErrOutOfStock):
		return newValidationError(KindValidation, fmt.Sprintf("items[%d]", le.Index),
			"The requested quantity is no longer in stock.", le.Err)
	case errors.Is(le.Err, domproduct.ErrProductNotFound):
		return newValidationError(KindValidation, fmt.Sprintf("items[%d]", le.Index),
			"A product in your cart is no longer available.", le.Err)
	default:
		return err
	}
}
