package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/domain/record"
	domshipping "example.com/storefront/internal/domain/shipping"
	"example.com/storefront/internal/infra/catalog"
	"example.com/storefront/internal/infra/ledger"
	"example.com/storefront/internal/infra/ledger/memstore"
	"example.com/storefront/internal/infra/security"
	infrasession "example.com/storefront/internal/infra/session"
	cartuc "example.com/storefront/internal/usecase/cart"
	checkoutuc "example.com/storefront/internal/usecase/checkout"
	"example.com/storefront/internal/usecase/idempotency"
	leaduc "example.com/storefront/internal/usecase/lead"
	orderuc "example.com/storefront/internal/usecase/order"
	"example.com/storefront/internal/usecase/pricing"
	productuc "example.com/storefront/internal/usecase/product"
	shippinguc "example.com/storefront/internal/usecase/shipping"
)

const (
	adminUser     = "admin"
	adminPassword = "s3cret"
)

type testEnv struct {
	router   http.Handler
	sessions *infrasession.MemoryStore
	tokens   *security.SessionTokenService
	ledger   record.Store
}

func newTestEnv(t *testing.T, store record.Store) *testEnv {
	t.Helper()
	if store == nil {
		store = memstore.New()
	}

	products, err := catalog.NewProductRepository([]*domproduct.Product{
		{ID: 1, Slug: "tee", Name: "Tee", Stock: 10, Prices: map[string]int64{"GBP": 1500, "USD": 1800}, IsActive: true},
		{ID: 2, Slug: "cap", Name: "Cap", Stock: 5, Prices: map[string]int64{"GBP": 3000}, IsActive: true},
		{ID: 3, Slug: "mug", Name: "Mug", Stock: 5, IsActive: true},
		{ID: 4, Slug: "old", Name: "Retired", Stock: 5, Prices: map[string]int64{"GBP": 100}, IsActive: false},
	})
	require.NoError(t, err)

	resolver := pricing.NewResolver(pricing.FallbackDeny, nil)
	cartSvc := cartuc.NewService(products, resolver)
	calc := shippinguc.NewCalculator(domshipping.Settings{
		AllowMethodSelection: true,
		EnableDelivery:       true,
		EnablePickup:         true,
		Rates:                map[string]domshipping.Rate{"GBP": {StandardCost: 499, FreeThreshold: 5000}},
		Fallback:             domshipping.Rate{StandardCost: 500, FreeThreshold: 5000},
	})
	guard := idempotency.NewGuard()
	orders := ledger.NewOrderRepository(store, "AMP")

	hash, err := security.NewBcryptService(bcrypt.MinCost).Hash(adminPassword)
	require.NoError(t, err)

	env := &testEnv{
		sessions: infrasession.NewMemoryStore(time.Hour, 50*time.Millisecond, nil),
		tokens:   security.NewSessionTokenService("test-secret", time.Hour),
		ledger:   store,
	}
	api := NewAPI(Dependencies{
		Sessions:       env.sessions,
		TokenService:   env.tokens,
		Guard:          guard,
		ProductService: productuc.NewService(products, resolver),
		CartService:    cartSvc,
		CheckoutService: checkoutuc.NewService(cartSvc, calc, orders, guard, nil, checkoutuc.Options{
			DefaultCurrency:     "GBP",
			SupportedCurrencies: []string{"GBP", "USD", "ESP"},
		}),
		LeadService:  leaduc.NewService(store, guard, nil, nil, nil),
		OrderService: orderuc.NewService(orders),
		Ledger:       store,
		Admin:        security.NewAdminCredentials(adminUser, hash, security.NewBcryptService(bcrypt.MinCost)),
		Cookie:       CookieOptions{Name: "sid"},
	})
	env.router = api.Router()
	return env
}

// visitor replays the session cookie like a browser would.
type visitor struct {
	t       *testing.T
	env     *testEnv
	cookies []*http.Cookie
	auth    bool
}

func (e *testEnv) visitor(t *testing.T) *visitor {
	return &visitor{t: t, env: e}
}

func (v *visitor) do(method, path string, body any) *httptest.ResponseRecorder {
	v.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(v.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range v.cookies {
		req.AddCookie(c)
	}
	if v.auth {
		req.SetBasicAuth(adminUser, adminPassword)
	}
	rec := httptest.NewRecorder()
	v.env.router.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		v.cookies = cs
	}
	return rec
}

func (v *visitor) token() string {
	v.t.Helper()
	rec := v.do(http.MethodGet, "/api/v1/session", nil)
	require.Equal(v.t, http.StatusOK, rec.Code)
	body := decodeBody(v.t, rec)
	tok, _ := body["idempotency_token"].(string)
	require.NotEmpty(v.t, tok)
	return tok
}

func (v *visitor) addToCart(productID, qty int64) {
	v.t.Helper()
	rec := v.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": productID, "quantity": qty})
	require.Equal(v.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func checkoutPayload(token, payment, method string) map[string]any {
	return map[string]any{
		"customer": map[string]any{"name": "Ada Lovelace", "email": "ada@example.com", "phone": "+44 20 7946 0000"},
		"shipping": map[string]any{
			"line1":       "1 Analytical Row",
			"city":        "London",
			"postal_code": "N1 9GU",
			"country":     "GB",
		},
		"payment_method":    payment,
		"shipping_method":   method,
		"idempotency_token": token,
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.visitor(t).do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSession_CookieKeepsCart(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)

	v.addToCart(1, 2)
	require.NotEmpty(t, v.cookies)

	rec := v.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Len(t, body["lines"], 1)

	stranger := env.visitor(t)
	stranger.cookies = []*http.Cookie{{Name: "sid", Value: "forged.token.value"}}
	rec = stranger.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeBody(t, rec)["lines"])
}

func TestSession_HeldSessionIsBusy(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)
	v.token()

	id, err := env.tokens.Parse(v.cookies[0].Value)
	require.NoError(t, err)
	_, err = env.sessions.Open(context.Background(), id)
	require.NoError(t, err)
	defer env.sessions.Release(id)

	rec := v.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestSession_AgingCookieIsReissued(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)
	v.addToCart(1, 2)

	id, err := env.tokens.Parse(v.cookies[0].Value)
	require.NoError(t, err)

	rec := v.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies())

	aged, err := security.NewSessionTokenService("test-secret", time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-40 * time.Minute) }).
		Sign(id)
	require.NoError(t, err)
	v.cookies = []*http.Cookie{{Name: "sid", Value: aged}}

	rec = v.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody(t, rec)["lines"], 1)

	reissued := rec.Result().Cookies()
	require.Len(t, reissued, 1)
	require.NotEqual(t, aged, reissued[0].Value)
	renewedID, renew, err := env.tokens.ParseForRenewal(reissued[0].Value)
	require.NoError(t, err)
	require.Equal(t, id, renewedID)
	require.False(t, renew)
}

func TestCart_AddAndRemove(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)

	v.addToCart(1, 1)
	v.addToCart(2, 1)

	rec := v.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 2, "quantity": 10})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = v.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 99, "quantity": 1})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = v.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 1, "quantity": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = v.do(http.MethodDelete, "/api/v1/cart/items/5", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = v.do(http.MethodDelete, "/api/v1/cart/items/x", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = v.do(http.MethodDelete, "/api/v1/cart/items/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = v.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	lines := body["lines"].([]any)
	require.Len(t, lines, 1)
	require.Equal(t, float64(2), lines[0].(map[string]any)["product_id"])
	require.Equal(t, "£30.00", body["subtotal"].(map[string]any)["formatted"])
}

func TestSetCurrency(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)

	rec := v.do(http.MethodPut, "/api/v1/currency", map[string]any{"currency": "usd"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "USD", decodeBody(t, rec)["currency"])

	rec = v.do(http.MethodPut, "/api/v1/currency", map[string]any{"currency": "JPY"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	v.addToCart(1, 1)
	rec = v.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "$18.00", decodeBody(t, rec)["subtotal"].(map[string]any)["formatted"])
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)

	rec := v.do(http.MethodGet, "/api/v1/products?currency=USD", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "USD", body["currency"])
	data := body["data"].([]any)
	require.Len(t, data, 3)
	tee := data[0].(map[string]any)
	require.Equal(t, float64(1800), tee["price"].(map[string]any)["amount"])
	require.Nil(t, data[1].(map[string]any)["price"])

	rec = v.do(http.MethodGet, "/api/v1/products/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "£30.00", decodeBody(t, rec)["price"].(map[string]any)["formatted"])

	rec = v.do(http.MethodGet, "/api/v1/products/4", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = v.do(http.MethodGet, "/api/v1/products/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuote_RecomputesWithoutStoring(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)
	v.addToCart(1, 3)

	rec := v.do(http.MethodPost, "/api/v1/checkout/quote", map[string]any{"shipping_method": "delivery"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	require.Equal(t, "£45.00", body["subtotal_formatted"])
	require.Equal(t, "£4.99", body["shipping_formatted"])
	require.Equal(t, "£49.99", body["total_formatted"])
	require.Equal(t, true, body["requires_address"])

	rec = v.do(http.MethodPost, "/api/v1/checkout/quote", map[string]any{"shipping_method": "pickup"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Equal(t, "£0.00", body["shipping_formatted"])
	require.Equal(t, "£45.00", body["total_formatted"])
	require.Equal(t, false, body["requires_address"])

	rec = v.do(http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeBody(t, rec)["shipping_method"])

	rec = v.do(http.MethodPost, "/api/v1/checkout/quote", map[string]any{"shipping_method": "drone"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "validation", decodeBody(t, rec)["error_kind"])
}

func TestCheckout_PlacesOrderOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)
	v.addToCart(1, 3)
	token := v.token()

	payload := checkoutPayload(token, "bank_transfer", "delivery")
	rec := v.do(http.MethodPost, "/api/v1/checkout", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	orderID, _ := body["order_id"].(string)
	require.Regexp(t, `^AMP\d{4}000001$`, orderID)

	rec = v.do(http.MethodPost, "/api/v1/checkout", payload)
	require.Equal(t, http.StatusConflict, rec.Code)
	body = decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.Equal(t, "stale_form", body["error_kind"])
	require.NotEmpty(t, body["message"])

	rec = v.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeBody(t, rec)["lines"])
	require.NotEqual(t, token, v.token())

	records, err := env.ledger.ReadAll(context.Background(), record.CollectionOrders)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, orderID, records[0].ID())
}

func TestCheckout_PickupIgnoresPartialAddress(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)
	v.addToCart(1, 1)

	payload := checkoutPayload(v.token(), "paypal", "pickup")
	payload["shipping"] = map[string]any{"city": "London"}
	rec := v.do(http.MethodPost, "/api/v1/checkout", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCheckout_EmptyCartRedirects(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)
	token := v.token()

	rec := v.do(http.MethodPost, "/api/v1/checkout", checkoutPayload(token, "bank_transfer", "delivery"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/cart", rec.Header().Get("Location"))
	require.Equal(t, "empty_cart", decodeBody(t, rec)["error_kind"])
}

func TestCheckout_RejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)
	v.addToCart(1, 1)
	token := v.token()

	payload := checkoutPayload(token, "bank_transfer", "delivery")
	payload["discount"] = 100
	rec := v.do(http.MethodPost, "/api/v1/checkout", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation", decodeBody(t, rec)["error_kind"])

	rec = v.do(http.MethodPost, "/api/v1/checkout", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_Failures(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		product  int64
		payload  func(token string) map[string]any
		status   int
		kind     string
		field    string
	}{
		{
			name:    "missing email",
			product: 1,
			payload: func(token string) map[string]any {
				p := checkoutPayload(token, "bank_transfer", "delivery")
				p["customer"] = map[string]any{"name": "Ada", "phone": "1"}
				return p
			},
			status: http.StatusUnprocessableEntity,
			kind:   "validation",
			field:  "email",
		},
		{
			name:     "espees outside ESP",
			currency: "USD",
			product:  1,
			payload: func(token string) map[string]any {
				return checkoutPayload(token, "espees", "delivery")
			},
			status: http.StatusUnprocessableEntity,
			kind:   "payment_method",
			field:  "payment_method",
		},
		{
			name:    "card goes to gateway",
			product: 1,
			payload: func(token string) map[string]any {
				return checkoutPayload(token, "card", "pickup")
			},
			status: http.StatusUnprocessableEntity,
			kind:   "payment_method",
			field:  "payment_method",
		},
		{
			name:    "unpriced line",
			product: 3,
			payload: func(token string) map[string]any {
				return checkoutPayload(token, "bank_transfer", "delivery")
			},
			status: http.StatusUnprocessableEntity,
			kind:   "pricing",
		},
		{
			name:    "forged token",
			product: 1,
			payload: func(string) map[string]any {
				return checkoutPayload("forged", "bank_transfer", "delivery")
			},
			status: http.StatusConflict,
			kind:   "stale_form",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			v := env.visitor(t)
			if tt.currency != "" {
				rec := v.do(http.MethodPut, "/api/v1/currency", map[string]any{"currency": tt.currency})
				require.Equal(t, http.StatusOK, rec.Code)
			}
			v.addToCart(tt.product, 1)
			token := v.token()

			rec := v.do(http.MethodPost, "/api/v1/checkout", tt.payload(token))
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			require.Equal(t, false, body["success"])
			require.Equal(t, tt.kind, body["error_kind"])
			if tt.field != "" {
				require.Equal(t, tt.field, body["field"])
			}

			records, err := env.ledger.ReadAll(context.Background(), record.CollectionOrders)
			require.NoError(t, err)
			require.Empty(t, records)
			require.Equal(t, token, v.token())
		})
	}
}

type failingStore struct {
	record.Store
	err error
}

func (s *failingStore) AppendSequenced(ctx context.Context, collection string, rec record.Record, seq record.Sequence) (string, error) {
	return "", s.err
}

func TestCheckout_StoreFailures(t *testing.T) {
	t.Run("busy", func(t *testing.T) {
		env := newTestEnv(t, &failingStore{Store: memstore.New(), err: record.ErrBusy})
		v := env.visitor(t)
		v.addToCart(1, 1)
		token := v.token()

		rec := v.do(http.MethodPost, "/api/v1/checkout", checkoutPayload(token, "bank_transfer", "delivery"))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "1", rec.Header().Get("Retry-After"))
		require.Equal(t, "busy", decodeBody(t, rec)["error_kind"])

		rec = v.do(http.MethodGet, "/api/v1/cart", nil)
		require.Len(t, decodeBody(t, rec)["lines"], 1)
		require.Equal(t, token, v.token())
	})

	t.Run("unwritable", func(t *testing.T) {
		env := newTestEnv(t, &failingStore{Store: memstore.New(), err: record.ErrUnwritable})
		v := env.visitor(t)
		v.addToCart(1, 1)
		token := v.token()

		rec := v.do(http.MethodPost, "/api/v1/checkout", checkoutPayload(token, "bank_transfer", "delivery"))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, "unavailable", body["error_kind"])
		require.Equal(t, msgTryAgain, body["message"])
		require.NotContains(t, rec.Body.String(), "unwritable")
	})
}

func TestLeads(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)
	token := v.token()

	contact := map[string]any{
		"name":              "Grace",
		"email":             "not-an-email",
		"message":           "Do you ship to Lagos?",
		"idempotency_token": token,
	}
	rec := v.do(http.MethodPost, "/api/v1/contact", contact)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "email", decodeBody(t, rec)["field"])

	contact["email"] = "grace@example.com"
	rec = v.do(http.MethodPost, "/api/v1/contact", contact)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(t, decodeBody(t, rec)["id"])

	rec = v.do(http.MethodPost, "/api/v1/contact", contact)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = v.do(http.MethodPost, "/api/v1/distributors", map[string]any{
		"company":           "Acme Ltd",
		"contact_name":      "Wile",
		"email":             "wile@acme.test",
		"phone":             "555",
		"country":           "NG",
		"idempotency_token": v.token(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = v.do(http.MethodPost, "/api/v1/contact", `{"name":"x","surprise":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	contacts, err := env.ledger.ReadAll(context.Background(), record.CollectionContacts)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	applications, err := env.ledger.ReadAll(context.Background(), record.CollectionDistributors)
	require.NoError(t, err)
	require.Len(t, applications, 1)
	require.Equal(t, "new", applications[0]["status"])
}

func TestAdmin_RequiresCredentials(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)

	rec := v.do(http.MethodGet, "/api/v1/admin/orders", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.SetBasicAuth(adminUser, "wrong")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdmin_Orders(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.visitor(t)
	v.addToCart(2, 2)
	rec := v.do(http.MethodPost, "/api/v1/checkout", checkoutPayload(v.token(), "bank_transfer", "delivery"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID := decodeBody(t, rec)["order_id"].(string)

	v.auth = true
	rec = v.do(http.MethodGet, "/api/v1/admin/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].([]any)
	require.Len(t, data, 1)
	order := data[0].(map[string]any)
	require.Equal(t, "awaiting_transfer", order["status"])
	require.Equal(t, float64(6000), order["total"])
	require.Equal(t, float64(0), order["shipping_cost"])

	rec = v.do(http.MethodGet, "/api/v1/admin/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = v.do(http.MethodGet, "/api/v1/admin/orders/AMP1999000001", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = v.do(http.MethodPatch, "/api/v1/admin/orders/"+orderID, map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusConflict, rec.Code)
	rec = v.do(http.MethodPatch, "/api/v1/admin/orders/"+orderID, map[string]any{"status": "bogus"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = v.do(http.MethodPatch, "/api/v1/admin/orders/"+orderID, map[string]any{"status": "paid"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "paid", decodeBody(t, rec)["status"])

	rec = v.do(http.MethodGet, "/api/v1/admin/collections/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), decodeBody(t, rec)["count"])

	rec = v.do(http.MethodGet, "/api/v1/admin/collections/Orders", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
