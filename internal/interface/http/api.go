package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	domcart "example.com/storefront/internal/domain/cart"
	"example.com/storefront/internal/domain/money"
	domorder "example.com/storefront/internal/domain/order"
	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/domain/record"
	domsession "example.com/storefront/internal/domain/session"
	domshipping "example.com/storefront/internal/domain/shipping"
	"example.com/storefront/internal/infra/security"
	cartuc "example.com/storefront/internal/usecase/cart"
	checkoutuc "example.com/storefront/internal/usecase/checkout"
	"example.com/storefront/internal/usecase/idempotency"
	leaduc "example.com/storefront/internal/usecase/lead"
	orderuc "example.com/storefront/internal/usecase/order"
	productuc "example.com/storefront/internal/usecase/product"
	"example.com/storefront/internal/validation"
)

type API struct {
	sessions    domsession.Store
	tokenSvc    *security.SessionTokenService
	guard       *idempotency.Guard
	productSvc  *productuc.Service
	cartSvc     *cartuc.Service
	checkoutSvc *checkoutuc.Service
	leadSvc     *leaduc.Service
	orderSvc    *orderuc.Service
	ledger      record.Store
	admin       *security.AdminCredentials
	validator   *validator.Validate
	cookie      CookieOptions
	logger      *slog.Logger
}

type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type Dependencies struct {
	Sessions        domsession.Store
	TokenService    *security.SessionTokenService
	Guard           *idempotency.Guard
	ProductService  *productuc.Service
	CartService     *cartuc.Service
	CheckoutService *checkoutuc.Service
	LeadService     *leaduc.Service
	OrderService    *orderuc.Service
	Ledger          record.Store
	Admin           *security.AdminCredentials
	Validator       *validator.Validate
	Cookie          CookieOptions
	Logger          *slog.Logger
}

func NewAPI(deps Dependencies) *API {
	cookie := deps.Cookie
	if cookie.Name == "" {
		cookie.Name = "storefront_session"
	}
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 24 * time.Hour
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	validate := deps.Validator
	if validate == nil {
		validate = validation.New()
	}
	return &API{
		sessions:    deps.Sessions,
		tokenSvc:    deps.TokenService,
		guard:       deps.Guard,
		productSvc:  deps.ProductService,
		cartSvc:     deps.CartService,
		checkoutSvc: deps.CheckoutService,
		leadSvc:     deps.LeadService,
		orderSvc:    deps.OrderService,
		ledger:      deps.Ledger,
		admin:       deps.Admin,
		validator:   validate,
		cookie:      cookie,
		logger:      logger,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", a.handleListProducts)
		r.Get("/products/{id}", a.handleGetProduct)

		r.Group(func(sr chi.Router) {
			sr.Use(a.sessionMiddleware)
			sr.Get("/session", a.handleGetSession)
			sr.Put("/currency", a.handleSetCurrency)
			sr.Get("/cart", a.handleGetCart)
			sr.Post("/cart/items", a.handleAddCartItem)
			sr.Delete("/cart/items/{index}", a.handleRemoveCartItem)
			sr.Post("/checkout/quote", a.handleQuote)
			sr.Post("/checkout", a.handleCheckout)
			sr.Post("/contact", a.handleContact)
			sr.Post("/distributors", a.handleDistributorApplication)
		})

		r.Group(func(ar chi.Router) {
			ar.Use(a.adminMiddleware)

			ar.Route("/admin", func(admin chi.Router) {
				admin.Get("/collections/{name}", a.handleReadCollection)

				admin.Route("/orders", func(rr chi.Router) {
					rr.Get("/", a.handleListOrders)
					rr.Get("/{id}", a.handleGetOrder)
					rr.Patch("/{id}", a.handleUpdateOrderStatus)
				})
			})
		})
	})

	return r
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := decodeStrict(r, dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

// decodeStrict rejects fields the target type does not declare.
func decodeStrict(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func respondUnavailable(w http.ResponseWriter, retry bool) {
	if retry {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: msgTryAgain})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func mapMoney(m money.Money) map[string]any {
	return map[string]any{
		"amount":    m.Amount,
		"currency":  m.Currency,
		"formatted": m.Format(),
	}
}

func mapListing(l productuc.Listing) map[string]any {
	out := map[string]any{
		"id":       l.Product.ID,
		"slug":     l.Product.Slug,
		"name":     l.Product.Name,
		"in_stock": l.Product.Stock > 0,
		"price":    nil,
	}
	if l.Price != nil {
		out["price"] = mapMoney(*l.Price)
		out["price_fallback"] = l.PriceFallback
	}
	return out
}

func mapSnapshot(s domcart.Snapshot) map[string]any {
	lines := make([]map[string]any, 0, len(s.Lines))
	for i, l := range s.Lines {
		lines = append(lines, map[string]any{
			"index":      i,
			"product_id": l.ProductID,
			"name":       l.Name,
			"quantity":   l.Quantity,
			"size":       l.Size,
			"color":      l.Color,
			"unit_price": mapMoney(l.UnitPrice),
			"line_total": mapMoney(l.LineTotal),
		})
	}
	return map[string]any{
		"currency": s.Currency,
		"lines":    lines,
		"subtotal": mapMoney(s.Subtotal),
	}
}

func mapOrder(o *domorder.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"name":       item.Name,
			"quantity":   item.Quantity,
			"size":       item.Size,
			"color":      item.Color,
			"unit_price": item.UnitPrice.Amount,
			"line_total": item.LineTotal.Amount,
		})
	}

	return map[string]any{
		"id":              o.ID,
		"customer":        o.Customer,
		"status":          o.Status,
		"payment_method":  o.PaymentMethod,
		"shipping_method": o.ShippingMethod,
		"currency":        o.Currency,
		"subtotal":        o.Subtotal.Amount,
		"shipping_cost":   o.ShippingCost.Amount,
		"total":           o.Total.Amount,
		"total_formatted": o.Total.Format(),
		"notes":           o.Notes,
		"created_at":      o.CreatedAt,
		"updated_at":      o.UpdatedAt,
		"items":           items,
	}
}

func (a *API) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, domshipping.ErrUnknownMethod),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domproduct.ErrOutOfStock),
		errors.Is(err, domproduct.ErrNotPriced):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domorder.ErrOrderNotFound),
		errors.Is(err, domcart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domorder.ErrInvalidTransition),
		errors.Is(err, record.ErrDuplicateID):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, record.ErrInvalidCollection):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, record.ErrBusy):
		respondUnavailable(w, true)
	case errors.Is(err, record.ErrUnwritable),
		errors.Is(err, record.ErrCorrupt):
		a.logger.Error("ledger unavailable", slog.Any("error", err))
		respondUnavailable(w, false)
	default:
		a.logger.Error("unhandled error", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
