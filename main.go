package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/storefront/internal/config"
	"example.com/storefront/internal/domain/record"
	"example.com/storefront/internal/infra/catalog"
	"example.com/storefront/internal/infra/ledger"
	"example.com/storefront/internal/infra/ledger/filestore"
	"example.com/storefront/internal/infra/ledger/memstore"
	"example.com/storefront/internal/infra/ledger/sqlstore"
	"example.com/storefront/internal/infra/mail"
	"example.com/storefront/internal/infra/security"
	"example.com/storefront/internal/infra/session"
	httpapi "example.com/storefront/internal/interface/http"
	"example.com/storefront/internal/logger"
	cartuc "example.com/storefront/internal/usecase/cart"
	checkoutuc "example.com/storefront/internal/usecase/checkout"
	"example.com/storefront/internal/usecase/idempotency"
	leaduc "example.com/storefront/internal/usecase/lead"
	"example.com/storefront/internal/usecase/notification"
	orderuc "example.com/storefront/internal/usecase/order"
	"example.com/storefront/internal/usecase/pricing"
	productuc "example.com/storefront/internal/usecase/product"
	shippinguc "example.com/storefront/internal/usecase/shipping"
	"example.com/storefront/internal/validation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("storefront stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.Server.Env,
		Level:   cfg.Log.Level,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	products, err := catalog.Load(cfg.Store.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	store, closeStore, err := openLedger(ctx, cfg.Ledger, log)
	if err != nil {
		return err
	}
	defer closeStore()
	orders := ledger.NewOrderRepository(store, cfg.Store.OrderPrefix)

	var mailer notification.Mailer = mail.NewLogMailer(log)
	if cfg.Mail.SMTPAddr != "" {
		mailer = mail.NewSMTPMailer(cfg.Mail.SMTPAddr, cfg.Mail.From, nil)
	}
	dispatcher := notification.NewDispatcher(mailer, cfg.Mail.AdminEmail, log)

	resolver := pricing.NewResolver(cfg.Store.PriceFallback, log)
	cartSvc := cartuc.NewService(products, resolver)
	guard := idempotency.NewGuard()
	validate := validation.New()
	checkoutSvc := checkoutuc.NewService(cartSvc, shippinguc.NewCalculator(cfg.Shipping), orders, guard, dispatcher, checkoutuc.Options{
		DefaultCurrency:     cfg.Store.DefaultCurrency,
		SupportedCurrencies: cfg.Store.SupportedCurrencies,
		Logger:              log,
		Validator:           validate,
	})

	sessions := session.NewMemoryStore(cfg.Session.TTL, 10*time.Second, log)
	go sessions.Run(ctx, time.Minute)

	api := httpapi.NewAPI(httpapi.Dependencies{
		Sessions:        sessions,
		TokenService:    security.NewSessionTokenService(cfg.Session.Secret, cfg.Session.TTL),
		Guard:           guard,
		ProductService:  productuc.NewService(products, resolver),
		CartService:     cartSvc,
		CheckoutService: checkoutSvc,
		LeadService:     leaduc.NewService(store, guard, dispatcher, validate, log),
		OrderService:    orderuc.NewService(orders),
		Ledger:          store,
		Validator:       validate,
		Admin:           security.NewAdminCredentials(cfg.Admin.User, cfg.Admin.PasswordHash, security.NewBcryptService(0)),
		Cookie: httpapi.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.SecureCookie,
			MaxAge: cfg.Session.TTL,
		},
		Logger: log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", srv.Addr), slog.String("ledger", cfg.Ledger.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", slog.Any("error", err))
	}
	dispatcher.Wait()
	return nil
}

func openLedger(ctx context.Context, cfg config.LedgerConfig, log *slog.Logger) (record.Store, func(), error) {
	noop := func() {}
	switch cfg.Driver {
	case "memory":
		log.Warn("memory ledger selected; records are lost on restart")
		return memstore.New(), noop, nil
	case "mysql", "postgres":
		driver, dsn := sqlstore.DriverMySQL, cfg.MySQLDSN
		if cfg.Driver == "postgres" {
			driver, dsn = sqlstore.DriverPostgres, cfg.PostgresDSN
		}
		store, err := sqlstore.Open(driver, dsn, sqlstore.Options{
			LockTimeout:     cfg.LockTimeout,
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			Logger:          log,
		})
		if err != nil {
			return nil, noop, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, noop, fmt.Errorf("migrate ledger: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store, err := filestore.New(cfg.Dir, filestore.Options{
			LockTimeout: cfg.LockTimeout,
			Logger:      log,
		})
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	}
}
