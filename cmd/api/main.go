package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront-engine/internal/config"
	"storefront-engine/internal/db"
	"storefront-engine/internal/httpserver"
	"storefront-engine/internal/identity"
	"storefront-engine/internal/notify"
	"storefront-engine/internal/payments"
	checkoutrepo "storefront-engine/internal/repository/checkout"
	couponrepo "storefront-engine/internal/repository/coupon"
	guestrepo "storefront-engine/internal/repository/guestuser"
	orderrepo "storefront-engine/internal/repository/order"
	productrepo "storefront-engine/internal/repository/product"
	shippingrepo "storefront-engine/internal/repository/shipping"
	storerepo "storefront-engine/internal/repository/store"
	userrepo "storefront-engine/internal/repository/user"
	checkoutsvc "storefront-engine/internal/service/checkout"
	couponsvc "storefront-engine/internal/service/coupon"
	guestlinksvc "storefront-engine/internal/service/guestlink"
	ordersvc "storefront-engine/internal/service/order"
	shippingsvc "storefront-engine/internal/service/shipping"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	couponRepo := couponrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	shippingRepo := shippingrepo.NewPostgres(dbpool)
	guestRepo := guestrepo.NewPostgres(dbpool)
	storeRepo := storerepo.NewPostgres(dbpool)
	userRepo := userrepo.NewPostgres(dbpool)
	checkoutRepo := checkoutrepo.NewPostgres(dbpool, logger)

	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)

	var provider payments.Provider = payments.Disabled{}
	if cfg.StripeSecretKey != "" {
		stripeProvider, err := payments.NewStripeProvider(cfg.StripeSecretKey)
		if err != nil {
			logger.Fatalf("init stripe: %v", err)
		}
		provider = stripeProvider
	} else {
		logger.Printf("STRIPE_SECRET_KEY not set; online payments disabled")
	}

	couponService := couponsvc.New(couponRepo, orderRepo)
	shippingService := shippingsvc.New(shippingRepo)
	orderService := ordersvc.New(orderRepo, userRepo, mailer, logger)
	guestLinkService := guestlinksvc.New(guestRepo, orderRepo, logger)
	checkoutService := checkoutsvc.New(checkoutsvc.Deps{
		Products: productRepo,
		Coupons:  couponService,
		Shipping: shippingService,
		Commits:  checkoutRepo,
		Users:    userRepo,
		Payments: provider,
		Notifier: mailer,
		Origin:   cfg.PublicOrigin,
		Currency: cfg.Currency,
		Logger:   logger,
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CheckoutSvc:  checkoutService,
		OrderSvc:     orderService,
		CouponSvc:    couponService,
		ShippingSvc:  shippingService,
		GuestLinkSvc: guestLinkService,
		Verifier:     identity.NewJWTVerifier(cfg.JWTSecret),
		Stores:       storeRepo,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
