package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alphasup/alphasup-backend/api/routes"
	"github.com/alphasup/alphasup-backend/internal/bookings"
	"github.com/alphasup/alphasup-backend/internal/customers"
	"github.com/alphasup/alphasup-backend/internal/notifications"
	"github.com/alphasup/alphasup-backend/internal/payments"
	stripewebhook "github.com/alphasup/alphasup-backend/internal/webhooks/stripe"
	"github.com/alphasup/alphasup-backend/pkg/config"
	"github.com/alphasup/alphasup-backend/pkg/db"
	"github.com/alphasup/alphasup-backend/pkg/logger"
	"github.com/alphasup/alphasup-backend/pkg/metrics"
	"github.com/alphasup/alphasup-backend/pkg/migrate"
	"github.com/alphasup/alphasup-backend/pkg/redis"
	pkgstripe "github.com/alphasup/alphasup-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	paymentRepo := payments.NewRepository(dbClient.DB())
	bookingRepo := bookings.NewRepository(dbClient.DB())
	customerRepo := customers.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	pricer, err := payments.NewPricer(cfg.Payments)
	if err != nil {
		logg.Error(context.Background(), "failed to build pricer", err)
		os.Exit(1)
	}
	gateway := payments.NewGateway(stripeClient)

	customerService, err := customers.NewService(customers.ServiceParams{
		Repo:    customerRepo,
		Gateway: gateway,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:              paymentRepo,
		BookingRepo:       bookingRepo,
		Customers:         customerService,
		Gateway:           gateway,
		Notifications:     notificationService,
		Pricer:            pricer,
		TransactionRunner: dbClient,
		Logger:            logg,
		Metrics:           paymentMetrics,
		DefaultCurrency:   cfg.Payments.DefaultCurrency,
		IntentTTL:         cfg.Payments.IntentTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:            bookingRepo,
		CustomerRepo:    customerRepo,
		Pricer:          pricer,
		DefaultCurrency: cfg.Payments.DefaultCurrency,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		PaymentRepo:       paymentRepo,
		BookingRepo:       bookingRepo,
		Gateway:           gateway,
		Notifications:     notificationService,
		TransactionRunner: dbClient,
		Logger:            logg,
		Metrics:           paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Payments.WebhookEventTTL, stripewebhook.DefaultEventScope)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"stripe_env": stripeClient.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			bookingService,
			paymentService,
			stripeClient,
			webhookService,
			webhookGuard,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
