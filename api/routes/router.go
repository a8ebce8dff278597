package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alphasup/alphasup-backend/api/controllers"
	bookingcontrollers "github.com/alphasup/alphasup-backend/api/controllers/bookings"
	paymentcontrollers "github.com/alphasup/alphasup-backend/api/controllers/payments"
	webhookcontrollers "github.com/alphasup/alphasup-backend/api/controllers/webhooks"
	"github.com/alphasup/alphasup-backend/api/middleware"
	"github.com/alphasup/alphasup-backend/internal/bookings"
	"github.com/alphasup/alphasup-backend/internal/payments"
	stripewebhook "github.com/alphasup/alphasup-backend/internal/webhooks/stripe"
	"github.com/alphasup/alphasup-backend/pkg/config"
	"github.com/alphasup/alphasup-backend/pkg/db"
	"github.com/alphasup/alphasup-backend/pkg/logger"
	"github.com/alphasup/alphasup-backend/pkg/redis"
	"github.com/alphasup/alphasup-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	bookingService bookings.Service,
	paymentService payments.Service,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookingcontrollers.Create(bookingService, logg))
			r.Post("/quote", bookingcontrollers.Quote(bookingService, logg))
			r.Get("/{bookingId}", bookingcontrollers.Get(bookingService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/create-intent", paymentcontrollers.CreateIntent(paymentService, logg))
			r.Get("/{paymentId}", paymentcontrollers.Get(paymentService, logg))
			r.Get("/booking/{bookingId}", paymentcontrollers.ListByBooking(paymentService, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/{paymentId}/refund", paymentcontrollers.Refund(paymentService, logg))
		})
	})

	return r
}
