// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/courtsidehq/courtbook/internal/api"
	"github.com/courtsidehq/courtbook/internal/api/availability"
	"github.com/courtsidehq/courtbook/internal/api/bookings"
	"github.com/courtsidehq/courtbook/internal/api/discounts"
	"github.com/courtsidehq/courtbook/internal/api/payments"
	"github.com/courtsidehq/courtbook/internal/booking"
	"github.com/courtsidehq/courtbook/internal/config"
	"github.com/courtsidehq/courtbook/internal/db"
	"github.com/courtsidehq/courtbook/internal/discount"
	"github.com/courtsidehq/courtbook/internal/tenant"
)

type serverDeps struct {
	availability *booking.AvailabilityService
	admission    *booking.AdmissionService
	resolver     *tenant.Resolver
	evaluator    *discount.Evaluator
	store        *db.DB
}

func newServer(cfg *config.Config, deps serverDeps) *http.Server {
	router := http.NewServeMux()

	availability.InitHandlers(deps.availability)
	bookings.InitHandlers(deps.admission, deps.resolver, deps.store)
	payments.InitHandlers(deps.store, deps.evaluator)
	discounts.InitHandlers(deps.evaluator)

	registerRoutes(router, cfg)

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.Features.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	// Read path
	mux.HandleFunc("GET /api/v1/availability", availability.HandleAvailability)

	// Write path, rate limited per client IP
	createBooking := api.WithRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)(
		http.HandlerFunc(bookings.HandleBookingCreate))
	mux.Handle("POST /api/v1/bookings", createBooking)

	// Vendor and customer booking management
	mux.HandleFunc("GET /api/v1/bookings", bookings.HandleBookingsList)
	mux.HandleFunc("GET /api/v1/bookings/{reference}", bookings.HandleBookingGet)
	mux.HandleFunc("POST /api/v1/bookings/{reference}/cancel", bookings.HandleBookingCancel)

	// Payment processor callback
	mux.HandleFunc("POST /api/v1/payments/webhook", payments.HandlePaymentWebhook)

	// Discount preview
	mux.HandleFunc("POST /api/v1/discounts/preview", discounts.HandleDiscountPreview)
}
