// internal/api/payments/handlers.go
package payments

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtbook/internal/api/apiutil"
	"github.com/courtsidehq/courtbook/internal/booking"
	"github.com/courtsidehq/courtbook/internal/discount"
	"github.com/courtsidehq/courtbook/internal/metrics"
)

const paymentQueryTimeout = 5 * time.Second

// Store is the payment-confirmation write path.
type Store interface {
	MarkPaidByReference(ctx context.Context, reference string) (*booking.Booking, error)
}

var (
	store     Store
	evaluator *discount.Evaluator
	initOnce  sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s Store, eval *discount.Evaluator) {
	if s == nil {
		return
	}
	initOnce.Do(func() {
		store = s
		evaluator = eval
	})
}

// webhookEvent is the payment processor's callback payload. The booking
// reference travels in the event metadata.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		BookingReference string `json:"booking_reference"`
		AmountCents      int64  `json:"amount_cents"`
	} `json:"data"`
}

// POST /api/v1/payments/webhook
//
// Idempotent: repeat callbacks for an already-paid booking are no-ops, not
// errors, and a booking's discount is redeemed at most once.
func HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Payment store not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var event webhookEvent
	if err := apiutil.DecodeJSON(r, &event); err != nil {
		metrics.PaymentCallbacks.WithLabelValues("malformed").Inc()
		apiutil.WriteCoreError(w, r, booking.ValidationError{Field: "body", Reason: "must be valid JSON"})
		return
	}

	reference := strings.TrimSpace(event.Data.BookingReference)
	if reference == "" {
		metrics.PaymentCallbacks.WithLabelValues("malformed").Inc()
		apiutil.WriteCoreError(w, r, booking.ValidationError{Field: "data.booking_reference", Reason: "is required"})
		return
	}

	if event.Event != "payment.succeeded" {
		// Acknowledge and drop anything we do not act on so the processor
		// stops retrying.
		metrics.PaymentCallbacks.WithLabelValues("ignored").Inc()
		logger.Info().Str("event", event.Event).Str("reference", reference).Msg("Ignoring payment event")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentQueryTimeout)
	defer cancel()

	paid, err := store.MarkPaidByReference(ctx, reference)
	if err != nil {
		metrics.PaymentCallbacks.WithLabelValues("failed").Inc()
		apiutil.WriteCoreError(w, r, err)
		return
	}
	metrics.PaymentCallbacks.WithLabelValues("confirmed").Inc()

	if paid.DiscountCode != "" && evaluator != nil {
		if err := evaluator.Redeem(ctx, paid.DiscountCode, paid.ID); err != nil {
			// The booking is paid either way; redemption will be retried by
			// the processor's next callback for this booking.
			logger.Error().Err(err).
				Str("reference", paid.Reference).
				Str("code", paid.DiscountCode).
				Msg("Failed to redeem discount")
		}
	}

	logger.Info().
		Str("reference", paid.Reference).
		Int64("facility_id", paid.FacilityID).
		Msg("Booking marked paid")

	if err := apiutil.WriteJSON(w, http.StatusOK, paid); err != nil {
		logger.Error().Err(err).Str("reference", reference).Msg("Failed to write payment response")
	}
}
