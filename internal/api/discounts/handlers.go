// internal/api/discounts/handlers.go
package discounts

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtbook/internal/api/apiutil"
	"github.com/courtsidehq/courtbook/internal/booking"
	"github.com/courtsidehq/courtbook/internal/discount"
)

const discountQueryTimeout = 5 * time.Second

var (
	evaluator *discount.Evaluator
	initOnce  sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(eval *discount.Evaluator) {
	if eval == nil {
		return
	}
	initOnce.Do(func() {
		evaluator = eval
	})
}

type previewRequest struct {
	Code        string `json:"code"`
	AmountCents int64  `json:"amount_cents"`
}

// POST /api/v1/discounts/preview
//
// Pure evaluation: safe to call repeatedly while a cart is edited; never
// touches usage counts.
func HandleDiscountPreview(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	eval := evaluator
	if eval == nil {
		logger.Error().Msg("Discount evaluator not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req previewRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteCoreError(w, r, booking.ValidationError{Field: "body", Reason: "must be valid JSON"})
		return
	}
	if req.AmountCents < 0 {
		apiutil.WriteCoreError(w, r, booking.ValidationError{Field: "amount_cents", Reason: "must not be negative"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), discountQueryTimeout)
	defer cancel()

	result, err := eval.Evaluate(ctx, req.Code, req.AmountCents)
	if err != nil {
		apiutil.WriteCoreError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write discount preview response")
	}
}
