package discount

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Store is the discount persistence boundary. RedeemOnce must increment the
// code's used count at most once per booking id, regardless of how many times
// it is called for that booking.
type Store interface {
	DiscountByCode(ctx context.Context, code string) (*Discount, error)
	RedeemOnce(ctx context.Context, discountID, bookingID int64) error
}

// Clock abstracts "now" for validity-window checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Evaluator looks up codes and applies the evaluation rules.
type Evaluator struct {
	store Store
	clock Clock
}

func NewEvaluator(store Store, clock Clock) *Evaluator {
	if clock == nil {
		clock = systemClock{}
	}
	return &Evaluator{store: store, clock: clock}
}

// Evaluate validates a code against an amount. An unknown code is an invalid
// result, not an error; storage failures are errors.
func (e *Evaluator) Evaluate(ctx context.Context, code string, amountCents int64) (Result, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Result{Reason: "code is required"}, nil
	}

	d, err := e.store.DiscountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return Result{Reason: "unknown code"}, nil
		}
		return Result{}, err
	}

	return Evaluate(*d, amountCents, e.clock.Now()), nil
}

// Redeem increments the code's used count for a confirmed booking. Calling it
// again for the same booking is a no-op, so payment-webhook retries cannot
// burn a second use.
func (e *Evaluator) Redeem(ctx context.Context, code string, bookingID int64) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil
	}

	d, err := e.store.DiscountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return nil
		}
		return err
	}
	return e.store.RedeemOnce(ctx, d.ID, bookingID)
}
