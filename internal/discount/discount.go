// Package discount validates discount codes and computes discount amounts.
// Evaluation is side-effect free; redemption is a separate idempotent step
// taken only at payment confirmation.
package discount

import (
	"errors"
	"math"
	"time"
)

var ErrCodeNotFound = errors.New("discount code not found")

// Type is the discount calculation mode.
type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

// Discount is a promo code. Codes share one global namespace across
// facilities. Monetary fields are in cents; Value is a percentage for
// percentage-type codes and cents for fixed-type codes.
type Discount struct {
	ID               int64
	Code             string
	Type             Type
	Value            float64
	MinAmountCents   int64
	MaxDiscountCents int64 // 0 means uncapped; percentage type only
	UsageLimit       int64 // 0 means unlimited
	UsedCount        int64
	ValidFrom        time.Time
	ValidUntil       time.Time
	Active           bool
}

// Result is the outcome of evaluating a code against an amount.
type Result struct {
	Valid         bool   `json:"valid"`
	Reason        string `json:"reason,omitempty"`
	DiscountCents int64  `json:"discount_cents,omitempty"`
}

// Evaluate checks a code against an amount at a point in time and computes
// the discount. It never mutates usage counts and may be called repeatedly.
func Evaluate(d Discount, amountCents int64, now time.Time) Result {
	switch {
	case !d.Active:
		return Result{Reason: "code is not active"}
	case now.Before(d.ValidFrom):
		return Result{Reason: "code is not yet valid"}
	case now.After(d.ValidUntil):
		return Result{Reason: "code has expired"}
	case amountCents < d.MinAmountCents:
		return Result{Reason: "amount is below the minimum for this code"}
	case d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit:
		return Result{Reason: "code usage limit reached"}
	}

	var discount int64
	switch d.Type {
	case TypePercentage:
		discount = int64(math.Round(float64(amountCents) * d.Value / 100))
		if d.MaxDiscountCents > 0 && discount > d.MaxDiscountCents {
			discount = d.MaxDiscountCents
		}
	case TypeFixed:
		discount = int64(d.Value)
	default:
		return Result{Reason: "unknown discount type"}
	}

	// Never discount below zero.
	if discount > amountCents {
		discount = amountCents
	}
	if discount < 0 {
		discount = 0
	}

	return Result{Valid: true, DiscountCents: discount}
}
