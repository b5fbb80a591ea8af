package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtbook/internal/booking"
	"github.com/courtsidehq/courtbook/internal/metrics"
)

const expirySweepTimeout = 30 * time.Second

// ExpiryStore releases slots held by unpaid bookings.
type ExpiryStore interface {
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// RegisterExpirySweep schedules the job that cancels pending bookings older
// than ttl, freeing their slots for rebooking. Cancellation cannot create a
// conflict, so the sweep needs no availability re-check.
func RegisterExpirySweep(store ExpiryStore, clock booking.Clock, ttl time.Duration, cronExpr string) error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	if clock == nil {
		clock = booking.SystemClock{}
	}

	return svc.AddCronJob("pending-booking-expiry", cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), expirySweepTimeout)
		defer cancel()
		sweepExpired(ctx, store, clock, ttl)
	})
}

func sweepExpired(ctx context.Context, store ExpiryStore, clock booking.Clock, ttl time.Duration) int64 {
	cutoff := clock.Now().Add(-ttl)
	released, err := store.ExpirePending(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Pending-booking expiry sweep failed")
		return 0
	}
	if released > 0 {
		metrics.BookingsExpired.Add(float64(released))
		log.Info().Int64("released", released).Msg("Expired unpaid bookings")
	}
	return released
}
