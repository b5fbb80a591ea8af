// Package metrics exposes prometheus counters for the booking flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtbook_bookings_created_total",
		Help: "Bookings admitted with status pending.",
	})

	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtbook_booking_conflicts_total",
		Help: "Booking requests rejected because the slot was taken.",
	})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtbook_bookings_cancelled_total",
		Help: "Bookings cancelled by customers or vendors.",
	})

	BookingsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtbook_bookings_expired_total",
		Help: "Pending bookings released by the expiry sweep.",
	})

	PaymentCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtbook_payment_callbacks_total",
		Help: "Payment webhook callbacks by outcome.",
	}, []string{"outcome"})
)
