// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtbook/internal/api/apiutil"
	"github.com/courtsidehq/courtbook/internal/booking"
	"github.com/courtsidehq/courtbook/internal/metrics"
	"github.com/courtsidehq/courtbook/internal/tenant"
)

const bookingQueryTimeout = 5 * time.Second

// Store is what the listing and cancellation handlers need from storage.
type Store interface {
	ListForDate(ctx context.Context, facilityID int64, date string, status booking.Status) ([]booking.Booking, error)
	BookingByReference(ctx context.Context, reference string) (*booking.Booking, error)
	CancelByReference(ctx context.Context, reference string) (*booking.Booking, error)
}

var (
	admission *booking.AdmissionService
	resolver  *tenant.Resolver
	store     Store
	initOnce  sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *booking.AdmissionService, res *tenant.Resolver, s Store) {
	if svc == nil || res == nil || s == nil {
		return
	}
	initOnce.Do(func() {
		admission = svc
		resolver = res
		store = s
	})
}

type createRequest struct {
	Facility string `json:"facility,omitempty"`
	booking.Request
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := admission
	if svc == nil {
		logger.Error().Msg("Admission service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteCoreError(w, r, booking.ValidationError{Field: "body", Reason: "must be valid JSON"})
		return
	}

	facility := req.Facility
	if facility == "" {
		facility = apiutil.FacilityFromQueryOrDefault(r)
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	created, err := svc.CreateBooking(ctx, facility, req.Request)
	if err != nil {
		var conflictErr booking.ConflictError
		if errors.As(err, &conflictErr) {
			metrics.BookingConflicts.Inc()
		}
		apiutil.WriteCoreError(w, r, err)
		return
	}
	metrics.BookingsCreated.Inc()

	logger.Info().
		Str("reference", created.Reference).
		Int64("facility_id", created.FacilityID).
		Int64("court_number", created.CourtNumber).
		Str("date", created.Date).
		Msg("Booking created")

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Str("reference", created.Reference).Msg("Failed to write booking response")
	}
}

// GET /api/v1/bookings?facility=&date=&status=
func HandleBookingsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil || resolver == nil {
		logger.Error().Msg("Booking store not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date, err := apiutil.DateFromQuery(r)
	if err != nil {
		apiutil.WriteCoreError(w, r, booking.ValidationError{Field: "date", Reason: "is required"})
		return
	}

	status := booking.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	switch status {
	case "", booking.StatusPending, booking.StatusPaid, booking.StatusCompleted, booking.StatusCancelled:
	default:
		apiutil.WriteCoreError(w, r, booking.ValidationError{Field: "status", Reason: "is not a valid booking status"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	facility, err := resolver.Resolve(ctx, apiutil.FacilityFromQueryOrDefault(r))
	if err != nil {
		apiutil.WriteCoreError(w, r, err)
		return
	}

	bookingsList, err := store.ListForDate(ctx, facility.ID, date, status)
	if err != nil {
		apiutil.WriteCoreError(w, r, err)
		return
	}
	if bookingsList == nil {
		bookingsList = []booking.Booking{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, bookingsList); err != nil {
		logger.Error().Err(err).Int64("facility_id", facility.ID).Msg("Failed to write booking list response")
	}
}

// GET /api/v1/bookings/{reference}
func HandleBookingGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Booking store not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	reference := strings.TrimSpace(r.PathValue("reference"))
	if reference == "" {
		apiutil.WriteCoreError(w, r, booking.ValidationError{Field: "reference", Reason: "is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	b, err := store.BookingByReference(ctx, reference)
	if err != nil {
		apiutil.WriteCoreError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, b); err != nil {
		logger.Error().Err(err).Str("reference", reference).Msg("Failed to write booking response")
	}
}

// POST /api/v1/bookings/{reference}/cancel
func HandleBookingCancel(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Booking store not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	reference := strings.TrimSpace(r.PathValue("reference"))
	if reference == "" {
		apiutil.WriteCoreError(w, r, booking.ValidationError{Field: "reference", Reason: "is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	cancelled, err := store.CancelByReference(ctx, reference)
	if err != nil {
		apiutil.WriteCoreError(w, r, err)
		return
	}
	metrics.BookingsCancelled.Inc()

	logger.Info().
		Str("reference", cancelled.Reference).
		Int64("facility_id", cancelled.FacilityID).
		Msg("Booking cancelled")

	if err := apiutil.WriteJSON(w, http.StatusOK, cancelled); err != nil {
		logger.Error().Err(err).Str("reference", reference).Msg("Failed to write cancellation response")
	}
}
