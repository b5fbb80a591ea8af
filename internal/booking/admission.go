package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog"

	"github.com/courtsidehq/courtbook/internal/tenant"
)

const (
	admissionRetries   = 3
	admissionRetryWait = 25 * time.Millisecond

	defaultPhoneRegion = "US"
)

// AdmissionStore is the atomic write path. InsertIfNoConflict must re-run the
// conflict check and insert within one serialized transaction so that two
// concurrent admissions for the same court, date, and overlapping window can
// never both succeed. It returns the competing bookings when the candidate
// loses, or ErrStorageBusy for transient failures worth retrying.
type AdmissionStore interface {
	InsertIfNoConflict(ctx context.Context, b Booking) (Booking, []Booking, error)
}

// Request is a candidate booking as supplied by the caller, in wire formats.
type Request struct {
	CourtNumber  int64    `json:"court_number"`
	Date         string   `json:"date"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Customer     Customer `json:"customer"`
	TotalCents   int64    `json:"total_cents"`
	DiscountCode string   `json:"discount_code,omitempty"`
	Source       Source   `json:"source,omitempty"`
}

// AdmissionService is the write path: validate, resolve the tenant, then
// admit the booking through the store's serialized check-then-insert.
type AdmissionService struct {
	resolver *tenant.Resolver
	store    AdmissionStore
	clock    Clock
	logger   zerolog.Logger
}

func NewAdmissionService(resolver *tenant.Resolver, store AdmissionStore, clock Clock, logger zerolog.Logger) *AdmissionService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AdmissionService{resolver: resolver, store: store, clock: clock, logger: logger}
}

// CreateBooking validates the request, re-checks conflicts at write time, and
// persists the booking with status pending. On overlap it returns a
// ConflictError enumerating the competing bookings; it never overwrites.
func (s *AdmissionService) CreateBooking(ctx context.Context, facilityIdentifier string, req Request) (*Booking, error) {
	facility, err := s.resolver.Resolve(ctx, facilityIdentifier)
	if err != nil {
		return nil, err
	}
	if !facility.Active {
		return nil, tenant.ErrFacilityNotFound
	}

	candidate, err := s.validate(facility, req)
	if err != nil {
		return nil, err
	}

	var created Booking
	var conflicts []Booking
	for attempt := 0; ; attempt++ {
		created, conflicts, err = s.store.InsertIfNoConflict(ctx, candidate)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrStorageBusy) || attempt >= admissionRetries {
			return nil, err
		}
		s.logger.Warn().
			Int("attempt", attempt+1).
			Int64("facility_id", candidate.FacilityID).
			Int64("court_number", candidate.CourtNumber).
			Msg("Admission write contended, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(admissionRetryWait):
		}
	}
	if len(conflicts) > 0 {
		return nil, ConflictError{Conflicts: conflicts}
	}
	return &created, nil
}

func (s *AdmissionService) validate(facility *tenant.Facility, req Request) (Booking, error) {
	req.Customer.Name = strings.TrimSpace(req.Customer.Name)
	req.Customer.Email = strings.TrimSpace(req.Customer.Email)
	req.Customer.Phone = strings.TrimSpace(req.Customer.Phone)

	if req.Customer.Name == "" {
		return Booking{}, ValidationError{Field: "customer.name", Reason: "is required"}
	}
	if req.Customer.Email == "" && req.Customer.Phone == "" {
		return Booking{}, ValidationError{Field: "customer", Reason: "must include an email or phone number"}
	}
	if req.Customer.Phone != "" {
		parsed, err := phonenumbers.Parse(req.Customer.Phone, defaultPhoneRegion)
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			return Booking{}, ValidationError{Field: "customer.phone", Reason: "must be a valid phone number"}
		}
		req.Customer.Phone = phonenumbers.Format(parsed, phonenumbers.E164)
	}
	if req.TotalCents < 0 {
		return Booking{}, ValidationError{Field: "total_cents", Reason: "must not be negative"}
	}

	day, err := ParseDate(req.Date, facility.Location())
	if err != nil {
		return Booking{}, ValidationError{Field: "date", Reason: "must be in YYYY-MM-DD format"}
	}
	today := s.clock.Now().In(facility.Location())
	todayMidnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, facility.Location())
	if day.Before(todayMidnight) {
		return Booking{}, ValidationError{Field: "date", Reason: "must not be in the past"}
	}

	start, err := ParseTimeOfDay(req.StartTime)
	if err != nil {
		return Booking{}, ValidationError{Field: "start_time", Reason: "must be in HH:MM format"}
	}
	end, err := ParseTimeOfDay(req.EndTime)
	if err != nil {
		return Booking{}, ValidationError{Field: "end_time", Reason: "must be in HH:MM format"}
	}
	if start >= end {
		return Booking{}, ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}

	court, ok := facility.CourtByNumber(req.CourtNumber)
	if !ok || !court.Active {
		return Booking{}, ValidationError{Field: "court_number", Reason: "is not an active court of this facility"}
	}

	source := req.Source
	switch source {
	case SourceWeb, SourceMobile, SourceVendor:
	case "":
		source = SourceWeb
	default:
		return Booking{}, ValidationError{Field: "source", Reason: "must be one of web, mobile, vendor"}
	}

	return Booking{
		Reference:    uuid.New().String(),
		FacilityID:   facility.ID,
		CourtNumber:  req.CourtNumber,
		Date:         req.Date,
		StartMinutes: start,
		EndMinutes:   end,
		Status:       StatusPending,
		Customer:     req.Customer,
		TotalCents:   req.TotalCents,
		DiscountCode: strings.ToUpper(strings.TrimSpace(req.DiscountCode)),
		Source:       source,
		CreatedAt:    s.clock.Now().UTC(),
	}, nil
}
