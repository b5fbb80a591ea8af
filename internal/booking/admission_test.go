package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/courtsidehq/courtbook/internal/tenant"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeAdmissionStore struct {
	existing  []Booking
	busyUntil int
	calls     int
	inserted  []Booking
}

func (s *fakeAdmissionStore) InsertIfNoConflict(_ context.Context, b Booking) (Booking, []Booking, error) {
	s.calls++
	if s.calls <= s.busyUntil {
		return Booking{}, nil, ErrStorageBusy
	}
	candidate := Candidate{CourtNumber: b.CourtNumber, Date: b.Date, StartMinutes: b.StartMinutes, EndMinutes: b.EndMinutes}
	if conflicts := FindConflicts(candidate, s.existing); len(conflicts) > 0 {
		return Booking{}, conflicts, nil
	}
	b.ID = int64(len(s.inserted) + 1)
	s.inserted = append(s.inserted, b)
	s.existing = append(s.existing, b)
	return b, nil, nil
}

func newAdmissionService(facility *tenant.Facility, store AdmissionStore) *AdmissionService {
	resolver := tenant.NewResolver(&fakeTenantStore{facilities: []*tenant.Facility{facility}}, "")
	clock := fixedClock{t: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	return NewAdmissionService(resolver, store, clock, zerolog.Nop())
}

func validRequest() Request {
	return Request{
		CourtNumber: 1,
		Date:        "2026-09-10",
		StartTime:   "14:00",
		EndTime:     "15:00",
		Customer:    Customer{Name: "Ada Lovelace", Email: "ada@example.com"},
		TotalCents:  2500,
	}
}

func TestCreateBooking(t *testing.T) {
	store := &fakeAdmissionStore{}
	svc := newAdmissionService(testFacility(), store)

	created, err := svc.CreateBooking(context.Background(), "downtown-courts", validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if created.Reference == "" {
		t.Error("expected a generated reference")
	}
	if created.Status != StatusPending {
		t.Errorf("status = %s, want pending", created.Status)
	}
	if created.StartMinutes != 840 || created.EndMinutes != 900 {
		t.Errorf("interval = [%d,%d), want [840,900)", created.StartMinutes, created.EndMinutes)
	}
	if created.Source != SourceWeb {
		t.Errorf("source = %s, want web default", created.Source)
	}
	if created.FacilityID != 1 {
		t.Errorf("facility id = %d, want 1", created.FacilityID)
	}
}

func TestCreateBookingConflict(t *testing.T) {
	store := &fakeAdmissionStore{existing: []Booking{
		{CourtNumber: 1, Date: "2026-09-10", StartMinutes: 870, EndMinutes: 930, Status: StatusPaid},
	}}
	svc := newAdmissionService(testFacility(), store)

	_, err := svc.CreateBooking(context.Background(), "downtown-courts", validRequest())
	var conflictErr ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(conflictErr.Conflicts) != 1 {
		t.Errorf("expected 1 competing booking, got %d", len(conflictErr.Conflicts))
	}
	if len(store.inserted) != 0 {
		t.Error("losing candidate must not be persisted")
	}
}

func TestCreateBookingAdjacentAllowed(t *testing.T) {
	store := &fakeAdmissionStore{existing: []Booking{
		{CourtNumber: 1, Date: "2026-09-10", StartMinutes: 780, EndMinutes: 840, Status: StatusPaid},
	}}
	svc := newAdmissionService(testFacility(), store)

	if _, err := svc.CreateBooking(context.Background(), "downtown-courts", validRequest()); err != nil {
		t.Fatalf("back-to-back booking should succeed: %v", err)
	}
}

func TestCreateBookingRetriesBusyStore(t *testing.T) {
	store := &fakeAdmissionStore{busyUntil: 2}
	svc := newAdmissionService(testFacility(), store)

	if _, err := svc.CreateBooking(context.Background(), "downtown-courts", validRequest()); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if store.calls != 3 {
		t.Errorf("store calls = %d, want 3", store.calls)
	}
}

func TestCreateBookingGivesUpAfterRetries(t *testing.T) {
	store := &fakeAdmissionStore{busyUntil: 100}
	svc := newAdmissionService(testFacility(), store)

	if _, err := svc.CreateBooking(context.Background(), "downtown-courts", validRequest()); !errors.Is(err, ErrStorageBusy) {
		t.Fatalf("expected ErrStorageBusy, got %v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Request)
		wantField string
	}{
		{"missing name", func(r *Request) { r.Customer.Name = "  " }, "customer.name"},
		{"missing contact", func(r *Request) { r.Customer.Email = ""; r.Customer.Phone = "" }, "customer"},
		{"bad phone", func(r *Request) { r.Customer.Phone = "not-a-phone" }, "customer.phone"},
		{"negative total", func(r *Request) { r.TotalCents = -1 }, "total_cents"},
		{"bad date", func(r *Request) { r.Date = "next tuesday" }, "date"},
		{"past date", func(r *Request) { r.Date = "2026-08-31" }, "date"},
		{"bad start", func(r *Request) { r.StartTime = "2pm" }, "start_time"},
		{"bad end", func(r *Request) { r.EndTime = "25:00" }, "end_time"},
		{"inverted interval", func(r *Request) { r.StartTime = "15:00"; r.EndTime = "14:00" }, "end_time"},
		{"zero-length interval", func(r *Request) { r.EndTime = "14:00" }, "end_time"},
		{"unknown court", func(r *Request) { r.CourtNumber = 9 }, "court_number"},
		{"inactive court", func(r *Request) { r.CourtNumber = 3 }, "court_number"},
		{"bad source", func(r *Request) { r.Source = "kiosk" }, "source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeAdmissionStore{}
			svc := newAdmissionService(testFacility(), store)

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.CreateBooking(context.Background(), "downtown-courts", req)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("validation field = %q, want %q", verr.Field, tt.wantField)
			}
			if len(store.inserted) != 0 {
				t.Error("invalid request must not reach the store")
			}
		})
	}
}

func TestCreateBookingSameDayAllowed(t *testing.T) {
	store := &fakeAdmissionStore{}
	svc := newAdmissionService(testFacility(), store)

	req := validRequest()
	req.Date = "2026-09-01" // the clock's own date
	if _, err := svc.CreateBooking(context.Background(), "downtown-courts", req); err != nil {
		t.Fatalf("same-day booking should be allowed: %v", err)
	}
}

func TestCreateBookingNormalizesPhone(t *testing.T) {
	store := &fakeAdmissionStore{}
	svc := newAdmissionService(testFacility(), store)

	req := validRequest()
	req.Customer.Phone = "(206) 555-0142"
	created, err := svc.CreateBooking(context.Background(), "downtown-courts", req)
	if err != nil {
		t.Fatal(err)
	}
	if created.Customer.Phone != "+12065550142" {
		t.Errorf("phone = %q, want E.164", created.Customer.Phone)
	}
}

func TestCreateBookingUppercasesDiscountCode(t *testing.T) {
	store := &fakeAdmissionStore{}
	svc := newAdmissionService(testFacility(), store)

	req := validRequest()
	req.DiscountCode = " welcome10 "
	created, err := svc.CreateBooking(context.Background(), "downtown-courts", req)
	if err != nil {
		t.Fatal(err)
	}
	if created.DiscountCode != "WELCOME10" {
		t.Errorf("discount code = %q, want WELCOME10", created.DiscountCode)
	}
}
