package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/courtsidehq/courtbook/internal/booking"
	"github.com/courtsidehq/courtbook/internal/db"
	"github.com/courtsidehq/courtbook/internal/testutil"
)

func newBooking(facilityID int64, court int64, date string, start, end int) booking.Booking {
	return booking.Booking{
		Reference:    uuid.New().String(),
		FacilityID:   facilityID,
		CourtNumber:  court,
		Date:         date,
		StartMinutes: start,
		EndMinutes:   end,
		Status:       booking.StatusPending,
		Customer: booking.Customer{
			Name:  "Ada Lovelace",
			Email: "ada@example.com",
		},
		TotalCents: 2500,
		Source:     booking.SourceWeb,
		CreatedAt:  time.Now().UTC(),
	}
}

func mustInsert(t *testing.T, database *db.DB, b booking.Booking) booking.Booking {
	t.Helper()
	created, conflicts, err := database.InsertIfNoConflict(context.Background(), b)
	if err != nil {
		t.Fatalf("insert booking: %v", err)
	}
	if len(conflicts) > 0 {
		t.Fatalf("unexpected conflicts: %+v", conflicts)
	}
	return created
}

func TestInsertIfNoConflict(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	created := mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))
	if created.ID == 0 {
		t.Error("expected assigned id")
	}

	loaded, err := database.BookingByReference(context.Background(), created.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.StartMinutes != 840 || loaded.EndMinutes != 900 {
		t.Errorf("stored interval = [%d,%d)", loaded.StartMinutes, loaded.EndMinutes)
	}
	if loaded.Customer.Email != "ada@example.com" {
		t.Errorf("stored customer = %+v", loaded.Customer)
	}
}

func TestInsertIfNoConflictRejectsOverlap(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	winner := mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))

	_, conflicts, err := database.InsertIfNoConflict(context.Background(),
		newBooking(facility.ID, 1, "2026-09-10", 870, 930))
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicts) != 1 || conflicts[0].Reference != winner.Reference {
		t.Fatalf("expected the winner as the conflict, got %+v", conflicts)
	}

	stored, err := database.ListForDate(context.Background(), facility.ID, "2026-09-10", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Errorf("losing booking must not be stored, found %d rows", len(stored))
	}
}

func TestInsertIfNoConflictAllowsBoundaryTouch(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))
	mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 900, 960))
	mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 780, 840))
}

func TestInsertIfNoConflictOtherPartitions(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))
	mustInsert(t, database, newBooking(facility.ID, 2, "2026-09-10", 840, 900))
	mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-11", 840, 900))
}

func TestInsertIfNoConflictAfterCancellation(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	first := mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))
	if _, err := database.CancelByReference(context.Background(), first.Reference); err != nil {
		t.Fatal(err)
	}

	// The cancelled booking no longer occupies the slot.
	mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))
}

func TestConcurrentAdmissionsOneWinner(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan int, attempts) // 1 = won, 0 = lost

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, conflicts, err := database.InsertIfNoConflict(context.Background(),
					newBooking(facility.ID, 1, "2026-09-10", 840, 900))
				if errors.Is(err, booking.ErrStorageBusy) {
					time.Sleep(5 * time.Millisecond)
					continue
				}
				if err != nil {
					t.Error(err)
					results <- 0
					return
				}
				if len(conflicts) > 0 {
					results <- 0
				} else {
					results <- 1
				}
				return
			}
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for r := range results {
		winners += r
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}

	stored, err := database.ListQualifying(context.Background(), facility.ID, "2026-09-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Errorf("stored qualifying bookings = %d, want 1", len(stored))
	}
}

func TestListQualifyingExcludesCancelled(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	keep := mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 600, 660))
	drop := mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))
	if _, err := database.CancelByReference(context.Background(), drop.Reference); err != nil {
		t.Fatal(err)
	}

	qualifying, err := database.ListQualifying(context.Background(), facility.ID, "2026-09-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(qualifying) != 1 || qualifying[0].Reference != keep.Reference {
		t.Errorf("qualifying = %+v", qualifying)
	}

	all, err := database.ListForDate(context.Background(), facility.ID, "2026-09-10", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("full listing = %d rows, want 2", len(all))
	}

	cancelled, err := database.ListForDate(context.Background(), facility.ID, "2026-09-10", booking.StatusCancelled)
	if err != nil {
		t.Fatal(err)
	}
	if len(cancelled) != 1 || cancelled[0].Reference != drop.Reference {
		t.Errorf("cancelled listing = %+v", cancelled)
	}
}

func TestBookingByReferenceNotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedFacility(t, database, "downtown-courts")

	_, err := database.BookingByReference(context.Background(), "no-such-reference")
	if !errors.Is(err, booking.ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	created := mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))

	paid, err := database.MarkPaidByReference(context.Background(), created.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if paid.Status != booking.StatusPaid {
		t.Fatalf("status = %s, want paid", paid.Status)
	}

	again, err := database.MarkPaidByReference(context.Background(), created.Reference)
	if err != nil {
		t.Fatalf("second confirmation should be a no-op: %v", err)
	}
	if again.Status != booking.StatusPaid {
		t.Errorf("status = %s, want paid", again.Status)
	}
}

func TestMarkPaidRejectsCancelled(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	created := mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))
	if _, err := database.CancelByReference(context.Background(), created.Reference); err != nil {
		t.Fatal(err)
	}

	_, err := database.MarkPaidByReference(context.Background(), created.Reference)
	var terr booking.TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if terr.From != booking.StatusCancelled || terr.To != booking.StatusPaid {
		t.Errorf("transition = %s -> %s", terr.From, terr.To)
	}
}

func TestCancelPaidBooking(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	created := mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))
	if _, err := database.MarkPaidByReference(context.Background(), created.Reference); err != nil {
		t.Fatal(err)
	}

	cancelled, err := database.CancelByReference(context.Background(), created.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != booking.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedFacility(t, database, "downtown-courts")

	_, err := database.CancelByReference(context.Background(), "no-such-reference")
	if !errors.Is(err, booking.ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestExpirePending(t *testing.T) {
	database := testutil.NewTestDB(t)
	facility := testutil.SeedFacility(t, database, "downtown-courts")

	now := time.Now().UTC()

	stale := newBooking(facility.ID, 1, "2026-09-10", 600, 660)
	stale.CreatedAt = now.Add(-2 * time.Hour)
	mustInsert(t, database, stale)

	fresh := mustInsert(t, database, newBooking(facility.ID, 1, "2026-09-10", 840, 900))

	paidStale := newBooking(facility.ID, 2, "2026-09-10", 600, 660)
	paidStale.CreatedAt = now.Add(-2 * time.Hour)
	inserted := mustInsert(t, database, paidStale)
	if _, err := database.MarkPaidByReference(context.Background(), inserted.Reference); err != nil {
		t.Fatal(err)
	}

	released, err := database.ExpirePending(context.Background(), now.Add(-30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if released != 1 {
		t.Errorf("released = %d, want 1", released)
	}

	loaded, err := database.BookingByReference(context.Background(), stale.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Status != booking.StatusCancelled {
		t.Errorf("stale booking status = %s, want cancelled", loaded.Status)
	}

	loaded, err = database.BookingByReference(context.Background(), fresh.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Status != booking.StatusPending {
		t.Errorf("fresh booking status = %s, want pending", loaded.Status)
	}
}
