package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courtsidehq/courtbook/internal/booking"
)

const bookingColumns = `id, reference, facility_id, court_number, booking_date,
	start_minutes, end_minutes, status, customer_name, customer_email,
	customer_phone, total_cents, discount_code, source, created_at`

func scanBooking(row interface{ Scan(...any) error }) (booking.Booking, error) {
	var b booking.Booking
	var discountCode sql.NullString
	err := row.Scan(
		&b.ID, &b.Reference, &b.FacilityID, &b.CourtNumber, &b.Date,
		&b.StartMinutes, &b.EndMinutes, &b.Status, &b.Customer.Name,
		&b.Customer.Email, &b.Customer.Phone, &b.TotalCents, &discountCode,
		&b.Source, &b.CreatedAt,
	)
	if err != nil {
		return booking.Booking{}, err
	}
	b.DiscountCode = discountCode.String
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]booking.Booking, error) {
	defer rows.Close()
	var bookings []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// ListQualifying returns the bookings that occupy slots for (facility, date):
// everything except cancelled ones.
func (db *DB) ListQualifying(ctx context.Context, facilityID int64, date string) ([]booking.Booking, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE facility_id = ? AND booking_date = ?
		   AND status IN ('pending', 'paid', 'completed')
		 ORDER BY court_number, start_minutes`, facilityID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return collectBookings(rows)
}

// ListForDate returns all bookings for (facility, date), optionally filtered
// by status. Used by the vendor listing.
func (db *DB) ListForDate(ctx context.Context, facilityID int64, date string, status booking.Status) ([]booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		 WHERE facility_id = ? AND booking_date = ?`
	args := []any{facilityID, date}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY court_number, start_minutes`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return collectBookings(rows)
}

// BookingByReference loads one booking by its public reference.
func (db *DB) BookingByReference(ctx context.Context, reference string) (*booking.Booking, error) {
	b, err := scanBooking(db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE reference = ?`, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &b, nil
}

// InsertIfNoConflict re-runs the conflict check and inserts in one immediate
// transaction. The transaction holds the SQLite write lock from begin, so two
// concurrent admissions for the same partition serialize here: the loser sees
// the winner's row and comes back with it as a conflict.
func (db *DB) InsertIfNoConflict(ctx context.Context, b booking.Booking) (booking.Booking, []booking.Booking, error) {
	var conflicts []booking.Booking
	err := db.RunInTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+bookingColumns+` FROM bookings
			 WHERE facility_id = ? AND court_number = ? AND booking_date = ?
			   AND status IN ('pending', 'paid', 'completed')`,
			b.FacilityID, b.CourtNumber, b.Date)
		if err != nil {
			return fmt.Errorf("failed to load competing bookings: %w", err)
		}
		existing, err := collectBookings(rows)
		if err != nil {
			return err
		}

		conflicts = booking.FindConflicts(booking.Candidate{
			CourtNumber:  b.CourtNumber,
			Date:         b.Date,
			StartMinutes: b.StartMinutes,
			EndMinutes:   b.EndMinutes,
		}, existing)
		if len(conflicts) > 0 {
			return nil
		}

		var discountCode sql.NullString
		if b.DiscountCode != "" {
			discountCode = sql.NullString{String: b.DiscountCode, Valid: true}
		}
		result, err := tx.ExecContext(ctx,
			`INSERT INTO bookings (reference, facility_id, court_number, booking_date,
				start_minutes, end_minutes, status, customer_name, customer_email,
				customer_phone, total_cents, discount_code, source, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.Reference, b.FacilityID, b.CourtNumber, b.Date,
			b.StartMinutes, b.EndMinutes, string(b.Status), b.Customer.Name,
			b.Customer.Email, b.Customer.Phone, b.TotalCents, discountCode,
			string(b.Source), b.CreatedAt)
		if err != nil {
			return translateErr(fmt.Errorf("failed to insert booking: %w", err))
		}
		if b.ID, err = result.LastInsertId(); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return booking.Booking{}, nil, err
	}
	return b, conflicts, nil
}

// transition moves a booking between statuses, rejecting moves out of
// terminal states. The allowed set is enforced in the UPDATE itself so the
// guard holds under concurrency.
func (db *DB) transition(ctx context.Context, reference string, from []booking.Status, to booking.Status) (*booking.Booking, error) {
	current, err := db.BookingByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if current.Status == to {
		return current, nil
	}

	args := []any{string(to), reference}
	placeholders := ""
	for i, s := range from {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, string(s))
	}

	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE reference = ? AND status IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, translateErr(fmt.Errorf("failed to update booking status: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Re-read: the status changed underneath us or was terminal already.
		latest, err := db.BookingByReference(ctx, reference)
		if err != nil {
			return nil, err
		}
		if latest.Status == to {
			return latest, nil
		}
		return nil, booking.TransitionError{From: latest.Status, To: to}
	}

	current.Status = to
	return current, nil
}

// CancelByReference cancels a pending or paid booking, freeing its slot.
// Completed bookings cannot be cancelled.
func (db *DB) CancelByReference(ctx context.Context, reference string) (*booking.Booking, error) {
	return db.transition(ctx, reference,
		[]booking.Status{booking.StatusPending, booking.StatusPaid}, booking.StatusCancelled)
}

// MarkPaidByReference confirms payment for a pending booking. Marking an
// already-paid booking again is a no-op, so webhook retries are safe.
func (db *DB) MarkPaidByReference(ctx context.Context, reference string) (*booking.Booking, error) {
	return db.transition(ctx, reference,
		[]booking.Status{booking.StatusPending}, booking.StatusPaid)
}

// ExpirePending cancels pending bookings created before the cutoff and
// returns how many were released.
func (db *DB) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled'
		 WHERE status = 'pending' AND created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, translateErr(fmt.Errorf("failed to expire pending bookings: %w", err))
	}
	return result.RowsAffected()
}
