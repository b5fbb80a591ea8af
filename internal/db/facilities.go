package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtsidehq/courtbook/internal/booking"
	"github.com/courtsidehq/courtbook/internal/tenant"
)

// FacilityByID loads the full facility aggregate by primary key.
func (db *DB) FacilityByID(ctx context.Context, id int64) (*tenant.Facility, error) {
	return db.facilityByRow(ctx,
		`SELECT id, slug, name, timezone, currency, active FROM facilities WHERE id = ?`, id)
}

// FacilityBySlug loads the full facility aggregate by slug. Slugs are stored
// lowercase; callers normalize before lookup.
func (db *DB) FacilityBySlug(ctx context.Context, slug string) (*tenant.Facility, error) {
	return db.facilityByRow(ctx,
		`SELECT id, slug, name, timezone, currency, active FROM facilities WHERE lower(slug) = lower(?)`, slug)
}

func (db *DB) facilityByRow(ctx context.Context, query string, arg any) (*tenant.Facility, error) {
	var f tenant.Facility
	err := db.QueryRowContext(ctx, query, arg).
		Scan(&f.ID, &f.Slug, &f.Name, &f.Timezone, &f.Currency, &f.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tenant.ErrFacilityNotFound
		}
		return nil, fmt.Errorf("failed to load facility: %w", err)
	}

	if f.Courts, err = db.courtsForFacility(ctx, f.ID); err != nil {
		return nil, err
	}
	if f.Hours, err = db.hoursForFacility(ctx, f.ID); err != nil {
		return nil, err
	}
	return &f, nil
}

func (db *DB) courtsForFacility(ctx context.Context, facilityID int64) ([]tenant.Court, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT court_number, name, sport, active
		 FROM courts WHERE facility_id = ? ORDER BY court_number`, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load courts: %w", err)
	}
	defer rows.Close()

	var courts []tenant.Court
	for rows.Next() {
		var c tenant.Court
		if err := rows.Scan(&c.Number, &c.Name, &c.Sport, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan court: %w", err)
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

func (db *DB) hoursForFacility(ctx context.Context, facilityID int64) (tenant.OperatingHours, error) {
	var hours tenant.OperatingHours

	rows, err := db.QueryContext(ctx,
		`SELECT day_of_week, opens_at, closes_at
		 FROM operating_hours WHERE facility_id = ?`, facilityID)
	if err != nil {
		return hours, fmt.Errorf("failed to load operating hours: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day int
		var opensAt, closesAt string
		if err := rows.Scan(&day, &opensAt, &closesAt); err != nil {
			return hours, fmt.Errorf("failed to scan operating hours: %w", err)
		}
		open, err := booking.ParseTimeOfDay(opensAt)
		if err != nil {
			return hours, fmt.Errorf("stored opens_at %q for day %d: %w", opensAt, day, err)
		}
		closeMin, err := booking.ParseTimeOfDay(closesAt)
		if err != nil {
			return hours, fmt.Errorf("stored closes_at %q for day %d: %w", closesAt, day, err)
		}
		if day < 0 || day > 6 {
			continue
		}
		hours[day] = tenant.DayHours{OpenMinutes: open, CloseMinutes: closeMin}
	}
	return hours, rows.Err()
}

// InsertFacility persists a facility plus its courts and hours. Used by the
// seed tool and tests; the request path never writes facilities.
func (db *DB) InsertFacility(ctx context.Context, f *tenant.Facility) (int64, error) {
	var id int64
	err := db.RunInTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO facilities (slug, name, timezone, currency, active) VALUES (?, ?, ?, ?, ?)`,
			f.Slug, f.Name, f.Timezone, f.Currency, f.Active)
		if err != nil {
			return fmt.Errorf("failed to insert facility: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return err
		}

		for _, c := range f.Courts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO courts (facility_id, court_number, name, sport, active) VALUES (?, ?, ?, ?, ?)`,
				id, c.Number, c.Name, c.Sport, c.Active); err != nil {
				return fmt.Errorf("failed to insert court %d: %w", c.Number, err)
			}
		}
		for day, window := range f.Hours {
			if window.CloseMinutes == 0 && window.OpenMinutes == 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO operating_hours (facility_id, day_of_week, opens_at, closes_at) VALUES (?, ?, ?, ?)`,
				id, day, booking.FormatMinutes(window.OpenMinutes), booking.FormatMinutes(window.CloseMinutes)); err != nil {
				return fmt.Errorf("failed to insert operating hours for day %d: %w", day, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}
