package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/courtsidehq/courtbook/internal/discount"
)

// DiscountByCode loads a discount by its code, case-insensitively.
func (db *DB) DiscountByCode(ctx context.Context, code string) (*discount.Discount, error) {
	var d discount.Discount
	err := db.QueryRowContext(ctx,
		`SELECT id, code, type, value, min_amount_cents, max_discount_cents,
		        usage_limit, used_count, valid_from, valid_until, active
		 FROM discounts WHERE lower(code) = lower(?)`, code).
		Scan(&d.ID, &d.Code, &d.Type, &d.Value, &d.MinAmountCents,
			&d.MaxDiscountCents, &d.UsageLimit, &d.UsedCount,
			&d.ValidFrom, &d.ValidUntil, &d.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, discount.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to load discount: %w", err)
	}
	return &d, nil
}

// RedeemOnce increments a discount's used count for a booking, at most once
// per booking id. The UNIQUE constraint on discount_redemptions.booking_id
// makes repeat calls no-ops instead of double-counting.
func (db *DB) RedeemOnce(ctx context.Context, discountID, bookingID int64) error {
	return db.RunInTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO discount_redemptions (discount_id, booking_id) VALUES (?, ?)`,
			discountID, bookingID)
		if err != nil {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
				return nil
			}
			return translateErr(fmt.Errorf("failed to record redemption: %w", err))
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE discounts SET used_count = used_count + 1 WHERE id = ?`, discountID); err != nil {
			return translateErr(fmt.Errorf("failed to increment used count: %w", err))
		}
		return nil
	})
}

// InsertDiscount persists a discount. Used by the seed tool and tests.
func (db *DB) InsertDiscount(ctx context.Context, d *discount.Discount) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO discounts (code, type, value, min_amount_cents, max_discount_cents,
			usage_limit, used_count, valid_from, valid_until, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Code, string(d.Type), d.Value, d.MinAmountCents, d.MaxDiscountCents,
		d.UsageLimit, d.UsedCount, d.ValidFrom.UTC(), d.ValidUntil.UTC(), d.Active)
	if err != nil {
		return 0, translateErr(fmt.Errorf("failed to insert discount: %w", err))
	}
	return result.LastInsertId()
}
