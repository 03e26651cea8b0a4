package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/model"
)

// GetLiveBySeatForUpdateTx locks the live order occupying seat on a flight.
// When no live order holds the seat it returns apperror.ErrSeatNotFound.
func (r *OrderRepo) GetLiveBySeatForUpdateTx(ctx context.Context, tx *sqlx.Tx, flightID uint64, seat string) (model.Order, error) {
	var o model.Order
	err := tx.GetContext(ctx, &o,
		`SELECT `+orderColumns+` FROM orders WHERE flight_id = ? AND seat_number = ? AND status NOT IN (?, ?) FOR UPDATE`,
		flightID, seat, model.StatusCancelled, model.StatusRefunded)
	if err != nil {
		return model.Order{}, notFound(err, apperror.ErrSeatNotFound, "lock seat order")
	}
	return o, nil
}

// HoldTx marks an order's seat as held from at.
func (r *OrderRepo) HoldTx(ctx context.Context, tx *sqlx.Tx, orderID uint64, at time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, lock_time = ? WHERE id = ?`,
		model.StatusHeld, at.UTC(), orderID); err != nil {
		return fmt.Errorf("failed to hold seat: %w", err)
	}
	return nil
}

// ReleaseHoldTx turns a held order back into an unpaid one. It reports
// false when the order was not held.
func (r *OrderRepo) ReleaseHoldTx(ctx context.Context, tx *sqlx.Tx, orderID uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, lock_time = NULL WHERE id = ? AND status = ?`,
		model.StatusUnpaid, orderID, model.StatusHeld)
	if err != nil {
		return false, fmt.Errorf("failed to release hold: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to release hold: %w", err)
	}
	return n > 0, nil
}

// ExpireHoldsTx cancels held orders whose hold has lapsed, returning their
// seats to the pool. The rows must already be locked by the caller; the
// status guard keeps the update from touching orders that moved on.
func (r *OrderRepo) ExpireHoldsTx(ctx context.Context, tx *sqlx.Tx, orderIDs []uint64) error {
	if len(orderIDs) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`UPDATE orders SET status = ?, lock_time = NULL WHERE status = ? AND id IN (?)`,
		model.StatusCancelled, model.StatusHeld, orderIDs)
	if err != nil {
		return fmt.Errorf("failed to build hold expiry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
		return fmt.Errorf("failed to expire holds: %w", err)
	}
	return nil
}

// ExpiredHolds picks the held orders whose hold lapsed before now.
func ExpiredHolds(orders []model.Order, now time.Time, ttl time.Duration) []model.Order {
	var out []model.Order
	for _, o := range orders {
		if o.Status == model.StatusHeld && model.HoldExpired(o.LockTime, now, ttl) {
			out = append(out, o)
		}
	}
	return out
}
