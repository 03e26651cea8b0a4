package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/database"
	"github.com/shop1111/flight-booking/internal/model"
)

const orderColumns = `id, user_id, flight_id, cabin_class, seat_number, status,
	total_amount, paid_amount, created_at, lock_time`

// OrderRepo provides access to the orders table. The row of an order is
// the unit of locking for every financial transition.
type OrderRepo struct {
	db *sqlx.DB
}

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateTx inserts o and fills in its generated ID and creation time.
// A unique key violation means another live order already holds the seat.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (user_id, flight_id, cabin_class, seat_number, status, total_amount, paid_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		o.UserID, o.FlightID, o.CabinClass, o.SeatNumber, o.Status, o.TotalAmount, o.PaidAmount, o.CreatedAt)
	if err != nil {
		if database.IsDuplicate(err) {
			return apperror.ErrSeatTaken.Wrap(err)
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read order id: %w", err)
	}
	o.ID = uint64(id)
	return nil
}

// LiveForFlightForUpdateTx returns every non-cancelled order of a flight
// and locks those rows until the transaction ends.
func (r *OrderRepo) LiveForFlightForUpdateTx(ctx context.Context, tx *sqlx.Tx, flightID uint64) ([]model.Order, error) {
	var orders []model.Order
	err := tx.SelectContext(ctx, &orders,
		`SELECT `+orderColumns+` FROM orders WHERE flight_id = ? AND status NOT IN (?, ?) FOR UPDATE`,
		flightID, model.StatusCancelled, model.StatusRefunded)
	if err != nil {
		return nil, fmt.Errorf("failed to lock live orders: %w", err)
	}
	return orders, nil
}

// LiveForFlight is the non-locking variant used by read-only listings.
func (r *OrderRepo) LiveForFlight(ctx context.Context, flightID uint64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.SelectContext(ctx, &orders,
		`SELECT `+orderColumns+` FROM orders WHERE flight_id = ? AND status NOT IN (?, ?) ORDER BY id`,
		flightID, model.StatusCancelled, model.StatusRefunded)
	if err != nil {
		return nil, fmt.Errorf("failed to list live orders: %w", err)
	}
	return orders, nil
}

// GetByID loads an order without locking it.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	var o model.Order
	if err := r.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id); err != nil {
		return model.Order{}, notFound(err, apperror.ErrOrderNotFound, "load order")
	}
	return o, nil
}

// GetForUpdateTx loads an order and locks its row.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.Order, error) {
	var o model.Order
	if err := tx.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, id); err != nil {
		return model.Order{}, notFound(err, apperror.ErrOrderNotFound, "lock order")
	}
	return o, nil
}

// UpdateStatusTx sets the status of an order and clears any hold.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uint64, status model.OrderStatus) error {
	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ?, lock_time = NULL WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// UpdatePaymentTx records the cumulative paid amount and the resulting
// status. A hold ends once money is taken.
func (r *OrderRepo) UpdatePaymentTx(ctx context.Context, tx *sqlx.Tx, id uint64, status model.OrderStatus, paid decimal.Decimal) error {
	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ?, paid_amount = ?, lock_time = NULL WHERE id = ?`, status, paid, id); err != nil {
		return fmt.Errorf("failed to record payment on order: %w", err)
	}
	return nil
}

// DeleteTx physically removes an order row.
func (r *OrderRepo) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

const orderDetailQuery = `SELECT o.id, o.user_id, o.flight_id, o.cabin_class, o.seat_number, o.status,
	o.total_amount, o.paid_amount, o.created_at, o.lock_time,
	f.flight_number, f.airline, f.origin, f.destination, f.departure_time, f.landing_time, f.aircraft_model
	FROM orders o
	JOIN flights f ON f.id = o.flight_id`

// GetDetail loads an order joined with its flight.
func (r *OrderRepo) GetDetail(ctx context.Context, id uint64) (model.OrderDetail, error) {
	var d model.OrderDetail
	if err := r.db.GetContext(ctx, &d, orderDetailQuery+` WHERE o.id = ?`, id); err != nil {
		return model.OrderDetail{}, notFound(err, apperror.ErrOrderNotFound, "load order detail")
	}
	return d, nil
}

// ListByUser returns all orders of a user, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.OrderDetail, error) {
	details := []model.OrderDetail{}
	if err := r.db.SelectContext(ctx, &details, orderDetailQuery+` WHERE o.user_id = ? ORDER BY o.created_at DESC, o.id DESC`, userID); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return details, nil
}
