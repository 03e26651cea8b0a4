package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusUnpaid    OrderStatus = "unpaid"
	StatusHeld      OrderStatus = "held"
	StatusPartPaid  OrderStatus = "part-paid"
	StatusPaid      OrderStatus = "paid"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
	StatusRefunded  OrderStatus = "refunded"
)

// AllStatuses lists every status, used to report zero counts in statistics.
var AllStatuses = []OrderStatus{
	StatusUnpaid, StatusHeld, StatusPartPaid, StatusPaid,
	StatusCompleted, StatusCancelled, StatusRefunded,
}

// Live reports whether an order in this status still occupies its seat.
// Cancelled and refunded orders release it.
func (s OrderStatus) Live() bool { return s != StatusCancelled && s != StatusRefunded }

// Deletable reports whether the order row may be physically removed.
// Orders with money in flight (unpaid, held, part-paid) are protected.
func (s OrderStatus) Deletable() bool {
	switch s {
	case StatusCancelled, StatusRefunded, StatusPaid, StatusCompleted:
		return true
	}
	return false
}

// Payable reports whether a payment may be applied.
func (s OrderStatus) Payable() bool {
	return s == StatusUnpaid || s == StatusHeld || s == StatusPartPaid
}

// Refundable reports whether money may be returned for this status.
func (s OrderStatus) Refundable() bool {
	return s == StatusPaid || s == StatusPartPaid
}

// Order mirrors a row in the `orders` table.
//
// Fields:
//
//	ID          – primary key.
//	UserID      – owner.
//	FlightID    – flight the seat belongs to.
//	CabinClass  – cabin of the seat.
//	SeatNumber  – derived seat identifier such as 12C.
//	Status      – lifecycle state.
//	TotalAmount – amount owed, copied from the flight price at creation.
//	PaidAmount  – cumulative amount paid so far.
//	CreatedAt   – creation timestamp.
//	LockTime    – when the seat was last held (nil when not held).
type Order struct {
	ID          uint64          `db:"id" json:"id"`
	UserID      uint64          `db:"user_id" json:"user_id"`
	FlightID    uint64          `db:"flight_id" json:"flight_id"`
	CabinClass  CabinClass      `db:"cabin_class" json:"cabin_class"`
	SeatNumber  string          `db:"seat_number" json:"seat_number"`
	Status      OrderStatus     `db:"status" json:"status"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaidAmount  decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	LockTime    *time.Time      `db:"lock_time" json:"lock_time,omitempty"`
}

// Outstanding is what is still owed on the order.
func (o Order) Outstanding() decimal.Decimal {
	d := o.TotalAmount.Sub(o.PaidAmount)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// OrderDetail is an order joined with the flight it belongs to, as
// returned by listings.
type OrderDetail struct {
	Order
	FlightNumber  string    `db:"flight_number" json:"flight_number"`
	Airline       string    `db:"airline" json:"airline"`
	Origin        string    `db:"origin" json:"origin"`
	Destination   string    `db:"destination" json:"destination"`
	DepartureTime time.Time `db:"departure_time" json:"departure_time"`
	LandingTime   time.Time `db:"landing_time" json:"landing_time"`
	AircraftModel string    `db:"aircraft_model" json:"aircraft_model"`
}
