// Package queue defines the order events published after a successful
// state change, the broker publishers that carry them, and the consumer
// that appends them to the order log.
package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shop1111/flight-booking/internal/model"
)

// EventType names what happened to an order.
type EventType string

const (
	OrderCreated     EventType = "order.created"
	OrderCancelled   EventType = "order.cancelled"
	OrderDeleted     EventType = "order.deleted"
	OrderHoldExpired EventType = "order.hold_expired"
	OrderPaid        EventType = "order.paid"
	OrderPartPaid    EventType = "order.part_paid"
	OrderRefunded    EventType = "order.refunded"
	OrderCompleted   EventType = "order.completed"
)

// OrderEvent carries enough of the order for downstream consumers to log,
// notify or aggregate without reading the primary store. Amount is the
// money moved by the event (zero for non-ledger transitions).
type OrderEvent struct {
	EventID    string            `json:"event_id"`
	Type       EventType         `json:"type"`
	OrderID    uint64            `json:"order_id"`
	UserID     uint64            `json:"user_id"`
	FlightID   uint64            `json:"flight_id"`
	CabinClass model.CabinClass  `json:"cabin_class"`
	SeatNumber string            `json:"seat_number"`
	Status     model.OrderStatus `json:"status"`
	Amount     decimal.Decimal   `json:"amount"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewOrderEvent snapshots o after a transition.
func NewOrderEvent(t EventType, o model.Order, amount decimal.Decimal, at time.Time) OrderEvent {
	return OrderEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		OrderID:    o.ID,
		UserID:     o.UserID,
		FlightID:   o.FlightID,
		CabinClass: o.CabinClass,
		SeatNumber: o.SeatNumber,
		Status:     o.Status,
		Amount:     amount,
		OccurredAt: at.UTC(),
	}
}
