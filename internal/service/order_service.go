package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/model"
	"github.com/shop1111/flight-booking/internal/queue"
	"github.com/shop1111/flight-booking/internal/repository"
	"github.com/shop1111/flight-booking/internal/seatmap"
)

// OrderService owns order creation and the non-ledger transitions.
type OrderService struct {
	d Deps
}

func NewOrderService(d Deps) *OrderService { return &OrderService{d: d} }

type CreateOrderInput struct {
	UserID     uint64
	FlightID   uint64
	CabinClass model.CabinClass
	// Preference is an optional seat letter such as "A" for a window.
	Preference string
}

type CreateOrderResult struct {
	OrderID     uint64            `json:"order_id"`
	SeatNumber  string            `json:"seat_number"`
	CabinClass  model.CabinClass  `json:"cabin_class"`
	Status      model.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
}

// Create books one seat of the requested cabin. The flight row is locked
// first so concurrent bookings of the same flight run one after another;
// the live orders of the flight are then locked and a seat is picked from
// the free seats plus those whose hold has lapsed. If the picked seat was
// under a lapsed hold, that order is cancelled before the insert. The new order is
// unpaid and owes the cabin's current price.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	if in.UserID == 0 || in.FlightID == 0 {
		return CreateOrderResult{}, apperror.ErrInvalidInput.WithMessage("user and flight are required")
	}
	class, ok := model.ParseCabinClass(string(in.CabinClass))
	if !ok {
		return CreateOrderResult{}, apperror.ErrInvalidInput.WithMessage("unknown cabin class %q", in.CabinClass)
	}

	var (
		order   model.Order
		expired []model.Order
	)
	err := s.d.Tx.Run(ctx, func(tx *sqlx.Tx) error {
		expired = nil
		flight, err := s.d.Flights.GetForUpdateTx(ctx, tx, in.FlightID)
		if err != nil {
			return err
		}
		live, err := s.d.Orders.LiveForFlightForUpdateTx(ctx, tx, flight.ID)
		if err != nil {
			return err
		}
		now := s.d.now()
		lapsed := repository.ExpiredHolds(live, now, s.d.holdTTL())
		available := seatmap.Available(seatmap.LayoutOf(flight).Seats(class), occupiedSeats(live, lapsed))
		seat, ok := seatmap.Assign(available, in.Preference, s.d.picker())
		if !ok {
			return apperror.ErrSoldOut
		}

		// only the hold on the picked seat is reclaimed; other lapsed holds
		// stay until someone contends for their seat
		expired = holdsOnSeat(lapsed, seat)
		if err := s.d.Orders.ExpireHoldsTx(ctx, tx, orderIDs(expired)); err != nil {
			return err
		}

		order = model.Order{
			UserID:      in.UserID,
			FlightID:    flight.ID,
			CabinClass:  class,
			SeatNumber:  seat,
			Status:      model.StatusUnpaid,
			TotalAmount: flight.Price(class),
			PaidAmount:  decimal.Zero,
			CreatedAt:   now,
		}
		return s.d.Orders.CreateTx(ctx, tx, &order)
	})
	if err != nil {
		return CreateOrderResult{}, err
	}

	s.d.invalidate(ctx, order.FlightID)
	events := make([]queue.OrderEvent, 0, len(expired)+1)
	for _, o := range expired {
		o.Status = model.StatusCancelled
		o.LockTime = nil
		events = append(events, queue.NewOrderEvent(queue.OrderHoldExpired, o, decimal.Zero, order.CreatedAt))
	}
	events = append(events, queue.NewOrderEvent(queue.OrderCreated, order, order.TotalAmount, order.CreatedAt))
	s.d.emit(ctx, events...)

	return CreateOrderResult{
		OrderID:     order.ID,
		SeatNumber:  order.SeatNumber,
		CabinClass:  order.CabinClass,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	}, nil
}

// Get returns one of the user's orders with its flight.
func (s *OrderService) Get(ctx context.Context, userID, orderID uint64) (model.OrderDetail, error) {
	d, err := s.d.Orders.GetDetail(ctx, orderID)
	if err != nil {
		return model.OrderDetail{}, err
	}
	if d.UserID != userID {
		return model.OrderDetail{}, apperror.ErrForbidden
	}
	return d, nil
}

// ListByUser returns the user's orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID uint64) ([]model.OrderDetail, error) {
	return s.d.Orders.ListByUser(ctx, userID)
}

// Cancel releases the seat of an unpaid order, held or not.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uint64) error {
	o, err := s.transition(ctx, userID, orderID, func(tx *sqlx.Tx, o *model.Order) error {
		if o.Status != model.StatusUnpaid && o.Status != model.StatusHeld {
			return apperror.ErrNotCancellable.WithMessage("order is %s; only unpaid orders can be cancelled", o.Status)
		}
		if err := s.d.Orders.UpdateStatusTx(ctx, tx, o.ID, model.StatusCancelled); err != nil {
			return err
		}
		o.Status = model.StatusCancelled
		o.LockTime = nil
		return nil
	})
	if err != nil {
		return err
	}
	s.d.invalidate(ctx, o.FlightID)
	s.d.emit(ctx, queue.NewOrderEvent(queue.OrderCancelled, o, decimal.Zero, s.d.now()))
	return nil
}

// Delete removes an order row. Orders with money still in flight (unpaid,
// held, part-paid) cannot be deleted.
func (s *OrderService) Delete(ctx context.Context, userID, orderID uint64) error {
	o, err := s.transition(ctx, userID, orderID, func(tx *sqlx.Tx, o *model.Order) error {
		if !o.Status.Deletable() {
			return apperror.ErrNotDeletable.WithMessage("order is %s and cannot be deleted", o.Status)
		}
		return s.d.Orders.DeleteTx(ctx, tx, o.ID)
	})
	if err != nil {
		return err
	}
	s.d.invalidate(ctx, o.FlightID)
	s.d.emit(ctx, queue.NewOrderEvent(queue.OrderDeleted, o, decimal.Zero, s.d.now()))
	return nil
}

// Complete closes a paid order once the flight has been served. It is an
// operator action and skips the ownership check.
func (s *OrderService) Complete(ctx context.Context, orderID uint64) (model.Order, error) {
	var o model.Order
	err := s.d.Tx.Run(ctx, func(tx *sqlx.Tx) error {
		var err error
		o, err = s.d.Orders.GetForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.StatusPaid {
			return apperror.ErrNotCompletable.WithMessage("order is %s; only paid orders can be completed", o.Status)
		}
		if err := s.d.Orders.UpdateStatusTx(ctx, tx, o.ID, model.StatusCompleted); err != nil {
			return err
		}
		o.Status = model.StatusCompleted
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	s.d.emit(ctx, queue.NewOrderEvent(queue.OrderCompleted, o, decimal.Zero, s.d.now()))
	return o, nil
}

// transition locks an order owned by userID and applies fn to it in one
// transaction. It returns the order as fn left it.
func (s *OrderService) transition(ctx context.Context, userID, orderID uint64, fn func(tx *sqlx.Tx, o *model.Order) error) (model.Order, error) {
	var o model.Order
	err := s.d.Tx.Run(ctx, func(tx *sqlx.Tx) error {
		var err error
		o, err = lockOwnedOrder(ctx, s.d.Orders, tx, userID, orderID)
		if err != nil {
			return err
		}
		return fn(tx, &o)
	})
	return o, err
}

// lockOwnedOrder locks an order row and checks it belongs to userID.
func lockOwnedOrder(ctx context.Context, orders *repository.OrderRepo, tx *sqlx.Tx, userID, orderID uint64) (model.Order, error) {
	o, err := orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if o.UserID != userID {
		return model.Order{}, apperror.ErrForbidden
	}
	return o, nil
}

func orderIDs(orders []model.Order) []uint64 {
	ids := make([]uint64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}

// holdsOnSeat returns the orders in holds that sit on seat.
func holdsOnSeat(holds []model.Order, seat string) []model.Order {
	var out []model.Order
	for _, o := range holds {
		if o.SeatNumber == seat {
			out = append(out, o)
		}
	}
	return out
}

// occupiedSeats lists the seats of live orders, leaving out those in skip.
func occupiedSeats(live, skip []model.Order) []string {
	drop := make(map[uint64]struct{}, len(skip))
	for _, o := range skip {
		drop[o.ID] = struct{}{}
	}
	seats := make([]string, 0, len(live))
	for _, o := range live {
		if _, ok := drop[o.ID]; ok {
			continue
		}
		seats = append(seats, o.SeatNumber)
	}
	return seats
}
