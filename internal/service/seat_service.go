package service

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/model"
	"github.com/shop1111/flight-booking/internal/repository"
	"github.com/shop1111/flight-booking/internal/seatmap"
)

// SeatService answers availability questions and manages explicit holds.
type SeatService struct {
	d Deps
}

func NewSeatService(d Deps) *SeatService { return &SeatService{d: d} }

// Available lists the free seats of a cabin in seat-map order. Seats held
// past the hold TTL count as free since the next booking will reclaim them.
// Results may be served from the cache for a few seconds.
func (s *SeatService) Available(ctx context.Context, flightID uint64, class model.CabinClass) ([]string, error) {
	c, ok := model.ParseCabinClass(string(class))
	if !ok {
		return nil, apperror.ErrInvalidInput.WithMessage("unknown cabin class %q", class)
	}
	if s.d.Cache != nil {
		if seats, hit := s.d.Cache.Get(ctx, flightID, c); hit {
			return seats, nil
		}
	}

	flight, err := s.d.Flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	live, err := s.d.Orders.LiveForFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	lapsed := repository.ExpiredHolds(live, s.d.now(), s.d.holdTTL())
	seats := seatmap.Available(seatmap.LayoutOf(flight).Seats(c), occupiedSeats(live, lapsed))

	if s.d.Cache != nil {
		s.d.Cache.Set(ctx, flightID, c, seats)
	}
	return seats, nil
}

// Statuses reports every seat of a flight with the status of the live
// order on it, or "free".
func (s *SeatService) Statuses(ctx context.Context, flightID uint64) ([]model.SeatStatus, error) {
	flight, err := s.d.Flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	live, err := s.d.Orders.LiveForFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	bySeat := make(map[string]model.OrderStatus, len(live))
	for _, o := range live {
		bySeat[o.SeatNumber] = o.Status
	}

	layout := seatmap.LayoutOf(flight)
	out := make([]model.SeatStatus, 0, flight.TotalSeats())
	for _, c := range model.CabinClasses {
		for _, seat := range layout.Seats(c) {
			st, ok := bySeat[seat]
			if !ok {
				st = model.SeatFree
			}
			out = append(out, model.SeatStatus{SeatNumber: seat, CabinClass: c, Status: st})
		}
	}
	return out, nil
}

// Lock places a hold on the seat of an unpaid order. A hold that has
// outlived the TTL is taken over with a fresh timestamp.
func (s *SeatService) Lock(ctx context.Context, flightID uint64, seat string) error {
	seat = normalizeSeat(seat)
	err := s.d.Tx.Run(ctx, func(tx *sqlx.Tx) error {
		o, err := s.d.Orders.GetLiveBySeatForUpdateTx(ctx, tx, flightID, seat)
		if err != nil {
			return err
		}
		now := s.d.now()
		switch o.Status {
		case model.StatusHeld:
			if !model.HoldExpired(o.LockTime, now, s.d.holdTTL()) {
				return apperror.ErrAlreadyLocked
			}
		case model.StatusUnpaid:
		default:
			return apperror.ErrNotLockable.WithMessage("order on seat %s is %s", seat, o.Status)
		}
		return s.d.Orders.HoldTx(ctx, tx, o.ID, now)
	})
	if err != nil {
		return err
	}
	s.d.invalidate(ctx, flightID)
	return nil
}

// Unlock releases a hold, returning the order to unpaid.
func (s *SeatService) Unlock(ctx context.Context, flightID uint64, seat string) error {
	seat = normalizeSeat(seat)
	err := s.d.Tx.Run(ctx, func(tx *sqlx.Tx) error {
		o, err := s.d.Orders.GetLiveBySeatForUpdateTx(ctx, tx, flightID, seat)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return apperror.ErrNotLocked.Wrap(err)
			}
			return err
		}
		if o.Status != model.StatusHeld {
			return apperror.ErrNotLocked
		}
		released, err := s.d.Orders.ReleaseHoldTx(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		if !released {
			return apperror.ErrNotLocked
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.d.invalidate(ctx, flightID)
	return nil
}

func normalizeSeat(seat string) string {
	return strings.ToUpper(strings.TrimSpace(seat))
}
