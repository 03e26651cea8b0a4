// Package service implements the booking core: order creation and its
// lifecycle, seat holds, ledger movements, browse history and operator
// statistics. Every state change runs inside one database transaction
// through database.TxRunner; side effects that live outside the database
// (cache invalidation, events) happen only after the commit.
//
// Services return apperror values and never log.
package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shop1111/flight-booking/internal/database"
	"github.com/shop1111/flight-booking/internal/model"
	"github.com/shop1111/flight-booking/internal/queue"
	"github.com/shop1111/flight-booking/internal/repository"
	"github.com/shop1111/flight-booking/internal/seatmap"
)

// EventSink receives events for changes that have been committed.
type EventSink interface {
	Emit(ctx context.Context, events ...queue.OrderEvent)
}

// AvailabilityCache holds read-side copies of availability listings.
type AvailabilityCache interface {
	Get(ctx context.Context, flightID uint64, class model.CabinClass) ([]string, bool)
	Set(ctx context.Context, flightID uint64, class model.CabinClass, seats []string)
	Invalidate(ctx context.Context, flightID uint64)
}

// Deps bundles what the services share. Events and Cache are optional.
type Deps struct {
	Tx       *database.TxRunner
	Flights  *repository.FlightRepo
	Orders   *repository.OrderRepo
	Users    *repository.UserRepo
	Payments *repository.PaymentRepo
	History  *repository.BrowseHistoryRepo
	Stats    *repository.StatsRepo

	Events EventSink
	Cache  AvailabilityCache

	Now     func() time.Time
	Pick    seatmap.Picker
	HoldTTL time.Duration
}

// NewDeps builds the repositories and the transaction runner over db.
func NewDeps(db *sqlx.DB, txMaxRetries int) Deps {
	return Deps{
		Tx:       database.NewTxRunner(db, txMaxRetries),
		Flights:  repository.NewFlightRepo(db),
		Orders:   repository.NewOrderRepo(db),
		Users:    repository.NewUserRepo(db),
		Payments: repository.NewPaymentRepo(db),
		History:  repository.NewBrowseHistoryRepo(db),
		Stats:    repository.NewStatsRepo(db),
		HoldTTL:  model.DefaultHoldTTL,
	}
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) holdTTL() time.Duration {
	if d.HoldTTL > 0 {
		return d.HoldTTL
	}
	return model.DefaultHoldTTL
}

func (d Deps) picker() seatmap.Picker {
	if d.Pick != nil {
		return d.Pick
	}
	return seatmap.RandomPicker()
}

func (d Deps) emit(ctx context.Context, events ...queue.OrderEvent) {
	if d.Events != nil && len(events) > 0 {
		d.Events.Emit(ctx, events...)
	}
}

func (d Deps) invalidate(ctx context.Context, flightID uint64) {
	if d.Cache != nil {
		d.Cache.Invalidate(ctx, flightID)
	}
}
