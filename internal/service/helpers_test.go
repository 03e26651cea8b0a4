package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shop1111/flight-booking/internal/model"
	"github.com/shop1111/flight-booking/internal/queue"
)

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Emit(ctx context.Context, events ...queue.OrderEvent) {
	types := make([]queue.EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	m.Called(types)
}

func (m *mockSink) expect(types ...queue.EventType) *mock.Call {
	return m.On("Emit", types)
}

func newTestDeps(t *testing.T) (Deps, sqlmock.Sqlmock, *mockSink) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	sink := new(mockSink)
	sink.Test(t)
	t.Cleanup(func() { sink.AssertExpectations(t) })

	d := NewDeps(sqlx.NewDb(mockDB, "sqlmock"), 0)
	d.Tx.Backoff = 0
	d.Now = func() time.Time { return testNow }
	d.Pick = func(n int) int { return 0 }
	d.Events = sink
	return d, mock, sink
}

var flightCols = []string{"id", "flight_number", "airline", "origin", "destination", "departure_time",
	"landing_time", "aircraft_model", "economy_seats", "economy_price", "business_seats", "business_price",
	"first_class_seats", "first_class_price"}

var orderCols = []string{"id", "user_id", "flight_id", "cabin_class", "seat_number", "status",
	"total_amount", "paid_amount", "created_at", "lock_time"}

func flightRows(id uint64, first, business, economy int) *sqlmock.Rows {
	dep := testNow.Add(48 * time.Hour)
	return sqlmock.NewRows(flightCols).AddRow(id, "MU5101", "China Eastern", "SHA", "PEK", dep, dep.Add(2*time.Hour),
		"A320", economy, "500.00", business, "1500.00", first, "3000.00")
}

func orderRows(orders ...model.Order) *sqlmock.Rows {
	rows := sqlmock.NewRows(orderCols)
	for _, o := range orders {
		var lock any
		if o.LockTime != nil {
			lock = *o.LockTime
		}
		rows.AddRow(o.ID, o.UserID, o.FlightID, string(o.CabinClass), o.SeatNumber, string(o.Status),
			o.TotalAmount.StringFixed(2), o.PaidAmount.StringFixed(2), o.CreatedAt, lock)
	}
	return rows
}

func walletRows(userID uint64, balance string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "balance", "updated_at"}).AddRow(userID, balance, testNow)
}

func economyOrder(id, userID uint64, seat string, status model.OrderStatus, total, paid int64) model.Order {
	return model.Order{
		ID: id, UserID: userID, FlightID: 1, CabinClass: model.CabinEconomy, SeatNumber: seat,
		Status: status, TotalAmount: decimal.NewFromInt(total), PaidAmount: decimal.NewFromInt(paid),
		CreatedAt: testNow.Add(-time.Hour),
	}
}

func timePtr(t time.Time) *time.Time { return &t }

const (
	qFlight          = "SELECT (.+) FROM flights WHERE id = \\?"
	qFlightForUpdate = "SELECT (.+) FROM flights WHERE id = \\? FOR UPDATE"
	qLiveForUpdate   = "FROM orders WHERE flight_id = \\? AND status NOT IN \\(\\?, \\?\\) FOR UPDATE"
	qLive            = "FROM orders WHERE flight_id = \\? AND status NOT IN \\(\\?, \\?\\) ORDER BY id"
	qOrderForUpdate  = "FROM orders WHERE id = \\? FOR UPDATE"
	qSeatForUpdate   = "FROM orders WHERE flight_id = \\? AND seat_number = \\? AND status NOT IN \\(\\?, \\?\\) FOR UPDATE"
	qWallet          = "SELECT id, balance, updated_at FROM users WHERE id = \\?"
)
