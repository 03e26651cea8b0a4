package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/model"
)

const flightColumns = `id, flight_number, airline, origin, destination, departure_time, landing_time,
	aircraft_model, economy_seats, economy_price, business_seats, business_price,
	first_class_seats, first_class_price`

// FlightRepo reads flight capacity and price records. Flights are managed
// elsewhere; this repository never writes them.
type FlightRepo struct {
	db *sqlx.DB
}

func NewFlightRepo(db *sqlx.DB) *FlightRepo { return &FlightRepo{db: db} }

// GetByID loads a flight.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (model.Flight, error) {
	var f model.Flight
	err := r.db.GetContext(ctx, &f, `SELECT `+flightColumns+` FROM flights WHERE id = ?`, id)
	if err != nil {
		return model.Flight{}, notFound(err, apperror.ErrFlightNotFound, "load flight")
	}
	return f, nil
}

// GetForUpdateTx loads a flight and takes an exclusive lock on its row.
// Bookings for the same flight queue behind this lock, including the
// first booking when no order rows exist yet to lock.
func (r *FlightRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.Flight, error) {
	var f model.Flight
	err := tx.GetContext(ctx, &f, `SELECT `+flightColumns+` FROM flights WHERE id = ? FOR UPDATE`, id)
	if err != nil {
		return model.Flight{}, notFound(err, apperror.ErrFlightNotFound, "lock flight")
	}
	return f, nil
}
