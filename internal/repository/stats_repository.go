package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shop1111/flight-booking/internal/model"
)

// StatsRepo runs the aggregate queries behind the operator statistics.
type StatsRepo struct {
	db *sqlx.DB
}

func NewStatsRepo(db *sqlx.DB) *StatsRepo { return &StatsRepo{db: db} }

// CountByStatus groups all orders by status.
func (r *StatsRepo) CountByStatus(ctx context.Context) ([]model.StatusCount, error) {
	var rows []model.StatusCount
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS cnt FROM orders GROUP BY status`); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	return rows, nil
}

// SeatCounts returns how many seats of a flight are sold (money attached)
// and how many are occupied by any live order.
func (r *StatsRepo) SeatCounts(ctx context.Context, flightID uint64) (sold, live int, err error) {
	var row struct {
		Sold int `db:"sold"`
		Live int `db:"live"`
	}
	err = r.db.GetContext(ctx, &row, `SELECT
		COALESCE(SUM(CASE WHEN status IN (?, ?, ?) THEN 1 ELSE 0 END), 0) AS sold,
		COALESCE(SUM(CASE WHEN status NOT IN (?, ?) THEN 1 ELSE 0 END), 0) AS live
		FROM orders WHERE flight_id = ?`,
		model.StatusPaid, model.StatusPartPaid, model.StatusCompleted, model.StatusCancelled, model.StatusRefunded, flightID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count seats: %w", err)
	}
	return row.Sold, row.Live, nil
}
