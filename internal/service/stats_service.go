package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shop1111/flight-booking/internal/model"
)

// StatsService serves operator statistics.
type StatsService struct {
	d Deps
}

func NewStatsService(d Deps) *StatsService { return &StatsService{d: d} }

// Orders counts orders per status. Every status is present in the result,
// zero when no order has it.
func (s *StatsService) Orders(ctx context.Context) (model.OrderStats, error) {
	rows, err := s.d.Stats.CountByStatus(ctx)
	if err != nil {
		return model.OrderStats{}, err
	}
	st := model.OrderStats{ByStatus: make(map[model.OrderStatus]int, len(model.AllStatuses))}
	for _, status := range model.AllStatuses {
		st.ByStatus[status] = 0
	}
	for _, r := range rows {
		st.ByStatus[r.Status] += r.Count
		st.Total += r.Count
	}
	return st, nil
}

// FlightOccupancy reports sold and live seats of a flight against its
// capacity. The rate is sold/total rounded to four places.
func (s *StatsService) FlightOccupancy(ctx context.Context, flightID uint64) (model.Occupancy, error) {
	flight, err := s.d.Flights.GetByID(ctx, flightID)
	if err != nil {
		return model.Occupancy{}, err
	}
	sold, live, err := s.d.Stats.SeatCounts(ctx, flightID)
	if err != nil {
		return model.Occupancy{}, err
	}
	occ := model.Occupancy{FlightID: flightID, TotalSeats: flight.TotalSeats(), Sold: sold, Live: live, Rate: decimal.Zero}
	if occ.TotalSeats > 0 {
		occ.Rate = decimal.NewFromInt(int64(sold)).DivRound(decimal.NewFromInt(int64(occ.TotalSeats)), 4)
	}
	return occ, nil
}
