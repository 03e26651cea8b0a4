package model

import "github.com/shopspring/decimal"

// OrderStats summarises the orders table.
type OrderStats struct {
	Total    int                 `json:"total"`
	ByStatus map[OrderStatus]int `json:"by_status"`
}

// StatusCount is one GROUP BY row.
type StatusCount struct {
	Status OrderStatus `db:"status"`
	Count  int         `db:"cnt"`
}

// Occupancy reports how full a flight is. Sold counts seats whose orders
// carry money (paid, part-paid, completed); Live additionally includes
// unpaid and held orders.
type Occupancy struct {
	FlightID   uint64          `json:"flight_id"`
	TotalSeats int             `json:"total_seats"`
	Sold       int             `json:"sold"`
	Live       int             `json:"live"`
	Rate       decimal.Decimal `json:"occupancy_rate"`
}
