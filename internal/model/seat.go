package model

// SeatStatus pairs a seat identifier with the status of the live order
// occupying it. Seats without an order are reported as "free".
type SeatStatus struct {
	SeatNumber string      `db:"seat_number" json:"seat_number"`
	CabinClass CabinClass  `db:"cabin_class" json:"cabin_class"`
	Status     OrderStatus `db:"status" json:"status"`
}

// SeatFree marks a seat no live order occupies.
const SeatFree OrderStatus = "free"
