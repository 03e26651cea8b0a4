package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CabinClass names one of the three cabins of a flight. Each cabin has its
// own capacity, unit price and seat-column layout.
type CabinClass string

const (
	CabinFirst    CabinClass = "first"
	CabinBusiness CabinClass = "business"
	CabinEconomy  CabinClass = "economy"
)

// CabinClasses lists the cabins in seat-map packing order.
var CabinClasses = []CabinClass{CabinFirst, CabinBusiness, CabinEconomy}

// ParseCabinClass accepts the canonical names plus the column-style
// spelling "first_class" used by the flights table.
func ParseCabinClass(s string) (CabinClass, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "first_class", "firstclass":
		return CabinFirst, true
	case "business":
		return CabinBusiness, true
	case "economy":
		return CabinEconomy, true
	}
	return "", false
}

// Flight is the capacity/price record of a flight as stored in the
// `flights` table. The booking core only ever reads it.
//
// Fields:
//
//	ID              – primary key.
//	FlightNumber    – carrier flight number (e.g. MU5101).
//	Airline         – operating airline.
//	Origin          – departure city code.
//	Destination     – arrival city code.
//	DepartureTime   – scheduled departure.
//	LandingTime     – scheduled arrival.
//	AircraftModel   – aircraft type.
//	EconomySeats    – economy capacity; EconomyPrice its unit price.
//	BusinessSeats   – business capacity; BusinessPrice its unit price.
//	FirstClassSeats – first class capacity; FirstClassPrice its unit price.
type Flight struct {
	ID              uint64          `db:"id" json:"id"`
	FlightNumber    string          `db:"flight_number" json:"flight_number"`
	Airline         string          `db:"airline" json:"airline"`
	Origin          string          `db:"origin" json:"origin"`
	Destination     string          `db:"destination" json:"destination"`
	DepartureTime   time.Time       `db:"departure_time" json:"departure_time"`
	LandingTime     time.Time       `db:"landing_time" json:"landing_time"`
	AircraftModel   string          `db:"aircraft_model" json:"aircraft_model"`
	EconomySeats    int             `db:"economy_seats" json:"economy_seats"`
	EconomyPrice    decimal.Decimal `db:"economy_price" json:"economy_price"`
	BusinessSeats   int             `db:"business_seats" json:"business_seats"`
	BusinessPrice   decimal.Decimal `db:"business_price" json:"business_price"`
	FirstClassSeats int             `db:"first_class_seats" json:"first_class_seats"`
	FirstClassPrice decimal.Decimal `db:"first_class_price" json:"first_class_price"`
}

// Seats returns the configured capacity of a cabin.
func (f Flight) Seats(c CabinClass) int {
	switch c {
	case CabinFirst:
		return f.FirstClassSeats
	case CabinBusiness:
		return f.BusinessSeats
	case CabinEconomy:
		return f.EconomySeats
	}
	return 0
}

// Price returns the unit price of a cabin.
func (f Flight) Price(c CabinClass) decimal.Decimal {
	switch c {
	case CabinFirst:
		return f.FirstClassPrice
	case CabinBusiness:
		return f.BusinessPrice
	case CabinEconomy:
		return f.EconomyPrice
	}
	return decimal.Zero
}

// TotalSeats is the sum of all cabin capacities, ignoring negative values.
func (f Flight) TotalSeats() int {
	total := 0
	for _, c := range CabinClasses {
		if n := f.Seats(c); n > 0 {
			total += n
		}
	}
	return total
}
