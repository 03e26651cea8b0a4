// Package seatmap derives seat identifiers from cabin capacities and picks
// a seat for a booking. Seat identifiers are never stored as master data:
// they are recomputed from the flight's capacities every time and joined
// against the seat_number column of live orders, so the layout must be
// reproduced exactly.
package seatmap

import (
	"strconv"

	"github.com/shop1111/flight-booking/internal/model"
)

// Layout is the capacity triple of a flight.
type Layout struct {
	First    int
	Business int
	Economy  int
}

// LayoutOf extracts the capacities of f.
func LayoutOf(f model.Flight) Layout {
	return Layout{First: f.FirstClassSeats, Business: f.BusinessSeats, Economy: f.EconomySeats}
}

const letters = "ABCDEF"

// Columns returns the number of seats per row for a cabin.
func Columns(c model.CabinClass) int {
	switch c {
	case model.CabinFirst:
		return 2
	case model.CabinBusiness:
		return 4
	case model.CabinEconomy:
		return 6
	}
	return 0
}

func (l Layout) count(c model.CabinClass) int {
	switch c {
	case model.CabinFirst:
		return l.First
	case model.CabinBusiness:
		return l.Business
	case model.CabinEconomy:
		return l.Economy
	}
	return 0
}

// rows is ceil(count/cols); non-positive counts take no rows.
func (l Layout) rows(c model.CabinClass) int {
	n, cols := l.count(c), Columns(c)
	if n <= 0 || cols == 0 {
		return 0
	}
	return (n + cols - 1) / cols
}

// StartRow is the first row number of cabin c. Cabins are packed
// first, business, economy starting at row 1.
func (l Layout) StartRow(c model.CabinClass) int {
	start := 1
	for _, cc := range model.CabinClasses {
		if cc == c {
			return start
		}
		start += l.rows(cc)
	}
	return start
}

// Generate returns the ordered seat identifiers of cabin c: row ascending,
// then letter ascending, trimmed at the end to the configured capacity.
func Generate(first, business, economy int, c model.CabinClass) []string {
	return Layout{First: first, Business: business, Economy: economy}.Seats(c)
}

// Seats is Generate on a Layout value.
func (l Layout) Seats(c model.CabinClass) []string {
	count, cols := l.count(c), Columns(c)
	if count <= 0 || cols == 0 {
		return []string{}
	}
	start := l.StartRow(c)
	rows := l.rows(c)
	out := make([]string, 0, rows*cols)
	for r := start; r < start+rows; r++ {
		row := strconv.Itoa(r)
		for i := 0; i < cols; i++ {
			out = append(out, row+letters[i:i+1])
		}
	}
	return out[:count]
}

// ClassOf returns the cabin a seat identifier belongs to under layout l.
func (l Layout) ClassOf(seat string) (model.CabinClass, bool) {
	for _, c := range model.CabinClasses {
		for _, s := range l.Seats(c) {
			if s == seat {
				return c, true
			}
		}
	}
	return "", false
}

// Available returns the seats of all that are not in held, keeping the
// order of all.
func Available(all []string, held []string) []string {
	taken := make(map[string]struct{}, len(held))
	for _, s := range held {
		taken[s] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, s := range all {
		if _, ok := taken[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
