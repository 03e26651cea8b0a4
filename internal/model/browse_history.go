package model

import (
	"encoding/json"
	"time"
)

// HistoryCap is the number of browse entries kept per user.
const HistoryCap = 10

// BrowseEntry is a row of `browse_history` joined with the current flight
// summary. Snapshot holds the flight attributes as the client saw them at
// view time and is never rewritten afterwards; the joined columns reflect
// the flight as it is now and are empty when the flight has been removed.
type BrowseEntry struct {
	ID            uint64           `db:"id" json:"id"`
	UserID        uint64           `db:"user_id" json:"user_id"`
	FlightID      uint64           `db:"flight_id" json:"flight_id"`
	Snapshot      *json.RawMessage `db:"flight_data" json:"snapshot,omitempty"`
	BrowseTime    time.Time        `db:"browse_time" json:"browse_time"`
	FlightNumber  *string          `db:"flight_number" json:"flight_number,omitempty"`
	Origin        *string          `db:"origin" json:"origin,omitempty"`
	Destination   *string          `db:"destination" json:"destination,omitempty"`
	DepartureTime *time.Time       `db:"departure_time" json:"departure_time,omitempty"`
}
