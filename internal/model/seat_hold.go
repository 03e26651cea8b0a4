package model

import "time"

// DefaultHoldTTL is how long an explicit seat hold stays valid.
const DefaultHoldTTL = 15 * time.Minute

// HoldExpired reports whether a hold taken at lockTime has lapsed at now.
// A nil lockTime is treated as expired. Expiry is only ever evaluated when
// another request contends for the seat; nothing sweeps holds in the
// background, so a lapsed hold still reads as "held" in plain listings.
func HoldExpired(lockTime *time.Time, now time.Time, ttl time.Duration) bool {
	if lockTime == nil {
		return true
	}
	return now.Sub(*lockTime) > ttl
}
