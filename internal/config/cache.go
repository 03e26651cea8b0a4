package config

import "time"

// SeatCacheConfig controls the redis cache in front of seat availability
// listings. Bookings never read through it.
type SeatCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

func LoadSeatCacheConfig() SeatCacheConfig {
	return SeatCacheConfig{
		Enabled: envBool("SEAT_CACHE_ENABLED", true),
		TTL:     envDur("SEAT_CACHE_TTL", 10*time.Second),
		Prefix:  envStr("SEAT_CACHE_PREFIX", "seats"),
	}
}
