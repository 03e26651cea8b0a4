// Package cache keeps short-lived copies of seat availability listings in
// redis. It is a read-side optimisation only: bookings always resolve
// availability inside their own transaction.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/config"
	"github.com/shop1111/flight-booking/internal/model"
)

// SeatCache stores available seat lists under <prefix>:avail:<flight>:<class>.
// A nil *SeatCache or one built without a client behaves as an always
// missing cache.
type SeatCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	log    logrus.FieldLogger
}

// NewSeatCache returns nil when the cache is disabled or redis is
// unavailable.
func NewSeatCache(cfg config.SeatCacheConfig, rdb *redis.Client, log logrus.FieldLogger) *SeatCache {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SeatCache{rdb: rdb, ttl: cfg.TTL, prefix: cfg.Prefix, log: log}
}

func (c *SeatCache) key(flightID uint64, class model.CabinClass) string {
	return fmt.Sprintf("%s:avail:%d:%s", c.prefix, flightID, class)
}

// Get returns the cached list and whether it was present. Redis errors are
// logged and reported as a miss.
func (c *SeatCache) Get(ctx context.Context, flightID uint64, class model.CabinClass) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.key(flightID, class)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Warn("seat cache read failed")
		}
		return nil, false
	}
	var seats []string
	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil, false
	}
	return seats, true
}

// Set stores seats for the configured TTL.
func (c *SeatCache) Set(ctx context.Context, flightID uint64, class model.CabinClass, seats []string) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(seats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(flightID, class), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("seat cache write failed")
	}
}

// Invalidate drops every class listing of a flight.
func (c *SeatCache) Invalidate(ctx context.Context, flightID uint64) {
	if c == nil {
		return
	}
	keys := make([]string, 0, len(model.CabinClasses))
	for _, cl := range model.CabinClasses {
		keys = append(keys, c.key(flightID, cl))
	}
	if err := c.rdb.Del(context.WithoutCancel(ctx), keys...).Err(); err != nil {
		c.log.WithError(err).WithField("flight_id", flightID).Warn("seat cache invalidation failed")
	}
}
