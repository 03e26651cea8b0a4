// Package router registers the HTTP routes of the booking API.
package router

import (
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/config"
	"github.com/shop1111/flight-booking/internal/handler"
)

// Handlers groups the handlers mounted under /v1.
type Handlers struct {
	Orders  *handler.OrderHandler
	Seats   *handler.SeatHandler
	Wallet  *handler.WalletHandler
	History *handler.HistoryHandler
	Admin   *handler.AdminHandler
}

// Options carries what the protected groups need besides handlers.
// Redis may be nil, in which case rate limiting is off.
type Options struct {
	JWTSecret string
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Log       logrus.FieldLogger
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, db *sqlx.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAll mounts the health check, the customer API and the admin API.
func RegisterAll(e *echo.Echo, db *sqlx.DB, h Handlers, opts Options) {
	RegisterRoutes(e, db)
	RegisterCustomer(e, h, opts)
	RegisterAdmin(e, h.Admin, opts)
}
