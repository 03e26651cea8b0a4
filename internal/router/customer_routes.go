package router

import (
	"github.com/labstack/echo/v4"

	"github.com/shop1111/flight-booking/internal/middleware"
)

// RegisterCustomer registers the authenticated booking endpoints under
// /v1. Admins may call them too; every handler scopes its work to the
// caller's own user id.
func RegisterCustomer(e *echo.Echo, h Handlers, opts Options) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleCustomer, middleware.RoleAdmin),
		middleware.RateLimit(opts.RateLimit, opts.Redis, opts.Log),
	)

	g.POST("/orders", h.Orders.Create)
	g.GET("/orders", h.Orders.List)
	g.GET("/orders/:id", h.Orders.Get)
	g.POST("/orders/:id/cancel", h.Orders.Cancel)
	g.DELETE("/orders/:id", h.Orders.Delete)
	g.POST("/orders/:id/pay", h.Orders.Pay)
	g.POST("/orders/:id/refund", h.Orders.Refund)
	g.GET("/orders/:id/payments", h.Orders.Payments)

	// seat holds are operator-style actions on a flight's inventory
	g.GET("/flights/:id/seats/available", h.Seats.Available)
	g.GET("/flights/:id/seats", h.Seats.Statuses)
	g.POST("/flights/:id/seats/:seat/lock", h.Seats.Lock)
	g.DELETE("/flights/:id/seats/:seat/lock", h.Seats.Unlock)

	g.GET("/wallet", h.Wallet.Balance)
	g.POST("/wallet/recharge", h.Wallet.Recharge)

	g.POST("/history", h.History.Record)
	g.GET("/history", h.History.List)
	g.DELETE("/history", h.History.Clear)
}
