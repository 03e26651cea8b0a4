package router

import (
	"github.com/labstack/echo/v4"

	"github.com/shop1111/flight-booking/internal/handler"
	"github.com/shop1111/flight-booking/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, opts Options) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)

	g.GET("/stats/orders", a.OrderStats)
	g.GET("/flights/:id/occupancy", a.Occupancy)
	g.POST("/orders/:id/complete", a.CompleteOrder)
}
