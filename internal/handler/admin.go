package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/service"
)

// AdminHandler serves the operator endpoints under /v1/admin.
type AdminHandler struct {
	Stats  *service.StatsService
	Orders *service.OrderService
	Log    logrus.FieldLogger
}

func NewAdminHandler(stats *service.StatsService, orders *service.OrderService, log logrus.FieldLogger) *AdminHandler {
	if stats == nil || orders == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Stats: stats, Orders: orders, Log: loggerOr(log)}
}

// OrderStats handles GET /v1/admin/stats/orders.
func (h *AdminHandler) OrderStats(c echo.Context) error {
	st, err := h.Stats.Orders(c.Request().Context())
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Occupancy handles GET /v1/admin/flights/:id/occupancy.
func (h *AdminHandler) Occupancy(c echo.Context) error {
	flightID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	occ, err := h.Stats.FlightOccupancy(c.Request().Context(), flightID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, occ)
}

// CompleteOrder handles POST /v1/admin/orders/:id/complete.
func (h *AdminHandler) CompleteOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	o, err := h.Orders.Complete(c.Request().Context(), orderID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, o)
}
