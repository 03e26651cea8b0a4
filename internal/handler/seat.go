package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/model"
	"github.com/shop1111/flight-booking/internal/service"
)

// SeatHandler serves /v1/flights/:id/seats.
type SeatHandler struct {
	Seats *service.SeatService
	Log   logrus.FieldLogger
}

func NewSeatHandler(seats *service.SeatService, log logrus.FieldLogger) *SeatHandler {
	if seats == nil {
		panic("nil SeatService passed to NewSeatHandler")
	}
	return &SeatHandler{Seats: seats, Log: loggerOr(log)}
}

// Available handles GET /v1/flights/:id/seats/available?class=economy.
func (h *SeatHandler) Available(c echo.Context) error {
	flightID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	class := c.QueryParam("class")
	seats, err := h.Seats.Available(c.Request().Context(), flightID, model.CabinClass(class))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"flight_id":   flightID,
		"cabin_class": strings.ToLower(class),
		"seats":       seats,
		"count":       len(seats),
	})
}

// Statuses handles GET /v1/flights/:id/seats.
func (h *SeatHandler) Statuses(c echo.Context) error {
	flightID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	seats, err := h.Seats.Statuses(c.Request().Context(), flightID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"flight_id": flightID, "seats": seats})
}

// Lock handles POST /v1/flights/:id/seats/:seat/lock.
func (h *SeatHandler) Lock(c echo.Context) error {
	flightID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	seat := c.Param("seat")
	if err := h.Seats.Lock(c.Request().Context(), flightID, seat); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"flight_id": flightID, "seat_number": strings.ToUpper(strings.TrimSpace(seat)), "status": model.StatusHeld})
}

// Unlock handles DELETE /v1/flights/:id/seats/:seat/lock.
func (h *SeatHandler) Unlock(c echo.Context) error {
	flightID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	seat := c.Param("seat")
	if err := h.Seats.Unlock(c.Request().Context(), flightID, seat); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"flight_id": flightID, "seat_number": strings.ToUpper(strings.TrimSpace(seat)), "status": model.StatusUnpaid})
}
