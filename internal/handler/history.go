package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/service"
)

// HistoryHandler serves /v1/history.
type HistoryHandler struct {
	History *service.HistoryService
	Log     logrus.FieldLogger
}

func NewHistoryHandler(history *service.HistoryService, log logrus.FieldLogger) *HistoryHandler {
	if history == nil {
		panic("nil HistoryService passed to NewHistoryHandler")
	}
	return &HistoryHandler{History: history, Log: loggerOr(log)}
}

type recordViewRequest struct {
	FlightID uint64          `json:"flight_id" validate:"required"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// Record handles POST /v1/history.
func (h *HistoryHandler) Record(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req recordViewRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	if err := h.History.Record(c.Request().Context(), userID, req.FlightID, req.Snapshot); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"flight_id": req.FlightID})
}

// List handles GET /v1/history, newest first.
func (h *HistoryHandler) List(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	entries, err := h.History.List(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"history": entries})
}

// Clear handles DELETE /v1/history.
func (h *HistoryHandler) Clear(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	n, err := h.History.Clear(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
