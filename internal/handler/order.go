package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/model"
	"github.com/shop1111/flight-booking/internal/service"
)

// OrderHandler serves /v1/orders.
type OrderHandler struct {
	Orders *service.OrderService
	Ledger *service.LedgerService
	Log    logrus.FieldLogger
}

func NewOrderHandler(orders *service.OrderService, ledger *service.LedgerService, log logrus.FieldLogger) *OrderHandler {
	if orders == nil || ledger == nil {
		panic("nil service passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders, Ledger: ledger, Log: loggerOr(log)}
}

type createOrderRequest struct {
	FlightID       uint64 `json:"flight_id" validate:"required"`
	CabinClass     string `json:"cabin_class" validate:"required,oneof=first first_class business economy"`
	SeatPreference string `json:"seat_preference" validate:"omitempty,len=1,alpha"`
}

type payRequest struct {
	// Amount is optional; omitted means pay everything outstanding.
	Amount *decimal.Decimal `json:"amount"`
}

// Create handles POST /v1/orders and answers 201 with the assigned seat.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req createOrderRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	res, err := h.Orders.Create(c.Request().Context(), service.CreateOrderInput{
		UserID:     userID,
		FlightID:   req.FlightID,
		CabinClass: model.CabinClass(req.CabinClass),
		Preference: req.SeatPreference,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// List handles GET /v1/orders.
func (h *OrderHandler) List(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, orderID, err := h.userAndOrder(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	d, err := h.Orders.Get(c.Request().Context(), userID, orderID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Cancel handles POST /v1/orders/:id/cancel.
func (h *OrderHandler) Cancel(c echo.Context) error {
	userID, orderID, err := h.userAndOrder(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if err := h.Orders.Cancel(c.Request().Context(), userID, orderID); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order_id": orderID, "status": model.StatusCancelled})
}

// Delete handles DELETE /v1/orders/:id.
func (h *OrderHandler) Delete(c echo.Context) error {
	userID, orderID, err := h.userAndOrder(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if err := h.Orders.Delete(c.Request().Context(), userID, orderID); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Pay handles POST /v1/orders/:id/pay. An empty body pays in full.
func (h *OrderHandler) Pay(c echo.Context) error {
	userID, orderID, err := h.userAndOrder(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req payRequest
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return respondError(c, h.Log, err)
		}
	}
	res, err := h.Ledger.Pay(c.Request().Context(), service.PayInput{UserID: userID, OrderID: orderID, Amount: req.Amount})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Refund handles POST /v1/orders/:id/refund.
func (h *OrderHandler) Refund(c echo.Context) error {
	userID, orderID, err := h.userAndOrder(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	res, err := h.Ledger.Refund(c.Request().Context(), userID, orderID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Payments handles GET /v1/orders/:id/payments.
func (h *OrderHandler) Payments(c echo.Context) error {
	userID, orderID, err := h.userAndOrder(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	payments, err := h.Ledger.Payments(c.Request().Context(), userID, orderID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}

func (h *OrderHandler) userAndOrder(c echo.Context) (uint64, uint64, error) {
	userID, err := currentUser(c)
	if err != nil {
		return 0, 0, err
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	return userID, orderID, nil
}
