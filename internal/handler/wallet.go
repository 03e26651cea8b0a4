package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/service"
)

// WalletHandler serves /v1/wallet.
type WalletHandler struct {
	Ledger *service.LedgerService
	Log    logrus.FieldLogger
}

func NewWalletHandler(ledger *service.LedgerService, log logrus.FieldLogger) *WalletHandler {
	if ledger == nil {
		panic("nil LedgerService passed to NewWalletHandler")
	}
	return &WalletHandler{Ledger: ledger, Log: loggerOr(log)}
}

type rechargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Balance handles GET /v1/wallet.
func (h *WalletHandler) Balance(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	w, err := h.Ledger.Balance(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, w)
}

// Recharge handles POST /v1/wallet/recharge. The amount must be positive;
// the service rejects anything else.
func (h *WalletHandler) Recharge(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req rechargeRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	w, err := h.Ledger.Recharge(c.Request().Context(), userID, req.Amount)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, w)
}
