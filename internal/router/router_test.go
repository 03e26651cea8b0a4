package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shop1111/flight-booking/internal/config"
	"github.com/shop1111/flight-booking/internal/handler"
	"github.com/shop1111/flight-booking/internal/middleware"
	"github.com/shop1111/flight-booking/internal/service"
	"github.com/shop1111/flight-booking/internal/utils"
)

const secret = "router-test-secret"

func newEcho(t *testing.T) *echo.Echo {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	log, _ := test.NewNullLogger()
	deps := service.NewDeps(sqlx.NewDb(mockDB, "sqlmock"), 0)
	orders := service.NewOrderService(deps)
	ledger := service.NewLedgerService(deps)
	h := Handlers{
		Orders:  handler.NewOrderHandler(orders, ledger, log),
		Seats:   handler.NewSeatHandler(service.NewSeatService(deps), log),
		Wallet:  handler.NewWalletHandler(ledger, log),
		History: handler.NewHistoryHandler(service.NewHistoryService(deps), log),
		Admin:   handler.NewAdminHandler(service.NewStatsService(deps), orders, log),
	}

	e := echo.New()
	e.Validator = handler.NewValidator()
	RegisterAll(e, nil, h, Options{JWTSecret: secret, RateLimit: config.RateLimitConfig{}, Log: log})
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newEcho(t)
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /v1/orders",
		"GET /v1/orders",
		"GET /v1/orders/:id",
		"POST /v1/orders/:id/cancel",
		"DELETE /v1/orders/:id",
		"POST /v1/orders/:id/pay",
		"POST /v1/orders/:id/refund",
		"GET /v1/orders/:id/payments",
		"GET /v1/flights/:id/seats/available",
		"GET /v1/flights/:id/seats",
		"POST /v1/flights/:id/seats/:seat/lock",
		"DELETE /v1/flights/:id/seats/:seat/lock",
		"GET /v1/wallet",
		"POST /v1/wallet/recharge",
		"POST /v1/history",
		"GET /v1/history",
		"DELETE /v1/history",
		"GET /v1/admin/stats/orders",
		"GET /v1/admin/flights/:id/occupancy",
		"POST /v1/admin/orders/:id/complete",
	} {
		assert.True(t, have[want], "missing route %s", want)
	}
}

func TestHealthz(t *testing.T) {
	e := newEcho(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	e := newEcho(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/stats/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.NewAccessToken(secret, 5, middleware.RoleCustomer, time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/orders/3/complete", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnknownRoleRejected(t *testing.T) {
	e := newEcho(t)
	tok, err := utils.NewAccessToken(secret, 5, "OWNER", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/wallet", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
