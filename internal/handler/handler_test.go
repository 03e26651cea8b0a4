package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/middleware"
	"github.com/shop1111/flight-booking/internal/service"
	"github.com/shop1111/flight-booking/internal/utils"
)

const testSecret = "handler-test-secret"

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type testServer struct {
	e    *echo.Echo
	mock sqlmock.Sqlmock
}

func newTestServer(t *testing.T) testServer {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mockDB.Close()
	})

	d := service.NewDeps(sqlx.NewDb(mockDB, "sqlmock"), 0)
	d.Tx.Backoff = 0
	d.Now = func() time.Time { return testNow }

	log, _ := test.NewNullLogger()
	orders := service.NewOrderService(d)
	ledger := service.NewLedgerService(d)
	oh := NewOrderHandler(orders, ledger, log)
	wh := NewWalletHandler(ledger, log)
	hh := NewHistoryHandler(service.NewHistoryService(d), log)
	ah := NewAdminHandler(service.NewStatsService(d), orders, log)

	e := echo.New()
	e.Validator = NewValidator()
	g := e.Group("/v1", middleware.JWTAuth(testSecret))
	g.POST("/orders", oh.Create)
	g.GET("/orders/:id", oh.Get)
	g.POST("/orders/:id/pay", oh.Pay)
	g.GET("/wallet", wh.Balance)
	g.POST("/wallet/recharge", wh.Recharge)
	g.DELETE("/history", hh.Clear)
	g.POST("/history", hh.Record)
	a := g.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	a.GET("/stats/orders", ah.OrderStats)

	return testServer{e: e, mock: mock}
}

func (s testServer) do(t *testing.T, method, path string, userID uint64, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != 0 {
		tok, err := utils.NewAccessToken(testSecret, userID, role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRespondErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperror.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},
		{apperror.ErrSoldOut, http.StatusConflict, "SOLD_OUT"},
		{apperror.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{apperror.ErrNotCancellable, http.StatusUnprocessableEntity, "NOT_CANCELLABLE"},
		{apperror.ErrInsufficientFunds, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS"},
		{apperror.ErrTransient.Wrap(errors.New("deadlock")), http.StatusServiceUnavailable, "TRANSIENT"},
		{apperror.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			log, hook := test.NewNullLogger()
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, respondError(c, log, tc.err))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decode(t, rec)["error"])

			switch tc.status {
			case http.StatusServiceUnavailable:
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
				require.Len(t, hook.AllEntries(), 1)
				assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
			case http.StatusInternalServerError:
				assert.Equal(t, "internal error", decode(t, rec)["message"])
				require.Len(t, hook.AllEntries(), 1)
				assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
			default:
				assert.Empty(t, rec.Header().Get("Retry-After"))
				assert.Empty(t, hook.AllEntries())
			}
		})
	}
}

func TestCreateOrderValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/orders", 5, middleware.RoleCustomer, `{"flight_id":1,"cabin_class":"premium"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/v1/orders", 5, middleware.RoleCustomer, `{"cabin_class":"economy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/orders", 5, middleware.RoleCustomer, `{"flight_id":1,"cabin_class":"economy","seat_preference":"AB"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/orders", 5, middleware.RoleCustomer, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequiresToken(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/v1/wallet", 0, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetOrderOfAnotherUser(t *testing.T) {
	s := newTestServer(t)
	cols := []string{"id", "user_id", "flight_id", "cabin_class", "seat_number", "status", "total_amount",
		"paid_amount", "created_at", "lock_time", "flight_number", "airline", "origin", "destination",
		"departure_time", "landing_time", "aircraft_model"}
	s.mock.ExpectQuery("WHERE o.id = \\?").WithArgs(7).WillReturnRows(sqlmock.NewRows(cols).
		AddRow(7, 9, 1, "economy", "3A", "unpaid", "500.00", "0.00", testNow, nil, "MU5101", "China Eastern",
			"SHA", "PEK", testNow.Add(48*time.Hour), testNow.Add(50*time.Hour), "A320"))

	rec := s.do(t, http.MethodGet, "/v1/orders/7", 5, middleware.RoleCustomer, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, rec)["error"])
}

func TestGetOrderBadID(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/v1/orders/abc", 5, middleware.RoleCustomer, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalletBalance(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery("SELECT id, balance, updated_at FROM users WHERE id = \\?").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance", "updated_at"}).AddRow(5, "120.50", testNow))

	rec := s.do(t, http.MethodGet, "/v1/wallet", 5, middleware.RoleCustomer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "120.5", body["balance"])
	assert.EqualValues(t, 5, body["user_id"])
}

func TestRechargeRejectsNonPositive(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/v1/wallet/recharge", 5, middleware.RoleCustomer, `{"amount":"-3"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_AMOUNT", decode(t, rec)["error"])
}

func TestClearHistory(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectExec("DELETE FROM browse_history WHERE user_id = \\?").WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 3))

	rec := s.do(t, http.MethodDelete, "/v1/history", 5, middleware.RoleCustomer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decode(t, rec)["deleted"])
}

func TestRecordHistoryRequiresFlight(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/v1/history", 5, middleware.RoleCustomer, `{"snapshot":{"price":"500"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminStats(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/v1/admin/stats/orders", 5, middleware.RoleCustomer, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) AS cnt FROM orders GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "cnt"}).AddRow("paid", 2).AddRow("unpaid", 1))

	rec = s.do(t, http.MethodGet, "/v1/admin/stats/orders", 1, middleware.RoleAdmin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 3, body["total"])
	byStatus := body["by_status"].(map[string]any)
	assert.EqualValues(t, 2, byStatus["paid"])
	assert.EqualValues(t, 0, byStatus["refunded"])
}
