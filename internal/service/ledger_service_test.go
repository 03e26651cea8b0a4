package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/model"
	"github.com/shop1111/flight-booking/internal/queue"
)

const (
	debitExec  = "UPDATE users SET balance = balance - \\? WHERE id = \\? AND balance >= \\?"
	creditExec = "UPDATE users SET balance = balance \\+ \\? WHERE id = \\?"
	payExec    = "UPDATE orders SET status = \\?, paid_amount = \\?, lock_time = NULL WHERE id = \\?"
)

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestPayInsufficientFundsChangesNothing(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qOrderForUpdate).WithArgs(1).
		WillReturnRows(orderRows(economyOrder(1, 7, "1A", model.StatusUnpaid, 500, 0)))
	// balance is 300: the conditional debit matches no row
	mock.ExpectExec(debitExec).WithArgs("500", 7, "500").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := NewLedgerService(d).Pay(context.Background(), PayInput{UserID: 7, OrderID: 1})
	assert.ErrorIs(t, err, apperror.ErrInsufficientFunds)
	assert.Equal(t, apperror.KindInsufficientResource, apperror.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayInFull(t *testing.T) {
	d, mock, sink := newTestDeps(t)
	sink.expect(queue.OrderPaid).Once()
	mock.ExpectBegin()
	mock.ExpectQuery(qOrderForUpdate).WithArgs(1).
		WillReturnRows(orderRows(economyOrder(1, 7, "1A", model.StatusUnpaid, 500, 0)))
	mock.ExpectExec(debitExec).WithArgs("500", 7, "500").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(payExec).WithArgs("paid", "500", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").WithArgs(1, 7, "500", "payment", testNow).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(qWallet).WithArgs(7).WillReturnRows(walletRows(7, "200.00"))
	mock.ExpectCommit()

	res, err := NewLedgerService(d).Pay(context.Background(), PayInput{UserID: 7, OrderID: 1})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, res.Status)
	assert.True(t, res.PaidAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, res.Outstanding.IsZero())
	assert.Equal(t, "200.00", res.Balance.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayHeldOrderEndsHold(t *testing.T) {
	d, mock, sink := newTestDeps(t)
	sink.expect(queue.OrderPaid).Once()

	held := economyOrder(1, 7, "1A", model.StatusHeld, 500, 0)
	held.LockTime = timePtr(testNow.Add(-2 * time.Minute))
	mock.ExpectBegin()
	mock.ExpectQuery(qOrderForUpdate).WithArgs(1).WillReturnRows(orderRows(held))
	mock.ExpectExec(debitExec).WithArgs("500", 7, "500").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(payExec).WithArgs("paid", "500", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").WithArgs(1, 7, "500", "payment", testNow).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(qWallet).WithArgs(7).WillReturnRows(walletRows(7, "0.00"))
	mock.ExpectCommit()

	res, err := NewLedgerService(d).Pay(context.Background(), PayInput{UserID: 7, OrderID: 1})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayInstallments(t *testing.T) {
	d, mock, sink := newTestDeps(t)
	sink.expect(queue.OrderPartPaid).Once()
	sink.expect(queue.OrderPaid).Once()
	svc := NewLedgerService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(qOrderForUpdate).WithArgs(1).
		WillReturnRows(orderRows(economyOrder(1, 7, "1A", model.StatusUnpaid, 500, 0)))
	mock.ExpectExec(debitExec).WithArgs("200", 7, "200").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(payExec).WithArgs("part-paid", "200", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(qWallet).WithArgs(7).WillReturnRows(walletRows(7, "800.00"))
	mock.ExpectCommit()

	res, err := svc.Pay(context.Background(), PayInput{UserID: 7, OrderID: 1, Amount: amount(200)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartPaid, res.Status)
	assert.True(t, res.Outstanding.Equal(decimal.NewFromInt(300)))

	// the second installment may not exceed what is left
	mock.ExpectBegin()
	mock.ExpectQuery(qOrderForUpdate).WithArgs(1).
		WillReturnRows(orderRows(economyOrder(1, 7, "1A", model.StatusPartPaid, 500, 200)))
	mock.ExpectRollback()
	_, err = svc.Pay(context.Background(), PayInput{UserID: 7, OrderID: 1, Amount: amount(301)})
	assert.ErrorIs(t, err, apperror.ErrOverpayment)

	mock.ExpectBegin()
	mock.ExpectQuery(qOrderForUpdate).WithArgs(1).
		WillReturnRows(orderRows(economyOrder(1, 7, "1A", model.StatusPartPaid, 500, 200)))
	mock.ExpectExec(debitExec).WithArgs("300", 7, "300").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(payExec).WithArgs("paid", "500", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery(qWallet).WithArgs(7).WillReturnRows(walletRows(7, "500.00"))
	mock.ExpectCommit()

	res, err = svc.Pay(context.Background(), PayInput{UserID: 7, OrderID: 1})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayRejections(t *testing.T) {
	t.Run("non-positive amount", func(t *testing.T) {
		d, mock, _ := newTestDeps(t)
		_, err := NewLedgerService(d).Pay(context.Background(), PayInput{UserID: 7, OrderID: 1, Amount: amount(0)})
		assert.ErrorIs(t, err, apperror.ErrInvalidAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	cases := []struct {
		name  string
		order model.Order
		want  error
	}{
		{"paid order", economyOrder(1, 7, "1A", model.StatusPaid, 500, 500), apperror.ErrWrongStatus},
		{"cancelled order", economyOrder(1, 7, "1A", model.StatusCancelled, 500, 0), apperror.ErrWrongStatus},
		{"other user's order", economyOrder(1, 8, "1A", model.StatusUnpaid, 500, 0), apperror.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, mock, _ := newTestDeps(t)
			mock.ExpectBegin()
			mock.ExpectQuery(qOrderForUpdate).WithArgs(1).WillReturnRows(orderRows(tc.order))
			mock.ExpectRollback()

			_, err := NewLedgerService(d).Pay(context.Background(), PayInput{UserID: 7, OrderID: 1})
			assert.ErrorIs(t, err, tc.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("missing order", func(t *testing.T) {
		d, mock, _ := newTestDeps(t)
		mock.ExpectBegin()
		mock.ExpectQuery(qOrderForUpdate).WithArgs(1).WillReturnRows(orderRows())
		mock.ExpectRollback()

		_, err := NewLedgerService(d).Pay(context.Background(), PayInput{UserID: 7, OrderID: 1})
		assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
	})
}

func TestRefundTwice(t *testing.T) {
	d, mock, sink := newTestDeps(t)
	sink.expect(queue.OrderRefunded).Once()
	svc := NewLedgerService(d)

	mock.ExpectBegin()
	mock.ExpectQuery(qOrderForUpdate).WithArgs(1).
		WillReturnRows(orderRows(economyOrder(1, 7, "1A", model.StatusPaid, 500, 500)))
	mock.ExpectExec(creditExec).WithArgs("500", 7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders SET status = \\?, lock_time = NULL WHERE id = \\?").
		WithArgs("refunded", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").WithArgs(1, 7, "500", "refund", testNow).WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(qWallet).WithArgs(7).WillReturnRows(walletRows(7, "500.00"))
	mock.ExpectCommit()

	res, err := svc.Refund(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRefunded, res.Status)
	assert.True(t, res.Refunded.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "500.00", res.Balance.StringFixed(2))

	mock.ExpectBegin()
	mock.ExpectQuery(qOrderForUpdate).WithArgs(1).
		WillReturnRows(orderRows(economyOrder(1, 7, "1A", model.StatusRefunded, 500, 500)))
	mock.ExpectRollback()

	_, err = svc.Refund(context.Background(), 7, 1)
	assert.ErrorIs(t, err, apperror.ErrAlreadyRefunded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundUnpaid(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qOrderForUpdate).WithArgs(1).
		WillReturnRows(orderRows(economyOrder(1, 7, "1A", model.StatusUnpaid, 500, 0)))
	mock.ExpectRollback()

	_, err := NewLedgerService(d).Refund(context.Background(), 7, 1)
	assert.ErrorIs(t, err, apperror.ErrNotPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecharge(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	svc := NewLedgerService(d)

	_, err := svc.Recharge(context.Background(), 7, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)

	mock.ExpectBegin()
	mock.ExpectExec(creditExec).WithArgs("100", 7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(qWallet).WithArgs(7).WillReturnRows(walletRows(7, "400.00"))
	mock.ExpectCommit()
	w, err := svc.Recharge(context.Background(), 7, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "400.00", w.Balance.StringFixed(2))

	mock.ExpectBegin()
	mock.ExpectExec(creditExec).WithArgs("100", 9).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	_, err = svc.Recharge(context.Background(), 9, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentsChecksOwner(t *testing.T) {
	d, mock, _ := newTestDeps(t)
	mock.ExpectQuery("FROM orders WHERE id = \\?").WithArgs(1).
		WillReturnRows(orderRows(economyOrder(1, 8, "1A", model.StatusPaid, 500, 500)))

	_, err := NewLedgerService(d).Payments(context.Background(), 7, 1)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}
