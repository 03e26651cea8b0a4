package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/model"
	"github.com/shop1111/flight-booking/internal/queue"
)

// LedgerService moves money between user balances and orders. Each
// movement changes the balance, the order and the payments journal in the
// same transaction.
type LedgerService struct {
	d Deps
}

func NewLedgerService(d Deps) *LedgerService { return &LedgerService{d: d} }

type PayInput struct {
	UserID  uint64
	OrderID uint64
	// Amount is an optional installment. Nil pays the whole outstanding sum.
	Amount *decimal.Decimal
}

type PayResult struct {
	OrderID     uint64            `json:"order_id"`
	Status      model.OrderStatus `json:"status"`
	Charged     decimal.Decimal   `json:"charged"`
	PaidAmount  decimal.Decimal   `json:"paid_amount"`
	Outstanding decimal.Decimal   `json:"outstanding"`
	Balance     decimal.Decimal   `json:"balance"`
}

type RefundResult struct {
	OrderID  uint64            `json:"order_id"`
	Status   model.OrderStatus `json:"status"`
	Refunded decimal.Decimal   `json:"refunded"`
	Balance  decimal.Decimal   `json:"balance"`
}

// Pay debits the user's balance for an unpaid, held or part-paid order. The debit
// is conditional on the balance covering it, so the balance never goes
// negative no matter how many payments race.
func (s *LedgerService) Pay(ctx context.Context, in PayInput) (PayResult, error) {
	if in.Amount != nil && !in.Amount.IsPositive() {
		return PayResult{}, apperror.ErrInvalidAmount
	}

	var (
		res   PayResult
		order model.Order
	)
	err := s.d.Tx.Run(ctx, func(tx *sqlx.Tx) error {
		o, err := lockOwnedOrder(ctx, s.d.Orders, tx, in.UserID, in.OrderID)
		if err != nil {
			return err
		}
		if !o.Status.Payable() {
			return apperror.ErrWrongStatus.WithMessage("order is %s; only unpaid, held or part-paid orders can be paid", o.Status)
		}

		outstanding := o.Outstanding()
		charge := outstanding
		if in.Amount != nil {
			if in.Amount.GreaterThan(outstanding) {
				return apperror.ErrOverpayment.WithMessage("amount %s exceeds outstanding %s", in.Amount.StringFixed(2), outstanding.StringFixed(2))
			}
			charge = *in.Amount
		}

		if charge.IsPositive() {
			ok, err := s.d.Users.DebitTx(ctx, tx, in.UserID, charge)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.ErrInsufficientFunds
			}
		}

		o.PaidAmount = o.PaidAmount.Add(charge)
		o.Status = model.StatusPartPaid
		if o.PaidAmount.GreaterThanOrEqual(o.TotalAmount) {
			o.Status = model.StatusPaid
		}
		if err := s.d.Orders.UpdatePaymentTx(ctx, tx, o.ID, o.Status, o.PaidAmount); err != nil {
			return err
		}
		now := s.d.now()
		if err := s.d.Payments.CreateTx(ctx, tx, &model.Payment{
			OrderID: o.ID, UserID: in.UserID, Amount: charge, Kind: model.PaymentDebit, CreatedAt: now,
		}); err != nil {
			return err
		}
		w, err := s.d.Users.GetWalletTx(ctx, tx, in.UserID)
		if err != nil {
			return err
		}

		order = o
		res = PayResult{
			OrderID:     o.ID,
			Status:      o.Status,
			Charged:     charge,
			PaidAmount:  o.PaidAmount,
			Outstanding: o.Outstanding(),
			Balance:     w.Balance,
		}
		return nil
	})
	if err != nil {
		return PayResult{}, err
	}

	typ := queue.OrderPaid
	if order.Status == model.StatusPartPaid {
		typ = queue.OrderPartPaid
	}
	s.d.emit(ctx, queue.NewOrderEvent(typ, order, res.Charged, s.d.now()))
	return res, nil
}

// Refund returns everything paid on an order to the user's balance.
func (s *LedgerService) Refund(ctx context.Context, userID, orderID uint64) (RefundResult, error) {
	var (
		res   RefundResult
		order model.Order
	)
	err := s.d.Tx.Run(ctx, func(tx *sqlx.Tx) error {
		o, err := lockOwnedOrder(ctx, s.d.Orders, tx, userID, orderID)
		if err != nil {
			return err
		}
		if o.Status == model.StatusRefunded {
			return apperror.ErrAlreadyRefunded
		}
		if !o.Status.Refundable() {
			return apperror.ErrNotPaid.WithMessage("order is %s; only paid orders can be refunded", o.Status)
		}

		amount := o.PaidAmount
		if amount.IsPositive() {
			ok, err := s.d.Users.CreditTx(ctx, tx, userID, amount)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.ErrUserNotFound
			}
		}
		if err := s.d.Orders.UpdateStatusTx(ctx, tx, o.ID, model.StatusRefunded); err != nil {
			return err
		}
		if err := s.d.Payments.CreateTx(ctx, tx, &model.Payment{
			OrderID: o.ID, UserID: userID, Amount: amount, Kind: model.PaymentCredit, CreatedAt: s.d.now(),
		}); err != nil {
			return err
		}
		w, err := s.d.Users.GetWalletTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		o.Status = model.StatusRefunded
		order = o
		res = RefundResult{OrderID: o.ID, Status: o.Status, Refunded: amount, Balance: w.Balance}
		return nil
	})
	if err != nil {
		return RefundResult{}, err
	}
	s.d.invalidate(ctx, order.FlightID)
	s.d.emit(ctx, queue.NewOrderEvent(queue.OrderRefunded, order, res.Refunded, s.d.now()))
	return res, nil
}

// Recharge adds a positive amount to the user's balance.
func (s *LedgerService) Recharge(ctx context.Context, userID uint64, amount decimal.Decimal) (model.Wallet, error) {
	if !amount.IsPositive() {
		return model.Wallet{}, apperror.ErrInvalidAmount
	}
	var w model.Wallet
	err := s.d.Tx.Run(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.d.Users.CreditTx(ctx, tx, userID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.ErrUserNotFound
		}
		w, err = s.d.Users.GetWalletTx(ctx, tx, userID)
		return err
	})
	if err != nil {
		return model.Wallet{}, err
	}
	return w, nil
}

// Balance returns the user's current balance.
func (s *LedgerService) Balance(ctx context.Context, userID uint64) (model.Wallet, error) {
	return s.d.Users.GetWallet(ctx, userID)
}

// Payments lists the ledger movements of one of the user's orders.
func (s *LedgerService) Payments(ctx context.Context, userID, orderID uint64) ([]model.Payment, error) {
	o, err := s.d.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	return s.d.Payments.ListByOrder(ctx, orderID)
}
