package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/model"
)

// UserRepo manages the balance column of users. Balance changes happen
// only through the conditional statements below, inside the transaction
// that also writes the order status justifying them.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// GetWallet loads a user's balance.
func (r *UserRepo) GetWallet(ctx context.Context, userID uint64) (model.Wallet, error) {
	var w model.Wallet
	if err := r.db.GetContext(ctx, &w, `SELECT id, balance, updated_at FROM users WHERE id = ?`, userID); err != nil {
		return model.Wallet{}, notFound(err, apperror.ErrUserNotFound, "load balance")
	}
	return w, nil
}

// GetWalletTx reads the balance inside tx, seeing the transaction's own writes.
func (r *UserRepo) GetWalletTx(ctx context.Context, tx *sqlx.Tx, userID uint64) (model.Wallet, error) {
	var w model.Wallet
	if err := tx.GetContext(ctx, &w, `SELECT id, balance, updated_at FROM users WHERE id = ?`, userID); err != nil {
		return model.Wallet{}, notFound(err, apperror.ErrUserNotFound, "load balance")
	}
	return w, nil
}

// DebitTx subtracts amount only when the balance covers it. The check and
// the write are one statement, so concurrent debits cannot both pass the
// check. It reports false when nothing was debited.
func (r *UserRepo) DebitTx(ctx context.Context, tx *sqlx.Tx, userID uint64, amount decimal.Decimal) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance - ? WHERE id = ? AND balance >= ?`,
		amount, userID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to debit balance: %w", err)
	}
	return n == 1, nil
}

// CreditTx adds amount to the balance. It reports false when the user
// does not exist.
func (r *UserRepo) CreditTx(ctx context.Context, tx *sqlx.Tx, userID uint64, amount decimal.Decimal) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE users SET balance = balance + ? WHERE id = ?`, amount, userID)
	if err != nil {
		return false, fmt.Errorf("failed to credit balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to credit balance: %w", err)
	}
	return n == 1, nil
}
