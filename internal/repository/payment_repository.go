package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shop1111/flight-booking/internal/model"
)

// PaymentRepo is the append-only journal of ledger movements.
type PaymentRepo struct {
	db *sqlx.DB
}

func NewPaymentRepo(db *sqlx.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx appends p and fills in its ID.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (order_id, user_id, amount, kind, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.OrderID, p.UserID, p.Amount, p.Kind, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read payment id: %w", err)
	}
	p.ID = uint64(id)
	return nil
}

// ListByOrder returns the movements of an order in the order they happened.
func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.Payment, error) {
	payments := []model.Payment{}
	err := r.db.SelectContext(ctx, &payments,
		`SELECT id, order_id, user_id, amount, kind, created_at FROM payments WHERE order_id = ? ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
