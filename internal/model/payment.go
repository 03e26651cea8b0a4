package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentKind tells a debit from a credit in the payments journal.
type PaymentKind string

const (
	PaymentDebit  PaymentKind = "payment"
	PaymentCredit PaymentKind = "refund"
)

// Payment is one ledger movement recorded in the `payments` table. Every
// successful pay or refund writes exactly one row in the same transaction
// as the balance and order updates.
type Payment struct {
	ID        uint64          `db:"id" json:"id"`
	OrderID   uint64          `db:"order_id" json:"order_id"`
	UserID    uint64          `db:"user_id" json:"user_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Kind      PaymentKind     `db:"kind" json:"kind"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
