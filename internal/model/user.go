package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the ledger view of a row in the `users` table. Only the
// balance is managed by this service; profile columns belong to other
// collaborators and are not mapped.
//
// Fields:
//
//	UserID    – users.id.
//	Balance   – users.balance, never negative.
//	UpdatedAt – users.updated_at.
type Wallet struct {
	UserID    uint64          `db:"id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
