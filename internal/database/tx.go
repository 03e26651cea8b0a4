package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/shop1111/flight-booking/internal/apperror"
)

// MySQL server error numbers that mean "nothing was applied, try again".
const (
	erLockWaitTimeout = 1205
	erLockDeadlock    = 1213
	erDupEntry        = 1062
)

// IsRetryable reports whether err is a lock wait timeout or a deadlock.
func IsRetryable(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == erLockWaitTimeout || me.Number == erLockDeadlock
	}
	return false
}

// IsDuplicate reports whether err is a unique key violation.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == erDupEntry
}

// TxRunner runs functions inside a transaction. Every exit path either
// commits or rolls back. Transactions that fail with a deadlock or lock
// wait timeout are re-run from scratch up to MaxRetries times; if they
// still fail the error is reported as apperror.ErrTransient.
type TxRunner struct {
	DB         *sqlx.DB
	MaxRetries int
	Backoff    time.Duration
	Isolation  sql.IsolationLevel
}

func NewTxRunner(db *sqlx.DB, maxRetries int) *TxRunner {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &TxRunner{DB: db, MaxRetries: maxRetries, Backoff: 25 * time.Millisecond}
}

// Run executes fn in a fresh transaction and commits when it returns nil.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var err error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apperror.ErrTransient.Wrap(ctx.Err())
			case <-time.After(time.Duration(attempt) * r.Backoff):
			}
		}
		err = r.runOnce(ctx, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
	}
	return apperror.ErrTransient.Wrap(err)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: r.Isolation})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
