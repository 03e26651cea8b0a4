// Package repository holds the sqlx data access layer. Methods with a Tx
// suffix run inside the caller's transaction and never commit or roll back
// themselves; the rest use the pooled handle directly.
//
// Missing rows are reported as the matching apperror NotFound value so the
// service layer can return them unchanged. Other driver failures are
// wrapped with context and left for the transaction runner to classify.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shop1111/flight-booking/internal/apperror"
)

// notFound converts sql.ErrNoRows into missing and wraps anything else.
func notFound(err error, missing *apperror.Error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return missing
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
