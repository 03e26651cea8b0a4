// Package apperror defines the typed errors returned by the booking core.
// Every failure carries a Kind that tells the caller what class of problem
// occurred (missing resource, conflicting state, ownership mismatch, ...)
// and a stable Code that identifies the exact condition. Handlers map the
// Kind to an HTTP status; only Transient errors are safe to retry.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and retry decisions.
type Kind uint8

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindInvalidState
	KindInsufficientResource
	KindTransient
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindInvalidState:
		return "invalid_state"
	case KindInsufficientResource:
		return "insufficient_resource"
	case KindTransient:
		return "transient"
	case KindInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

// Error is the concrete error type. Two errors are considered the same by
// errors.Is when their codes match, so a wrapped ErrSoldOut still matches
// the package-level ErrSoldOut.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrFlightNotFound = New(KindNotFound, "FLIGHT_NOT_FOUND", "flight not found")
	ErrOrderNotFound  = New(KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrSeatNotFound   = New(KindNotFound, "SEAT_NOT_FOUND", "no live order holds this seat")
	ErrUserNotFound   = New(KindNotFound, "USER_NOT_FOUND", "user not found")

	ErrSoldOut         = New(KindConflict, "SOLD_OUT", "no seats left in this cabin class")
	ErrAlreadyLocked   = New(KindConflict, "ALREADY_LOCKED", "seat is already locked")
	ErrAlreadyRefunded = New(KindConflict, "ALREADY_REFUNDED", "order has already been refunded")
	ErrSeatTaken       = New(KindConflict, "SEAT_TAKEN", "seat is held by another order")

	ErrForbidden = New(KindForbidden, "FORBIDDEN", "order belongs to another user")

	ErrNotLocked      = New(KindInvalidState, "NOT_LOCKED", "seat is not locked")
	ErrNotPaid        = New(KindInvalidState, "NOT_PAID", "order is not paid")
	ErrWrongStatus    = New(KindInvalidState, "WRONG_STATUS", "order status does not allow this operation")
	ErrNotCancellable = New(KindInvalidState, "NOT_CANCELLABLE", "only unpaid orders can be cancelled")
	ErrNotDeletable   = New(KindInvalidState, "NOT_DELETABLE", "order has pending financial state")
	ErrNotLockable    = New(KindInvalidState, "NOT_LOCKABLE", "only unpaid orders can be locked")
	ErrNotCompletable = New(KindInvalidState, "NOT_COMPLETABLE", "only paid orders can be completed")

	ErrInsufficientFunds = New(KindInsufficientResource, "INSUFFICIENT_FUNDS", "balance is too low")

	ErrTransient = New(KindTransient, "TRANSIENT", "store is busy, retry the request")

	ErrInvalidInput  = New(KindInvalid, "INVALID_INPUT", "invalid input")
	ErrInvalidAmount = New(KindInvalid, "INVALID_AMOUNT", "amount must be positive")
	ErrOverpayment   = New(KindInvalid, "OVERPAYMENT", "amount exceeds the outstanding balance")
)

// KindOf reports the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}
