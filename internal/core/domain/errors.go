package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrAlreadyUsed        = errors.New("voucher already used")
	ErrExpired            = errors.New("voucher expired")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal server error")
	ErrForbidden          = errors.New("forbidden")
)

// Entity errors
var (
	ErrCafeNotFound     = fmt.Errorf("cafe: %w", ErrNotFound)
	ErrCafeInactive     = &ValidationError{Field: "cafe_id", Reason: "cafe is not active"}
	ErrCustomerNotFound = fmt.Errorf("customer: %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product: %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order: %w", ErrNotFound)
	ErrVoucherNotFound  = fmt.Errorf("voucher: %w", ErrNotFound)
	ErrRewardNotFound   = fmt.Errorf("reward: %w", ErrNotFound)
	ErrDuplicateSlug    = fmt.Errorf("slug already taken: %w", ErrConflict)
	ErrDuplicateOrderNo = fmt.Errorf("order number already used: %w", ErrConflict)
	ErrCodeExhausted    = fmt.Errorf("could not generate a unique voucher code: %w", ErrInternal)
)

// ValidationError is an InvalidInput error tied to a request field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid builds a ValidationError
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TransitionError reports a disallowed order status change
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidInput
}

// Kind is the stable machine-readable error code
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindInsufficientPoints Kind = "INSUFFICIENT_POINTS"
	KindAlreadyUsed        Kind = "ALREADY_USED"
	KindExpired            Kind = "EXPIRED"
	KindConflict           Kind = "CONFLICT"
	KindForbidden          Kind = "FORBIDDEN"
	KindInternal           Kind = "INTERNAL"
)

// KindOf classifies err. Anything unrecognised is Internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrInsufficientPoints):
		return KindInsufficientPoints
	case errors.Is(err, ErrAlreadyUsed):
		return KindAlreadyUsed
	case errors.Is(err, ErrExpired):
		return KindExpired
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	}
	return KindInternal
}
