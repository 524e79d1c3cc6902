package domain

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{ErrCafeNotFound, KindNotFound},
		{errors.Wrap(ErrVoucherNotFound, "lookup"), KindNotFound},
		{Invalid("items", "required"), KindInvalidInput},
		{ErrCafeInactive, KindInvalidInput},
		{&TransitionError{From: StatusCompleted, To: StatusPending}, KindInvalidInput},
		{ErrInsufficientPoints, KindInsufficientPoints},
		{fmt.Errorf("redeem: %w", ErrAlreadyUsed), KindAlreadyUsed},
		{ErrExpired, KindExpired},
		{ErrDuplicateSlug, KindConflict},
		{ErrForbidden, KindForbidden},
		{ErrCodeExhausted, KindInternal},
		{errors.New("connection reset"), KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}
}

func TestValidationError(t *testing.T) {
	err := Invalid("points_to_redeem", "must not be negative")

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "points_to_redeem", ve.Field)
	assert.Contains(t, err.Error(), "points_to_redeem")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
