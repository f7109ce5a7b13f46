package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error", err: nil, want: ""},
		{name: "domain error", err: Errorf(EINVALID, "op", "bad input"), want: EINVALID},
		{name: "wrapped domain error", err: fmt.Errorf("outer: %w", Errorf(ENOTFOUND, "op", "gone")), want: ENOTFOUND},
		{name: "plain error defaults to internal", err: errors.New("boom"), want: EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestErrorMessage_HidesInternalDetails(t *testing.T) {
	generic := "An internal error occurred. Please try again later."

	assert.Equal(t, generic, ErrorMessage(Errorf(EINTERNAL, "db.query", "connect to 10.0.0.5 failed")))
	assert.Equal(t, generic, ErrorMessage(errors.New("raw failure")))
	assert.Equal(t, "invalid plan identifier: x", ErrorMessage(Errorf(EINVALID, "price.resolve", "invalid plan identifier: x")))
}

func TestWrapError(t *testing.T) {
	underlying := errors.New("dial tcp: timeout")
	err := WrapError(underlying, EINTERNAL, "subscription.create", "provider unavailable")

	require.Error(t, err)
	assert.True(t, IsCode(err, EINTERNAL))
	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "subscription.create")

	assert.NoError(t, WrapError(nil, EINTERNAL, "op", "msg"))
}

func TestValidationError_AccumulatesFields(t *testing.T) {
	var err error
	err = AddFieldError(err, "email", "email is required")
	err = AddFieldError(err, "paymentMethodId", "payment method is required")

	require.True(t, IsValidationError(err))

	fields := GetValidationFields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "email is required", fields["email"])
	assert.Equal(t, "payment method is required", fields["paymentMethodId"])
}

func TestGetValidationFields_NonValidationError(t *testing.T) {
	assert.Nil(t, GetValidationFields(errors.New("boom")))
	assert.False(t, IsValidationError(Errorf(EINVALID, "op", "bad")))
}
