package billing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func TestWrapProviderError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
		wantType    string
		wantCode    string
	}{
		{
			name: "stripe error with full detail",
			err: &stripe.Error{
				Msg:  "Your card was declined.",
				Type: stripe.ErrorTypeCard,
				Code: stripe.ErrorCodeCardDeclined,
			},
			wantMessage: "Your card was declined.",
			wantType:    "card_error",
			wantCode:    "card_declined",
		},
		{
			name:        "stripe error without code falls back",
			err:         &stripe.Error{Msg: "No such customer", Type: stripe.ErrorTypeInvalidRequest},
			wantMessage: "No such customer",
			wantType:    "invalid_request_error",
			wantCode:    UnknownErrorCode,
		},
		{
			name:        "plain error gets unknown defaults",
			err:         errors.New("connection reset by peer"),
			wantMessage: "connection reset by peer",
			wantType:    UnknownErrorType,
			wantCode:    UnknownErrorCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapProviderError(tt.err)
			require.Error(t, wrapped)

			pe := AsProviderError(wrapped)
			require.NotNil(t, pe)
			assert.Equal(t, tt.wantMessage, pe.Message)
			assert.Equal(t, tt.wantType, pe.Type)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.ErrorIs(t, wrapped, tt.err, "original error stays in the chain")
		})
	}
}

func TestWrapProviderError_Nil(t *testing.T) {
	assert.NoError(t, wrapProviderError(nil))
}

func TestAsProviderError_NonProviderError(t *testing.T) {
	assert.Nil(t, AsProviderError(errors.New("something else")))
	assert.Nil(t, AsProviderError(nil))
}

func TestStripeConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  StripeConfig
		wantErr error
	}{
		{
			name:   "valid test key",
			config: StripeConfig{APIKey: "sk_test_abc123"},
		},
		{
			name:   "webhook secret optional",
			config: StripeConfig{APIKey: "sk_live_abc123", WebhookSecret: ""},
		},
		{
			name:    "missing key",
			config:  StripeConfig{},
			wantErr: ErrInvalidAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStripeConfig_IsTestMode(t *testing.T) {
	assert.True(t, (&StripeConfig{APIKey: "sk_test_abc"}).IsTestMode())
	assert.False(t, (&StripeConfig{APIKey: "sk_live_abc"}).IsTestMode())
}
