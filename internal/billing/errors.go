package billing

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
)

var (
	// ErrInvalidAPIKey is returned when the provider API key is invalid or missing.
	ErrInvalidAPIKey = errors.New("billing: invalid or missing API key")

	// ErrCustomerNotFound is returned when a customer id does not exist.
	ErrCustomerNotFound = errors.New("billing: customer not found")

	// ErrPaymentIntentNotFound is returned when a payment intent does not exist.
	ErrPaymentIntentNotFound = errors.New("billing: payment intent not found")

	// ErrInvalidWebhookSignature is returned when webhook signature verification fails.
	ErrInvalidWebhookSignature = errors.New("billing: invalid webhook signature")
)

// Fallbacks when the provider error carries no structured type/code.
const (
	UnknownErrorType = "unknown_error"
	UnknownErrorCode = "unknown_code"
)

// ProviderError wraps a payment provider API failure with whatever
// structured detail the provider supplied. Type and Code are never empty;
// they fall back to UnknownErrorType/UnknownErrorCode.
type ProviderError struct {
	Message       string // Human-readable error message
	Type          string // Provider error classification (e.g. "card_error")
	Code          string // Provider error code (e.g. "card_declined")
	OriginalError error  // Original error from the provider SDK
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("billing: %s (type: %s, code: %s)", e.Message, e.Type, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.OriginalError
}

// wrapProviderError converts a Stripe SDK error into a ProviderError,
// extracting message/type/code when the SDK error is structured.
func wrapProviderError(err error) error {
	if err == nil {
		return nil
	}

	pe := &ProviderError{
		Message:       err.Error(),
		Type:          UnknownErrorType,
		Code:          UnknownErrorCode,
		OriginalError: err,
	}

	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		if sErr.Msg != "" {
			pe.Message = sErr.Msg
		}
		if sErr.Type != "" {
			pe.Type = string(sErr.Type)
		}
		if sErr.Code != "" {
			pe.Code = string(sErr.Code)
		}
	}

	return pe
}

// AsProviderError extracts a ProviderError from an error chain.
// Returns nil if err does not wrap one.
func AsProviderError(err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}
