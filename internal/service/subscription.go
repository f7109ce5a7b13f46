package service

import (
	"context"

	"github.com/modehaus/membership/internal/domain"
)

// SubscriptionService orchestrates subscription checkout against the
// billing provider.
type SubscriptionService interface {
	// CreateSubscription runs one checkout attempt end to end: customer
	// find-or-create, payment method attach, price resolution, subscription
	// creation and payment-state classification.
	//
	// The returned result is terminal for this call: succeeded,
	// requires_action (the caller finishes authentication with the client
	// secret) or failed (the caller may retry with a new payment method).
	// Provider-side records created before a later step fails are not
	// rolled back; the whole call is safe to re-run.
	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*domain.SubscriptionResult, error)
}

// CreateSubscriptionParams contains the checkout inputs collected by the
// frontend. PaymentMethodID is the opaque single-use credential produced by
// the card widget; raw card data never reaches this service.
type CreateSubscriptionParams struct {
	PaymentMethodID string
	PlanKey         string
	Email           string
}
