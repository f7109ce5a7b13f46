package domain

// Subscription outcome statuses returned to the checkout frontend.
// The frontend completes 3-D Secure itself when it sees RequiresAction.
const (
	SubscriptionStatusSucceeded      = "succeeded"
	SubscriptionStatusRequiresAction = "requires_action"
	SubscriptionStatusFailed         = "failed"
)

// SubscriptionResult is the normalized outcome of one checkout attempt.
// It is returned to the caller and never persisted; the billing provider
// remains the system of record for everything it references.
type SubscriptionResult struct {
	// Status is one of the SubscriptionStatus constants above.
	Status string

	// SubscriptionID is the provider subscription id (sub_...). Set for
	// succeeded and requires_action outcomes.
	SubscriptionID string

	// CustomerID is the provider customer id (cus_...). Set on success.
	CustomerID string

	// ClientSecret lets the frontend run additional authentication
	// (3-D Secure). Set only when Status is requires_action.
	ClientSecret string

	// FailureReason describes a terminal payment failure, e.g.
	// "Payment status: requires_payment_method". Set only when Status is
	// failed. The caller may retry the whole checkout with a new card.
	FailureReason string
}
