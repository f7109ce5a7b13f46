package billing

import (
	"context"
	"time"
)

// Provider defines the interface for the payment provider.
// Implementations can use Stripe, PayPal, Square, etc. The provider is the
// sole persistent store for customers, products, prices and subscriptions;
// nothing here is mirrored locally.
type Provider interface {
	// GetCustomerByEmail searches for an existing customer by email.
	// Email is not unique on the provider side; the first match in the
	// provider's returned order wins. Returns nil, nil if no customer found
	// (not an error).
	GetCustomerByEmail(ctx context.Context, email string) (*Customer, error)

	// CreateCustomer creates a customer record, optionally with a payment
	// method pre-attached as the default invoice payment method.
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error)

	// AttachPaymentMethod attaches a collected payment method to a customer.
	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error

	// SetDefaultPaymentMethod makes the payment method the customer's
	// default for invoices. Must already be attached.
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error

	// ListRecurringPrices lists existing prices with their product expanded,
	// up to limit. Used by price resolution to find a matching price by
	// content instead of creating duplicates.
	ListRecurringPrices(ctx context.Context, limit int64) ([]Price, error)

	// CreateProduct creates a billing provider product.
	CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error)

	// CreateRecurringPrice creates a recurring price attached to a product.
	CreateRecurringPrice(ctx context.Context, params CreateRecurringPriceParams) (*Price, error)

	// CreateSubscription creates a subscription with payment behavior
	// "default_incomplete": the subscription record exists even when the
	// first payment is not finalized, and the latest invoice's payment
	// intent is expanded in the response so the caller can classify it.
	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error)

	// ConfirmPaymentIntent attempts to confirm a payment intent server-side
	// and returns the intent with its post-confirmation status.
	ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)

	// VerifyWebhookSignature verifies that a webhook request is authentic.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// CreateCustomerParams contains parameters for creating a customer.
type CreateCustomerParams struct {
	Email string

	// PaymentMethodID, when set, is attached during creation and becomes
	// the default invoice payment method in the same provider call.
	PaymentMethodID string

	Metadata map[string]string
}

// Customer represents a billing customer.
type Customer struct {
	ID                     string
	Email                  string
	DefaultPaymentMethodID string
	CreatedAt              time.Time
}

// CreateProductParams contains parameters for creating a product.
type CreateProductParams struct {
	// Name is the display name price resolution matches on.
	Name string

	// Description is optional product description.
	Description string
}

// Product represents a billing provider product.
type Product struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// CreateRecurringPriceParams contains parameters for creating a recurring price.
type CreateRecurringPriceParams struct {
	// ProductID is the provider product id (prod_...) to attach the price to.
	ProductID string

	// UnitAmountCents is the amount per billing period in the smallest
	// currency unit.
	UnitAmountCents int64

	// Currency code (ISO 4217 lowercase), e.g. "usd".
	Currency string

	// Interval is the billing frequency, e.g. "month".
	Interval string

	// Nickname is an optional label shown in the provider dashboard.
	Nickname string
}

// Price represents a recurring price owned by the provider.
type Price struct {
	ID        string
	ProductID string

	// ProductName is populated when the price was listed with its product
	// expanded. Price resolution matches on it.
	ProductName string

	UnitAmountCents int64
	Currency        string
	Interval        string
	CreatedAt       time.Time
}

// CreateSubscriptionParams contains parameters for creating a subscription.
type CreateSubscriptionParams struct {
	CustomerID string // cus_...
	PriceID    string // price_...
	Metadata   map[string]string
}

// PaymentIntent carries the payment state of a subscription's first invoice.
type PaymentIntent struct {
	// ID is the provider payment intent id (pi_...).
	ID string

	// ClientSecret is used by the frontend to complete authentication.
	ClientSecret string

	// Status: requires_confirmation, requires_action, succeeded,
	// requires_payment_method, processing, etc.
	Status string
}

// Subscription represents a created subscription and the payment intent of
// its latest invoice.
type Subscription struct {
	ID         string
	CustomerID string
	Status     string // "incomplete", "active", etc.

	// PaymentIntent is the latest invoice's payment intent, expanded at
	// creation. Nil when the invoice has no payment intent.
	PaymentIntent *PaymentIntent

	CreatedAt time.Time
}
