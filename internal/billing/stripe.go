package billing

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeProvider implements Provider using the Stripe API.
//
// The API client is held by the provider instance rather than configured as
// a package-global key, so tests and alternate deployments can construct
// providers with different credentials.
type StripeProvider struct {
	api    *client.API
	config StripeConfig
}

// NewStripeProvider creates a new Stripe billing provider.
func NewStripeProvider(config StripeConfig) (*StripeProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	api := &client.API{}
	api.Init(config.APIKey, nil)

	return &StripeProvider{
		api:    api,
		config: config,
	}, nil
}

// GetCustomerByEmail searches for an existing customer by email.
// Stripe does not enforce email uniqueness; the first listed match wins.
// Returns nil, nil when no customer exists for the email.
func (s *StripeProvider) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := s.api.Customers.List(params)
	for it.Next() {
		return customerFromStripe(it.Customer()), nil
	}
	if err := it.Err(); err != nil {
		return nil, wrapProviderError(err)
	}

	return nil, nil
}

// CreateCustomer creates a Stripe customer. When params.PaymentMethodID is
// set, the payment method is attached and made the default invoice payment
// method in the same call.
func (s *StripeProvider) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error) {
	cp := &stripe.CustomerParams{
		Email: stripe.String(params.Email),
	}
	cp.Context = ctx

	if params.PaymentMethodID != "" {
		cp.PaymentMethod = stripe.String(params.PaymentMethodID)
		cp.InvoiceSettings = &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(params.PaymentMethodID),
		}
	}
	for k, v := range params.Metadata {
		cp.AddMetadata(k, v)
	}

	c, err := s.api.Customers.New(cp)
	if err != nil {
		return nil, wrapProviderError(err)
	}

	return customerFromStripe(c), nil
}

// AttachPaymentMethod attaches a payment method to a customer.
func (s *StripeProvider) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error {
	params := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	if _, err := s.api.PaymentMethods.Attach(paymentMethodID, params); err != nil {
		return wrapProviderError(err)
	}
	return nil
}

// SetDefaultPaymentMethod makes the payment method the customer's default
// for invoices.
func (s *StripeProvider) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx

	if _, err := s.api.Customers.Update(customerID, params); err != nil {
		return wrapProviderError(err)
	}
	return nil
}

// ListRecurringPrices lists existing prices with their product expanded.
// The iterator fetches subsequent pages automatically; limit only bounds
// the page size, so the full price catalog is walked.
func (s *StripeProvider) ListRecurringPrices(ctx context.Context, limit int64) ([]Price, error) {
	params := &stripe.PriceListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	params.AddExpand("data.product")

	var prices []Price
	it := s.api.Prices.List(params)
	for it.Next() {
		prices = append(prices, priceFromStripe(it.Price()))
	}
	if err := it.Err(); err != nil {
		return nil, wrapProviderError(err)
	}

	return prices, nil
}

// CreateProduct creates a Stripe product.
func (s *StripeProvider) CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error) {
	pp := &stripe.ProductParams{
		Name: stripe.String(params.Name),
	}
	pp.Context = ctx
	if params.Description != "" {
		pp.Description = stripe.String(params.Description)
	}

	p, err := s.api.Products.New(pp)
	if err != nil {
		return nil, wrapProviderError(err)
	}

	return &Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   time.Unix(p.Created, 0),
	}, nil
}

// CreateRecurringPrice creates a recurring Stripe price for a product.
func (s *StripeProvider) CreateRecurringPrice(ctx context.Context, params CreateRecurringPriceParams) (*Price, error) {
	pp := &stripe.PriceParams{
		Product:    stripe.String(params.ProductID),
		UnitAmount: stripe.Int64(params.UnitAmountCents),
		Currency:   stripe.String(params.Currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(params.Interval),
		},
	}
	pp.Context = ctx
	if params.Nickname != "" {
		pp.Nickname = stripe.String(params.Nickname)
	}

	p, err := s.api.Prices.New(pp)
	if err != nil {
		return nil, wrapProviderError(err)
	}

	price := priceFromStripe(p)
	return &price, nil
}

// CreateSubscription creates a subscription with payment behavior
// "default_incomplete" and the latest invoice's payment intent expanded,
// so the caller can classify the payment state from the response.
func (s *StripeProvider) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error) {
	sp := &stripe.SubscriptionParams{
		Customer: stripe.String(params.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(params.PriceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			PaymentMethodOptions: &stripe.SubscriptionPaymentSettingsPaymentMethodOptionsParams{
				Card: &stripe.SubscriptionPaymentSettingsPaymentMethodOptionsCardParams{
					RequestThreeDSecure: stripe.String("if_required"),
				},
			},
			PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
	}
	sp.Context = ctx
	sp.AddExpand("latest_invoice.payment_intent")
	for k, v := range params.Metadata {
		sp.AddMetadata(k, v)
	}

	sub, err := s.api.Subscriptions.New(sp)
	if err != nil {
		return nil, wrapProviderError(err)
	}

	result := &Subscription{
		ID:        sub.ID,
		Status:    string(sub.Status),
		CreatedAt: time.Unix(sub.Created, 0),
	}
	if sub.Customer != nil {
		result.CustomerID = sub.Customer.ID
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		result.PaymentIntent = paymentIntentFromStripe(sub.LatestInvoice.PaymentIntent)
	}

	return result, nil
}

// ConfirmPaymentIntent attempts to confirm a payment intent server-side.
func (s *StripeProvider) ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Confirm(paymentIntentID, params)
	if err != nil {
		return nil, wrapProviderError(err)
	}

	return paymentIntentFromStripe(pi), nil
}

// VerifyWebhookSignature verifies a Stripe webhook signature.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	if _, err := webhook.ConstructEvent(payload, signature, secret); err != nil {
		return ErrInvalidWebhookSignature
	}
	return nil
}

func customerFromStripe(c *stripe.Customer) *Customer {
	out := &Customer{
		ID:        c.ID,
		Email:     c.Email,
		CreatedAt: time.Unix(c.Created, 0),
	}
	if c.InvoiceSettings != nil && c.InvoiceSettings.DefaultPaymentMethod != nil {
		out.DefaultPaymentMethodID = c.InvoiceSettings.DefaultPaymentMethod.ID
	}
	return out
}

func priceFromStripe(p *stripe.Price) Price {
	out := Price{
		ID:              p.ID,
		UnitAmountCents: p.UnitAmount,
		Currency:        string(p.Currency),
		CreatedAt:       time.Unix(p.Created, 0),
	}
	if p.Product != nil {
		out.ProductID = p.Product.ID
		out.ProductName = p.Product.Name
	}
	if p.Recurring != nil {
		out.Interval = string(p.Recurring.Interval)
	}
	return out
}

func paymentIntentFromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}
}
