package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing.
// Simulates checkout flows without calling the Stripe API.
type MockProvider struct {
	// GetCustomerByEmailFunc allows customizing customer lookup behavior
	GetCustomerByEmailFunc func(ctx context.Context, email string) (*Customer, error)

	// CreateCustomerFunc allows customizing customer creation behavior
	CreateCustomerFunc func(ctx context.Context, params CreateCustomerParams) (*Customer, error)

	// AttachPaymentMethodFunc allows customizing attach behavior
	AttachPaymentMethodFunc func(ctx context.Context, paymentMethodID, customerID string) error

	// SetDefaultPaymentMethodFunc allows customizing default-method updates
	SetDefaultPaymentMethodFunc func(ctx context.Context, customerID, paymentMethodID string) error

	// ListRecurringPricesFunc allows customizing price listing behavior
	ListRecurringPricesFunc func(ctx context.Context, limit int64) ([]Price, error)

	// CreateProductFunc allows customizing product creation behavior
	CreateProductFunc func(ctx context.Context, params CreateProductParams) (*Product, error)

	// CreateRecurringPriceFunc allows customizing price creation behavior
	CreateRecurringPriceFunc func(ctx context.Context, params CreateRecurringPriceParams) (*Price, error)

	// CreateSubscriptionFunc allows customizing subscription creation behavior
	CreateSubscriptionFunc func(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error)

	// ConfirmPaymentIntentFunc allows customizing confirmation behavior
	ConfirmPaymentIntentFunc func(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)

	// VerifyWebhookSignatureFunc allows customizing webhook verification behavior
	VerifyWebhookSignatureFunc func(payload []byte, signature string, secret string) error

	// Customers stores created customers for retrieval
	Customers map[string]*Customer

	// Products stores created products for retrieval
	Products map[string]*Product

	// Prices stores created prices; ListRecurringPrices returns them in
	// creation order by default
	Prices []Price

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Customers: make(map[string]*Customer),
		Products:  make(map[string]*Product),
		CallLog:   []string{},
	}
}

// Calls returns the number of logged calls whose name matches method.
func (m *MockProvider) Calls(method string) int {
	n := 0
	for _, c := range m.CallLog {
		if len(c) >= len(method) && c[:len(method)] == method {
			n++
		}
	}
	return n
}

// GetCustomerByEmail searches stored customers by email.
func (m *MockProvider) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetCustomerByEmail(%s)", email))

	if m.GetCustomerByEmailFunc != nil {
		return m.GetCustomerByEmailFunc(ctx, email)
	}

	for _, customer := range m.Customers {
		if customer.Email == email {
			return customer, nil
		}
	}
	return nil, nil // Not found
}

// CreateCustomer creates a mock customer.
func (m *MockProvider) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCustomer(%s)", params.Email))

	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, params)
	}

	customer := &Customer{
		ID:                     "cus_" + uuid.New().String()[:8],
		Email:                  params.Email,
		DefaultPaymentMethodID: params.PaymentMethodID,
		CreatedAt:              time.Now(),
	}

	m.Customers[customer.ID] = customer
	return customer, nil
}

// AttachPaymentMethod attaches a payment method to a mock customer.
func (m *MockProvider) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error {
	m.CallLog = append(m.CallLog, fmt.Sprintf("AttachPaymentMethod(%s, %s)", paymentMethodID, customerID))

	if m.AttachPaymentMethodFunc != nil {
		return m.AttachPaymentMethodFunc(ctx, paymentMethodID, customerID)
	}

	if _, exists := m.Customers[customerID]; !exists {
		return ErrCustomerNotFound
	}
	return nil
}

// SetDefaultPaymentMethod updates a mock customer's default payment method.
func (m *MockProvider) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	m.CallLog = append(m.CallLog, fmt.Sprintf("SetDefaultPaymentMethod(%s, %s)", customerID, paymentMethodID))

	if m.SetDefaultPaymentMethodFunc != nil {
		return m.SetDefaultPaymentMethodFunc(ctx, customerID, paymentMethodID)
	}

	customer, exists := m.Customers[customerID]
	if !exists {
		return ErrCustomerNotFound
	}
	customer.DefaultPaymentMethodID = paymentMethodID
	return nil
}

// ListRecurringPrices returns stored prices in creation order.
func (m *MockProvider) ListRecurringPrices(ctx context.Context, limit int64) ([]Price, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("ListRecurringPrices(%d)", limit))

	if m.ListRecurringPricesFunc != nil {
		return m.ListRecurringPricesFunc(ctx, limit)
	}

	if int64(len(m.Prices)) > limit {
		return m.Prices[:limit], nil
	}
	return m.Prices, nil
}

// CreateProduct creates a mock product.
func (m *MockProvider) CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateProduct(%s)", params.Name))

	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, params)
	}

	product := &Product{
		ID:          "prod_" + uuid.New().String()[:8],
		Name:        params.Name,
		Description: params.Description,
		CreatedAt:   time.Now(),
	}

	m.Products[product.ID] = product
	return product, nil
}

// CreateRecurringPrice creates a mock price and adds it to the listable set.
func (m *MockProvider) CreateRecurringPrice(ctx context.Context, params CreateRecurringPriceParams) (*Price, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateRecurringPrice(%s, %d)", params.ProductID, params.UnitAmountCents))

	if m.CreateRecurringPriceFunc != nil {
		return m.CreateRecurringPriceFunc(ctx, params)
	}

	price := Price{
		ID:              "price_" + uuid.New().String()[:8],
		ProductID:       params.ProductID,
		UnitAmountCents: params.UnitAmountCents,
		Currency:        params.Currency,
		Interval:        params.Interval,
		CreatedAt:       time.Now(),
	}
	if product, ok := m.Products[params.ProductID]; ok {
		price.ProductName = product.Name
	}

	m.Prices = append(m.Prices, price)
	return &price, nil
}

// CreateSubscription creates a mock subscription with a succeeded payment
// intent unless overridden.
func (m *MockProvider) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateSubscription(%s, %s)", params.CustomerID, params.PriceID))

	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, params)
	}

	return &Subscription{
		ID:         "sub_" + uuid.New().String()[:8],
		CustomerID: params.CustomerID,
		Status:     "incomplete",
		PaymentIntent: &PaymentIntent{
			ID:           "pi_" + uuid.New().String()[:8],
			ClientSecret: "pi_secret_" + uuid.New().String()[:8],
			Status:       "succeeded",
		},
		CreatedAt: time.Now(),
	}, nil
}

// ConfirmPaymentIntent confirms a mock payment intent as succeeded unless
// overridden.
func (m *MockProvider) ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("ConfirmPaymentIntent(%s)", paymentIntentID))

	if m.ConfirmPaymentIntentFunc != nil {
		return m.ConfirmPaymentIntentFunc(ctx, paymentIntentID)
	}

	return &PaymentIntent{
		ID:     paymentIntentID,
		Status: "succeeded",
	}, nil
}

// VerifyWebhookSignature verifies a mock webhook signature.
func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	m.CallLog = append(m.CallLog, "VerifyWebhookSignature")

	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature, secret)
	}

	return nil
}
