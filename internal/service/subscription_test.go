package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modehaus/membership/internal/billing"
	"github.com/modehaus/membership/internal/domain"
)

func newCheckoutService(mock *billing.MockProvider) SubscriptionService {
	return NewSubscriptionService(mock, NewPriceResolver(mock, testCatalog(), nil), nil)
}

func validParams() CreateSubscriptionParams {
	return CreateSubscriptionParams{
		PaymentMethodID: "pm_card_visa",
		PlanKey:         "price_basic",
		Email:           "shopper@example.com",
	}
}

func TestCreateSubscription_ValidatesBeforeProviderCalls(t *testing.T) {
	tests := []struct {
		name       string
		params     CreateSubscriptionParams
		wantFields []string
	}{
		{
			name:       "missing payment method",
			params:     CreateSubscriptionParams{PlanKey: "price_basic", Email: "a@b.com"},
			wantFields: []string{"paymentMethodId"},
		},
		{
			name:       "missing plan",
			params:     CreateSubscriptionParams{PaymentMethodID: "pm_1", Email: "a@b.com"},
			wantFields: []string{"priceId"},
		},
		{
			name:       "missing email",
			params:     CreateSubscriptionParams{PaymentMethodID: "pm_1", PlanKey: "price_basic"},
			wantFields: []string{"email"},
		},
		{
			name:       "everything missing",
			params:     CreateSubscriptionParams{},
			wantFields: []string{"paymentMethodId", "priceId", "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := billing.NewMockProvider()
			svc := newCheckoutService(mock)

			_, err := svc.CreateSubscription(context.Background(), tt.params)

			require.Error(t, err)
			require.True(t, domain.IsValidationError(err))
			fields := domain.GetValidationFields(err)
			require.Len(t, fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
			assert.Empty(t, mock.CallLog, "invalid input must not reach the provider")
		})
	}
}

func TestCreateSubscription_ExistingCustomerGetsPaymentMethodUpdated(t *testing.T) {
	mock := billing.NewMockProvider()
	mock.Customers["cus_existing"] = &billing.Customer{
		ID:    "cus_existing",
		Email: "shopper@example.com",
	}
	svc := newCheckoutService(mock)

	result, err := svc.CreateSubscription(context.Background(), validParams())

	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusSucceeded, result.Status)
	assert.Equal(t, "cus_existing", result.CustomerID)

	assert.Equal(t, 0, mock.Calls("CreateCustomer"))
	assert.Equal(t, 1, mock.Calls("AttachPaymentMethod"))
	assert.Equal(t, 1, mock.Calls("SetDefaultPaymentMethod"))
	assert.Equal(t, "pm_card_visa", mock.Customers["cus_existing"].DefaultPaymentMethodID)
}

func TestCreateSubscription_NewCustomerCreatedWithPaymentMethod(t *testing.T) {
	mock := billing.NewMockProvider()
	svc := newCheckoutService(mock)

	result, err := svc.CreateSubscription(context.Background(), validParams())

	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusSucceeded, result.Status)
	assert.NotEmpty(t, result.CustomerID)
	assert.NotEmpty(t, result.SubscriptionID)

	// A single create carries the payment method; no separate attach/update.
	assert.Equal(t, 1, mock.Calls("CreateCustomer"))
	assert.Equal(t, 0, mock.Calls("AttachPaymentMethod"))
	assert.Equal(t, 0, mock.Calls("SetDefaultPaymentMethod"))
}

func TestCreateSubscription_ClassifiesPaymentState(t *testing.T) {
	tests := []struct {
		name             string
		intentStatus     string
		confirmedStatus  string // empty means confirmation must not happen
		wantStatus       string
		wantClientSecret bool
		wantReason       string
	}{
		{
			name:         "succeeded immediately",
			intentStatus: "succeeded",
			wantStatus:   domain.SubscriptionStatusSucceeded,
		},
		{
			name:             "requires_action passes the client secret through",
			intentStatus:     "requires_action",
			wantStatus:       domain.SubscriptionStatusRequiresAction,
			wantClientSecret: true,
		},
		{
			name:             "legacy requires_source_action treated as requires_action",
			intentStatus:     "requires_source_action",
			wantStatus:       domain.SubscriptionStatusRequiresAction,
			wantClientSecret: true,
		},
		{
			name:            "requires_confirmation confirmed to success",
			intentStatus:    "requires_confirmation",
			confirmedStatus: "succeeded",
			wantStatus:      domain.SubscriptionStatusSucceeded,
		},
		{
			name:             "requires_confirmation confirmed into 3DS challenge",
			intentStatus:     "requires_confirmation",
			confirmedStatus:  "requires_action",
			wantStatus:       domain.SubscriptionStatusRequiresAction,
			wantClientSecret: true,
		},
		{
			name:            "requires_confirmation confirmed into terminal failure",
			intentStatus:    "requires_confirmation",
			confirmedStatus: "requires_payment_method",
			wantStatus:      domain.SubscriptionStatusFailed,
			wantReason:      "Payment status: requires_payment_method",
		},
		{
			name:         "card rejected",
			intentStatus: "requires_payment_method",
			wantStatus:   domain.SubscriptionStatusFailed,
			wantReason:   "Payment status: requires_payment_method",
		},
		{
			name:         "async processing is terminal for this attempt",
			intentStatus: "processing",
			wantStatus:   domain.SubscriptionStatusFailed,
			wantReason:   "Payment status: processing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := billing.NewMockProvider()
			mock.CreateSubscriptionFunc = func(ctx context.Context, params billing.CreateSubscriptionParams) (*billing.Subscription, error) {
				return &billing.Subscription{
					ID:         "sub_test",
					CustomerID: params.CustomerID,
					Status:     "incomplete",
					PaymentIntent: &billing.PaymentIntent{
						ID:           "pi_test",
						ClientSecret: "pi_test_secret",
						Status:       tt.intentStatus,
					},
				}, nil
			}
			mock.ConfirmPaymentIntentFunc = func(ctx context.Context, paymentIntentID string) (*billing.PaymentIntent, error) {
				return &billing.PaymentIntent{
					ID:           paymentIntentID,
					ClientSecret: "pi_test_secret",
					Status:       tt.confirmedStatus,
				}, nil
			}
			svc := newCheckoutService(mock)

			result, err := svc.CreateSubscription(context.Background(), validParams())

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, "sub_test", result.SubscriptionID)

			if tt.wantClientSecret {
				assert.Equal(t, "pi_test_secret", result.ClientSecret)
			} else {
				assert.Empty(t, result.ClientSecret)
			}

			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, result.FailureReason)
			} else {
				assert.Empty(t, result.FailureReason)
			}

			wantConfirms := 0
			if tt.confirmedStatus != "" {
				wantConfirms = 1
			}
			assert.Equal(t, wantConfirms, mock.Calls("ConfirmPaymentIntent"))
		})
	}
}

func TestCreateSubscription_MissingPaymentIntentIsInternalError(t *testing.T) {
	mock := billing.NewMockProvider()
	mock.CreateSubscriptionFunc = func(ctx context.Context, params billing.CreateSubscriptionParams) (*billing.Subscription, error) {
		return &billing.Subscription{ID: "sub_bare", CustomerID: params.CustomerID}, nil
	}
	svc := newCheckoutService(mock)

	_, err := svc.CreateSubscription(context.Background(), validParams())

	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.EINTERNAL))
}

func TestCreateSubscription_ProviderErrorsPropagate(t *testing.T) {
	mock := billing.NewMockProvider()
	mock.CreateSubscriptionFunc = func(ctx context.Context, params billing.CreateSubscriptionParams) (*billing.Subscription, error) {
		return nil, &billing.ProviderError{
			Message: "Your card was declined.",
			Type:    "card_error",
			Code:    "card_declined",
		}
	}
	svc := newCheckoutService(mock)

	_, err := svc.CreateSubscription(context.Background(), validParams())

	require.Error(t, err)
	pe := billing.AsProviderError(err)
	require.NotNil(t, pe)
	assert.Equal(t, "card_declined", pe.Code)
	assert.Equal(t, 0, mock.Calls("ConfirmPaymentIntent"))
}

func TestCreateSubscription_AttachFailureStopsCheckout(t *testing.T) {
	mock := billing.NewMockProvider()
	mock.Customers["cus_existing"] = &billing.Customer{
		ID:    "cus_existing",
		Email: "shopper@example.com",
	}
	mock.AttachPaymentMethodFunc = func(ctx context.Context, paymentMethodID, customerID string) error {
		return &billing.ProviderError{
			Message: "No such PaymentMethod",
			Type:    "invalid_request_error",
			Code:    "resource_missing",
		}
	}
	svc := newCheckoutService(mock)

	_, err := svc.CreateSubscription(context.Background(), validParams())

	require.Error(t, err)
	assert.Equal(t, 0, mock.Calls("SetDefaultPaymentMethod"))
	assert.Equal(t, 0, mock.Calls("CreateSubscription"))
}
