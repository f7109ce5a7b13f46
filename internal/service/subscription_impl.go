package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modehaus/membership/internal/billing"
	"github.com/modehaus/membership/internal/domain"
)

// Payment intent statuses the orchestrator acts on. Any other status is a
// terminal failure for this checkout attempt.
const (
	paymentStatusRequiresConfirmation = "requires_confirmation"
	paymentStatusRequiresAction       = "requires_action"
	paymentStatusRequiresSourceAction = "requires_source_action" // legacy API alias
	paymentStatusSucceeded            = "succeeded"
)

// subscriptionService implements SubscriptionService.
type subscriptionService struct {
	provider billing.Provider
	prices   *PriceResolver
	logger   *slog.Logger
}

// NewSubscriptionService creates a SubscriptionService backed by the given
// provider and price resolver.
func NewSubscriptionService(provider billing.Provider, prices *PriceResolver, logger *slog.Logger) SubscriptionService {
	if logger == nil {
		logger = slog.Default()
	}

	return &subscriptionService{
		provider: provider,
		prices:   prices,
		logger:   logger.With("service", "subscription"),
	}
}

// CreateSubscription runs the checkout flow. Steps fail independently and
// short-circuit; nothing is retried here and provider-side records created
// by earlier steps stay behind when a later step fails.
func (s *subscriptionService) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*domain.SubscriptionResult, error) {
	if err := validateCreateParams(params); err != nil {
		return nil, err
	}

	customer, err := s.resolveCustomer(ctx, params.Email, params.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	priceID, err := s.prices.Resolve(ctx, params.PlanKey)
	if err != nil {
		return nil, err
	}

	sub, err := s.provider.CreateSubscription(ctx, billing.CreateSubscriptionParams{
		CustomerID: customer.ID,
		PriceID:    priceID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription created",
		"subscription_id", sub.ID,
		"customer_id", customer.ID,
		"plan", params.PlanKey)

	return s.classifyPayment(ctx, sub, customer)
}

// validateCreateParams checks all inputs are present before any provider
// call, naming every missing field.
func validateCreateParams(params CreateSubscriptionParams) error {
	var err error
	if params.PaymentMethodID == "" {
		err = domain.AddFieldError(err, "paymentMethodId", "payment method is required")
	}
	if params.PlanKey == "" {
		err = domain.AddFieldError(err, "priceId", "plan identifier is required")
	}
	if params.Email == "" {
		err = domain.AddFieldError(err, "email", "email is required")
	}
	return err
}

// resolveCustomer finds the customer for email or creates one, ending with
// the payment method attached as the default for invoices either way.
// Email is not a unique key on the provider side; the first match wins.
func (s *subscriptionService) resolveCustomer(ctx context.Context, email, paymentMethodID string) (*billing.Customer, error) {
	customer, err := s.provider.GetCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if customer == nil {
		customer, err = s.provider.CreateCustomer(ctx, billing.CreateCustomerParams{
			Email:           email,
			PaymentMethodID: paymentMethodID,
		})
		if err != nil {
			return nil, err
		}

		s.logger.Info("customer created", "customer_id", customer.ID)
		return customer, nil
	}

	if err := s.provider.AttachPaymentMethod(ctx, paymentMethodID, customer.ID); err != nil {
		return nil, err
	}
	if err := s.provider.SetDefaultPaymentMethod(ctx, customer.ID, paymentMethodID); err != nil {
		return nil, err
	}

	s.logger.Debug("reusing existing customer", "customer_id", customer.ID)
	return customer, nil
}

// classifyPayment turns the subscription's payment intent state into the
// result contract. A requires_confirmation intent is confirmed server-side
// first and the confirmed status classified instead.
func (s *subscriptionService) classifyPayment(ctx context.Context, sub *billing.Subscription, customer *billing.Customer) (*domain.SubscriptionResult, error) {
	intent := sub.PaymentIntent
	if intent == nil {
		return nil, domain.Errorf(domain.EINTERNAL, "subscription.create",
			"subscription %s has no payment intent on its latest invoice", sub.ID)
	}

	if intent.Status == paymentStatusRequiresConfirmation {
		confirmed, err := s.provider.ConfirmPaymentIntent(ctx, intent.ID)
		if err != nil {
			return nil, err
		}

		s.logger.Info("payment intent confirmed",
			"payment_intent_id", intent.ID,
			"status", confirmed.Status)
		intent = confirmed
	}

	switch intent.Status {
	case paymentStatusRequiresAction, paymentStatusRequiresSourceAction:
		return &domain.SubscriptionResult{
			Status:         domain.SubscriptionStatusRequiresAction,
			SubscriptionID: sub.ID,
			ClientSecret:   intent.ClientSecret,
		}, nil

	case paymentStatusSucceeded:
		return &domain.SubscriptionResult{
			Status:         domain.SubscriptionStatusSucceeded,
			SubscriptionID: sub.ID,
			CustomerID:     customer.ID,
		}, nil

	default:
		// requires_payment_method, processing, canceled, ... — terminal for
		// this attempt. The caller may retry with a new payment method.
		s.logger.Warn("payment not completed",
			"subscription_id", sub.ID,
			"payment_status", intent.Status)

		return &domain.SubscriptionResult{
			Status:         domain.SubscriptionStatusFailed,
			SubscriptionID: sub.ID,
			FailureReason:  fmt.Sprintf("Payment status: %s", intent.Status),
		}, nil
	}
}
