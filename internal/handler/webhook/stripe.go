// Package webhook receives billing provider event notifications.
package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v79"

	"github.com/modehaus/membership/internal/billing"
	"github.com/modehaus/membership/internal/handler"
	"github.com/modehaus/membership/internal/middleware"
)

// Webhook payloads are small; cap reads well above any real event size.
const maxPayloadBytes = 1 << 20

// StripeHandler handles Stripe webhook events.
type StripeHandler struct {
	provider billing.Provider
	config   StripeWebhookConfig
	logger   *slog.Logger
}

// StripeWebhookConfig contains configuration for Stripe webhook handling.
type StripeWebhookConfig struct {
	// WebhookSecret is the endpoint signing secret from the Stripe
	// dashboard. When empty, signature verification is skipped; events
	// with unverifiable signatures are rejected otherwise.
	WebhookSecret string
}

// NewStripeHandler creates a new Stripe webhook handler.
func NewStripeHandler(provider billing.Provider, config StripeWebhookConfig, logger *slog.Logger) *StripeHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &StripeHandler{
		provider: provider,
		config:   config,
		logger:   logger.With("handler", "webhook"),
	}
}

// HandleWebhook processes incoming Stripe webhook events.
//
// Stripe CLI testing:
//
//	stripe listen --forward-to localhost:3000/api/webhook
//	stripe trigger customer.subscription.created
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		handler.MethodNotAllowedResponse(w)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Error("failed to read webhook payload", "error", err)
		handler.JSONResponse(w, http.StatusBadRequest, map[string]string{
			"error": "Error reading request body",
		})
		return
	}

	if h.config.WebhookSecret != "" {
		signature := r.Header.Get("Stripe-Signature")
		if err := h.provider.VerifyWebhookSignature(payload, signature, h.config.WebhookSecret); err != nil {
			h.logger.Warn("webhook signature verification failed", "error", err)
			handler.JSONResponse(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid signature",
			})
			return
		}
	} else {
		h.logger.Warn("webhook secret not configured, skipping signature verification")
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("failed to parse webhook event", "error", err)
		handler.JSONResponse(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid webhook body",
		})
		return
	}

	h.logger.Info("webhook event received", "type", event.Type, "event_id", event.ID, "request_id", middleware.GetRequestID(r.Context()))

	switch event.Type {
	case "customer.subscription.created":
		h.handleSubscriptionCreated(event)

	case "customer.subscription.updated":
		h.handleSubscriptionUpdated(event)

	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(event)

	case "invoice.payment_succeeded":
		h.handleInvoicePaymentSucceeded(event)

	case "invoice.payment_failed":
		h.handleInvoicePaymentFailed(event)

	default:
		h.logger.Info("unhandled event type", "type", event.Type)
	}

	// Always acknowledge receipt. Stripe retries anything else.
	handler.JSONResponse(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *StripeHandler) handleSubscriptionCreated(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("failed to parse subscription from event", "event_id", event.ID, "error", err)
		return
	}

	h.logger.Info("subscription created",
		"subscription_id", sub.ID,
		"customer_id", customerID(sub.Customer),
		"status", sub.Status)

	// TODO: send the welcome email once the mailer integration lands.
}

func (h *StripeHandler) handleSubscriptionUpdated(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("failed to parse subscription from event", "event_id", event.ID, "error", err)
		return
	}

	h.logger.Info("subscription updated",
		"subscription_id", sub.ID,
		"status", sub.Status,
		"cancel_at_period_end", sub.CancelAtPeriodEnd)
}

func (h *StripeHandler) handleSubscriptionDeleted(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("failed to parse subscription from event", "event_id", event.ID, "error", err)
		return
	}

	h.logger.Info("subscription cancelled",
		"subscription_id", sub.ID,
		"customer_id", customerID(sub.Customer))
}

func (h *StripeHandler) handleInvoicePaymentSucceeded(event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("failed to parse invoice from event", "event_id", event.ID, "error", err)
		return
	}

	h.logger.Info("invoice payment succeeded",
		"invoice_id", invoice.ID,
		"amount_paid", invoice.AmountPaid,
		"currency", invoice.Currency)
}

func (h *StripeHandler) handleInvoicePaymentFailed(event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("failed to parse invoice from event", "event_id", event.ID, "error", err)
		return
	}

	h.logger.Warn("invoice payment failed",
		"invoice_id", invoice.ID,
		"customer_id", customerID(invoice.Customer),
		"attempt_count", invoice.AttemptCount)
}

// customerID tolerates events where the customer is an unexpanded ID.
func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}
