package webhook

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modehaus/membership/internal/billing"
)

func eventPayload(eventType string) string {
	return fmt.Sprintf(`{
		"id": "evt_test_1",
		"type": %q,
		"data": {
			"object": {
				"id": "sub_test_1",
				"status": "active"
			}
		}
	}`, eventType)
}

func postWebhook(h *StripeHandler, payload, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

func TestHandleWebhook_RejectsNonPost(t *testing.T) {
	h := NewStripeHandler(billing.NewMockProvider(), StripeWebhookConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/webhook", nil)
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleWebhook_AcknowledgesHandledEventTypes(t *testing.T) {
	eventTypes := []string{
		"customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted",
		"invoice.payment_succeeded",
		"invoice.payment_failed",
	}

	for _, eventType := range eventTypes {
		t.Run(eventType, func(t *testing.T) {
			h := NewStripeHandler(billing.NewMockProvider(), StripeWebhookConfig{}, nil)

			rec := postWebhook(h, eventPayload(eventType), "")

			assert.Equal(t, http.StatusOK, rec.Code)
			var body map[string]bool
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.True(t, body["received"])
		})
	}
}

func TestHandleWebhook_AcknowledgesUnhandledEventTypes(t *testing.T) {
	h := NewStripeHandler(billing.NewMockProvider(), StripeWebhookConfig{}, nil)

	rec := postWebhook(h, eventPayload("charge.refunded"), "")

	// Unknown types are logged and acknowledged so Stripe stops retrying.
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleWebhook_VerifiesSignatureWhenSecretConfigured(t *testing.T) {
	mock := billing.NewMockProvider()
	mock.VerifyWebhookSignatureFunc = func(payload []byte, signature, secret string) error {
		if signature != "t=1,v1=good" {
			return billing.ErrInvalidWebhookSignature
		}
		return nil
	}
	h := NewStripeHandler(mock, StripeWebhookConfig{WebhookSecret: "whsec_test"}, nil)

	t.Run("valid signature accepted", func(t *testing.T) {
		rec := postWebhook(h, eventPayload("customer.subscription.created"), "t=1,v1=good")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid signature rejected", func(t *testing.T) {
		rec := postWebhook(h, eventPayload("customer.subscription.created"), "t=1,v1=forged")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Invalid signature", body["error"])
	})

	t.Run("missing signature rejected", func(t *testing.T) {
		rec := postWebhook(h, eventPayload("customer.subscription.created"), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleWebhook_SkipsVerificationWithoutSecret(t *testing.T) {
	mock := billing.NewMockProvider()
	h := NewStripeHandler(mock, StripeWebhookConfig{}, nil)

	rec := postWebhook(h, eventPayload("customer.subscription.created"), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, mock.Calls("VerifyWebhookSignature"))
}

func TestHandleWebhook_RejectsMalformedPayload(t *testing.T) {
	h := NewStripeHandler(billing.NewMockProvider(), StripeWebhookConfig{}, nil)

	rec := postWebhook(h, `{"type": `, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
