package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/modehaus/membership/internal/domain"
	"github.com/modehaus/membership/internal/middleware"
	"github.com/modehaus/membership/internal/service"
)

// CreateSubscriptionRequest is the checkout request body.
// Field names match what the embedded Stripe Elements frontend sends.
type CreateSubscriptionRequest struct {
	PaymentMethodID string `json:"paymentMethodId" validate:"required"`
	PriceID         string `json:"priceId" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
}

// SubscriptionHandler handles checkout requests.
type SubscriptionHandler struct {
	service  service.SubscriptionService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSubscriptionHandler creates a new checkout handler.
func NewSubscriptionHandler(svc service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	// Report field errors under their JSON names, not Go field names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &SubscriptionHandler{
		service:  svc,
		validate: v,
		logger:   logger.With("handler", "subscription"),
	}
}

// CreateSubscription handles POST /api/create-subscription.
//
// Responses:
//   - 200 {"status": "succeeded", "subscription_id", "customer_id"}
//   - 200 {"status": "requires_action", "client_secret", "subscription_id"}
//   - 400 payment failure or invalid input
//   - 405 non-POST methods
//   - 500 provider errors, with the provider's message, type, and code
func (h *SubscriptionHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedResponse(w)
		return
	}

	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "subscription.create", "Invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		ValidationErrorResponse(w, r, h.toValidationError(err))
		return
	}

	h.logger.Info("checkout requested", "plan", req.PriceID, "request_id", middleware.GetRequestID(r.Context()))

	result, err := h.service.CreateSubscription(r.Context(), service.CreateSubscriptionParams{
		PaymentMethodID: req.PaymentMethodID,
		PlanKey:         req.PriceID,
		Email:           req.Email,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	switch result.Status {
	case domain.SubscriptionStatusSucceeded:
		JSONResponse(w, http.StatusOK, map[string]string{
			"status":          string(result.Status),
			"subscription_id": result.SubscriptionID,
			"customer_id":     result.CustomerID,
		})

	case domain.SubscriptionStatusRequiresAction:
		JSONResponse(w, http.StatusOK, map[string]string{
			"status":          string(result.Status),
			"client_secret":   result.ClientSecret,
			"subscription_id": result.SubscriptionID,
		})

	default:
		h.logger.Warn("payment failed", "subscription_id", result.SubscriptionID, "reason", result.FailureReason)
		JSONResponse(w, http.StatusBadRequest, map[string]string{
			"error":   "Payment failed. Please try again.",
			"details": result.FailureReason,
		})
	}
}

// toValidationError converts validator errors into the domain's field error
// shape so all validation failures look the same to clients.
func (h *SubscriptionHandler) toValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.Errorf(domain.EINVALID, "subscription.create", "Invalid request body")
	}

	var out error
	for _, fe := range verrs {
		switch fe.Tag() {
		case "email":
			out = domain.AddFieldError(out, fe.Field(), "must be a valid email address")
		default:
			out = domain.AddFieldError(out, fe.Field(), "this field is required")
		}
	}
	return out
}
