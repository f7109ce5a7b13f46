package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/modehaus/membership/internal/billing"
	"github.com/modehaus/membership/internal/domain"
)

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.ENOTFOUND:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// JSONResponse writes v as a JSON response with the given status code.
func JSONResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// errorDetails mirrors the payment provider's error shape so the frontend
// can surface it. Type and Code always carry a value.
type errorDetails struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// ErrorResponse writes err as a JSON error response, choosing the status
// code from the error's type. Internal error details are never exposed.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	// Field-level validation failures get their own shape.
	if domain.IsValidationError(err) {
		ValidationErrorResponse(w, r, err)
		return
	}

	// Provider failures include the provider's message, type, and code so
	// the client can tell a declined card from a misconfigured key.
	if pe := billing.AsProviderError(err); pe != nil {
		slog.Error("provider error", "type", pe.Type, "code", pe.Code, "message", pe.Message)
		JSONResponse(w, http.StatusInternalServerError, map[string]interface{}{
			"error": pe.Message,
			"details": errorDetails{
				Message: pe.Message,
				Type:    pe.Type,
				Code:    pe.Code,
			},
		})
		return
	}

	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	if status >= http.StatusInternalServerError {
		slog.Error("internal error", "error", err)
	}

	JSONResponse(w, status, map[string]string{
		"error": domain.ErrorMessage(err),
	})
}

// ValidationErrorResponse writes a 400 response enumerating every invalid
// field. Falls back to ErrorResponse for non-validation errors.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	fields := domain.GetValidationFields(err)
	if fields == nil {
		ErrorResponse(w, r, err)
		return
	}

	JSONResponse(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "Missing required fields: paymentMethodId, priceId, or email",
		"fields": fields,
	})
}

// MethodNotAllowedResponse rejects requests with an unsupported method.
func MethodNotAllowedResponse(w http.ResponseWriter) {
	JSONResponse(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "Method not allowed",
	})
}
