package apierror

import (
	"encoding/json"
	"net/http"
)

// defaultMessage mirrors the provider SDK's fallback when a response body
// carries no usable message field.
const defaultMessage = "Unknown error"

// Classify maps an HTTP status code to an error kind. It is the single source
// of status-code truth: the transport layer and the resource facade both
// consult it and nothing re-derives the table.
//
// 401/403 map to authentication, 404 to not-found, 422 (and any other 4xx,
// which are validation-class) to validation, 429 to rate-limit, 5xx to
// server. Statuses outside those ranges are treated as server-side protocol
// violations.
func Classify(statusCode int, body []byte) Kind {
	switch {
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return KindAuthentication
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode == http.StatusTooManyRequests:
		return KindRateLimit
	case statusCode >= 500 && statusCode < 600:
		return KindServer
	case statusCode >= 400 && statusCode < 500:
		return KindValidation
	default:
		return KindServer
	}
}

// Retryable reports whether a status is transient: 429 and 5xx are retried
// with backoff, everything else propagates immediately.
func Retryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= 500 && statusCode < 600)
}

// FromResponse builds the typed error for a non-2xx provider response,
// keeping the body verbatim for diagnostics.
func FromResponse(statusCode int, body []byte) *Error {
	return &Error{
		Kind:       Classify(statusCode, body),
		StatusCode: statusCode,
		Message:    MessageFromBody(body),
		Body:       body,
	}
}

// MessageFromBody extracts a human-readable message from a provider error
// body. The platform returns {"message": ...} on API errors and
// {"error", "error_description"} on token-endpoint errors; either shape is
// accepted, with the SDK's historical fallback otherwise.
func MessageFromBody(body []byte) string {
	if len(body) == 0 {
		return defaultMessage
	}
	var payload struct {
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return defaultMessage
	}
	switch {
	case payload.Message != "":
		return payload.Message
	case payload.ErrorDescription != "":
		return payload.ErrorDescription
	case payload.ErrorCode != "":
		return payload.ErrorCode
	default:
		return defaultMessage
	}
}
