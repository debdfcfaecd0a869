// Package apierror defines the typed error taxonomy shared by the auth and
// transport layers. Every failure surfaced to a caller is an *Error carrying
// the kind, the originating HTTP status and the raw provider body where one
// was available, so callers can decide between retry, re-authentication and
// surfacing to an end user.
package apierror

import (
	"errors"
	"fmt"
	"time"
)

// Kind partitions failures by how a caller should react to them.
type Kind string

const (
	// KindAuthentication covers rejected credentials, expired or revoked
	// tokens and CSRF state mismatches. Never retried with the same token.
	KindAuthentication Kind = "authentication"

	// KindValidation covers malformed request parameters, both those caught
	// locally before a request is built and those rejected by the provider
	// with a 422. Carries the provider body for field-level diagnostics.
	KindValidation Kind = "validation"

	// KindNotFound covers 404 responses.
	KindNotFound Kind = "not_found"

	// KindRateLimit covers 429 responses. Retried with backoff before
	// surfacing.
	KindRateLimit Kind = "rate_limit"

	// KindServer covers 5xx responses and protocol violations such as a 2xx
	// response whose JSON body does not parse. Retried with backoff where the
	// status allows.
	KindServer Kind = "server"

	// KindNetwork covers connect failures and timeouts after retries are
	// exhausted.
	KindNetwork Kind = "network"

	// KindConfiguration covers missing credentials for a requested flow,
	// detected before any network call.
	KindConfiguration Kind = "configuration"
)

// AuthCode narrows an authentication error to its specific cause. The values
// match the provider SDK's error codes so callers can branch on them.
type AuthCode string

const (
	// AuthCodeCSRFMismatch: the state returned by the authorization redirect
	// does not match a registered, unconsumed entry.
	AuthCodeCSRFMismatch AuthCode = "CSRF_MISMATCH"

	// AuthCodeInvalidGrant: the provider rejected an authorization code or a
	// refresh token (already used, revoked or expired).
	AuthCodeInvalidGrant AuthCode = "INVALID_GRANT"

	// AuthCodeTokenExpired: the held access token is past its expiry.
	AuthCodeTokenExpired AuthCode = "TOKEN_EXPIRED"

	// AuthCodeTokenExpiredNoRefresh: the token is expired and no refresh
	// token is held, so a full grant flow is required.
	AuthCodeTokenExpiredNoRefresh AuthCode = "TOKEN_EXPIRED_NO_REFRESH"
)

// Kind sentinels for errors.Is checks.
var (
	AuthenticationErr = errors.New("authentication failed")
	ValidationErr     = errors.New("validation failed")
	NotFoundErr       = errors.New("resource not found")
	RateLimitErr      = errors.New("rate limit exceeded")
	ServerErr         = errors.New("server error")
	NetworkErr        = errors.New("network error")
	ConfigurationErr  = errors.New("configuration error")
)

var kindSentinels = map[Kind]error{
	KindAuthentication: AuthenticationErr,
	KindValidation:     ValidationErr,
	KindNotFound:       NotFoundErr,
	KindRateLimit:      RateLimitErr,
	KindServer:         ServerErr,
	KindNetwork:        NetworkErr,
	KindConfiguration:  ConfigurationErr,
}

// Error is the taxonomy's concrete error type.
type Error struct {
	Kind       Kind
	AuthCode   AuthCode // set only on authentication errors with a specific cause
	StatusCode int      // zero when no HTTP response was involved
	Message    string
	Body       []byte        // verbatim provider response body, where one was read
	RetryAfter time.Duration // parsed Retry-After hint on rate limit responses, zero when absent
	Err        error         // underlying cause, set for network failures
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels, so errors.Is(err, apierror.RateLimitErr)
// works across wrapping.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Authentication builds an authentication error with a specific cause code.
func Authentication(code AuthCode, message string) *Error {
	return &Error{Kind: KindAuthentication, AuthCode: code, Message: message}
}

// Validation builds a local validation error (no HTTP response involved).
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Validationf builds a local validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Configuration builds a configuration error (missing credentials for a
// requested flow).
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// Network wraps a transport-level failure (connect error, timeout).
func Network(err error, message string) *Error {
	return &Error{Kind: KindNetwork, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or the empty
// Kind when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AuthCodeOf returns the auth code of the first *Error in err's chain, or the
// empty AuthCode when there is none.
func AuthCodeOf(err error) AuthCode {
	var e *Error
	if errors.As(err, &e) {
		return e.AuthCode
	}
	return ""
}
