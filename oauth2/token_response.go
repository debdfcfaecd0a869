package oauth2

// TokenResponse represents the response from the provider's token endpoint.
// This is the standard OAuth2 token endpoint response format as defined in
// RFC 6749, returned for all grant types.
type TokenResponse struct {
	// TokenType indicates how to use the access token (always "Bearer").
	// Usage: "Authorization: Bearer <token>" header on every API request
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 31536000 (Passport defaults to long-lived tokens)
	// Usage: combined with the local clock at issuance to derive an absolute
	// expiry; the response value itself is never stored as a deadline
	ExpiresIn int64 `json:"expires_in"`

	// AccessToken is the JWT presented to access protected resources.
	// Example: "eyJ0eXAiOiJKV1QiLCJhbGciOiJSUzI1NiJ9..."
	AccessToken string `json:"access_token"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Example: "def50200a7e5b8c9f7..."
	// Only present: authorization code grant (client-credentials responses
	// carry no refresh token)
	// Security: single-use; rotates on each refresh exchange
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope indicates the granted permissions when the provider narrows the
	// requested set. Space-separated.
	Scope string `json:"scope,omitempty"`
}

// ErrorResponse is the token endpoint's error payload (RFC 6749 §5.2). The
// provider additionally mirrors the description into a "message" field on
// some routes.
type ErrorResponse struct {
	// Code is the RFC 6749 error code.
	// Example: "invalid_grant", "invalid_client", "invalid_request"
	Code string `json:"error"`

	// Description is the human-readable explanation.
	// Example: "The refresh token is invalid."
	Description string `json:"error_description,omitempty"`

	// Message is the provider's API-style mirror of the description.
	Message string `json:"message,omitempty"`
}
