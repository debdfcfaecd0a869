// Package oauth2 holds the wire-level OAuth2 types and constants for the
// SellerLegend provider: grant types, token endpoint request/response shapes
// and the provider endpoint locations (Laravel Passport layout).
package oauth2

import (
	"strings"

	xoauth2 "golang.org/x/oauth2"
)

// Provider endpoint paths, relative to the instance base URL.
const (
	// AuthorizePath is where the user's browser is sent to begin the
	// authorization code flow.
	// Example: https://app.sellerlegend.com/oauth/authorize?response_type=code&client_id=...
	AuthorizePath = "/oauth/authorize"

	// TokenPath is the token endpoint all three grant types post to.
	TokenPath = "/oauth/token"
)

// Endpoint returns the provider's OAuth2 endpoints for a given instance base
// URL, in the golang.org/x/oauth2 shape so callers integrating with that
// ecosystem can reuse it directly.
func Endpoint(baseURL string) xoauth2.Endpoint {
	base := strings.TrimSuffix(baseURL, "/")
	return xoauth2.Endpoint{
		AuthURL:  base + AuthorizePath,
		TokenURL: base + TokenPath,
	}
}

// ResponseType represents the OAuth 2.0 response type requested from the
// authorization endpoint.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow, the only flow
	// the provider supports for user-context access.
	// Example: /oauth/authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// CodeMethodType represents the PKCE (Proof Key for Code Exchange) challenge
// method sent alongside an authorization request.
type CodeMethodType string

const (
	// CodeMethodTypeS256 indicates SHA-256 hashing of the code verifier.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	// Security: the recommended method; prevents code interception
	CodeMethodTypeS256 CodeMethodType = "S256"

	// CodeMethodTypeNone (labeled "plain") sends the verifier unhashed.
	// Security: weaker than S256, only protects against passive attacks
	CodeMethodTypeNone CodeMethodType = "plain"
)

// GrantType represents the OAuth 2.0 grant type posted to the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, client_secret, redirect_uri
	// Returns: access_token and refresh_token
	AuthorizationCodeGrant GrantType = "authorization_code"

	// ClientCredentialsGrant authenticates the application itself, with no
	// user context.
	// Token request includes: client_id, client_secret, scope
	// Returns: access_token only. Client-credentials tokens are not
	// refreshable; a new exchange is required on expiry
	ClientCredentialsGrant GrantType = "client_credentials"

	// RefreshTokenGrant exchanges a refresh token for a new token pair.
	// Token request includes: refresh_token, client_id, client_secret
	// Returns: a new access_token and a rotated refresh_token. The presented
	// refresh token is invalidated server-side the instant the exchange
	// succeeds
	//
	// Refresh tokens are single-use; persist the new pair before discarding
	// the old one
	RefreshTokenGrant GrantType = "refresh_token"
)

// DefaultScope is the scope requested when the caller supplies none. The
// provider interprets "*" as all scopes granted to the client.
const DefaultScope = "*"
