package oauth2

import "net/url"

// TokenRequest holds parameters for an OAuth2 token request. It is
// form-encoded and posted to the token endpoint; which fields are required
// depends on the grant type.
type TokenRequest struct {
	// GrantType selects the exchange being performed.
	// Required: yes, for all requests
	GrantType GrantType

	// ClientID identifies the OAuth2 client making the request.
	// Required: yes, for all grant types
	ClientID string

	// ClientSecret is the confidential client credential.
	// Required: yes (the provider issues confidential clients only)
	// Security: never logged
	ClientSecret string

	// Code is the authorization code received on the redirect.
	// Required: authorization_code grant only
	// Usage: exchanged once for tokens, then becomes invalid
	Code string

	// RedirectURI must match the one sent on the authorization request.
	// Required: authorization_code grant only
	RedirectURI string

	// CodeVerifier is the PKCE verifier matching the code_challenge sent on
	// the authorization request.
	// Required: only when the authorization request carried a challenge
	CodeVerifier string

	// RefreshToken is the single-use token being exchanged.
	// Required: refresh_token grant only
	RefreshToken string

	// Scope is the space-separated scope list.
	// Required: no (defaults provider-side; "*" requests all client scopes)
	Scope string
}

// Values form-encodes the request, omitting unset optional fields.
func (r TokenRequest) Values() url.Values {
	v := url.Values{}
	v.Set("grant_type", string(r.GrantType))
	v.Set("client_id", r.ClientID)
	v.Set("client_secret", r.ClientSecret)
	if r.Code != "" {
		v.Set("code", r.Code)
	}
	if r.RedirectURI != "" {
		v.Set("redirect_uri", r.RedirectURI)
	}
	if r.CodeVerifier != "" {
		v.Set("code_verifier", r.CodeVerifier)
	}
	if r.RefreshToken != "" {
		v.Set("refresh_token", r.RefreshToken)
	}
	if r.Scope != "" {
		v.Set("scope", r.Scope)
	}
	return v
}
