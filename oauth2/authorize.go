package oauth2

import (
	"net/url"

	"github.com/sellerlegend/go-sellerlegend/apierror"
)

// AuthorizeRequest holds the query parameters for an authorization request.
// The encoded URL is where the user's browser is redirected to approve
// access.
type AuthorizeRequest struct {
	// ClientID identifies the application requesting authorization.
	// Required: yes
	ClientID string

	// RedirectURI is where the provider sends the user back with the code.
	// Required: yes
	// Security: must exactly match a URI registered with the provider
	RedirectURI string

	// ResponseType is what the authorization endpoint should return.
	// Required: yes (defaults to "code" when unset)
	ResponseType ResponseType

	// Scope is the space-separated scope list ("*" for all client scopes).
	Scope string

	// State is the CSRF value round-tripped through the redirect.
	// Security: must be validated on the callback before exchanging the code
	State string

	// CodeChallenge and CodeChallengeMethod carry the optional PKCE
	// challenge derived from a locally held verifier.
	CodeChallenge       string
	CodeChallengeMethod CodeMethodType
}

// Values encodes the request as authorization endpoint query parameters.
func (r AuthorizeRequest) Values() url.Values {
	responseType := r.ResponseType
	if responseType == "" {
		responseType = CodeResponseType
	}
	v := url.Values{}
	v.Set("client_id", r.ClientID)
	v.Set("redirect_uri", r.RedirectURI)
	v.Set("response_type", string(responseType))
	if r.Scope != "" {
		v.Set("scope", r.Scope)
	}
	if r.State != "" {
		v.Set("state", r.State)
	}
	if r.CodeChallenge != "" {
		v.Set("code_challenge", r.CodeChallenge)
		v.Set("code_challenge_method", string(r.CodeChallengeMethod))
	}
	return v
}

// URL builds the full authorization URL for an instance base URL.
func (r AuthorizeRequest) URL(baseURL string) string {
	return Endpoint(baseURL).AuthURL + "?" + r.Values().Encode()
}

// ParseCallback extracts the authorization code and state from a callback
// URL. A provider error response on the redirect (error/error_description
// query parameters) is surfaced as an authentication error; a callback
// without a code is a validation error.
func ParseCallback(rawURL string) (code, state string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", apierror.Validationf("invalid callback URL: %v", err)
	}

	q := u.Query()
	if errCode := q.Get("error"); errCode != "" {
		message := q.Get("error_description")
		if message == "" {
			message = errCode
		}
		return "", "", apierror.New(apierror.KindAuthentication, message)
	}

	code = q.Get("code")
	if code == "" {
		return "", "", apierror.Validation("callback URL is missing the authorization code")
	}
	return code, q.Get("state"), nil
}
