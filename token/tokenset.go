// Package token models the credential state issued by the provider: an
// immutable TokenSet per successful grant exchange, with its expiry derived
// from the local clock at issuance.
package token

import (
	"time"

	xoauth2 "golang.org/x/oauth2"

	"github.com/sellerlegend/go-sellerlegend/oauth2"
)

const (
	// BearerTokenType is the only token type the provider issues.
	BearerTokenType = "Bearer"

	// DefaultValidityMargin is subtracted from the expiry when checking
	// validity, so a token is reported invalid shortly before the provider
	// would reject it mid-request.
	DefaultValidityMargin = 30 * time.Second
)

// TokenSet is the credential state produced by one grant exchange, refresh or
// direct injection. A TokenSet is never mutated in place: a refresh produces
// a new one and the old set's refresh token is invalid server-side the
// instant the refresh succeeds. Fields are exported for caller-side JSON
// persistence and must be treated as read-only.
type TokenSet struct {
	// AccessToken is the bearer credential attached to API requests.
	AccessToken string `json:"access_token"`

	// RefreshToken is present only for authorization-code-derived sets.
	// Client-credentials sets never carry one. Single-use.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the provider-reported lifetime in seconds, kept for
	// diagnostics. ExpiresAt is the authoritative deadline.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// IssuedAt is the local time the set was created.
	IssuedAt time.Time `json:"issued_at,omitempty"`

	// ExpiresAt is IssuedAt + ExpiresIn, computed at issuance from the local
	// clock. Zero means the expiry is unknown (directly injected token
	// without lifetime information) and validity checks report valid until a
	// request fails with an auth error.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// FromResponse builds a TokenSet from a token endpoint response, recomputing
// the absolute expiry from issuedAt so a stale clock is never trusted.
func FromResponse(res oauth2.TokenResponse, issuedAt time.Time) *TokenSet {
	tokenType := res.TokenType
	if tokenType == "" {
		tokenType = BearerTokenType
	}
	ts := &TokenSet{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    tokenType,
		ExpiresIn:    res.ExpiresIn,
		IssuedAt:     issuedAt,
	}
	if res.ExpiresIn > 0 {
		ts.ExpiresAt = issuedAt.Add(time.Duration(res.ExpiresIn) * time.Second)
	}
	return ts
}

// Direct builds a TokenSet around an externally obtained access token. A zero
// expiresAt means the expiry is unknown.
func Direct(accessToken, refreshToken string, expiresAt, issuedAt time.Time) *TokenSet {
	ts := &TokenSet{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    BearerTokenType,
		IssuedAt:     issuedAt,
		ExpiresAt:    expiresAt,
	}
	if !expiresAt.IsZero() && expiresAt.After(issuedAt) {
		ts.ExpiresIn = int64(expiresAt.Sub(issuedAt) / time.Second)
	}
	return ts
}

// Valid reports whether the set is usable at now, with the default margin.
// Pure and local: no network call, no refresh.
func (t *TokenSet) Valid(now time.Time) bool {
	return t.ValidWithin(now, DefaultValidityMargin)
}

// ValidWithin reports whether the set remains usable at now with at least
// margin to spare. A set without expiry information is assumed valid.
func (t *TokenSet) ValidWithin(now time.Time, margin time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(t.ExpiresAt.Add(-margin))
}

// Refreshable reports whether the set carries a refresh token.
func (t *TokenSet) Refreshable() bool {
	return t != nil && t.RefreshToken != ""
}

// TTL returns the time remaining until expiry, zero when expired, and -1
// when the expiry is unknown.
func (t *TokenSet) TTL(now time.Time) time.Duration {
	if t == nil || t.ExpiresAt.IsZero() {
		return -1
	}
	remaining := t.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// WithoutRefreshToken returns a copy with the refresh token stripped, used
// for client-credentials issuance where the provider must not hand back a
// refreshable set.
func (t *TokenSet) WithoutRefreshToken() *TokenSet {
	if t == nil || t.RefreshToken == "" {
		return t
	}
	clone := *t
	clone.RefreshToken = ""
	return &clone
}

// OAuth2Token converts the set to a golang.org/x/oauth2 token for callers
// integrating with that ecosystem.
func (t *TokenSet) OAuth2Token() *xoauth2.Token {
	if t == nil {
		return nil
	}
	return &xoauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.ExpiresAt,
	}
}

// FromOAuth2Token builds a TokenSet from a golang.org/x/oauth2 token.
func FromOAuth2Token(tok *xoauth2.Token, issuedAt time.Time) *TokenSet {
	if tok == nil {
		return nil
	}
	return Direct(tok.AccessToken, tok.RefreshToken, tok.Expiry, issuedAt)
}
