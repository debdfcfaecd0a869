// Package auth owns the credential state machine: the three OAuth2 grant
// flows, explicit token refresh, and pure local validity checks. No operation
// here refreshes implicitly; callers detect expiry via IsValid and drive
// Refresh themselves so they can persist the new token set atomically.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sellerlegend/go-sellerlegend/apierror"
	"github.com/sellerlegend/go-sellerlegend/oauth2"
	"github.com/sellerlegend/go-sellerlegend/token"
)

// Status is the manager's credential state, derived lazily from the held
// TokenSet and the clock. Deriving it never performs I/O.
type Status string

const (
	// StatusUnauthenticated: no token set is held.
	StatusUnauthenticated Status = "unauthenticated"

	// StatusAuthenticated: the held token set is valid right now.
	StatusAuthenticated Status = "authenticated"

	// StatusExpired: a token set is held but past its expiry. Refresh or a
	// fresh grant exchange is required.
	StatusExpired Status = "expired"
)

const (
	pendingAuthTimeout = 15 * time.Minute
	defaultHTTPTimeout = 30 * time.Second
)

// Config carries the OAuth2 client registration shared by all grant flows.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string // provider instance root, e.g. https://app.sellerlegend.com
	RedirectURI  string // default redirect for the authorization code flow
}

func (c Config) check() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return apierror.Configuration("client_id and client_secret are required")
	}
	if c.BaseURL == "" {
		return apierror.Configuration("base URL is required")
	}
	return nil
}

// Manager produces, holds and validates bearer credentials. It keeps at most
// one TokenSet; a successful exchange or refresh replaces it atomically.
// Safe for concurrent use: reads take a shared lock and concurrent Refresh
// calls coalesce into a single exchange.
type Manager struct {
	config     Config
	store      PendingStore
	httpClient *http.Client
	logger     zerolog.Logger
	nowTime    func() time.Time // nowTime function (injectable for testing)
	usePKCE    bool
	scopes     []string

	lock         sync.RWMutex
	current      *token.TokenSet
	refreshGroup singleflight.Group

	ownedStore *PendingCache // set when the manager created its own store
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for token endpoint calls.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpClient = client
	}
}

// WithPendingStore replaces the default in-memory tracker for outstanding
// authorization requests. The caller owns the store's lifecycle.
func WithPendingStore(store PendingStore) ManagerOption {
	return func(m *Manager) {
		m.store = store
	}
}

// WithScopes sets the default scopes requested by grant flows.
func WithScopes(scopes ...string) ManagerOption {
	return func(m *Manager) {
		m.scopes = scopes
	}
}

// WithPKCE enables the S256 code challenge on authorization URL issuance and
// sends the matching verifier on code exchange.
func WithPKCE() ManagerOption {
	return func(m *Manager) {
		m.usePKCE = true
	}
}

// NewManager initializes a Manager. Optional configuration can be provided
// via options (e.g., WithNowTime for testing). Credential completeness is
// checked by the grant operations, not here, so a partially configured
// manager can still serve direct-token injection.
func NewManager(config Config, options ...ManagerOption) *Manager {
	m := &Manager{
		config:     config,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     zerolog.Nop(),
		nowTime:    time.Now,
		scopes:     []string{oauth2.DefaultScope},
	}

	// Apply optional configuration
	for _, opt := range options {
		opt(m)
	}

	if m.store == nil {
		m.ownedStore = NewPendingCache(pendingAuthTimeout)
		m.store = m.ownedStore
	}

	return m
}

// Close stops the manager's default tracker. An injected PendingStore stays
// with its owner.
func (m *Manager) Close() {
	if m.ownedStore != nil {
		m.ownedStore.Close()
	}
}

// BuildAuthorizationURL generates a fresh CSRF state, registers it as a
// pending authorization, and returns the provider authorize URL together
// with the state. A non-empty redirectURI overrides the configured one;
// scopes override the configured scopes when present.
func (m *Manager) BuildAuthorizationURL(redirectURI string, scopes ...string) (string, string, error) {
	if err := m.config.check(); err != nil {
		return "", "", err
	}
	if redirectURI == "" {
		redirectURI = m.config.RedirectURI
	}
	if redirectURI == "" {
		return "", "", apierror.Configuration("redirect URI is required for the authorization code flow")
	}

	state, err := oauth2.GenerateState()
	if err != nil {
		return "", "", errors.Wrap(err, "[BuildAuthorizationURL] generating state")
	}

	pending := PendingAuthorization{
		State:       state,
		RedirectURI: redirectURI,
		Scope:       joinScopes(scopes, m.scopes),
		CreatedAt:   m.nowTime(),
	}
	authorizeRequest := oauth2.AuthorizeRequest{
		ClientID:     m.config.ClientID,
		RedirectURI:  redirectURI,
		ResponseType: oauth2.CodeResponseType,
		Scope:        pending.Scope,
		State:        state,
	}

	if m.usePKCE {
		verifier, err := oauth2.GenerateCodeVerifier()
		if err != nil {
			return "", "", errors.Wrap(err, "[BuildAuthorizationURL] generating code verifier")
		}
		pending.CodeVerifier = verifier
		authorizeRequest.CodeChallenge = oauth2.ChallengeS256(verifier)
		authorizeRequest.CodeChallengeMethod = oauth2.CodeMethodTypeS256
	}

	if err := m.store.Save(pending); err != nil {
		return "", "", errors.Wrap(err, "[BuildAuthorizationURL] saving pending authorization")
	}

	m.logger.Debug().Str("redirect_uri", redirectURI).Msg("authorization URL issued")
	return authorizeRequest.URL(m.config.BaseURL), state, nil
}

// ExchangeCode validates state against the pending-authorization tracker,
// consumes it, and exchanges the authorization code for a TokenSet. The
// state entry is consumed whether or not the exchange succeeds, so a replay
// with the same state always fails.
func (m *Manager) ExchangeCode(ctx context.Context, code, state string) (*token.TokenSet, error) {
	if err := m.config.check(); err != nil {
		return nil, err
	}

	pending, ok := m.store.Consume(state)
	if !ok {
		return nil, apierror.Authentication(apierror.AuthCodeCSRFMismatch, "state does not match a pending authorization request")
	}

	ts, err := m.requestToken(ctx, oauth2.TokenRequest{
		GrantType:    oauth2.AuthorizationCodeGrant,
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		Code:         code,
		RedirectURI:  pending.RedirectURI,
		CodeVerifier: pending.CodeVerifier,
	})
	if err != nil {
		return nil, err
	}

	m.setCurrent(ts)
	m.logger.Info().Time("expires_at", ts.ExpiresAt).Msg("authorization code exchanged")
	return ts, nil
}

// ExchangeRedirect parses a full provider redirect URL and exchanges the
// embedded code, a convenience over oauth2.ParseCallback plus ExchangeCode.
func (m *Manager) ExchangeRedirect(ctx context.Context, redirectURL string) (*token.TokenSet, error) {
	code, state, err := oauth2.ParseCallback(redirectURL)
	if err != nil {
		return nil, err
	}
	return m.ExchangeCode(ctx, code, state)
}

// ClientCredentials performs the client-credentials exchange. The returned
// TokenSet never carries a refresh token: on expiry a new exchange is
// required. The provider limits these tokens to service-status endpoints;
// that boundary is enforced server-side, not here.
func (m *Manager) ClientCredentials(ctx context.Context, scopes ...string) (*token.TokenSet, error) {
	if err := m.config.check(); err != nil {
		return nil, err
	}

	ts, err := m.requestToken(ctx, oauth2.TokenRequest{
		GrantType:    oauth2.ClientCredentialsGrant,
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		Scope:        joinScopes(scopes, m.scopes),
	})
	if err != nil {
		return nil, err
	}

	ts = ts.WithoutRefreshToken()
	m.setCurrent(ts)
	m.logger.Info().Time("expires_at", ts.ExpiresAt).Msg("client credentials granted")
	return ts, nil
}

// UseDirectToken injects an externally obtained token without any network
// call. A zero expiresAt means the expiry is unknown; when the access token
// is a JWT the expiry is recovered from its exp claim, otherwise validity
// checks report valid until a request fails with an authentication error.
func (m *Manager) UseDirectToken(accessToken, refreshToken string, expiresAt time.Time) *token.TokenSet {
	if expiresAt.IsZero() {
		if claimExpiry, err := token.ExpiryFromJWT(accessToken); err == nil {
			expiresAt = claimExpiry
		}
	}

	ts := token.Direct(accessToken, refreshToken, expiresAt, m.nowTime())
	m.setCurrent(ts)
	return ts
}

// Refresh exchanges the current refresh token for a new TokenSet and
// replaces the held one. Refresh tokens are single-use: the presented token
// is invalid server-side the instant the exchange succeeds, so callers that
// persist tokens must store the returned set before issuing more requests.
// Concurrent Refresh calls coalesce into one exchange and share its result,
// which keeps two goroutines from burning the same refresh token.
func (m *Manager) Refresh(ctx context.Context) (*token.TokenSet, error) {
	result, err, _ := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*token.TokenSet), nil
}

func (m *Manager) refresh(ctx context.Context) (*token.TokenSet, error) {
	if err := m.config.check(); err != nil {
		return nil, err
	}

	current := m.Current()
	if !current.Refreshable() {
		if !current.Valid(m.nowTime()) {
			// Held set is both expired and unrefreshable. Drop it so Status
			// reports unauthenticated and the caller re-runs a grant flow.
			m.clearCurrent()
		}
		return nil, apierror.Authentication(apierror.AuthCodeTokenExpiredNoRefresh, "no refresh token held, a new grant exchange is required")
	}

	ts, err := m.requestToken(ctx, oauth2.TokenRequest{
		GrantType:    oauth2.RefreshTokenGrant,
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		RefreshToken: current.RefreshToken,
	})
	if err != nil {
		if apierror.AuthCodeOf(err) == apierror.AuthCodeInvalidGrant {
			// The presented refresh token was already used, revoked or
			// expired. The held set is dead either way.
			m.clearCurrent()
		}
		return nil, err
	}

	m.setCurrent(ts)
	m.logger.Info().Time("expires_at", ts.ExpiresAt).Msg("token refreshed")
	return ts, nil
}

// Current returns the held TokenSet, nil when unauthenticated. The returned
// set is immutable; a refresh replaces it rather than mutating it.
func (m *Manager) Current() *token.TokenSet {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.current
}

// IsValid reports whether the held token is usable right now. Pure and
// local: no network call and no implicit refresh. Callers branch on this
// explicitly and drive Refresh themselves.
func (m *Manager) IsValid() bool {
	return m.Current().Valid(m.nowTime())
}

// Status derives the credential state from the held set and the clock.
func (m *Manager) Status() Status {
	current := m.Current()
	switch {
	case current == nil || current.AccessToken == "":
		return StatusUnauthenticated
	case current.Valid(m.nowTime()):
		return StatusAuthenticated
	default:
		return StatusExpired
	}
}

// BearerToken returns the access token to attach to a request, failing fast
// without any network call when the held set is missing or expired.
func (m *Manager) BearerToken() (string, error) {
	current := m.Current()
	if current == nil || current.AccessToken == "" {
		return "", apierror.New(apierror.KindAuthentication, "no access token held, authenticate first")
	}
	if !current.Valid(m.nowTime()) {
		if current.Refreshable() {
			return "", apierror.Authentication(apierror.AuthCodeTokenExpired, "access token expired, refresh it first")
		}
		return "", apierror.Authentication(apierror.AuthCodeTokenExpiredNoRefresh, "access token expired and no refresh token held, a new grant exchange is required")
	}
	return current.AccessToken, nil
}

func (m *Manager) setCurrent(ts *token.TokenSet) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.current = ts
}

func (m *Manager) clearCurrent() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.current = nil
}

func (m *Manager) requestToken(ctx context.Context, tokenRequest oauth2.TokenRequest) (*token.TokenSet, error) {
	endpoint := oauth2.Endpoint(m.config.BaseURL).TokenURL

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(tokenRequest.Values().Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "[requestToken] building request")
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "application/json")

	response, err := m.httpClient.Do(request)
	if err != nil {
		return nil, apierror.Network(err, "token endpoint unreachable")
	}
	defer func() { _ = response.Body.Close() }()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, apierror.Network(err, "reading token endpoint response")
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, tokenEndpointError(response.StatusCode, responseBody, string(tokenRequest.GrantType))
	}

	var tokenResponse oauth2.TokenResponse
	if err := json.Unmarshal(responseBody, &tokenResponse); err != nil {
		return nil, &apierror.Error{
			Kind:       apierror.KindServer,
			StatusCode: response.StatusCode,
			Message:    "malformed token endpoint response",
			Body:       responseBody,
			Err:        err,
		}
	}
	if tokenResponse.AccessToken == "" {
		return nil, &apierror.Error{
			Kind:       apierror.KindServer,
			StatusCode: response.StatusCode,
			Message:    "token endpoint response carries no access token",
			Body:       responseBody,
		}
	}

	return token.FromResponse(tokenResponse, m.nowTime()), nil
}

// tokenEndpointError maps a token endpoint rejection onto the taxonomy. The
// provider reports OAuth2 error codes in the body; invalid_grant means the
// presented code or refresh token is expired, revoked or already used.
func tokenEndpointError(statusCode int, body []byte, grant string) error {
	var errorResponse oauth2.ErrorResponse
	_ = json.Unmarshal(body, &errorResponse)

	message := errorResponse.Description
	if message == "" {
		message = apierror.MessageFromBody(body)
	}

	apiErr := &apierror.Error{
		Kind:       apierror.KindAuthentication,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("%s grant rejected: %s", grant, message),
		Body:       body,
	}
	if errorResponse.Code == "invalid_grant" {
		apiErr.AuthCode = apierror.AuthCodeInvalidGrant
	}
	if statusCode >= 500 {
		apiErr.Kind = apierror.KindServer
	}
	return apiErr
}

func joinScopes(requested, configured []string) string {
	scopes := requested
	if len(scopes) == 0 {
		scopes = configured
	}
	if len(scopes) == 0 {
		return oauth2.DefaultScope
	}
	return strings.Join(scopes, " ")
}
