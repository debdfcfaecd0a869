package auth_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/sellerlegend/go-sellerlegend/apierror"
	"github.com/sellerlegend/go-sellerlegend/auth"
	fakependingstore "github.com/sellerlegend/go-sellerlegend/auth/storefakes"
	"github.com/sellerlegend/go-sellerlegend/oauth2"
	"github.com/sellerlegend/go-sellerlegend/token"
)

const (
	testClientID     = "test-client-1"
	testClientSecret = "test-secret-1"
	testRedirectURI  = "http://localhost:3000/callback"
	testAuthCode     = "valid-auth-code"
)

// fakeProvider is a minimal Passport-style token endpoint. It mints
// sequentially numbered tokens, treats authorization codes and refresh
// tokens as single-use, and counts every request it serves.
type fakeProvider struct {
	server *httptest.Server
	delay  time.Duration

	lock        sync.Mutex
	requests    int
	byGrant     map[string]int
	lastForm    url.Values
	issued      int
	usedRefresh map[string]bool
	validCodes  map[string]bool
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	provider := &fakeProvider{
		byGrant:     make(map[string]int),
		usedRefresh: make(map[string]bool),
		validCodes:  map[string]bool{testAuthCode: true},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(oauth2.TokenPath, provider.handleToken)
	provider.server = httptest.NewServer(mux)
	t.Cleanup(provider.server.Close)
	return provider
}

func (p *fakeProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	_ = r.ParseForm()
	grant := r.PostFormValue("grant_type")
	p.requests++
	p.byGrant[grant]++
	p.lastForm = r.PostForm

	if r.PostFormValue("client_id") != testClientID || r.PostFormValue("client_secret") != testClientSecret {
		p.writeError(w, http.StatusUnauthorized, "invalid_client", "Client authentication failed")
		return
	}

	switch grant {
	case "authorization_code":
		code := r.PostFormValue("code")
		if !p.validCodes[code] {
			p.writeError(w, http.StatusBadRequest, "invalid_grant", "The authorization code is invalid or has expired")
			return
		}
		delete(p.validCodes, code)
		p.writeTokens(w, true)
	case "client_credentials":
		p.writeTokens(w, false)
	case "refresh_token":
		refreshToken := r.PostFormValue("refresh_token")
		if p.usedRefresh[refreshToken] || !strings.HasPrefix(refreshToken, "refresh-token-") {
			p.writeError(w, http.StatusBadRequest, "invalid_grant", "The refresh token is invalid")
			return
		}
		p.usedRefresh[refreshToken] = true
		p.writeTokens(w, true)
	default:
		p.writeError(w, http.StatusBadRequest, "unsupported_grant_type", "The grant type is not supported")
	}
}

func (p *fakeProvider) writeTokens(w http.ResponseWriter, withRefresh bool) {
	p.issued++
	response := map[string]any{
		"token_type":   "Bearer",
		"expires_in":   3600,
		"access_token": fmt.Sprintf("access-token-%d", p.issued),
	}
	if withRefresh {
		response["refresh_token"] = fmt.Sprintf("refresh-token-%d", p.issued)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func (p *fakeProvider) writeError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
		"message":           description,
	})
}

func (p *fakeProvider) addCode(code string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.validCodes[code] = true
}

func (p *fakeProvider) requestCount() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.requests
}

func (p *fakeProvider) grantCount(grant string) int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.byGrant[grant]
}

func (p *fakeProvider) form() url.Values {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.lastForm
}

// testFixture holds all test dependencies
type testFixture struct {
	provider *fakeProvider
	store    *fakependingstore.FakePendingStore
	manager  *auth.Manager
	now      time.Time
}

// setupTestFixture creates a manager wired to a fake provider and a frozen,
// test-adjustable clock.
func setupTestFixture(t *testing.T, options ...auth.ManagerOption) *testFixture {
	t.Helper()

	fixture := &testFixture{
		provider: newFakeProvider(t),
		store:    fakependingstore.NewFakePendingStore(),
		now:      time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	managerOptions := append([]auth.ManagerOption{
		auth.WithPendingStore(fixture.store),
		auth.WithNowTime(func() time.Time { return fixture.now }),
		auth.WithHTTPClient(fixture.provider.server.Client()),
	}, options...)

	fixture.manager = auth.NewManager(auth.Config{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		BaseURL:      fixture.provider.server.URL,
		RedirectURI:  testRedirectURI,
	}, managerOptions...)
	return fixture
}

// authorize runs a complete authorization code flow.
func (f *testFixture) authorize(t *testing.T) *token.TokenSet {
	t.Helper()

	f.provider.addCode(testAuthCode)
	_, state, err := f.manager.BuildAuthorizationURL("")
	require.NoError(t, err)

	ts, err := f.manager.ExchangeCode(context.Background(), testAuthCode, state)
	require.NoError(t, err)
	return ts
}

func TestBuildAuthorizationURL(t *testing.T) {
	t.Run("embeds client registration and state", func(t *testing.T) {
		fixture := setupTestFixture(t)

		authorizeURL, state, err := fixture.manager.BuildAuthorizationURL("")
		require.NoError(t, err)
		require.NotEmpty(t, state)

		parsed, err := url.Parse(authorizeURL)
		require.NoError(t, err)
		require.Equal(t, oauth2.AuthorizePath, parsed.Path)

		query := parsed.Query()
		require.Equal(t, testClientID, query.Get("client_id"))
		require.Equal(t, testRedirectURI, query.Get("redirect_uri"))
		require.Equal(t, "code", query.Get("response_type"))
		require.Equal(t, state, query.Get("state"))
		require.Equal(t, oauth2.DefaultScope, query.Get("scope"))

		require.Equal(t, 1, fixture.store.SaveCalls)
		require.Equal(t, 1, fixture.store.Len())
	})

	t.Run("each issuance gets a fresh state", func(t *testing.T) {
		fixture := setupTestFixture(t)

		_, first, err := fixture.manager.BuildAuthorizationURL("")
		require.NoError(t, err)
		_, second, err := fixture.manager.BuildAuthorizationURL("")
		require.NoError(t, err)

		require.NotEqual(t, first, second)
		require.Equal(t, 2, fixture.store.Len())
	})

	t.Run("overrides redirect URI and scopes per call", func(t *testing.T) {
		fixture := setupTestFixture(t)

		authorizeURL, _, err := fixture.manager.BuildAuthorizationURL("http://localhost:9000/other", "orders", "inventory")
		require.NoError(t, err)

		parsed, err := url.Parse(authorizeURL)
		require.NoError(t, err)
		require.Equal(t, "http://localhost:9000/other", parsed.Query().Get("redirect_uri"))
		require.Equal(t, "orders inventory", parsed.Query().Get("scope"))
	})

	t.Run("fails without client credentials", func(t *testing.T) {
		manager := auth.NewManager(auth.Config{BaseURL: "https://app.example.com"})
		defer manager.Close()

		_, _, err := manager.BuildAuthorizationURL("")
		require.ErrorIs(t, err, apierror.ConfigurationErr)
	})

	t.Run("fails without a redirect URI", func(t *testing.T) {
		manager := auth.NewManager(auth.Config{
			ClientID:     testClientID,
			ClientSecret: testClientSecret,
			BaseURL:      "https://app.example.com",
		})
		defer manager.Close()

		_, _, err := manager.BuildAuthorizationURL("")
		require.ErrorIs(t, err, apierror.ConfigurationErr)
	})
}

func TestExchangeCode(t *testing.T) {
	t.Run("stores a token set expiring at issuance plus lifetime", func(t *testing.T) {
		fixture := setupTestFixture(t)

		ts := fixture.authorize(t)
		require.Equal(t, "access-token-1", ts.AccessToken)
		require.True(t, ts.Refreshable())
		require.Equal(t, fixture.now.Add(time.Hour), ts.ExpiresAt)

		require.True(t, fixture.manager.IsValid())
		require.Equal(t, auth.StatusAuthenticated, fixture.manager.Status())
		require.Equal(t, ts, fixture.manager.Current())
	})

	t.Run("consumed state cannot be reused", func(t *testing.T) {
		fixture := setupTestFixture(t)

		_, state, err := fixture.manager.BuildAuthorizationURL("")
		require.NoError(t, err)

		_, err = fixture.manager.ExchangeCode(context.Background(), testAuthCode, state)
		require.NoError(t, err)

		fixture.provider.addCode("second-code")
		_, err = fixture.manager.ExchangeCode(context.Background(), "second-code", state)
		require.ErrorIs(t, err, apierror.AuthenticationErr)
		require.Equal(t, apierror.AuthCodeCSRFMismatch, apierror.AuthCodeOf(err))
	})

	t.Run("unknown state is rejected before any network call", func(t *testing.T) {
		fixture := setupTestFixture(t)

		_, err := fixture.manager.ExchangeCode(context.Background(), testAuthCode, "never-issued")
		require.Equal(t, apierror.AuthCodeCSRFMismatch, apierror.AuthCodeOf(err))
		require.Zero(t, fixture.provider.requestCount())
	})

	t.Run("state is consumed even when the provider rejects the code", func(t *testing.T) {
		fixture := setupTestFixture(t)

		_, state, err := fixture.manager.BuildAuthorizationURL("")
		require.NoError(t, err)

		_, err = fixture.manager.ExchangeCode(context.Background(), "bogus-code", state)
		require.Equal(t, apierror.AuthCodeInvalidGrant, apierror.AuthCodeOf(err))

		_, err = fixture.manager.ExchangeCode(context.Background(), testAuthCode, state)
		require.Equal(t, apierror.AuthCodeCSRFMismatch, apierror.AuthCodeOf(err))
	})

	t.Run("PKCE verifier round-trips to the token endpoint", func(t *testing.T) {
		fixture := setupTestFixture(t, auth.WithPKCE())

		authorizeURL, state, err := fixture.manager.BuildAuthorizationURL("")
		require.NoError(t, err)

		parsed, err := url.Parse(authorizeURL)
		require.NoError(t, err)
		challenge := parsed.Query().Get("code_challenge")
		require.NotEmpty(t, challenge)
		require.Equal(t, string(oauth2.CodeMethodTypeS256), parsed.Query().Get("code_challenge_method"))

		_, err = fixture.manager.ExchangeCode(context.Background(), testAuthCode, state)
		require.NoError(t, err)

		verifier := fixture.provider.form().Get("code_verifier")
		require.NotEmpty(t, verifier)
		require.Equal(t, challenge, oauth2.ChallengeS256(verifier))
	})
}

func TestExchangeRedirect(t *testing.T) {
	t.Run("parses the callback and exchanges the code", func(t *testing.T) {
		fixture := setupTestFixture(t)

		_, state, err := fixture.manager.BuildAuthorizationURL("")
		require.NoError(t, err)

		redirect := fmt.Sprintf("%s?code=%s&state=%s", testRedirectURI, testAuthCode, url.QueryEscape(state))
		ts, err := fixture.manager.ExchangeRedirect(context.Background(), redirect)
		require.NoError(t, err)
		require.Equal(t, "access-token-1", ts.AccessToken)
	})

	t.Run("surfaces a provider denial", func(t *testing.T) {
		fixture := setupTestFixture(t)

		redirect := testRedirectURI + "?error=access_denied&error_description=The+user+denied+the+request"
		_, err := fixture.manager.ExchangeRedirect(context.Background(), redirect)
		require.ErrorIs(t, err, apierror.AuthenticationErr)
		require.Zero(t, fixture.provider.requestCount())
	})
}

func TestClientCredentials(t *testing.T) {
	t.Run("token set is never refreshable", func(t *testing.T) {
		fixture := setupTestFixture(t)

		ts, err := fixture.manager.ClientCredentials(context.Background())
		require.NoError(t, err)
		require.False(t, ts.Refreshable())
		require.Equal(t, auth.StatusAuthenticated, fixture.manager.Status())
		require.Equal(t, oauth2.DefaultScope, fixture.provider.form().Get("scope"))
	})

	t.Run("refresh fails without burning a network call", func(t *testing.T) {
		fixture := setupTestFixture(t)

		_, err := fixture.manager.ClientCredentials(context.Background())
		require.NoError(t, err)
		before := fixture.provider.requestCount()

		_, err = fixture.manager.Refresh(context.Background())
		require.Equal(t, apierror.AuthCodeTokenExpiredNoRefresh, apierror.AuthCodeOf(err))
		require.Equal(t, before, fixture.provider.requestCount())

		// Still valid, so the set stays in place.
		require.Equal(t, auth.StatusAuthenticated, fixture.manager.Status())
	})

	t.Run("refresh on an expired set drops it", func(t *testing.T) {
		fixture := setupTestFixture(t)

		_, err := fixture.manager.ClientCredentials(context.Background())
		require.NoError(t, err)

		fixture.now = fixture.now.Add(2 * time.Hour)
		require.Equal(t, auth.StatusExpired, fixture.manager.Status())

		_, err = fixture.manager.Refresh(context.Background())
		require.Equal(t, apierror.AuthCodeTokenExpiredNoRefresh, apierror.AuthCodeOf(err))
		require.Equal(t, auth.StatusUnauthenticated, fixture.manager.Status())
		require.Nil(t, fixture.manager.Current())
	})
}

func TestRefresh(t *testing.T) {
	t.Run("replaces the token set with a rotated pair", func(t *testing.T) {
		fixture := setupTestFixture(t)

		original := fixture.authorize(t)
		fixture.now = fixture.now.Add(2 * time.Hour)

		refreshed, err := fixture.manager.Refresh(context.Background())
		require.NoError(t, err)
		require.NotEqual(t, original.AccessToken, refreshed.AccessToken)
		require.NotEqual(t, original.RefreshToken, refreshed.RefreshToken)
		require.Equal(t, fixture.now.Add(time.Hour), refreshed.ExpiresAt)
		require.Equal(t, refreshed, fixture.manager.Current())
		require.Equal(t, auth.StatusAuthenticated, fixture.manager.Status())
	})

	t.Run("presenting the same refresh token twice fails with invalid grant", func(t *testing.T) {
		fixture := setupTestFixture(t)

		original := fixture.authorize(t)
		_, err := fixture.manager.Refresh(context.Background())
		require.NoError(t, err)

		// Restore the superseded pair, as a caller with a stale persisted
		// copy would.
		fixture.manager.UseDirectToken(original.AccessToken, original.RefreshToken, original.ExpiresAt)

		_, err = fixture.manager.Refresh(context.Background())
		require.ErrorIs(t, err, apierror.AuthenticationErr)
		require.Equal(t, apierror.AuthCodeInvalidGrant, apierror.AuthCodeOf(err))

		// The dead set is dropped; a full grant flow is required.
		require.Equal(t, auth.StatusUnauthenticated, fixture.manager.Status())
		require.Nil(t, fixture.manager.Current())
	})

	t.Run("fails without any token set", func(t *testing.T) {
		fixture := setupTestFixture(t)

		_, err := fixture.manager.Refresh(context.Background())
		require.Equal(t, apierror.AuthCodeTokenExpiredNoRefresh, apierror.AuthCodeOf(err))
		require.Zero(t, fixture.provider.requestCount())
	})

	t.Run("concurrent refreshes coalesce into one exchange", func(t *testing.T) {
		fixture := setupTestFixture(t)
		fixture.provider.delay = 100 * time.Millisecond

		fixture.authorize(t)

		const callers = 5
		results := make([]*token.TokenSet, callers)
		errs := make([]error, callers)

		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = fixture.manager.Refresh(context.Background())
			}(i)
		}
		wg.Wait()

		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			require.Equal(t, results[0].AccessToken, results[i].AccessToken)
		}
		require.Equal(t, 1, fixture.provider.grantCount("refresh_token"))
	})
}

func TestIsValidPerformsNoNetworkIO(t *testing.T) {
	fixture := setupTestFixture(t)

	fixture.authorize(t)
	baseline := fixture.provider.requestCount()

	for i := 0; i < 25; i++ {
		require.True(t, fixture.manager.IsValid())
		require.Equal(t, auth.StatusAuthenticated, fixture.manager.Status())
	}

	fixture.now = fixture.now.Add(2 * time.Hour)
	for i := 0; i < 25; i++ {
		require.False(t, fixture.manager.IsValid())
		require.Equal(t, auth.StatusExpired, fixture.manager.Status())
	}

	require.Equal(t, baseline, fixture.provider.requestCount())
}

func TestUseDirectToken(t *testing.T) {
	t.Run("opaque token without expiry stays valid", func(t *testing.T) {
		fixture := setupTestFixture(t)

		ts := fixture.manager.UseDirectToken("opaque-access-token", "", time.Time{})
		require.True(t, ts.ExpiresAt.IsZero())

		fixture.now = fixture.now.Add(365 * 24 * time.Hour)
		require.True(t, fixture.manager.IsValid())
		require.Zero(t, fixture.provider.requestCount())
	})

	t.Run("recovers the expiry from a JWT exp claim", func(t *testing.T) {
		fixture := setupTestFixture(t)

		expiresAt := fixture.now.Add(45 * time.Minute)
		raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
			"sub": "user-1",
			"exp": expiresAt.Unix(),
		}).SignedString([]byte("provider-secret"))
		require.NoError(t, err)

		ts := fixture.manager.UseDirectToken(raw, "", time.Time{})
		require.Equal(t, expiresAt.Unix(), ts.ExpiresAt.Unix())

		fixture.now = expiresAt.Add(time.Minute)
		require.False(t, fixture.manager.IsValid())
	})

	t.Run("explicit expiry wins over claim recovery", func(t *testing.T) {
		fixture := setupTestFixture(t)

		explicit := fixture.now.Add(10 * time.Minute)
		ts := fixture.manager.UseDirectToken("opaque-access-token", "refresh-token-1", explicit)
		require.Equal(t, explicit, ts.ExpiresAt)
		require.True(t, ts.Refreshable())
	})
}

func TestBearerToken(t *testing.T) {
	t.Run("returns the token while valid", func(t *testing.T) {
		fixture := setupTestFixture(t)
		fixture.authorize(t)

		bearer, err := fixture.manager.BearerToken()
		require.NoError(t, err)
		require.Equal(t, "access-token-1", bearer)
	})

	t.Run("fails fast when unauthenticated", func(t *testing.T) {
		fixture := setupTestFixture(t)

		_, err := fixture.manager.BearerToken()
		require.ErrorIs(t, err, apierror.AuthenticationErr)
		require.Zero(t, fixture.provider.requestCount())
	})

	t.Run("distinguishes refreshable from terminal expiry", func(t *testing.T) {
		fixture := setupTestFixture(t)
		fixture.authorize(t)
		fixture.now = fixture.now.Add(2 * time.Hour)

		_, err := fixture.manager.BearerToken()
		require.Equal(t, apierror.AuthCodeTokenExpired, apierror.AuthCodeOf(err))

		current := fixture.manager.Current()
		fixture.manager.UseDirectToken(current.AccessToken, "", current.ExpiresAt)
		_, err = fixture.manager.BearerToken()
		require.Equal(t, apierror.AuthCodeTokenExpiredNoRefresh, apierror.AuthCodeOf(err))
	})
}
