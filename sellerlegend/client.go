// Package sellerlegend is the high-level client for the SellerLegend
// analytics API. It wires credential management and resilient request
// execution behind one Client and groups the endpoints into services:
//
//	client := sellerlegend.New(sellerlegend.Config{
//		ClientID:     "...",
//		ClientSecret: "...",
//		BaseURL:      "https://app.sellerlegend.com",
//	})
//	defer client.Close()
//
//	if _, err := client.ClientCredentials(ctx); err != nil {
//		return err
//	}
//	orders, err := client.Sales.Orders(ctx, &sellerlegend.OrdersParams{
//		StartDate: "2024-06-01",
//		EndDate:   "2024-06-30",
//	})
//
// Tokens are never refreshed behind the caller's back. When a token expires
// the next call fails fast with an authentication error and the caller
// decides between Refresh and a new grant flow.
package sellerlegend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sellerlegend/go-sellerlegend/auth"
	"github.com/sellerlegend/go-sellerlegend/internal/config"
	"github.com/sellerlegend/go-sellerlegend/internal/validate"
	"github.com/sellerlegend/go-sellerlegend/token"
	"github.com/sellerlegend/go-sellerlegend/transport"
)

// DefaultBaseURL is the hosted SellerLegend instance. Self-hosted
// installations override it via Config.BaseURL.
const DefaultBaseURL = "https://app.sellerlegend.com"

// Config carries the OAuth2 client registration for a provider instance.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string // defaults to DefaultBaseURL
	RedirectURI  string // default redirect for the authorization code flow
}

// Client is the entry point to the API. Construct it with New or NewFromEnv,
// authenticate through one of the grant methods, then call the services.
// Safe for concurrent use.
type Client struct {
	config  Config
	auth    *auth.Manager
	exec    *transport.Executor
	logger  zerolog.Logger
	nowTime func() time.Time // nowTime function (injectable for testing)

	pollInterval time.Duration

	User          *UserService
	Sales         *SalesService
	Reports       *ReportsService
	Inventory     *InventoryService
	Costs         *CostsService
	Connections   *ConnectionsService
	SupplyChain   *SupplyChainService
	Warehouse     *WarehouseService
	Notifications *NotificationsService
}

type clientOptions struct {
	httpClient    *http.Client
	logger        zerolog.Logger
	timeout       time.Duration
	maxRetries    int
	backoffFactor float64
	rateLimit     float64
	rateBurst     int
	pollInterval  time.Duration
	nowTime       func() time.Time
	scopes        []string
	usePKCE       bool
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*clientOptions)

// WithHTTPClient replaces the HTTP client used for both token endpoint and
// API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithMaxRetries sets how many retries follow a failed API call attempt.
// Zero disables retrying.
func WithMaxRetries(maxRetries int) ClientOption {
	return func(o *clientOptions) {
		o.maxRetries = maxRetries
	}
}

// WithBackoffFactor scales the retry backoff schedule.
func WithBackoffFactor(factor float64) ClientOption {
	return func(o *clientOptions) {
		o.backoffFactor = factor
	}
}

// WithRateLimit throttles API calls to at most rps requests per second with
// the given burst.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(o *clientOptions) {
		o.rateLimit = rps
		o.rateBurst = burst
	}
}

// WithPollInterval sets the delay between report status polls in Await.
func WithPollInterval(interval time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.pollInterval = interval
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(o *clientOptions) {
		o.nowTime = nowFunc
	}
}

// WithScopes sets the default scopes requested by grant flows.
func WithScopes(scopes ...string) ClientOption {
	return func(o *clientOptions) {
		o.scopes = scopes
	}
}

// WithPKCE enables the S256 code challenge on the authorization code flow.
func WithPKCE() ClientOption {
	return func(o *clientOptions) {
		o.usePKCE = true
	}
}

// New builds a Client for the given registration. Missing credentials are
// reported by the grant methods, not here, so a partially configured client
// can still serve direct-token injection.
func New(cfg Config, options ...ClientOption) *Client {
	opts := clientOptions{
		logger:       zerolog.Nop(),
		maxRetries:   -1, // sentinel, the executor default applies
		pollInterval: DefaultPollInterval,
		nowTime:      time.Now,
	}

	// Apply optional configuration
	for _, opt := range options {
		opt(&opts)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	authOptions := []auth.ManagerOption{
		auth.WithLogger(opts.logger),
		auth.WithNowTime(opts.nowTime),
	}
	if opts.httpClient != nil {
		authOptions = append(authOptions, auth.WithHTTPClient(opts.httpClient))
	}
	if len(opts.scopes) > 0 {
		authOptions = append(authOptions, auth.WithScopes(opts.scopes...))
	}
	if opts.usePKCE {
		authOptions = append(authOptions, auth.WithPKCE())
	}
	manager := auth.NewManager(auth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		BaseURL:      cfg.BaseURL,
		RedirectURI:  cfg.RedirectURI,
	}, authOptions...)

	execOptions := []transport.ExecutorOption{
		transport.WithLogger(opts.logger),
		transport.WithNowTime(opts.nowTime),
	}
	if opts.httpClient != nil {
		execOptions = append(execOptions, transport.WithHTTPClient(opts.httpClient))
	}
	if opts.timeout > 0 {
		execOptions = append(execOptions, transport.WithTimeout(opts.timeout))
	}
	if opts.maxRetries >= 0 {
		execOptions = append(execOptions, transport.WithMaxRetries(opts.maxRetries))
	}
	if opts.backoffFactor > 0 {
		execOptions = append(execOptions, transport.WithBackoffFactor(opts.backoffFactor))
	}
	if opts.rateLimit > 0 {
		execOptions = append(execOptions, transport.WithRateLimit(opts.rateLimit, opts.rateBurst))
	}

	c := &Client{
		config:       cfg,
		auth:         manager,
		exec:         transport.NewExecutor(cfg.BaseURL, manager, execOptions...),
		logger:       opts.logger,
		nowTime:      opts.nowTime,
		pollInterval: opts.pollInterval,
	}
	c.User = &UserService{client: c}
	c.Sales = &SalesService{client: c}
	c.Reports = &ReportsService{client: c}
	c.Inventory = &InventoryService{client: c}
	c.Costs = &CostsService{client: c}
	c.Connections = &ConnectionsService{client: c}
	c.SupplyChain = &SupplyChainService{client: c}
	c.Warehouse = &WarehouseService{client: c}
	c.Notifications = &NotificationsService{client: c}
	return c
}

// NewFromEnv builds a Client from the SELLERLEGEND_* environment variables.
// Explicit options win over environment values.
func NewFromEnv(options ...ClientOption) *Client {
	cfg := config.New()

	envOptions := make([]ClientOption, 0, 3)
	if timeout := cfg.GetTimeout(); timeout > 0 {
		envOptions = append(envOptions, WithTimeout(timeout))
	}
	if maxRetries := cfg.GetMaxRetries(); maxRetries >= 0 {
		envOptions = append(envOptions, WithMaxRetries(maxRetries))
	}
	if factor := cfg.GetBackoffFactor(); factor > 0 {
		envOptions = append(envOptions, WithBackoffFactor(factor))
	}

	return New(Config{
		ClientID:     cfg.GetClientID(),
		ClientSecret: cfg.GetClientSecret(),
		BaseURL:      cfg.GetBaseURL(),
		RedirectURI:  cfg.GetRedirectURI(),
	}, append(envOptions, options...)...)
}

// Close releases the client's background resources.
func (c *Client) Close() {
	c.auth.Close()
}

// Auth exposes the credential state machine for flows the convenience
// methods do not cover, such as injecting a custom pending-state store.
func (c *Client) Auth() *auth.Manager {
	return c.auth
}

// BaseURL returns the normalized provider instance root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// AuthorizationURL starts the authorization code flow: it registers a fresh
// CSRF state and returns the provider URL to send the user to, together with
// the state.
func (c *Client) AuthorizationURL(redirectURI string, scopes ...string) (string, string, error) {
	return c.auth.BuildAuthorizationURL(redirectURI, scopes...)
}

// ExchangeCode completes the authorization code flow with the code and state
// returned on the redirect.
func (c *Client) ExchangeCode(ctx context.Context, code, state string) (*token.TokenSet, error) {
	return c.auth.ExchangeCode(ctx, code, state)
}

// ExchangeRedirect completes the authorization code flow from the full
// redirect URL the provider sent the user back to.
func (c *Client) ExchangeRedirect(ctx context.Context, redirectURL string) (*token.TokenSet, error) {
	return c.auth.ExchangeRedirect(ctx, redirectURL)
}

// ClientCredentials authenticates the application itself, without a user.
// The provider limits these tokens to service-status endpoints.
func (c *Client) ClientCredentials(ctx context.Context, scopes ...string) (*token.TokenSet, error) {
	return c.auth.ClientCredentials(ctx, scopes...)
}

// Refresh exchanges the current refresh token for a new token set. Callers
// that persist tokens must store the returned set immediately; the presented
// refresh token is dead once the exchange succeeds.
func (c *Client) Refresh(ctx context.Context) (*token.TokenSet, error) {
	return c.auth.Refresh(ctx)
}

// UseDirectToken injects an externally obtained token. A zero expiresAt
// means unknown; when the token is a JWT the expiry is recovered from its
// exp claim.
func (c *Client) UseDirectToken(accessToken, refreshToken string, expiresAt time.Time) *token.TokenSet {
	return c.auth.UseDirectToken(accessToken, refreshToken, expiresAt)
}

// IsAuthenticated reports whether the held token is valid right now. Pure
// and local: no network call and no implicit refresh.
func (c *Client) IsAuthenticated() bool {
	return c.auth.IsValid()
}

// TokenInfo is a diagnostic snapshot of the held credential.
type TokenInfo struct {
	Status      auth.Status
	ExpiresAt   time.Time     // zero when no expiry is known
	TTL         time.Duration // time until expiry, negative when unknown
	Refreshable bool
}

// TokenInfo reports the credential state without performing any I/O.
func (c *Client) TokenInfo() TokenInfo {
	info := TokenInfo{Status: c.auth.Status()}
	if current := c.auth.Current(); current != nil {
		info.ExpiresAt = current.ExpiresAt
		info.TTL = current.TTL(c.nowTime())
		info.Refreshable = current.Refreshable()
	}
	return info
}

// ServiceStatus reads the platform health endpoint. This is the one endpoint
// a client-credentials token is guaranteed to reach.
func (c *Client) ServiceStatus(ctx context.Context) (json.RawMessage, error) {
	var status json.RawMessage
	if err := c.get(ctx, "service-status", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// RecentOrders lists orders from the trailing window, 30 days when days is
// not positive.
func (c *Client) RecentOrders(ctx context.Context, days int) (*Page, error) {
	if days <= 0 {
		days = 30
	}
	end := c.nowTime()
	start := end.AddDate(0, 0, -days)
	return c.Sales.Orders(ctx, &OrdersParams{
		StartDate: Date(start),
		EndDate:   Date(end),
	})
}

// Date formats a time in the YYYY-MM-DD form the date parameters use.
func Date(t time.Time) string {
	return t.Format(validate.DateLayout)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, &transport.Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, &transport.Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, &transport.Request{Method: http.MethodDelete, Path: path, Query: query}, out)
}

func (c *Client) do(ctx context.Context, request *transport.Request, out any) error {
	response, err := c.exec.Do(ctx, request)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return response.Decode(out)
}

// page runs a GET against a list endpoint and decodes the pagination
// envelope.
func (c *Client) page(ctx context.Context, path string, query url.Values) (*Page, error) {
	var page Page
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
