// Package transport executes authenticated API calls with the resilience
// policy: required headers, a per-call timeout, retry with exponential
// backoff for transient failures, and typed classification of everything
// else. It never re-authenticates; an auth failure surfaces immediately.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sellerlegend/go-sellerlegend/apierror"
)

// Default resilience policy, matching the provider's published guidance.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultMaxRetries    = 3
	DefaultBackoffFactor = 0.3
)

// Required headers on every API call.
const (
	APIVersionHeader = "SellerLegend-Api-Version"
	APIVersion       = "v2"
	UserAgent        = "SellerLegend-Go-SDK/1.0.0"
	RequestIDHeader  = "X-Request-ID"

	apiPrefix = "/api"
)

// TokenSource supplies the bearer credential for one logical call. The
// executor asks once per call, before the first attempt, and never refreshes
// on the caller's behalf.
type TokenSource interface {
	BearerToken() (string, error)
}

// StaticTokenSource returns the same token for every call, for externally
// managed credentials and tests.
type StaticTokenSource string

func (s StaticTokenSource) BearerToken() (string, error) {
	return string(s), nil
}

// Executor performs one logical API call per Do invocation: header assembly,
// send, classification, and retry of transient failures with exponential
// backoff. Auth failures are never retried; resending the same stale token
// cannot succeed.
type Executor struct {
	baseURL       string
	tokens        TokenSource
	httpClient    *http.Client
	logger        zerolog.Logger
	maxRetries    int
	backoffFactor float64
	limiter       *rate.Limiter
	headers       http.Header
	sleep         func(ctx context.Context, d time.Duration) error
	nowTime       func() time.Time // nowTime function (injectable for testing)
}

// ExecutorOption defines a function type to modify the Executor instance.
type ExecutorOption func(*Executor)

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.httpClient.Timeout = timeout
	}
}

// WithMaxRetries sets how many retries follow a failed attempt. Zero
// disables retrying.
func WithMaxRetries(maxRetries int) ExecutorOption {
	return func(e *Executor) {
		e.maxRetries = maxRetries
	}
}

// WithBackoffFactor scales the exponential backoff schedule: the sleep
// before retry n is backoffFactor * 2^n seconds.
func WithBackoffFactor(factor float64) ExecutorOption {
	return func(e *Executor) {
		e.backoffFactor = factor
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) ExecutorOption {
	return func(e *Executor) {
		e.httpClient = client
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithRateLimit throttles outgoing calls to at most rps requests per second
// with the given burst, applied before every attempt including retries.
func WithRateLimit(rps float64, burst int) ExecutorOption {
	return func(e *Executor) {
		e.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHeader adds a default header to every request. Per-call headers win on
// conflict.
func WithHeader(key, value string) ExecutorOption {
	return func(e *Executor) {
		e.headers.Set(key, value)
	}
}

// WithSleep replaces the inter-retry sleep (primarily for testing)
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ExecutorOption {
	return func(e *Executor) {
		e.sleep = sleep
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ExecutorOption {
	return func(e *Executor) {
		e.nowTime = nowFunc
	}
}

// NewExecutor builds an Executor for the given provider instance. Paths
// passed to Do are resolved under baseURL + "/api/".
func NewExecutor(baseURL string, tokens TokenSource, options ...ExecutorOption) *Executor {
	e := &Executor{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		tokens:        tokens,
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		logger:        zerolog.Nop(),
		maxRetries:    DefaultMaxRetries,
		backoffFactor: DefaultBackoffFactor,
		headers:       make(http.Header),
		sleep:         sleepContext,
		nowTime:       time.Now,
	}

	// Apply optional configuration
	for _, opt := range options {
		opt(e)
	}

	return e
}

// Do executes one logical API call. Transient failures (connect errors,
// timeouts, 429, 5xx) are retried up to the configured limit with
// exponential backoff; every other failure returns a typed error
// immediately. A 2xx with an empty body returns an empty Response rather
// than an error.
func (e *Executor) Do(ctx context.Context, request *Request) (*Response, error) {
	bearer, err := e.tokens.BearerToken()
	if err != nil {
		return nil, err
	}

	var payload []byte
	if request.Body != nil {
		payload, err = json.Marshal(request.Body)
		if err != nil {
			return nil, errors.Wrap(err, "[Do] marshaling request body")
		}
	}

	requestURL := e.url(request.Path, request.Query)
	requestID := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, apierror.Network(err, "request aborted while rate limited")
			}
		}

		response, err := e.attempt(ctx, request, requestURL, requestID, bearer, payload)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !retryableError(err) || attempt == e.maxRetries {
			return nil, err
		}

		delay := e.retryDelay(err, attempt)
		e.logger.Warn().
			Str("method", request.Method).
			Str("path", request.Path).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("retrying request")
		if err := e.sleep(ctx, delay); err != nil {
			return nil, apierror.Network(err, "request aborted during backoff")
		}
	}
	return nil, lastErr
}

// attempt performs a single HTTP exchange and classifies the outcome.
func (e *Executor) attempt(ctx context.Context, request *Request, requestURL, requestID, bearer string, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.Method, requestURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "[attempt] building request")
	}

	httpRequest.Header.Set("Authorization", "Bearer "+bearer)
	httpRequest.Header.Set("Accept", "application/json")
	httpRequest.Header.Set(APIVersionHeader, APIVersion)
	httpRequest.Header.Set("User-Agent", UserAgent)
	httpRequest.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}
	for key, values := range e.headers {
		httpRequest.Header[key] = values
	}
	for key, values := range request.Header {
		httpRequest.Header[key] = values
	}

	httpResponse, err := e.httpClient.Do(httpRequest)
	if err != nil {
		return nil, apierror.Network(err, "request failed")
	}
	defer func() { _ = httpResponse.Body.Close() }()

	responseBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, apierror.Network(err, "reading response body")
	}

	if httpResponse.StatusCode >= 200 && httpResponse.StatusCode < 300 {
		response := &Response{
			StatusCode: httpResponse.StatusCode,
			Header:     httpResponse.Header,
			Body:       responseBody,
		}
		if !response.Empty() && jsonContent(httpResponse.Header) && !json.Valid(responseBody) {
			return nil, &apierror.Error{
				Kind:       apierror.KindServer,
				StatusCode: httpResponse.StatusCode,
				Message:    "malformed JSON body on a success response",
				Body:       responseBody,
			}
		}
		return response, nil
	}

	apiErr := apierror.FromResponse(httpResponse.StatusCode, responseBody)
	if retryAfter := httpResponse.Header.Get("Retry-After"); retryAfter != "" {
		apiErr.RetryAfter = e.parseRetryAfter(retryAfter)
	}
	return nil, apiErr
}

// retryDelay picks the sleep before the next attempt: the provider's
// Retry-After when it sent one, the exponential schedule otherwise.
func (e *Executor) retryDelay(err error, attempt int) time.Duration {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	return time.Duration(e.backoffFactor * math.Pow(2, float64(attempt)) * float64(time.Second))
}

func (e *Executor) parseRetryAfter(header string) time.Duration {
	if seconds, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if delay := at.Sub(e.nowTime()); delay > 0 {
			return delay
		}
	}
	return 0
}

func (e *Executor) url(path string, query url.Values) string {
	requestURL := e.baseURL + apiPrefix + "/" + strings.TrimLeft(path, "/")
	if len(query) == 0 {
		return requestURL
	}
	return requestURL + "?" + query.Encode()
}

// retryableError reports whether the failure is worth another attempt:
// network-level failures, 429 and 5xx. Everything else is final.
func retryableError(err error) bool {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Kind == apierror.KindNetwork {
		return true
	}
	return apierror.Retryable(apiErr.StatusCode)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func jsonContent(header http.Header) bool {
	contentType := header.Get("Content-Type")
	return contentType == "" || strings.Contains(contentType, "json")
}
