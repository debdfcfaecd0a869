// Package authcallback runs a short-lived local HTTP listener that captures
// the provider redirect ending an authorization code flow. Useful for CLI
// and development flows where no hosted callback endpoint exists:
//
//	listener, err := authcallback.Listen("localhost:0")
//	if err != nil {
//		return err
//	}
//	defer listener.Close()
//
//	authURL, _, err := client.AuthorizationURL(listener.RedirectURI())
//	// send the user to authURL, then:
//	result, err := listener.Wait(ctx)
//	token, err := client.ExchangeCode(ctx, result.Code, result.State)
//
// The listener accepts exactly one authorization response; register the
// redirect URI it reports with the provider before starting the flow.
package authcallback

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sellerlegend/go-sellerlegend/apierror"
)

// DefaultWaitTimeout bounds Wait when the caller's context carries no
// deadline of its own.
const DefaultWaitTimeout = 2 * time.Minute

// CallbackPath is the path the provider redirect must target.
const CallbackPath = "/callback"

const successPage = `<!DOCTYPE html>
<html><head><title>Authorization complete</title></head>
<body><h2>Authorization complete</h2>
<p>You can close this window and return to the application.</p>
</body></html>`

// Result carries the parameters of one authorization response.
type Result struct {
	Code  string
	State string
}

// Listener owns the capture server. Create it with Listen, hand
// RedirectURI to the authorization URL builder, then block in Wait.
type Listener struct {
	server   *http.Server
	listener net.Listener
	logger   zerolog.Logger
	results  chan result
}

type result struct {
	code  string
	state string
	err   error
}

// ListenerOption defines a function type to modify the Listener instance.
type ListenerOption func(*Listener)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) ListenerOption {
	return func(l *Listener) {
		l.logger = logger
	}
}

// Listen starts the capture server on addr, e.g. "localhost:5001" or
// "localhost:0" for an ephemeral port.
func Listen(addr string, options ...ListenerOption) (*Listener, error) {
	tcpListener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "[Listen] binding callback listener")
	}

	l := &Listener{
		listener: tcpListener,
		logger:   zerolog.Nop(),
		results:  make(chan result, 1),
	}

	// Apply optional configuration
	for _, opt := range options {
		opt(l)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, l.handleCallback)
	l.server = &http.Server{Handler: mux}
	go func() {
		if err := l.server.Serve(tcpListener); err != nil && err != http.ErrServerClosed {
			l.logger.Error().Err(err).Msg("callback listener stopped")
		}
	}()

	l.logger.Debug().Str("redirect_uri", l.RedirectURI()).Msg("callback listener started")
	return l, nil
}

// RedirectURI returns the redirect URI this listener serves, including the
// resolved port when an ephemeral one was requested.
func (l *Listener) RedirectURI() string {
	return "http://" + l.listener.Addr().String() + CallbackPath
}

// Wait blocks until the provider redirects the user back, the user denies
// the authorization, or ctx ends. When ctx has no deadline,
// DefaultWaitTimeout applies.
func (l *Listener) Wait(ctx context.Context) (Result, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultWaitTimeout)
		defer cancel()
	}

	select {
	case r := <-l.results:
		if r.err != nil {
			return Result{}, r.err
		}
		return Result{Code: r.code, State: r.state}, nil
	case <-ctx.Done():
		return Result{}, apierror.Network(ctx.Err(), "no authorization response received")
	}
}

// Close stops the capture server. Safe to call after Wait returned.
func (l *Listener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return l.server.Shutdown(ctx)
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	// FormValue covers both query params and form_post response modes.
	errorParam := r.FormValue("error")
	errorDescription := r.FormValue("error_description")
	code := r.FormValue("code")
	state := r.FormValue("state")

	if errorParam != "" {
		l.deliver(result{err: apierror.Newf(apierror.KindAuthentication, "authorization failed: %s - %s", errorParam, errorDescription)})
		http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDescription), http.StatusBadRequest)
		return
	}

	if code == "" || state == "" {
		// Stray request, e.g. a favicon probe. Keep waiting.
		http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
		return
	}

	l.deliver(result{code: code, state: state})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(successPage))
}

// deliver hands the first authorization response to Wait; later ones are
// dropped.
func (l *Listener) deliver(r result) {
	select {
	case l.results <- r:
	default:
		l.logger.Warn().Msg("duplicate authorization response dropped")
	}
}
