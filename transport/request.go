package transport

import (
	"net/http"
	"net/url"
)

// Request describes one logical API call. The executor owns URL assembly,
// required headers and the resilience policy; callers only shape the
// endpoint-specific parts.
type Request struct {
	Method string
	Path   string      // relative to the API root, e.g. "sales/orders"
	Query  url.Values  // optional query parameters
	Body   any         // optional payload, JSON-marshaled when non-nil
	Header http.Header // optional per-call overrides, caller wins on conflict
}
