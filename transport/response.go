package transport

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/sellerlegend/go-sellerlegend/apierror"
)

// Response is a successfully classified 2xx result. The body is fully read
// and the connection released before the executor returns it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Empty reports whether the provider returned a 2xx with no body. Callers
// treat this as an empty result, not a failure.
func (r *Response) Empty() bool {
	return len(bytes.TrimSpace(r.Body)) == 0
}

// Decode unmarshals the JSON body into v. Decoding an empty response is a
// no-op, leaving v at its zero value.
func (r *Response) Decode(v any) error {
	if r.Empty() {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &apierror.Error{
			Kind:       apierror.KindServer,
			StatusCode: r.StatusCode,
			Message:    "response body does not match the expected shape",
			Body:       r.Body,
			Err:        err,
		}
	}
	return nil
}

// ContentType returns the response Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}
