package endpoint

import (
	"net/http"
)

// Meta is the documentation attached to an endpoint.
type Meta struct {
	// Parameters declares the request parameters. When nil, parameters are
	// inferred from Signature.
	Parameters FieldSet

	// Signature is a struct value, struct type or handler function whose
	// parameter struct describes the request. Only used without Parameters.
	Signature any

	// Responses maps status codes to response descriptors: nil, a value, or
	// a reflect.Type. An empty map documents a single 200 response.
	Responses map[int]any

	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
}

// Documented is implemented by handlers that carry endpoint metadata.
type Documented interface {
	http.Handler
	EndpointMeta() Meta
}

// Endpoint wraps a handler with its metadata. Requests are served by the
// wrapped handler unchanged.
type Endpoint struct {
	handler http.Handler
	meta    Meta
}

// Describe attaches meta to h.
//
//	r.Handle("/status", endpoint.Describe(statusHandler, endpoint.Meta{
//	    Summary:   "Service status",
//	    Responses: map[int]any{http.StatusOK: responses.Text("")},
//	}))
func Describe(h http.Handler, meta Meta) *Endpoint {
	return &Endpoint{handler: h, meta: meta}
}

// DescribeFunc is Describe for a handler function.
func DescribeFunc(f func(http.ResponseWriter, *http.Request), meta Meta) *Endpoint {
	return Describe(http.HandlerFunc(f), meta)
}

func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.handler.ServeHTTP(w, r)
}

// EndpointMeta returns a copy of the attached metadata.
func (e *Endpoint) EndpointMeta() Meta {
	return e.meta
}

// Unwrap returns the wrapped handler.
func (e *Endpoint) Unwrap() http.Handler {
	return e.handler
}

// Lookup returns the metadata of h. Handlers that wrap another handler and
// expose it through an Unwrap method are looked through.
func Lookup(h http.Handler) (Meta, bool) {
	for h != nil {
		if d, ok := h.(Documented); ok {
			return d.EndpointMeta(), true
		}
		u, ok := h.(interface{ Unwrap() http.Handler })
		if !ok {
			break
		}
		h = u.Unwrap()
	}
	return Meta{}, false
}
