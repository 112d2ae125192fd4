package endpoint

import (
	"net/http"
	"sort"
	"strings"
)

// MethodSet is implemented by handlers that dispatch on the request method
// to one handler per method.
type MethodSet interface {
	Methods() []string
	Handler(method string) http.Handler
}

// Resource dispatches requests to a handler per HTTP method. Methods
// without a handler get 405 Method Not Allowed with an Allow header.
//
//	r.Handle("/status", endpoint.Resource{
//	    http.MethodGet:  endpoint.Describe(getStatus, getMeta),
//	    http.MethodPost: endpoint.Describe(postStatus, postMeta),
//	})
type Resource map[string]http.Handler

// Methods returns the handled methods in sorted order.
func (res Resource) Methods() []string {
	methods := make([]string, 0, len(res))
	for m := range res {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Handler returns the handler for method, or nil.
func (res Resource) Handler(method string) http.Handler {
	return res[method]
}

func (res Resource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := res[r.Method]; ok {
		h.ServeHTTP(w, r)
		return
	}

	if r.Method == http.MethodHead {
		if h, ok := res[http.MethodGet]; ok {
			h.ServeHTTP(w, r)
			return
		}
	}

	w.Header().Set("Allow", strings.Join(res.Methods(), ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
