package apidoc

import (
	"net/http"
	"reflect"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
)

// Route is one route of a host application.
type Route struct {
	// Path is the router's path template.
	Path string
	// Name is the route name, used as the operationId.
	Name string
	// Methods restricts the route to these methods. Empty means any.
	Methods []string
	Handler http.Handler
}

// App exposes the routes of a host application.
type App interface {
	Routes() ([]Route, error)
}

// AppFunc adapts a function to App.
type AppFunc func() ([]Route, error)

func (f AppFunc) Routes() ([]Route, error) {
	return f()
}

type muxApp struct {
	router *mux.Router
}

// Mux returns the routes of a gorilla/mux router, subrouters included.
// Routes without a path template or handler are left out.
func Mux(r *mux.Router) App {
	return muxApp{router: r}
}

func (a muxApp) Routes() ([]Route, error) {
	var routes []Route

	err := a.router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		handler := route.GetHandler()
		if handler == nil {
			return nil
		}

		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = nil
		}

		routes = append(routes, Route{
			Path:    tpl,
			Name:    route.GetName(),
			Methods: methods,
			Handler: handler,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return routes, nil
}

type chiApp struct {
	router chi.Routes
}

// Chi returns the routes of a go-chi router, mounted routers included.
// chi reports a route once per method. A handler registered for every
// method with Handle is reported as one Route without methods; methods
// later given their own handler keep their own Route.
func Chi(r chi.Routes) App {
	return chiApp{router: r}
}

// chiAnyMethod is the handler key chi uses for routes registered with
// Handle or HandleFunc.
const chiAnyMethod = "*"

func (a chiApp) Routes() ([]Route, error) {
	return chiRoutes(a.router, ""), nil
}

// chiRoutes lists the routes of r below prefix. Mounted patterns end in
// "/*", which chi drops when joining them with the sub-router patterns.
func chiRoutes(r chi.Routes, prefix string) []Route {
	var routes []Route

	for _, route := range r.Routes() {
		pattern := strings.ReplaceAll(prefix+route.Pattern, "/*/", "/")

		if route.SubRoutes != nil {
			routes = append(routes, chiRoutes(route.SubRoutes, prefix+route.Pattern)...)
			continue
		}

		anyHandler, hasAny := route.Handlers[chiAnyMethod]
		if hasAny {
			routes = append(routes, Route{Path: pattern, Handler: chiEndpoint(anyHandler)})
		}

		methods := make([]string, 0, len(route.Handlers))
		for method := range route.Handlers {
			if method != chiAnyMethod {
				methods = append(methods, method)
			}
		}
		slices.Sort(methods)

		for _, method := range methods {
			handler := route.Handlers[method]
			if hasAny && sameHandler(handler, anyHandler) {
				continue
			}
			routes = append(routes, Route{Path: pattern, Methods: []string{method}, Handler: chiEndpoint(handler)})
		}
	}

	return routes
}

// chiEndpoint strips inline middlewares added with With.
func chiEndpoint(h http.Handler) http.Handler {
	if ch, ok := h.(*chi.ChainHandler); ok {
		return ch.Endpoint
	}
	return h
}

// sameHandler reports whether a and b are the same handler value. Function
// handlers are compared by code pointer; other uncomparable values never match.
func sameHandler(a, b http.Handler) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}

	return va.Comparable() && va.Equal(vb)
}
