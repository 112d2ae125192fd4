package demoapp

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
)

// Route names double as operation IDs on gorilla/mux.
const (
	RouteStatus        = "status"
	RouteMinimal       = "minimalStatus"
	RouteIntrospection = "introspectionStatus"
)

// NewRouter returns the demo application on gorilla/mux.
func NewRouter(logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID(), Recovery(logger))

	r.Handle("/status", Status()).Name(RouteStatus)
	r.Handle("/minimal_status", MinimalStatus()).Name(RouteMinimal)
	r.Handle("/introspection_status", IntrospectionStatus()).Name(RouteIntrospection)

	return r
}

// NewChiRouter returns the demo application on go-chi.
func NewChiRouter(logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID(), Recovery(logger))

	r.Handle("/status", Status())
	r.Handle("/minimal_status", MinimalStatus())
	r.Handle("/introspection_status", IntrospectionStatus())

	return r
}
