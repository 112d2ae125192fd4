// Package demoapp is a small status service used to exercise document
// generation end to end. It registers three resources:
//
//	/status               GET and POST with declared parameters
//	/minimal_status       GET inferred from a signature, POST and PUT undocumented
//	/introspection_status POST with every parameter inferred from a struct
//
// NewRouter builds it on gorilla/mux, NewChiRouter on go-chi.
package demoapp
