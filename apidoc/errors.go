package apidoc

import (
	"errors"
	"strings"
)

var (
	ErrUnmappedType         = errors.New("apidoc: unmapped parameter type")
	ErrUnresolvableResponse = errors.New("apidoc: unresolvable response descriptor")
	ErrDuplicateOperation   = errors.New("apidoc: duplicate operation")
	ErrDuplicateField       = errors.New("apidoc: duplicate parameter field")
	ErrInvalidFieldName     = errors.New("apidoc: invalid parameter field name")
	ErrInvalidDefault       = errors.New("apidoc: invalid parameter default")
	ErrInvalidHeaderName    = errors.New("apidoc: invalid header parameter name")
	ErrInvalidLocation      = errors.New("apidoc: invalid parameter location")
	ErrUnsupportedSignature = errors.New("apidoc: unsupported signature")
	ErrUnsupportedMethod    = errors.New("apidoc: unsupported http method")
	ErrInvalidConfig        = errors.New("apidoc: invalid config")
)

// EndpointError reports a failure to document one endpoint. Field is set
// when the failure concerns a single parameter.
type EndpointError struct {
	Method string
	Path   string
	Field  string
	Err    error
}

func (e *EndpointError) Error() string {
	var b strings.Builder
	b.WriteString("apidoc: ")
	b.WriteString(e.Method)
	b.WriteByte(' ')
	b.WriteString(e.Path)
	if e.Field != "" {
		b.WriteString(": field ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(strings.TrimPrefix(e.Err.Error(), "apidoc: "))
	return b.String()
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

// fieldError carries the offending field name up to the endpoint level.
type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string {
	return e.err.Error()
}

func (e *fieldError) Unwrap() error {
	return e.err
}

// endpointError wraps err for method and path, lifting a field name from
// a fieldError in the chain.
func endpointError(method, path string, err error) *EndpointError {
	var existing *EndpointError
	if errors.As(err, &existing) {
		return existing
	}

	ee := &EndpointError{Method: method, Path: path, Err: err}
	var fe *fieldError
	if errors.As(err, &fe) {
		ee.Field = fe.field
	}
	return ee
}
