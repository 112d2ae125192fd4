// Package responses holds the response body types understood by automd.
//
// Text, Blob, ValueResponse, JSONResponse and ListResponse are documented
// from a lookup table without further declarations. Any other type used as
// a response descriptor must implement Responder, and may implement
// ContentTyper to choose its media type.
package responses
