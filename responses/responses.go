package responses

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vitalvas/automd/openapi"
)

// Responder is implemented by response types that describe their own
// schema.
type Responder interface {
	ResponseSchema(gen *openapi.SchemaGenerator) (*openapi.Schema, error)
}

// ContentTyper is implemented by response types with a fixed media type.
// Types without it are documented as text/plain.
type ContentTyper interface {
	ContentType() string
}

// Renderer writes a response with the given status code.
type Renderer interface {
	Render(w http.ResponseWriter, status int) error
}

const (
	ContentTypeText   = "text/plain"
	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// Text is a plain text response body.
type Text string

func (t Text) Render(w http.ResponseWriter, status int) error {
	return write(w, status, ContentTypeText+"; charset=utf-8", []byte(t))
}

// Blob is a binary response body.
type Blob []byte

func (b Blob) Render(w http.ResponseWriter, status int) error {
	return write(w, status, ContentTypeBinary, b)
}

// ValueResponse renders a single value as plain text.
type ValueResponse[T any] struct {
	Value T
}

// Value wraps v into a ValueResponse.
func Value[T any](v T) ValueResponse[T] {
	return ValueResponse[T]{Value: v}
}

func (r ValueResponse[T]) Render(w http.ResponseWriter, status int) error {
	return write(w, status, ContentTypeText+"; charset=utf-8", fmt.Append(nil, r.Value))
}

// JSONResponse renders a value as a JSON document.
type JSONResponse[T any] struct {
	Value T
}

// JSON wraps v into a JSONResponse.
func JSON[T any](v T) JSONResponse[T] {
	return JSONResponse[T]{Value: v}
}

func (r JSONResponse[T]) Render(w http.ResponseWriter, status int) error {
	return writeJSON(w, status, r.Value)
}

// ListResponse renders items as a JSON array. A nil slice renders as [].
type ListResponse[T any] struct {
	Items []T
}

// List wraps items into a ListResponse.
func List[T any](items ...T) ListResponse[T] {
	return ListResponse[T]{Items: items}
}

func (r ListResponse[T]) Render(w http.ResponseWriter, status int) error {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return writeJSON(w, status, items)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("responses: encode json: %w", err)
	}
	return write(w, status, ContentTypeJSON, data)
}

func write(w http.ResponseWriter, status int, contentType string, data []byte) error {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("responses: write body: %w", err)
	}
	return nil
}
