package apidoc

import (
	"fmt"
	"reflect"

	"github.com/vitalvas/automd/openapi"
	"github.com/vitalvas/automd/responses"
)

// ResponseKind tells how a response descriptor was resolved.
type ResponseKind int

const (
	// ResponseEmpty is a nil descriptor, documented as an empty object.
	ResponseEmpty ResponseKind = iota
	// ResponseRegistered is an exact type match in the response table.
	ResponseRegistered
	// ResponseNamed is a generic type matched by its base name.
	ResponseNamed
	// ResponseSelfDescribing implements responses.Responder.
	ResponseSelfDescribing
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseEmpty:
		return "empty"
	case ResponseRegistered:
		return "registered"
	case ResponseNamed:
		return "named"
	case ResponseSelfDescribing:
		return "self-describing"
	}
	return fmt.Sprintf("ResponseKind(%d)", int(k))
}

// ResolvedResponse is the schema and media type of one response.
// ContentType is never empty.
type ResolvedResponse struct {
	Kind        ResponseKind
	Schema      *openapi.Schema
	ContentType string
}

// ResponseFactory builds the responder for an instantiation of a generic
// response type.
type ResponseFactory func(t reflect.Type) (responses.Responder, error)

// ResponseTable maps response descriptor types to their documentation.
// Exact entries match a type; named entries match every instantiation of a
// generic type. Tables are read only once a builder uses them.
type ResponseTable struct {
	exact map[reflect.Type]responses.Responder
	named map[string]ResponseFactory
}

// NewResponseTable returns an empty table.
func NewResponseTable() *ResponseTable {
	return &ResponseTable{
		exact: make(map[reflect.Type]responses.Responder),
		named: make(map[string]ResponseFactory),
	}
}

// DefaultResponseTable returns a table with the built-in response types:
// strings, byte slices, generic JSON values and the responses package
// wrappers.
func DefaultResponseTable() *ResponseTable {
	rt := NewResponseTable()

	text := Static(responses.ContentTypeText, &openapi.Schema{Type: "string"})
	binary := Static(responses.ContentTypeBinary, &openapi.Schema{Type: "string", Format: "binary"})

	rt.Register(reflect.TypeFor[string](), text)
	rt.Register(reflect.TypeFor[responses.Text](), text)
	rt.Register(reflect.TypeFor[[]byte](), binary)
	rt.Register(reflect.TypeFor[responses.Blob](), binary)
	rt.Register(reflect.TypeFor[map[string]any](), Static(responses.ContentTypeJSON, &openapi.Schema{Type: "object"}))
	rt.Register(reflect.TypeFor[[]any](), Static(responses.ContentTypeJSON, &openapi.Schema{Type: "array", Items: &openapi.Schema{}}))

	rt.RegisterNamed(reflect.TypeFor[responses.ValueResponse[any]](), fieldResponder("Value", responses.ContentTypeText))
	rt.RegisterNamed(reflect.TypeFor[responses.JSONResponse[any]](), fieldResponder("Value", responses.ContentTypeJSON))
	rt.RegisterNamed(reflect.TypeFor[responses.ListResponse[any]](), fieldResponder("Items", responses.ContentTypeJSON))

	return rt
}

// Register adds an exact entry for t.
func (rt *ResponseTable) Register(t reflect.Type, r responses.Responder) {
	rt.exact[t] = r
}

// RegisterNamed adds an entry matching every instantiation of the generic
// type of which t is one instantiation.
func (rt *ResponseTable) RegisterNamed(t reflect.Type, f ResponseFactory) {
	rt.named[namedKey(t)] = f
}

// Resolve documents a response descriptor: nil, a reflect.Type, or a value
// of the response type. Lookup order is the exact table, the named table,
// then responses.Responder on the value or its type. A nil descriptor
// resolves to an empty object that the operation stores as its
// ResponseSchema component.
func (rt *ResponseTable) Resolve(gen *openapi.SchemaGenerator, descriptor any, path, verb string) (ResolvedResponse, error) {
	if descriptor == nil {
		return ResolvedResponse{Kind: ResponseEmpty, Schema: &openapi.Schema{Type: "object"}, ContentType: responses.ContentTypeText}, nil
	}

	t, isType := descriptor.(reflect.Type)
	if !isType {
		t = reflect.TypeOf(descriptor)
	}

	var (
		kind      ResponseKind
		responder responses.Responder
	)

	if r, ok := rt.exact[t]; ok {
		kind, responder = ResponseRegistered, r
	} else if f, ok := rt.named[namedKey(t)]; ok && namedKey(t) != "" {
		r, err := f(t)
		if err != nil {
			return ResolvedResponse{}, fmt.Errorf("%w: %s for %s %s: %w", ErrUnresolvableResponse, t, verb, path, err)
		}
		kind, responder = ResponseNamed, r
	} else if r, ok := selfDescribing(descriptor, t, isType); ok {
		kind, responder = ResponseSelfDescribing, r
	} else {
		return ResolvedResponse{}, fmt.Errorf("%w: %s for %s %s", ErrUnresolvableResponse, t, verb, path)
	}

	schema, err := responder.ResponseSchema(gen)
	if err != nil {
		return ResolvedResponse{}, fmt.Errorf("%s %s: response %s: %w", verb, path, t, err)
	}
	if schema == nil {
		schema = &openapi.Schema{}
	}

	contentType := responses.ContentTypeText
	if ct, ok := responder.(responses.ContentTyper); ok && ct.ContentType() != "" {
		contentType = ct.ContentType()
	}

	return ResolvedResponse{Kind: kind, Schema: schema, ContentType: contentType}, nil
}

func selfDescribing(descriptor any, t reflect.Type, isType bool) (responses.Responder, bool) {
	if !isType {
		if r, ok := descriptor.(responses.Responder); ok {
			return r, true
		}
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r, ok := reflect.New(t).Interface().(responses.Responder)
	return r, ok
}

// namedKey identifies a generic type independent of its type arguments.
// Unnamed types have no key.
func namedKey(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return ""
	}
	return t.PkgPath() + "." + openapi.BaseTypeName(t)
}

type staticResponder struct {
	contentType string
	schema      *openapi.Schema
}

// Static returns a responder with a fixed media type and schema. Each
// resolution gets its own copy of the schema.
func Static(contentType string, schema *openapi.Schema) responses.Responder {
	return staticResponder{contentType: contentType, schema: schema}
}

func (s staticResponder) ResponseSchema(*openapi.SchemaGenerator) (*openapi.Schema, error) {
	out := *s.schema
	return &out, nil
}

func (s staticResponder) ContentType() string {
	return s.contentType
}

type typeResponder struct {
	contentType string
	typ         reflect.Type
}

func (r typeResponder) ResponseSchema(gen *openapi.SchemaGenerator) (*openapi.Schema, error) {
	schema := gen.GenerateType(r.typ)
	if schema == nil {
		return nil, fmt.Errorf("%w: no schema for %s", ErrUnresolvableResponse, r.typ)
	}
	return schema, nil
}

func (r typeResponder) ContentType() string {
	return r.contentType
}

// fieldResponder documents a wrapper type by the type of one of its fields.
func fieldResponder(field, contentType string) ResponseFactory {
	return func(t reflect.Type) (responses.Responder, error) {
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return nil, fmt.Errorf("%s is not a struct", t)
		}
		sf, ok := t.FieldByName(field)
		if !ok {
			return nil, fmt.Errorf("%s has no %s field", t, field)
		}
		return typeResponder{contentType: contentType, typ: sf.Type}, nil
	}
}
