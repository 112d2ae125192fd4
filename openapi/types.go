package openapi

// Document represents the root of an OpenAPI v3.0 document.
//
// See: https://spec.openapis.org/oas/v3.0.3#openapi-object
type Document struct {
	OpenAPI      string               `json:"openapi"`
	Info         Info                 `json:"info"`
	Servers      []Server             `json:"servers,omitempty"`
	Paths        map[string]*PathItem `json:"paths"`
	Components   *Components          `json:"components,omitempty"`
	Tags         []Tag                `json:"tags,omitempty"`
	ExternalDocs *ExternalDocs        `json:"externalDocs,omitempty"`
}

// Info provides metadata about the API.
//
// See: https://spec.openapis.org/oas/v3.0.3#info-object
type Info struct {
	Title          string   `json:"title" yaml:"title,omitempty"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	TermsOfService string   `json:"termsOfService,omitempty" yaml:"terms_of_service,omitempty"`
	Contact        *Contact `json:"contact,omitempty" yaml:"contact,omitempty"`
	License        *License `json:"license,omitempty" yaml:"license,omitempty"`
	Version        string   `json:"version" yaml:"version,omitempty"`
}

// Contact represents contact information for the API.
//
// See: https://spec.openapis.org/oas/v3.0.3#contact-object
type Contact struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// License represents license information for the API.
//
// See: https://spec.openapis.org/oas/v3.0.3#license-object
type License struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Server represents a server.
//
// See: https://spec.openapis.org/oas/v3.0.3#server-object
type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PathItem describes the operations available on a single path.
//
// See: https://spec.openapis.org/oas/v3.0.3#path-item-object
type PathItem struct {
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	Get         *Operation   `json:"get,omitempty"`
	Put         *Operation   `json:"put,omitempty"`
	Post        *Operation   `json:"post,omitempty"`
	Delete      *Operation   `json:"delete,omitempty"`
	Options     *Operation   `json:"options,omitempty"`
	Head        *Operation   `json:"head,omitempty"`
	Patch       *Operation   `json:"patch,omitempty"`
	Trace       *Operation   `json:"trace,omitempty"`
	Parameters  []*Parameter `json:"parameters,omitempty"`
}

// Operation describes a single API operation on a path.
//
// See: https://spec.openapis.org/oas/v3.0.3#operation-object
type Operation struct {
	Tags        []string             `json:"tags,omitempty"`
	Summary     string               `json:"summary,omitempty"`
	Description string               `json:"description,omitempty"`
	OperationID string               `json:"operationId,omitempty"`
	Parameters  []*Parameter         `json:"parameters,omitempty"`
	RequestBody *RequestBody         `json:"requestBody,omitempty"`
	Responses   map[string]*Response `json:"responses"`
	Deprecated  bool                 `json:"deprecated,omitempty"`
}

// Parameter describes a single operation parameter.
// The "in" field determines the parameter location: "query", "header",
// "path", or "cookie". Parameters with the same name and location
// must be unique within an operation.
//
// See: https://spec.openapis.org/oas/v3.0.3#parameter-object
type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Deprecated  bool    `json:"deprecated,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

// RequestBody describes a single request body.
//
// See: https://spec.openapis.org/oas/v3.0.3#request-body-object
type RequestBody struct {
	Description string                `json:"description,omitempty"`
	Required    bool                  `json:"required,omitempty"`
	Content     map[string]*MediaType `json:"content"`
}

// Response describes a single response from an API operation.
// The description field is REQUIRED per the specification.
//
// See: https://spec.openapis.org/oas/v3.0.3#response-object
type Response struct {
	Description string                `json:"description"`
	Content     map[string]*MediaType `json:"content,omitempty"`
}

// MediaType describes a media type with a schema.
//
// See: https://spec.openapis.org/oas/v3.0.3#media-type-object
type MediaType struct {
	Schema  *Schema `json:"schema,omitempty"`
	Example any     `json:"example,omitempty"`
}

// Schema represents an OpenAPI 3.0 Schema Object, the extended subset of
// JSON Schema Wright Draft 00 used by the 3.0 line. Nullability is expressed
// with the "nullable" keyword rather than a type array.
//
// See: https://spec.openapis.org/oas/v3.0.3#schema-object
type Schema struct {
	Ref string `json:"$ref,omitempty"`

	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Example     any    `json:"example,omitempty"`
	Nullable    bool   `json:"nullable,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty"`
	WriteOnly   bool   `json:"writeOnly,omitempty"`

	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum bool     `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool     `json:"exclusiveMaximum,omitempty"`

	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	Items       *Schema `json:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`

	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Required             []string           `json:"required,omitempty"`

	Enum []any `json:"enum,omitempty"`

	AllOf []*Schema `json:"allOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`
}

// Components holds reusable OpenAPI objects.
//
// See: https://spec.openapis.org/oas/v3.0.3#components-object
type Components struct {
	Schemas map[string]*Schema `json:"schemas,omitempty"`
}

// Tag adds metadata to a single tag used by Operation Objects.
//
// See: https://spec.openapis.org/oas/v3.0.3#tag-object
type Tag struct {
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty"`
}

// ExternalDocs allows referencing external documentation.
//
// See: https://spec.openapis.org/oas/v3.0.3#external-documentation-object
type ExternalDocs struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

const refPrefix = "#/components/schemas/"

// Ref returns a schema referencing the named component schema.
func Ref(name string) *Schema {
	return &Schema{Ref: refPrefix + name}
}
