// Package openapi provides the OpenAPI v3.0 document model used by automd,
// a reflection based schema generator, JSON and YAML encoders, document
// validation and an HTTP handler serving the document with a docs UI.
//
// See: https://spec.openapis.org/oas/v3.0.3
//
// # Document Model
//
// Document, PathItem, Operation, Parameter, RequestBody, Response and Schema
// mirror the OpenAPI Objects of the same name. Operations are stored per
// HTTP method:
//
//	doc := openapi.NewDocument("3.0.0", openapi.Info{Title: "My API", Version: "1.0.0"})
//	doc.SetOperation("/status", http.MethodGet, &openapi.Operation{
//	    Tags:      []string{"status"},
//	    Responses: map[string]*openapi.Response{"200": {Description: "OK"}},
//	})
//
// # Schema Generation
//
// SchemaGenerator converts Go types to Schema Objects. Named struct types are
// collected as component schemas and referenced with $ref; anonymous structs
// stay inline. Pointers produce nullable schemas. Explicitly built schemas
// are added as components with Register:
//
//	gen := openapi.NewSchemaGenerator()
//	ref := gen.Generate(User{})               // {"$ref": "#/components/schemas/User"}
//	ref = gen.Register("Extra", &openapi.Schema{Type: "object"})
//
// Struct fields use the json tag for property names and omitempty for
// optionality. The openapi tag adds constraints as comma separated
// key=value pairs:
//
//	type User struct {
//	    ID   int64  `json:"id" openapi:"minimum=1,description=User ID"`
//	    Role string `json:"role" openapi:"enum=admin|user,example=user"`
//	}
//
// Supported keys: description, example, format, title, pattern, minimum,
// maximum, minLength, maxLength, minItems, maxItems, enum, deprecated,
// readOnly, writeOnly, uniqueItems.
//
// Types implementing Exampler provide the example of their component schema.
//
// # Encoding and Validation
//
// MarshalJSON and MarshalYAML encode a document. Validate runs the
// kin-openapi loader and validator over the JSON form:
//
//	if err := openapi.Validate(ctx, doc); err != nil {
//	    return err
//	}
//
// # Serving
//
// NewHandler serves a lazily built document:
//
//	h := openapi.NewHandler("/docs", func() (*openapi.Document, error) {
//	    return doc, nil
//	}, nil)
//	// /docs/             -> Swagger UI
//	// /docs/schema.json  -> JSON document
//	// /docs/schema.yaml  -> YAML document
package openapi
