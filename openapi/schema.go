package openapi

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Exampler can be implemented by types to provide an example value for
// their generated component schema.
//
//	func (u User) OpenAPIExample() any {
//	    return User{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Alice"}
//	}
type Exampler interface {
	OpenAPIExample() any
}

var timeType = reflect.TypeFor[time.Time]()

// SchemaGenerator converts Go types to Schema Objects and collects named
// types and explicitly registered schemas into a component schemas map.
// A generator belongs to one document build and is not safe for concurrent use.
//
// See: https://spec.openapis.org/oas/v3.0.3#components-object
type SchemaGenerator struct {
	schemas   map[string]*Schema
	visited   map[reflect.Type]bool
	typeNames map[reflect.Type]string
	nameTypes map[string]reflect.Type // nil value marks a name taken by Register
}

// NewSchemaGenerator creates an empty schema generator.
func NewSchemaGenerator() *SchemaGenerator {
	return &SchemaGenerator{
		schemas:   make(map[string]*Schema),
		visited:   make(map[reflect.Type]bool),
		typeNames: make(map[reflect.Type]string),
		nameTypes: make(map[string]reflect.Type),
	}
}

// Schemas returns the collected component schemas.
func (g *SchemaGenerator) Schemas() map[string]*Schema {
	return g.schemas
}

// Register stores schema under name in the component schemas and returns a
// $ref to it. Registering a name again replaces the stored schema.
func (g *SchemaGenerator) Register(name string, schema *Schema) *Schema {
	g.schemas[name] = schema
	if _, ok := g.nameTypes[name]; !ok {
		g.nameTypes[name] = nil
	}
	return Ref(name)
}

// Generate produces a schema for the Go value v. Named struct types are
// stored as components and referenced via $ref.
func (g *SchemaGenerator) Generate(v any) *Schema {
	if v == nil {
		return nil
	}
	return g.GenerateType(reflect.TypeOf(v))
}

// GenerateType is Generate for an already known reflect.Type.
func (g *SchemaGenerator) GenerateType(t reflect.Type) *Schema {
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	if t.Kind() == reflect.Struct && t != timeType {
		if name := g.schemaName(t); name != "" {
			if !g.visited[t] {
				g.visited[t] = true
				schema := g.structSchema(t)
				if ex, ok := reflect.New(t).Interface().(Exampler); ok {
					schema.Example = ex.OpenAPIExample()
				}
				g.schemas[name] = schema
			}

			ref := Ref(name)
			if nullable {
				// 3.0 ignores siblings of $ref, so nullable needs a wrapper.
				return &Schema{AllOf: []*Schema{ref}, Nullable: true}
			}
			return ref
		}
	}

	schema := g.inlineSchema(t)
	if nullable && schema != nil {
		schema.Nullable = true
	}
	return schema
}

// inlineSchema maps primitive and composite Go types to Schema Objects.
//
// See: https://spec.openapis.org/oas/v3.0.3#data-types
func (g *SchemaGenerator) inlineSchema(t reflect.Type) *Schema {
	if t == timeType {
		return &Schema{Type: "string", Format: "date-time"}
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Uint, reflect.Uint8, reflect.Uint16:
		return &Schema{Type: "integer"}

	case reflect.Int32, reflect.Uint32:
		return &Schema{Type: "integer", Format: "int32"}

	case reflect.Int64, reflect.Uint64:
		return &Schema{Type: "integer", Format: "int64"}

	case reflect.Float32:
		return &Schema{Type: "number", Format: "float"}

	case reflect.Float64:
		return &Schema{Type: "number", Format: "double"}

	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: "string", Format: "byte"}
		}
		return &Schema{Type: "array", Items: g.itemSchema(t.Elem())}

	case reflect.Array:
		return &Schema{Type: "array", Items: g.itemSchema(t.Elem())}

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &Schema{Type: "object"}
		}
		return &Schema{Type: "object", AdditionalProperties: g.GenerateType(t.Elem())}

	case reflect.Struct:
		return g.structSchema(t)

	case reflect.Interface:
		return &Schema{}
	}

	return nil
}

// itemSchema returns the array items schema; 3.0 requires items to be present.
func (g *SchemaGenerator) itemSchema(t reflect.Type) *Schema {
	if s := g.GenerateType(t); s != nil {
		return s
	}
	return &Schema{}
}

func (g *SchemaGenerator) structSchema(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       "object",
		Properties: make(map[string]*Schema),
	}

	g.collectFields(t, schema, false)

	if len(schema.Properties) == 0 {
		schema.Properties = nil
	}

	return schema
}

// collectFields walks exported struct fields into schema. Fields of pointer
// embedded structs are optional since the whole embedded value may be nil.
func (g *SchemaGenerator) collectFields(t reflect.Type, schema *Schema, allOptional bool) {
	for i := range t.NumField() {
		field := t.Field(i)

		if field.Anonymous {
			if name, _ := ParseJSONTag(field.Tag.Get("json")); name == "" {
				ft := field.Type
				isPtr := ft.Kind() == reflect.Pointer
				if isPtr {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct && ft != timeType {
					g.collectFields(ft, schema, allOptional || isPtr)
					continue
				}
			}
		}

		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, opts := ParseJSONTag(jsonTag)
		if name == "" {
			name = field.Name
		}

		fieldSchema := g.GenerateType(field.Type)
		if fieldSchema == nil {
			continue
		}

		ApplyTag(fieldSchema, field.Tag.Get("openapi"))

		if opts.StringEncode && fieldSchema.Ref == "" && len(fieldSchema.AllOf) == 0 {
			fieldSchema.Type = "string"
			fieldSchema.Format = ""
		}

		schema.Properties[name] = fieldSchema

		if !opts.OmitEmpty && !allOptional {
			schema.Required = append(schema.Required, name)
		}
	}
}

// JSONTagOptions holds the encoding/json tag options relevant to schemas.
type JSONTagOptions struct {
	OmitEmpty    bool
	StringEncode bool
}

// ParseJSONTag splits a json struct tag into its name and options.
func ParseJSONTag(tag string) (string, JSONTagOptions) {
	if tag == "" {
		return "", JSONTagOptions{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, JSONTagOptions{
		OmitEmpty:    strings.Contains(rest, "omitempty") || strings.Contains(rest, "omitzero"),
		StringEncode: strings.Contains(rest, "string"),
	}
}

// ParseTag splits an `openapi` struct tag into key/value pairs in order.
// Keys without a value map to an empty string.
func ParseTag(tag string) map[string]string {
	out := make(map[string]string)
	if tag == "" {
		return out
	}
	for part := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

// ApplyTag applies the constraints of an `openapi` struct tag to schema.
// Keys not describing the schema itself (such as "in" or "default" used by
// parameter inference) are ignored here.
func ApplyTag(schema *Schema, tag string) {
	for key, value := range ParseTag(tag) {
		switch key {
		case "description":
			schema.Description = value
		case "example":
			schema.Example = ParseValue(schema, value)
		case "format":
			schema.Format = value
		case "title":
			schema.Title = value
		case "pattern":
			schema.Pattern = value
		case "minimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Minimum = &v
			}
		case "maximum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Maximum = &v
			}
		case "minLength":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinLength = &v
			}
		case "maxLength":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxLength = &v
			}
		case "minItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinItems = &v
			}
		case "maxItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxItems = &v
			}
		case "enum":
			values := strings.Split(value, "|")
			schema.Enum = make([]any, len(values))
			for i, v := range values {
				schema.Enum[i] = ParseValue(schema, v)
			}
		case "deprecated":
			schema.Deprecated = true
		case "readOnly":
			schema.ReadOnly = true
		case "writeOnly":
			schema.WriteOnly = true
		case "uniqueItems":
			schema.UniqueItems = true
		}
	}
}

// ParseValue converts a tag value string into a Go value matching the
// schema's type, falling back to the raw string.
func ParseValue(schema *Schema, value string) any {
	switch schema.Type {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

// schemaName picks a unique component name for t. A second type with the
// same simple name from another package gets its package name as a prefix
// ("ApiUser"); if that still collides a numeric suffix is appended.
func (g *SchemaGenerator) schemaName(t reflect.Type) string {
	simple := sanitizeSchemaName(t.Name())
	if simple == "" || t.PkgPath() == "" {
		return ""
	}

	if name, ok := g.typeNames[t]; ok {
		return name
	}

	name := simple
	if existing, ok := g.nameTypes[name]; ok && existing != t {
		name = pkgPrefix(t.PkgPath()) + simple
		if existing, ok := g.nameTypes[name]; ok && existing != t {
			base := name
			for i := 2; ; i++ {
				candidate := base + strconv.Itoa(i)
				if _, ok := g.nameTypes[candidate]; !ok {
					name = candidate
					break
				}
			}
		}
	}

	g.typeNames[t] = name
	g.nameTypes[name] = t
	return name
}

// pkgPrefix capitalizes the last segment of a package path ("net/http" -> "Http").
func pkgPrefix(pkgPath string) string {
	if idx := strings.LastIndexByte(pkgPath, '/'); idx >= 0 {
		pkgPath = pkgPath[idx+1:]
	}
	if len(pkgPath) == 0 {
		return ""
	}
	pkgPath = strings.NewReplacer("-", "_", ".", "_").Replace(pkgPath)
	return strings.ToUpper(pkgPath[:1]) + pkgPath[1:]
}

// sanitizeSchemaName turns generic instantiation names into component keys:
// "Page[pkg.User]" -> "PageUser", "Page[[]pkg.User]" -> "PageUserList".
func sanitizeSchemaName(name string) string {
	base, inner, ok := strings.Cut(name, "[")
	if !ok {
		return name
	}
	inner = strings.TrimSuffix(inner, "]")

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")

	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	result := base + inner
	if isList {
		result += "List"
	}
	return result
}

// BaseTypeName returns a type's name with any generic instantiation
// arguments removed ("ValueResponse[string]" -> "ValueResponse").
func BaseTypeName(t reflect.Type) string {
	name, _, _ := strings.Cut(t.Name(), "[")
	return name
}
