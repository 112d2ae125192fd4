package apidoc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/vitalvas/automd/endpoint"
	"github.com/vitalvas/automd/openapi"
)

const rawFieldDescription = "parameter of unspecified type"

// SignatureAdapter derives parameter fields from an endpoint signature.
type SignatureAdapter interface {
	Fields(signature any) (endpoint.Fields, error)
}

// ReflectAdapter infers fields from Go types.
//
// A signature is a struct value, a pointer to a struct, a reflect.Type of a
// struct, or a function. For functions, context.Context,
// http.ResponseWriter and *http.Request arguments are skipped and every
// other argument must be a struct whose fields are expanded in order.
//
// Each exported struct field becomes one parameter named after its json
// tag. The openapi tag sets the location, default, description and format:
//
//	type statusArgs struct {
//	    Text  string  `json:"text" openapi:"default=Hello AutoMD"`
//	    Token string  `json:"token" openapi:"in=header"`
//	    Limit *int    `json:"limit"`
//	}
//
// Fields without a default are required. Pointer fields without a default
// are optional and nullable with a nil default.
type ReflectAdapter struct{}

var (
	contextType        = reflect.TypeFor[context.Context]()
	responseWriterType = reflect.TypeFor[http.ResponseWriter]()
	requestType        = reflect.TypeFor[*http.Request]()
	timeType           = reflect.TypeFor[time.Time]()
	rawMessageType     = reflect.TypeFor[json.RawMessage]()
)

// Fields implements SignatureAdapter.
func (ReflectAdapter) Fields(signature any) (endpoint.Fields, error) {
	if signature == nil {
		return nil, fmt.Errorf("%w: nil signature", ErrUnsupportedSignature)
	}

	t, ok := signature.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(signature)
	}

	if t.Kind() != reflect.Func {
		return structFields(t)
	}

	var fields endpoint.Fields
	for i := range t.NumIn() {
		in := t.In(i)
		if in == contextType || in == responseWriterType || in == requestType {
			continue
		}

		inFields, err := structFields(in)
		if err != nil {
			return nil, err
		}
		fields = append(fields, inFields...)
	}
	return fields, nil
}

func structFields(t reflect.Type) (endpoint.Fields, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrUnsupportedSignature, t)
	}

	var fields endpoint.Fields
	for i := range t.NumField() {
		sf := t.Field(i)

		if sf.Anonymous && sf.Tag.Get("json") == "" {
			embedded := sf.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct && embedded != timeType {
				inner, err := structFields(embedded)
				if err != nil {
					return nil, err
				}
				fields = append(fields, inner...)
				continue
			}
		}

		if !sf.IsExported() {
			continue
		}

		jsonTag := sf.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, _ := openapi.ParseJSONTag(jsonTag)
		if name == "" {
			name = sf.Name
		}

		field, err := inferField(name, sf)
		if err != nil {
			return nil, &fieldError{field: name, err: err}
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func inferField(name string, sf reflect.StructField) (endpoint.Field, error) {
	ft, err := fieldType(sf.Type)
	if err != nil {
		return endpoint.Field{}, err
	}

	tag := openapi.ParseTag(sf.Tag.Get("openapi"))

	loc := endpoint.Location(tag["in"])
	if !loc.Valid() {
		return endpoint.Field{}, fmt.Errorf("%w: %q", ErrInvalidLocation, loc)
	}

	if format := tag["format"]; format != "" {
		ft.Format = format
	}

	field := endpoint.Field{
		Name:        name,
		Location:    loc,
		Type:        ft,
		Description: tag["description"],
	}

	switch raw, ok := tag["default"]; {
	case ok:
		value, err := parseDefault(ft, raw)
		if err != nil {
			return endpoint.Field{}, err
		}
		field.HasDefault = true
		field.Default = value
	case sf.Type.Kind() == reflect.Pointer:
		field.HasDefault = true
		field.Nullable = true
	default:
		field.Required = true
	}

	if ft.Kind == endpoint.KindRaw && field.Description == "" {
		field.Description = rawFieldDescription
	}

	return field, nil
}

// fieldType maps a Go type to a field type. Pointers are looked through;
// nullability is decided by the caller.
func fieldType(t reflect.Type) (endpoint.FieldType, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return endpoint.TypeDateTime, nil
	case rawMessageType:
		return endpoint.TypeRaw, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return endpoint.TypeBoolean, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Uint, reflect.Uint8, reflect.Uint16:
		return endpoint.TypeInteger, nil

	case reflect.Int32, reflect.Uint32:
		return endpoint.FieldType{Kind: endpoint.KindInteger, Format: "int32"}, nil

	case reflect.Int64, reflect.Uint64:
		return endpoint.FieldType{Kind: endpoint.KindInteger, Format: "int64"}, nil

	case reflect.Float32:
		return endpoint.FieldType{Kind: endpoint.KindNumber, Format: "float"}, nil

	case reflect.Float64:
		return endpoint.FieldType{Kind: endpoint.KindNumber, Format: "double"}, nil

	case reflect.String:
		return endpoint.TypeString, nil

	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return endpoint.FieldType{Kind: endpoint.KindString, Format: "byte"}, nil
		}
		items, err := fieldType(t.Elem())
		if err != nil {
			return endpoint.FieldType{}, err
		}
		return endpoint.ListOf(items), nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return endpoint.FieldType{}, fmt.Errorf("%w: %s has non-string keys", ErrUnmappedType, t)
		}
		values, err := fieldType(t.Elem())
		if err != nil {
			return endpoint.FieldType{}, err
		}
		return endpoint.DictOf(values), nil

	case reflect.Struct:
		return endpoint.ObjectOf(t), nil

	case reflect.Interface:
		return endpoint.TypeRaw, nil
	}

	return endpoint.FieldType{}, fmt.Errorf("%w: %s", ErrUnmappedType, t)
}

// parseDefault converts a tag default into a value of the field's type.
func parseDefault(ft endpoint.FieldType, raw string) (any, error) {
	var (
		value any
		err   error
	)

	switch ft.Kind {
	case endpoint.KindInteger:
		value, err = strconv.ParseInt(raw, 10, 64)
	case endpoint.KindNumber:
		value, err = strconv.ParseFloat(raw, 64)
	case endpoint.KindBoolean:
		value, err = strconv.ParseBool(raw)
	case endpoint.KindString:
		value = raw
		if ft.Format == "date-time" {
			_, err = time.Parse(time.RFC3339, raw)
		}
	default:
		err = json.Unmarshal([]byte(raw), &value)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidDefault, raw, err)
	}
	return value, nil
}
