package endpoint

import (
	"reflect"
)

// Location is the part of an HTTP request a parameter is transmitted in.
type Location string

const (
	LocationQuery  Location = "query"
	LocationJSON   Location = "json"
	LocationPath   Location = "path"
	LocationHeader Location = "header"
	LocationCookie Location = "cookie"
)

// Valid reports whether l is one of the known locations. The zero value is
// valid and reads as LocationQuery.
func (l Location) Valid() bool {
	switch l {
	case "", LocationQuery, LocationJSON, LocationPath, LocationHeader, LocationCookie:
		return true
	}
	return false
}

// Kind is the abstract type of a field value.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindList    Kind = "list"
	KindDict    Kind = "dict"
	KindObject  Kind = "object"
	KindRaw     Kind = "raw"
)

// FieldType describes the value type of a field. Items is set for lists and
// dicts, Model for objects backed by a Go struct.
type FieldType struct {
	Kind   Kind
	Format string
	Items  *FieldType
	Model  reflect.Type
}

// Common field types, usable as list and dict item types.
var (
	TypeString   = FieldType{Kind: KindString}
	TypeInteger  = FieldType{Kind: KindInteger}
	TypeNumber   = FieldType{Kind: KindNumber}
	TypeBoolean  = FieldType{Kind: KindBoolean}
	TypeDateTime = FieldType{Kind: KindString, Format: "date-time"}
	TypeRaw      = FieldType{Kind: KindRaw}
)

// ListOf returns a list type with the given item type.
func ListOf(items FieldType) FieldType {
	return FieldType{Kind: KindList, Items: &items}
}

// DictOf returns a string keyed dict type with the given value type.
func DictOf(values FieldType) FieldType {
	return FieldType{Kind: KindDict, Items: &values}
}

// ObjectOf returns an object type whose schema is reflected from model,
// which may be a struct value, a pointer to one or a reflect.Type.
func ObjectOf(model any) FieldType {
	t, ok := model.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(model)
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return FieldType{Kind: KindObject, Model: t}
}

// Field describes one declared request parameter.
type Field struct {
	Name        string
	Location    Location
	Type        FieldType
	Required    bool
	Nullable    bool
	HasDefault  bool
	Default     any
	Description string
}

// In returns the field location, LocationQuery when none was declared.
func (f Field) In() Location {
	if f.Location == "" {
		return LocationQuery
	}
	return f.Location
}

// FieldSet is an ordered collection of fields.
type FieldSet interface {
	Fields() []Field
}

// Fields is a FieldSet backed by a slice.
type Fields []Field

// Fields returns the fields in declaration order.
func (f Fields) Fields() []Field {
	return f
}

// Option adjusts a field built by one of the constructors.
type Option func(*Field)

// In sets the field location.
func In(loc Location) Option {
	return func(f *Field) {
		f.Location = loc
	}
}

// Required marks the field as required.
func Required() Option {
	return func(f *Field) {
		f.Required = true
	}
}

// Optional marks the field as not required. Fields are optional unless
// Required is given.
func Optional() Option {
	return func(f *Field) {
		f.Required = false
	}
}

// Nullable allows null for the field.
func Nullable() Option {
	return func(f *Field) {
		f.Nullable = true
	}
}

// Default declares the value used when the field is absent. A field with a
// default is never required.
func Default(v any) Option {
	return func(f *Field) {
		f.HasDefault = true
		f.Default = v
		f.Required = false
		if v == nil {
			f.Nullable = true
		}
	}
}

// Description sets the human readable field description.
func Description(s string) Option {
	return func(f *Field) {
		f.Description = s
	}
}

// NewField builds a field of any type.
func NewField(name string, typ FieldType, opts ...Option) Field {
	f := Field{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func String(name string, opts ...Option) Field {
	return NewField(name, TypeString, opts...)
}

func Integer(name string, opts ...Option) Field {
	return NewField(name, TypeInteger, opts...)
}

func Number(name string, opts ...Option) Field {
	return NewField(name, TypeNumber, opts...)
}

func Boolean(name string, opts ...Option) Field {
	return NewField(name, TypeBoolean, opts...)
}

func DateTime(name string, opts ...Option) Field {
	return NewField(name, TypeDateTime, opts...)
}

func List(name string, items FieldType, opts ...Option) Field {
	return NewField(name, ListOf(items), opts...)
}

// Dict builds a string keyed object field whose values have the given type.
func Dict(name string, values FieldType, opts ...Option) Field {
	return NewField(name, DictOf(values), opts...)
}

// Object builds a field whose schema is reflected from a Go struct.
func Object(name string, model any, opts ...Option) Field {
	return NewField(name, ObjectOf(model), opts...)
}

// Raw builds a field of unspecified type.
func Raw(name string, opts ...Option) Field {
	return NewField(name, TypeRaw, opts...)
}
