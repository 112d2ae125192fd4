package apidoc

import (
	"github.com/vitalvas/automd/endpoint"
	"github.com/vitalvas/automd/openapi"
)

// groupSchema renders a location group as an object schema. Property
// order in the output follows the encoder; required keeps field order.
func groupSchema(gen *openapi.SchemaGenerator, g LocationGroup) *openapi.Schema {
	schema := &openapi.Schema{
		Type:       "object",
		Properties: make(map[string]*openapi.Schema, len(g.Fields)),
	}
	for _, f := range g.Fields {
		schema.Properties[f.Name] = fieldSchema(gen, f)
		if f.Required {
			schema.Required = append(schema.Required, f.Name)
		}
	}
	return schema
}

// fieldSchema renders one field including its description, default and
// nullability.
func fieldSchema(gen *openapi.SchemaGenerator, f endpoint.Field) *openapi.Schema {
	schema := typeSchema(gen, f.Type)

	if schema.Ref != "" && (f.Description != "" || f.Nullable || (f.HasDefault && f.Default != nil)) {
		schema = &openapi.Schema{AllOf: []*openapi.Schema{schema}}
	}

	if f.Description != "" {
		schema.Description = f.Description
	}
	if f.Nullable {
		schema.Nullable = true
	}
	if f.HasDefault && f.Default != nil {
		schema.Default = f.Default
	}
	return schema
}

func typeSchema(gen *openapi.SchemaGenerator, ft endpoint.FieldType) *openapi.Schema {
	switch ft.Kind {
	case endpoint.KindString, endpoint.KindInteger, endpoint.KindNumber, endpoint.KindBoolean:
		return &openapi.Schema{Type: string(ft.Kind), Format: ft.Format}

	case endpoint.KindList:
		items := &openapi.Schema{}
		if ft.Items != nil {
			items = typeSchema(gen, *ft.Items)
		}
		return &openapi.Schema{Type: "array", Items: items}

	case endpoint.KindDict:
		schema := &openapi.Schema{Type: "object"}
		if ft.Items != nil && ft.Items.Kind != endpoint.KindRaw {
			schema.AdditionalProperties = typeSchema(gen, *ft.Items)
		}
		return schema

	case endpoint.KindObject:
		if ft.Model != nil {
			if s := gen.GenerateType(ft.Model); s != nil {
				return s
			}
		}
		return &openapi.Schema{Type: "object"}
	}

	return &openapi.Schema{Format: ft.Format}
}
