package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testDocument() *Document {
	doc := NewDocument("3.0.0", Info{Title: "Test API", Version: "1.0.0"})
	doc.SetOperation("/items/{id}", http.MethodGet, &Operation{
		Tags:        []string{"items"},
		OperationID: "getItem",
		Parameters: []*Parameter{
			{Name: "id", In: "path", Required: true, Schema: &Schema{Type: "integer"}},
		},
		Responses: map[string]*Response{
			"200": {
				Description: "OK",
				Content: map[string]*MediaType{
					"application/json": {Schema: Ref("Item")},
				},
			},
		},
	})
	doc.Components = &Components{Schemas: map[string]*Schema{
		"Item": {Type: "object", Properties: map[string]*Schema{"name": {Type: "string"}}},
	}}
	return doc
}

func TestMarshalJSON(t *testing.T) {
	data, err := MarshalJSON(testDocument())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "3.0.0", raw["openapi"])
	assert.Contains(t, raw["paths"], "/items/{id}")
	assert.Contains(t, string(data), `"$ref": "#/components/schemas/Item"`)
}

func TestMarshalYAML(t *testing.T) {
	data, err := MarshalYAML(testDocument())
	require.NoError(t, err)

	t.Run("keys follow json names", func(t *testing.T) {
		assert.Contains(t, string(data), "operationId: getItem")
		assert.Contains(t, string(data), "$ref: '#/components/schemas/Item'")
	})

	t.Run("status codes stay strings", func(t *testing.T) {
		var raw map[string]any
		require.NoError(t, yaml.Unmarshal(data, &raw))

		paths := raw["paths"].(map[string]any)
		get := paths["/items/{id}"].(map[string]any)["get"].(map[string]any)
		assert.Contains(t, get["responses"], "200")
	})

	t.Run("block style", func(t *testing.T) {
		assert.NotContains(t, string(data), "{\"")
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		require.NoError(t, Validate(context.Background(), testDocument()))
	})

	t.Run("unknown parameter location", func(t *testing.T) {
		doc := testDocument()
		doc.Paths["/items/{id}"].Get.Parameters[0].In = "body"

		err := Validate(context.Background(), doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("undeclared path parameter", func(t *testing.T) {
		doc := testDocument()
		doc.Paths["/items/{id}"].Get.Parameters = nil

		assert.ErrorIs(t, Validate(context.Background(), doc), ErrInvalidDocument)
	})
}
