package demoapp

import (
	"encoding/json"
	"net/http"

	"github.com/vitalvas/automd/endpoint"
	"github.com/vitalvas/automd/responses"
)

// introspectionArgs is the JSON body of POST /introspection_status. Every
// documented parameter is inferred from it.
type introspectionArgs struct {
	MultiField      any             `json:"multi_field" openapi:"in=json"`
	Text            string          `json:"text" openapi:"in=json,default=Hello AutoMD"`
	ComplexList     *[]string       `json:"complex_list" openapi:"in=json"`
	ComplexListList *[][]string     `json:"complex_list_list" openapi:"in=json"`
	Tuple           *[]any          `json:"a_tuple" openapi:"in=json"`
	TupleComplex    *[]any          `json:"tuple_complex" openapi:"in=json"`
	ComplexDict     *map[string]any `json:"complex_dict" openapi:"in=json"`
	OptionalBool    *bool           `json:"optional_bool" openapi:"in=json"`
}

// IntrospectionStatus returns the /introspection_status resource.
func IntrospectionStatus() endpoint.Resource {
	return endpoint.Resource{
		http.MethodPost: endpoint.DescribeFunc(postIntrospection, endpoint.Meta{
			Signature: introspect,
			Responses: map[int]any{
				http.StatusOK:         responses.ListResponse[string]{},
				http.StatusBadRequest: responses.Text(""),
			},
		}),
	}
}

func introspect(args introspectionArgs) responses.ListResponse[string] {
	text := statusOK
	if args.Text != "" {
		text += ": " + args.Text
	}
	return responses.List(text)
}

func postIntrospection(w http.ResponseWriter, r *http.Request) {
	args := introspectionArgs{Text: defaultText}
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		_ = responses.Text("invalid json body").Render(w, http.StatusBadRequest)
		return
	}

	_ = introspect(args).Render(w, http.StatusOK)
}
