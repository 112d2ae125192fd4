package apidoc

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/vitalvas/automd/endpoint"
	"github.com/vitalvas/automd/openapi"
)

// nestedParameterName is the single query parameter of StyleNested.
const nestedParameterName = "parameters"

// OperationRecord is an assembled operation ready for registration.
// Components holds the endpoint component schemas the operation references;
// they are stored only once the operation is inserted.
type OperationRecord struct {
	Path       string
	Verb       string
	Operation  *openapi.Operation
	Components map[string]*openapi.Schema
}

// OperationInput is everything the assembler combines into one operation.
type OperationInput struct {
	Path string
	Verb string

	// Prefix names the endpoint components. Empty means the title cased
	// path and verb.
	Prefix      string
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  *ParameterSchema
	Responses   map[int]ResolvedResponse
}

// assembler renders operations. Named types go to the schema generator;
// endpoint components are staged on the record.
type assembler struct {
	gen        *openapi.SchemaGenerator
	style      ParameterStyle
	defaultTag string
}

func (a assembler) assemble(in OperationInput) OperationRecord {
	prefix := in.Prefix
	if prefix == "" {
		prefix = schemaPrefix(in.Path, in.Verb)
	}

	rec := OperationRecord{
		Path:       in.Path,
		Verb:       in.Verb,
		Components: make(map[string]*openapi.Schema),
	}

	op := &openapi.Operation{
		Tags:        in.Tags,
		Summary:     in.Summary,
		Description: in.Description,
		OperationID: in.OperationID,
		Deprecated:  in.Deprecated,
		Responses:   make(map[string]*openapi.Response, len(in.Responses)),
	}

	if len(op.Tags) == 0 {
		op.Tags = []string{a.defaultTag}
	}

	for code, resolved := range in.Responses {
		schema := resolved.Schema
		if resolved.Kind == ResponseEmpty {
			schema = rec.stage(prefix+"ResponseSchema", schema)
		}

		op.Responses[strconv.Itoa(code)] = &openapi.Response{
			Description: statusDescription(code),
			Content: map[string]*openapi.MediaType{
				resolved.ContentType: {Schema: schema},
			},
		}
	}

	params := in.Parameters
	if params == nil {
		params = &ParameterSchema{Name: prefix + "ParameterSchema"}
	}

	if a.style == StyleNested {
		a.nestedParameters(&rec, op, params)
	} else {
		a.expandedParameters(&rec, op, params)
	}

	rec.Operation = op
	return rec
}

// stage keeps schema as the endpoint component name and returns a $ref to it.
func (rec *OperationRecord) stage(name string, schema *openapi.Schema) *openapi.Schema {
	rec.Components[name] = schema
	return openapi.Ref(name)
}

// nestedParameters documents all groups behind one query parameter whose
// schema references the composite parameter component.
func (a assembler) nestedParameters(rec *OperationRecord, op *openapi.Operation, params *ParameterSchema) {
	param := &openapi.Parameter{
		Name: nestedParameterName,
		In:   string(endpoint.LocationQuery),
	}

	if len(params.Groups) == 0 {
		param.Schema = &openapi.Schema{}
		op.Parameters = []*openapi.Parameter{param}
		return
	}

	composite := &openapi.Schema{
		Type:       "object",
		Properties: make(map[string]*openapi.Schema, len(params.Groups)),
	}
	for _, g := range params.Groups {
		composite.Properties[string(g.Location)] = rec.stage(g.Name, groupSchema(a.gen, g))
	}

	param.Schema = rec.stage(params.Name, composite)
	op.Parameters = []*openapi.Parameter{param}
}

// expandedParameters documents each non-body field as its own parameter
// and json fields as an application/json request body.
func (a assembler) expandedParameters(rec *OperationRecord, op *openapi.Operation, params *ParameterSchema) {
	for _, g := range params.Groups {
		if g.Location == endpoint.LocationJSON {
			required := false
			for _, f := range g.Fields {
				required = required || f.Required
			}
			op.RequestBody = &openapi.RequestBody{
				Required: required,
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: rec.stage(g.Name, groupSchema(a.gen, g))},
				},
			}
			continue
		}

		for _, f := range g.Fields {
			description := f.Description
			f.Description = ""

			op.Parameters = append(op.Parameters, &openapi.Parameter{
				Name:        f.Name,
				In:          string(g.Location),
				Description: description,
				Required:    f.Required || g.Location == endpoint.LocationPath,
				Schema:      fieldSchema(a.gen, f),
			})
		}
	}
}

// statusDescription returns the reason phrase for code.
func statusDescription(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Status " + strconv.Itoa(code)
}

// sortedCodes returns the status codes of m in ascending order.
func sortedCodes[V any](m map[int]V) []int {
	codes := make([]int, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
