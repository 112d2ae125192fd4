package openapi

import (
	"net/http"
	"sort"
	"strings"
)

// NewDocument returns an empty document with the given version and info.
func NewDocument(version string, info Info) *Document {
	return &Document{
		OpenAPI: version,
		Info:    info,
		Paths:   make(map[string]*PathItem),
	}
}

// Operation returns the operation registered for method on path, or nil.
func (d *Document) Operation(path, method string) *Operation {
	item, ok := d.Paths[path]
	if !ok {
		return nil
	}
	return item.Operation(method)
}

// SetOperation stores op for method on path, creating the path item when
// needed. It reports false for methods a Path Item cannot hold.
func (d *Document) SetOperation(path, method string, op *Operation) bool {
	if d.Paths == nil {
		d.Paths = make(map[string]*PathItem)
	}
	item, ok := d.Paths[path]
	if !ok {
		item = &PathItem{}
	}
	if !item.SetOperation(method, op) {
		return false
	}
	d.Paths[path] = item
	return true
}

// TagNames returns the sorted set of tags used by all operations.
func (d *Document) TagNames() []string {
	seen := make(map[string]struct{})
	for _, item := range d.Paths {
		for _, op := range item.Operations() {
			for _, tag := range op.Tags {
				seen[tag] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReferencedSchemas returns the entries of components reachable from the
// operations of d through $ref, following references between components.
func (d *Document) ReferencedSchemas(components map[string]*Schema) map[string]*Schema {
	out := make(map[string]*Schema)

	var visit func(s *Schema)
	visit = func(s *Schema) {
		if s == nil {
			return
		}

		if name, ok := strings.CutPrefix(s.Ref, refPrefix); ok {
			if _, done := out[name]; !done {
				if target, ok := components[name]; ok {
					out[name] = target
					visit(target)
				}
			}
		}

		visit(s.Items)
		visit(s.AdditionalProperties)
		visit(s.Not)
		for _, p := range s.Properties {
			visit(p)
		}
		for _, list := range [][]*Schema{s.AllOf, s.OneOf, s.AnyOf} {
			for _, c := range list {
				visit(c)
			}
		}
	}

	visitContent := func(content map[string]*MediaType) {
		for _, media := range content {
			if media != nil {
				visit(media.Schema)
			}
		}
	}

	for _, item := range d.Paths {
		for _, p := range item.Parameters {
			visit(p.Schema)
		}
		for _, op := range item.Operations() {
			for _, p := range op.Parameters {
				visit(p.Schema)
			}
			if op.RequestBody != nil {
				visitContent(op.RequestBody.Content)
			}
			for _, resp := range op.Responses {
				if resp != nil {
					visitContent(resp.Content)
				}
			}
		}
	}

	return out
}

// SupportedMethod reports whether a Path Item has an operation slot for method.
func SupportedMethod(method string) bool {
	return (&PathItem{}).SetOperation(method, nil)
}

// Operation returns the operation for an HTTP method, or nil.
func (p *PathItem) Operation(method string) *Operation {
	switch method {
	case http.MethodGet:
		return p.Get
	case http.MethodPost:
		return p.Post
	case http.MethodPut:
		return p.Put
	case http.MethodDelete:
		return p.Delete
	case http.MethodPatch:
		return p.Patch
	case http.MethodHead:
		return p.Head
	case http.MethodOptions:
		return p.Options
	case http.MethodTrace:
		return p.Trace
	}
	return nil
}

// SetOperation assigns op to the slot for method.
func (p *PathItem) SetOperation(method string, op *Operation) bool {
	switch method {
	case http.MethodGet:
		p.Get = op
	case http.MethodPost:
		p.Post = op
	case http.MethodPut:
		p.Put = op
	case http.MethodDelete:
		p.Delete = op
	case http.MethodPatch:
		p.Patch = op
	case http.MethodHead:
		p.Head = op
	case http.MethodOptions:
		p.Options = op
	case http.MethodTrace:
		p.Trace = op
	default:
		return false
	}
	return true
}

// Operations returns the non-nil operations of the path item keyed by method.
func (p *PathItem) Operations() map[string]*Operation {
	ops := make(map[string]*Operation)
	for _, method := range []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodPatch, http.MethodHead, http.MethodOptions, http.MethodTrace,
	} {
		if op := p.Operation(method); op != nil {
			ops[method] = op
		}
	}
	return ops
}
