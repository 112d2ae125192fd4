package apidoc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vitalvas/automd/endpoint"
	"github.com/vitalvas/automd/openapi"
)

// pathVarRegexp matches router variables in the form {name} or {name:pattern}.
var pathVarRegexp = regexp.MustCompile(`\{([^}]+)\}`)

// Builder turns documented applications into OpenAPI documents. It is
// immutable after New and safe for concurrent use; each build runs in its
// own Session.
type Builder struct {
	cfg      Config
	logger   *slog.Logger
	adapter  SignatureAdapter
	table    *ResponseTable
	registry prometheus.Registerer
	metrics  *metrics
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. A nil logger means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithMetrics registers build metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(b *Builder) {
		b.registry = reg
	}
}

// WithSignatureAdapter replaces the ReflectAdapter used for parameter
// inference.
func WithSignatureAdapter(adapter SignatureAdapter) Option {
	return func(b *Builder) {
		b.adapter = adapter
	}
}

// WithResponseTable replaces DefaultResponseTable.
func WithResponseTable(table *ResponseTable) Option {
	return func(b *Builder) {
		b.table = table
	}
}

// New returns a Builder for cfg. Defaults are applied to cfg before it is
// validated.
func New(cfg Config, opts ...Option) (*Builder, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		cfg:     cfg,
		adapter: ReflectAdapter{},
		table:   DefaultResponseTable(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	if b.registry != nil {
		m, err := newMetrics(b.registry)
		if err != nil {
			return nil, fmt.Errorf("apidoc: register metrics: %w", err)
		}
		b.metrics = m
	}

	return b, nil
}

// Config returns the effective configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Start opens a session with a fresh document.
func (b *Builder) Start() *Session {
	doc := openapi.NewDocument(b.cfg.OpenAPIVersion, b.cfg.documentInfo())
	doc.Servers = slices.Clone(b.cfg.Servers)

	gen := openapi.NewSchemaGenerator()

	return &Session{
		b:        b,
		doc:      doc,
		gen:      gen,
		prefixes: make(map[string]string),
		asm: assembler{
			gen:        gen,
			style:      b.cfg.ParameterStyle,
			defaultTag: b.cfg.DefaultTag,
		},
	}
}

// Build documents every marked handler of app. Without FailFast, failing
// endpoints are left out and their errors are joined; the returned document
// then holds every endpoint that succeeded. With FailFast the first failure
// is returned alone.
func (b *Builder) Build(app App) (*openapi.Document, error) {
	start := time.Now()
	defer func() {
		b.metrics.observeBuild(time.Since(start).Seconds())
	}()

	routes, err := app.Routes()
	if err != nil {
		return nil, fmt.Errorf("apidoc: list routes: %w", err)
	}

	s := b.Start()
	var errs []error

	for _, route := range routes {
		targets := routeTargets(route)

		for _, target := range targets {
			meta, ok := endpoint.Lookup(target.handler)
			if !ok {
				b.logger.Debug("skipping undocumented endpoint", "method", target.method, "path", route.Path)
				b.metrics.endpoint(target.method, resultSkipped)
				continue
			}

			opID := route.Name
			if opID != "" && len(targets) > 1 {
				opID += titleWords(target.method)
			}

			if err := s.register(route.Path, target.method, opID, meta); err != nil {
				b.metrics.endpoint(target.method, resultFailed)
				if b.cfg.FailFast {
					return nil, err
				}
				b.logger.Warn("endpoint not documented", "method", target.method, "path", route.Path, "error", err)
				errs = append(errs, err)
				continue
			}
			b.metrics.endpoint(target.method, resultRegistered)
		}
	}

	return s.Document(), errors.Join(errs...)
}

// Handler serves the document of app with openapi.NewHandler. The
// document is built on the first request. Endpoint failures are logged and
// the partial document is served.
func (b *Builder) Handler(app App, basePath string, cfg *openapi.HandlerConfig) http.Handler {
	return openapi.NewHandler(basePath, func() (*openapi.Document, error) {
		doc, err := b.Build(app)
		if err != nil {
			if doc == nil {
				return nil, err
			}
			b.logger.Warn("serving partial document", "error", err)
		}
		return doc, nil
	}, cfg)
}

type target struct {
	method  string
	handler http.Handler
}

// routeTargets lists the method and handler pairs of a route. Handlers
// dispatching per method contribute one pair per method. A route without
// methods and without a method set is documented as GET.
func routeTargets(route Route) []target {
	if ms, ok := methodSet(route.Handler); ok {
		var targets []target
		for _, method := range ms.Methods() {
			if len(route.Methods) > 0 && !slices.Contains(route.Methods, method) {
				continue
			}
			targets = append(targets, target{method: method, handler: ms.Handler(method)})
		}
		return targets
	}

	methods := route.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}

	targets := make([]target, 0, len(methods))
	for _, method := range methods {
		targets = append(targets, target{method: method, handler: route.Handler})
	}
	return targets
}

// methodSet finds an endpoint.MethodSet in h or the handlers it wraps.
func methodSet(h http.Handler) (endpoint.MethodSet, bool) {
	for h != nil {
		if ms, ok := h.(endpoint.MethodSet); ok {
			return ms, true
		}
		u, ok := h.(interface{ Unwrap() http.Handler })
		if !ok {
			break
		}
		h = u.Unwrap()
	}
	return nil, false
}

// Session builds one document. It is not safe for concurrent use.
type Session struct {
	b   *Builder
	doc *openapi.Document
	gen *openapi.SchemaGenerator
	asm assembler

	// prefixes maps a component name prefix to the endpoint owning it.
	prefixes map[string]string
}

// Register documents one endpoint: parameters are inferred when needed,
// grouped by location, responses are resolved and the assembled operation
// is inserted into the document. Errors are *EndpointError values.
func (s *Session) Register(path, verb string, meta endpoint.Meta) error {
	return s.register(path, verb, "", meta)
}

func (s *Session) register(path, verb, operationID string, meta endpoint.Meta) error {
	verb = strings.ToUpper(verb)
	apiPath, vars := parsePath(path)

	if !openapi.SupportedMethod(verb) {
		return endpointError(verb, apiPath, fmt.Errorf("%w: %s", ErrUnsupportedMethod, verb))
	}

	fields, err := s.fields(meta)
	if err != nil {
		return endpointError(verb, apiPath, err)
	}
	fields = withPathVars(fields, vars)

	prefix := s.componentPrefix(apiPath, verb)

	params, err := groupFields(fields, prefix)
	if err != nil {
		return endpointError(verb, apiPath, err)
	}

	descriptors := meta.Responses
	if len(descriptors) == 0 {
		descriptors = map[int]any{http.StatusOK: nil}
	}

	resolved := make(map[int]ResolvedResponse, len(descriptors))
	for _, code := range sortedCodes(descriptors) {
		r, err := s.b.table.Resolve(s.gen, descriptors[code], apiPath, verb)
		if err != nil {
			return endpointError(verb, apiPath, err)
		}
		resolved[code] = r
	}

	rec := s.asm.assemble(OperationInput{
		Path:        apiPath,
		Verb:        verb,
		Prefix:      prefix,
		OperationID: operationID,
		Summary:     meta.Summary,
		Description: meta.Description,
		Tags:        meta.Tags,
		Deprecated:  meta.Deprecated,
		Parameters:  params,
		Responses:   resolved,
	})

	result, err := insert(s.doc, s.gen.Schemas(), rec, s.b.cfg.DuplicatePolicy)
	if err != nil {
		return endpointError(verb, apiPath, err)
	}

	s.prefixes[prefix] = endpointKey(apiPath, verb)
	for name, schema := range rec.Components {
		s.gen.Register(name, schema)
	}

	switch result {
	case replaced:
		s.b.logger.Warn("operation overwritten", "method", verb, "path", apiPath)
	case unchanged:
		s.b.logger.Debug("operation already registered", "method", verb, "path", apiPath)
	default:
		s.b.logger.Debug("operation registered", "method", verb, "path", apiPath)
	}
	return nil
}

// componentPrefix returns the component name prefix of an endpoint. Distinct
// endpoints whose paths title case alike are numbered in registration
// order: POST "/a-b" and "/a/b" get "ABPost" and "ABPost2".
func (s *Session) componentPrefix(path, verb string) string {
	key := endpointKey(path, verb)
	base := schemaPrefix(path, verb)

	prefix := base
	for n := 2; ; n++ {
		if owner, ok := s.prefixes[prefix]; !ok || owner == key {
			return prefix
		}
		prefix = base + strconv.Itoa(n)
	}
}

func endpointKey(path, verb string) string {
	return verb + " " + path
}

// fields returns the declared fields of meta, inferring them from the
// signature when no parameters were declared.
func (s *Session) fields(meta endpoint.Meta) (endpoint.Fields, error) {
	if meta.Parameters != nil {
		return endpoint.Fields(meta.Parameters.Fields()), nil
	}
	if meta.Signature != nil {
		return s.b.adapter.Fields(meta.Signature)
	}
	return nil, nil
}

// Document finalizes component schemas and top-level tags and returns the
// document. Components no operation references, such as those of replaced
// operations, are left out. Registering more endpoints afterwards is
// allowed; call Document again to refresh.
func (s *Session) Document() *openapi.Document {
	s.doc.Components = nil
	if schemas := s.doc.ReferencedSchemas(s.gen.Schemas()); len(schemas) > 0 {
		s.doc.Components = &openapi.Components{Schemas: schemas}
	}

	s.doc.Tags = nil
	for _, name := range s.doc.TagNames() {
		s.doc.Tags = append(s.doc.Tags, openapi.Tag{Name: name})
	}

	return s.doc
}

// pathVar is a variable of a router path template.
type pathVar struct {
	name    string
	pattern string
}

// parsePath converts a router path template into an OpenAPI path:
// "/users/{id:[0-9]+}" -> "/users/{id}".
func parsePath(tpl string) (string, []pathVar) {
	var vars []pathVar

	apiPath := pathVarRegexp.ReplaceAllStringFunc(tpl, func(match string) string {
		name, pattern, _ := strings.Cut(match[1:len(match)-1], ":")
		vars = append(vars, pathVar{name: name, pattern: pattern})
		return "{" + name + "}"
	})

	return apiPath, vars
}

// withPathVars appends a required path field for every template variable
// not declared as a path field.
func withPathVars(fields endpoint.Fields, vars []pathVar) endpoint.Fields {
	if len(vars) == 0 {
		return fields
	}

	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.In() == endpoint.LocationPath {
			declared[f.Name] = true
		}
	}

	out := slices.Clone(fields)
	for _, v := range vars {
		if declared[v.name] {
			continue
		}
		typ := endpoint.TypeString
		if v.pattern == "[0-9]+" || v.pattern == `\d+` {
			typ = endpoint.TypeInteger
		}
		out = append(out, endpoint.NewField(v.name, typ, endpoint.In(endpoint.LocationPath), endpoint.Required()))
	}
	return out
}
