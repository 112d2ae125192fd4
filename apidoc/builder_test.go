package apidoc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/automd/endpoint"
	"github.com/vitalvas/automd/openapi"
	"github.com/vitalvas/automd/responses"
)

type echoArgs struct {
	Text string `json:"text" openapi:"default=Hello AutoMD"`
}

type noteArgs struct {
	Text     string `json:"text" openapi:"default=Hello AutoMD"`
	JSONText string `json:"json_text" openapi:"in=json,default=Hello AutoMD"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBuilder(t *testing.T, cfg Config, opts ...Option) *Builder {
	t.Helper()

	if cfg.Title == "" {
		cfg.Title = "Status API"
	}
	opts = append([]Option{WithLogger(discardLogger())}, opts...)

	b, err := New(cfg, opts...)
	require.NoError(t, err)
	return b
}

func noop(http.ResponseWriter, *http.Request) {}

func statusMeta() endpoint.Meta {
	return endpoint.Meta{
		Parameters: endpoint.Fields{
			endpoint.String("text", endpoint.Default("Hello AutoMD")),
		},
		Responses: map[int]any{http.StatusOK: responses.Value("")},
		Summary:   "Status Getter",
	}
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		b := newTestBuilder(t, Config{})
		cfg := b.Config()

		assert.Equal(t, DefaultAppVersion, cfg.AppVersion)
		assert.Equal(t, DefaultOpenAPIVersion, cfg.OpenAPIVersion)
		assert.Equal(t, "Status API", cfg.DefaultTag)
		assert.Equal(t, StyleExpanded, cfg.ParameterStyle)
		assert.Equal(t, PolicyOverwrite, cfg.DuplicatePolicy)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := New(Config{})
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = New(Config{Title: "x", OpenAPIVersion: "3.1.0"})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("metrics registered twice", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		newTestBuilder(t, Config{}, WithMetrics(reg))
		newTestBuilder(t, Config{}, WithMetrics(reg))
	})
}

func TestSessionRegister(t *testing.T) {
	t.Run("status endpoint", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		require.NoError(t, s.Register("/status", "get", statusMeta()))

		doc := s.Document()
		op := doc.Operation("/status", http.MethodGet)
		require.NotNil(t, op)

		assert.Equal(t, "Status Getter", op.Summary)
		assert.Equal(t, []string{"Status API"}, op.Tags)
		assert.Equal(t, []openapi.Tag{{Name: "Status API"}}, doc.Tags)

		require.Len(t, op.Parameters, 1)
		assert.Equal(t, "text", op.Parameters[0].Name)
		assert.Equal(t, "query", op.Parameters[0].In)
		assert.False(t, op.Parameters[0].Required)
		assert.Equal(t, "Hello AutoMD", op.Parameters[0].Schema.Default)

		resp := op.Responses["200"]
		require.NotNil(t, resp)
		require.Contains(t, resp.Content, "text/plain")
		assert.Equal(t, "string", resp.Content["text/plain"].Schema.Type)

		require.NoError(t, openapi.Validate(context.Background(), doc))
	})

	t.Run("inferred parameters", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		require.NoError(t, s.Register("/status", http.MethodGet, endpoint.Meta{
			Signature: echoArgs{},
			Responses: map[int]any{http.StatusOK: responses.Value("")},
		}))

		op := s.Document().Operation("/status", http.MethodGet)
		require.NotNil(t, op)
		require.Len(t, op.Parameters, 1)
		assert.Equal(t, "text", op.Parameters[0].Name)
		assert.Equal(t, "Hello AutoMD", op.Parameters[0].Schema.Default)
	})

	t.Run("inferred from handler function", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		require.NoError(t, s.Register("/status", http.MethodPost, endpoint.Meta{
			Signature: func(context.Context, *http.Request, noteArgs) {},
			Responses: map[int]any{http.StatusOK: responses.JSON(statusBody{})},
		}))

		doc := s.Document()
		op := doc.Operation("/status", http.MethodPost)
		require.NotNil(t, op)

		require.Len(t, op.Parameters, 1)
		require.NotNil(t, op.RequestBody)
		assert.Equal(t, "#/components/schemas/StatusPostJsonSchema",
			op.RequestBody.Content["application/json"].Schema.Ref)

		require.NotNil(t, doc.Components)
		assert.Contains(t, doc.Components.Schemas, "StatusPostJsonSchema")
		assert.Contains(t, doc.Components.Schemas, "statusBody")
		assert.Equal(t, "#/components/schemas/statusBody",
			op.Responses["200"].Content["application/json"].Schema.Ref)

		require.NoError(t, openapi.Validate(context.Background(), doc))
	})

	t.Run("no responses documents an empty 200", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		require.NoError(t, s.Register("/ping", http.MethodGet, endpoint.Meta{}))

		doc := s.Document()
		op := doc.Operation("/ping", http.MethodGet)
		require.NotNil(t, op)
		assert.Equal(t, "#/components/schemas/PingGetResponseSchema",
			op.Responses["200"].Content["text/plain"].Schema.Ref)
		assert.Contains(t, doc.Components.Schemas, "PingGetResponseSchema")
	})

	t.Run("path variables", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		require.NoError(t, s.Register("/items/{id:[0-9]+}/{slug}", http.MethodGet, endpoint.Meta{}))

		doc := s.Document()
		op := doc.Operation("/items/{id}/{slug}", http.MethodGet)
		require.NotNil(t, op)
		require.Len(t, op.Parameters, 2)

		assert.Equal(t, "id", op.Parameters[0].Name)
		assert.Equal(t, "path", op.Parameters[0].In)
		assert.True(t, op.Parameters[0].Required)
		assert.Equal(t, "integer", op.Parameters[0].Schema.Type)
		assert.Equal(t, "string", op.Parameters[1].Schema.Type)

		require.NoError(t, openapi.Validate(context.Background(), doc))
	})

	t.Run("declared path field is kept", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		require.NoError(t, s.Register("/items/{id}", http.MethodGet, endpoint.Meta{
			Parameters: endpoint.Fields{
				endpoint.Integer("id", endpoint.In(endpoint.LocationPath), endpoint.Description("Item ID")),
			},
		}))

		op := s.Document().Operation("/items/{id}", http.MethodGet)
		require.Len(t, op.Parameters, 1)
		assert.Equal(t, "Item ID", op.Parameters[0].Description)
	})

	t.Run("unresolvable response", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		err := s.Register("/status", http.MethodGet, endpoint.Meta{
			Responses: map[int]any{http.StatusOK: plainBody{}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnresolvableResponse)

		var ee *EndpointError
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, http.MethodGet, ee.Method)
		assert.Equal(t, "/status", ee.Path)
		assert.Contains(t, err.Error(), "GET /status")

		assert.Nil(t, s.Document().Operation("/status", http.MethodGet))
	})

	t.Run("field errors name the field", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		err := s.Register("/status", http.MethodGet, endpoint.Meta{
			Parameters: endpoint.Fields{
				endpoint.String("text"),
				endpoint.String("text", endpoint.In(endpoint.LocationHeader)),
			},
		})
		assert.ErrorIs(t, err, ErrDuplicateField)

		var ee *EndpointError
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, "text", ee.Field)
		assert.Equal(t, `apidoc: GET /status: field text: duplicate parameter field: "text"`, err.Error())
	})

	t.Run("unsupported method", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		err := s.Register("/status", http.MethodConnect, endpoint.Meta{})
		assert.ErrorIs(t, err, ErrUnsupportedMethod)
	})

	t.Run("registering twice is idempotent", func(t *testing.T) {
		s := newTestBuilder(t, Config{DuplicatePolicy: PolicyReject}).Start()
		require.NoError(t, s.Register("/status", http.MethodGet, statusMeta()))
		first, err := openapi.MarshalJSON(s.Document())
		require.NoError(t, err)

		require.NoError(t, s.Register("/status", http.MethodGet, statusMeta()))
		second, err := openapi.MarshalJSON(s.Document())
		require.NoError(t, err)

		assert.JSONEq(t, string(first), string(second))
	})

	t.Run("duplicate policies", func(t *testing.T) {
		changed := statusMeta()
		changed.Summary = "Other"

		s := newTestBuilder(t, Config{DuplicatePolicy: PolicyReject}).Start()
		require.NoError(t, s.Register("/status", http.MethodGet, statusMeta()))
		assert.ErrorIs(t, s.Register("/status", http.MethodGet, changed), ErrDuplicateOperation)
		assert.Equal(t, "Status Getter", s.Document().Operation("/status", http.MethodGet).Summary)

		s = newTestBuilder(t, Config{}).Start()
		require.NoError(t, s.Register("/status", http.MethodGet, statusMeta()))
		require.NoError(t, s.Register("/status", http.MethodGet, changed))
		assert.Equal(t, "Other", s.Document().Operation("/status", http.MethodGet).Summary)
	})

	t.Run("reject catches differing json fields", func(t *testing.T) {
		withBody := func(field string) endpoint.Meta {
			return endpoint.Meta{Parameters: endpoint.Fields{
				endpoint.String("text"),
				endpoint.String(field, endpoint.In(endpoint.LocationJSON)),
			}}
		}

		s := newTestBuilder(t, Config{DuplicatePolicy: PolicyReject}).Start()
		require.NoError(t, s.Register("/status", http.MethodPost, withBody("json_text")))
		assert.ErrorIs(t, s.Register("/status", http.MethodPost, withBody("other")), ErrDuplicateOperation)

		body := s.Document().Components.Schemas["StatusPostJsonSchema"]
		require.NotNil(t, body)
		assert.Contains(t, body.Properties, "json_text")
		assert.NotContains(t, body.Properties, "other")
	})

	t.Run("colliding component names", func(t *testing.T) {
		s := newTestBuilder(t, Config{DuplicatePolicy: PolicyReject}).Start()
		require.NoError(t, s.Register("/a-b", http.MethodPost, endpoint.Meta{Parameters: endpoint.Fields{
			endpoint.String("alpha", endpoint.In(endpoint.LocationJSON)),
		}}))
		require.NoError(t, s.Register("/a/b", http.MethodPost, endpoint.Meta{Parameters: endpoint.Fields{
			endpoint.String("beta", endpoint.In(endpoint.LocationJSON)),
		}}))
		require.NoError(t, s.Register("/a-b", http.MethodPost, endpoint.Meta{Parameters: endpoint.Fields{
			endpoint.String("alpha", endpoint.In(endpoint.LocationJSON)),
		}}))

		doc := s.Document()
		first := doc.Operation("/a-b", http.MethodPost).RequestBody.Content["application/json"].Schema
		second := doc.Operation("/a/b", http.MethodPost).RequestBody.Content["application/json"].Schema

		assert.Equal(t, "#/components/schemas/ABPostJsonSchema", first.Ref)
		assert.Equal(t, "#/components/schemas/ABPost2JsonSchema", second.Ref)
		assert.Contains(t, doc.Components.Schemas["ABPostJsonSchema"].Properties, "alpha")
		assert.Contains(t, doc.Components.Schemas["ABPost2JsonSchema"].Properties, "beta")
		assert.Contains(t, doc.Components.Schemas, "ABPostResponseSchema")
		assert.Contains(t, doc.Components.Schemas, "ABPost2ResponseSchema")

		require.NoError(t, openapi.Validate(context.Background(), doc))
	})

	t.Run("failed registration does not claim a name", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		require.Error(t, s.Register("/users/{id}", http.MethodGet, endpoint.Meta{
			Responses: map[int]any{http.StatusOK: plainBody{}},
		}))
		require.NoError(t, s.Register("/users/id", http.MethodGet, endpoint.Meta{}))

		doc := s.Document()
		assert.Equal(t, "#/components/schemas/UsersIdGetResponseSchema",
			doc.Operation("/users/id", http.MethodGet).Responses["200"].Content["text/plain"].Schema.Ref)
	})

	t.Run("overwrite drops unreferenced components", func(t *testing.T) {
		s := newTestBuilder(t, Config{}).Start()
		require.NoError(t, s.Register("/status", http.MethodPost, endpoint.Meta{
			Signature: noteArgs{},
			Responses: map[int]any{http.StatusOK: responses.JSON(statusBody{})},
		}))
		doc := s.Document()
		assert.Contains(t, doc.Components.Schemas, "StatusPostJsonSchema")
		assert.Contains(t, doc.Components.Schemas, "statusBody")

		require.NoError(t, s.Register("/status", http.MethodPost, statusMeta()))

		doc = s.Document()
		assert.Nil(t, doc.Operation("/status", http.MethodPost).RequestBody)
		assert.Nil(t, doc.Components)

		require.NoError(t, openapi.Validate(context.Background(), doc))
	})

	t.Run("nested style", func(t *testing.T) {
		s := newTestBuilder(t, Config{ParameterStyle: StyleNested}).Start()
		require.NoError(t, s.Register("/status", http.MethodGet, statusMeta()))

		doc := s.Document()
		op := doc.Operation("/status", http.MethodGet)
		require.Len(t, op.Parameters, 1)
		assert.Equal(t, "parameters", op.Parameters[0].Name)
		assert.Contains(t, doc.Components.Schemas, "StatusGetParameterSchema")
		assert.Contains(t, doc.Components.Schemas, "StatusGetQuerySchema")
	})

	t.Run("servers and info", func(t *testing.T) {
		s := newTestBuilder(t, Config{
			AppVersion: "2.1.0",
			Info:       openapi.Info{Description: "Status service"},
			Servers:    []openapi.Server{{URL: "https://api.example.com"}},
		}).Start()

		doc := s.Document()
		assert.Equal(t, "3.0.0", doc.OpenAPI)
		assert.Equal(t, "Status API", doc.Info.Title)
		assert.Equal(t, "2.1.0", doc.Info.Version)
		assert.Equal(t, "Status service", doc.Info.Description)
		assert.Equal(t, "https://api.example.com", doc.Servers[0].URL)
		assert.Nil(t, doc.Components)
	})
}

func statusRouter() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/status", endpoint.Resource{
		http.MethodGet: endpoint.DescribeFunc(noop, statusMeta()),
		http.MethodPost: endpoint.DescribeFunc(noop, endpoint.Meta{
			Signature: noteArgs{},
			Responses: map[int]any{http.StatusOK: responses.JSON(statusBody{})},
		}),
	}).Name("status")

	r.Handle("/items/{id:[0-9]+}", endpoint.DescribeFunc(noop, endpoint.Meta{
		Responses: map[int]any{http.StatusOK: responses.List(statusBody{})},
	})).Methods(http.MethodGet).Name("getItem")

	r.HandleFunc("/healthz", noop)

	return r
}

func TestBuild(t *testing.T) {
	t.Run("gorilla mux", func(t *testing.T) {
		b := newTestBuilder(t, Config{})
		doc, err := b.Build(Mux(statusRouter()))
		require.NoError(t, err)

		get := doc.Operation("/status", http.MethodGet)
		require.NotNil(t, get)
		assert.Equal(t, "statusGet", get.OperationID)

		post := doc.Operation("/status", http.MethodPost)
		require.NotNil(t, post)
		assert.Equal(t, "statusPost", post.OperationID)
		assert.NotNil(t, post.RequestBody)

		item := doc.Operation("/items/{id}", http.MethodGet)
		require.NotNil(t, item)
		assert.Equal(t, "getItem", item.OperationID)
		assert.Equal(t, "array", item.Responses["200"].Content["application/json"].Schema.Type)

		assert.NotContains(t, doc.Paths, "/healthz")

		require.NoError(t, openapi.Validate(context.Background(), doc))
	})

	t.Run("chi", func(t *testing.T) {
		r := chi.NewRouter()
		r.Method(http.MethodGet, "/status", endpoint.DescribeFunc(noop, statusMeta()))
		r.With(func(next http.Handler) http.Handler { return next }).
			Method(http.MethodPost, "/status", endpoint.DescribeFunc(noop, endpoint.Meta{Signature: noteArgs{}}))
		r.Get("/healthz", noop)

		doc, err := newTestBuilder(t, Config{}).Build(Chi(r))
		require.NoError(t, err)

		assert.NotNil(t, doc.Operation("/status", http.MethodGet))
		assert.NotNil(t, doc.Operation("/status", http.MethodPost))
		assert.NotContains(t, doc.Paths, "/healthz")
	})

	t.Run("chi handle route is documented as get", func(t *testing.T) {
		r := chi.NewRouter()
		r.Handle("/status", endpoint.DescribeFunc(noop, statusMeta()))
		r.HandleFunc("/healthz", noop)

		for _, failFast := range []bool{false, true} {
			doc, err := newTestBuilder(t, Config{FailFast: failFast}).Build(Chi(r))
			require.NoError(t, err)

			require.Len(t, doc.Paths, 1)
			ops := doc.Paths["/status"].Operations()
			require.Len(t, ops, 1)
			assert.Contains(t, ops, http.MethodGet)

			require.NoError(t, openapi.Validate(context.Background(), doc))
		}
	})

	t.Run("route methods filter a resource", func(t *testing.T) {
		r := mux.NewRouter()
		r.Handle("/status", endpoint.Resource{
			http.MethodGet:  endpoint.DescribeFunc(noop, statusMeta()),
			http.MethodPost: endpoint.DescribeFunc(noop, statusMeta()),
		}).Methods(http.MethodPost)

		doc, err := newTestBuilder(t, Config{}).Build(Mux(r))
		require.NoError(t, err)
		assert.Nil(t, doc.Operation("/status", http.MethodGet))
		assert.NotNil(t, doc.Operation("/status", http.MethodPost))
	})

	t.Run("partial document on failure", func(t *testing.T) {
		app := AppFunc(func() ([]Route, error) {
			return []Route{
				{Path: "/status", Handler: endpoint.DescribeFunc(noop, statusMeta())},
				{Path: "/broken", Handler: endpoint.DescribeFunc(noop, endpoint.Meta{
					Responses: map[int]any{http.StatusOK: plainBody{}},
				})},
				{Path: "/bad", Handler: endpoint.DescribeFunc(noop, endpoint.Meta{Signature: 42})},
			}, nil
		})

		doc, err := newTestBuilder(t, Config{}).Build(app)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnresolvableResponse)
		assert.ErrorIs(t, err, ErrUnsupportedSignature)

		require.NotNil(t, doc)
		assert.NotNil(t, doc.Operation("/status", http.MethodGet))
		assert.NotContains(t, doc.Paths, "/broken")
		assert.NotContains(t, doc.Paths, "/bad")
	})

	t.Run("fail fast", func(t *testing.T) {
		app := AppFunc(func() ([]Route, error) {
			return []Route{
				{Path: "/broken", Handler: endpoint.DescribeFunc(noop, endpoint.Meta{
					Responses: map[int]any{http.StatusOK: plainBody{}},
				})},
				{Path: "/status", Handler: endpoint.DescribeFunc(noop, statusMeta())},
			}, nil
		})

		doc, err := newTestBuilder(t, Config{FailFast: true}).Build(app)
		assert.Nil(t, doc)

		var ee *EndpointError
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, "/broken", ee.Path)
	})

	t.Run("route listing error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := newTestBuilder(t, Config{}).Build(AppFunc(func() ([]Route, error) {
			return nil, boom
		}))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("builds are independent", func(t *testing.T) {
		b := newTestBuilder(t, Config{})
		first, err := b.Build(Mux(statusRouter()))
		require.NoError(t, err)
		second, err := b.Build(Mux(statusRouter()))
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Equal(t, first, second)
	})

	t.Run("metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		b := newTestBuilder(t, Config{}, WithMetrics(reg))

		_, err := b.Build(Mux(statusRouter()))
		require.NoError(t, err)

		assert.InDelta(t, 2, testutil.ToFloat64(b.metrics.endpoints.WithLabelValues(http.MethodGet, resultRegistered)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(b.metrics.endpoints.WithLabelValues(http.MethodPost, resultRegistered)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(b.metrics.endpoints.WithLabelValues(http.MethodGet, resultSkipped)), 0)
		assert.Equal(t, 1, testutil.CollectAndCount(b.metrics.buildDuration))
	})
}

func TestBuilderHandler(t *testing.T) {
	app := AppFunc(func() ([]Route, error) {
		return []Route{
			{Path: "/status", Handler: endpoint.DescribeFunc(noop, statusMeta())},
			{Path: "/broken", Handler: endpoint.DescribeFunc(noop, endpoint.Meta{
				Responses: map[int]any{http.StatusOK: plainBody{}},
			})},
		}, nil
	})

	t.Run("serves the partial document", func(t *testing.T) {
		h := newTestBuilder(t, Config{}).Handler(app, "/docs", nil)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/schema.json", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var doc openapi.Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Contains(t, doc.Paths, "/status")
		assert.NotContains(t, doc.Paths, "/broken")
	})

	t.Run("fail fast serves an error", func(t *testing.T) {
		h := newTestBuilder(t, Config{FailFast: true}).Handler(app, "/docs", nil)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/schema.json", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		tpl  string
		path string
		vars []pathVar
	}{
		{"/status", "/status", nil},
		{"/users/{id}", "/users/{id}", []pathVar{{name: "id"}}},
		{"/users/{id:[0-9]+}/posts/{slug}", "/users/{id}/posts/{slug}",
			[]pathVar{{name: "id", pattern: "[0-9]+"}, {name: "slug"}}},
	}

	for _, tt := range tests {
		t.Run(tt.tpl, func(t *testing.T) {
			path, vars := parsePath(tt.tpl)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, tt.vars, vars)
		})
	}
}
