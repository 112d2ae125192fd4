package openapi

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// DocsUI selects which interactive documentation UI to serve.
type DocsUI int

const (
	DocsSwaggerUI DocsUI = iota
	DocsRapiDoc
	DocsRedoc
)

// Source produces the document served by a handler. It is called at most
// once per handler.
type Source func() (*Document, error)

// HandlerConfig configures the routes served by NewHandler.
type HandlerConfig struct {
	// UI selects the interactive docs UI (default: DocsSwaggerUI).
	UI DocsUI

	// Title overrides the HTML page title (default: info.title).
	Title string

	// JSONFilename is the path of the JSON document (default: "schema.json").
	// Set to "-" to disable. Relative names are joined with the base path,
	// absolute names ("/openapi.json") are used as-is.
	JSONFilename string

	// YAMLFilename is the path of the YAML document (default: "schema.yaml").
	// Follows the same rules as JSONFilename.
	YAMLFilename string

	// DisableDocs disables the HTML docs page.
	DisableDocs bool

	// SwaggerUIConfig holds extra SwaggerUIBundle options, rendered as
	// object properties after url and dom_id. Only used by DocsSwaggerUI.
	//
	// See: https://swagger.io/docs/open-source-tools/swagger-ui/usage/configuration/
	SwaggerUIConfig map[string]any
}

func (cfg HandlerConfig) jsonFilename() string {
	if cfg.JSONFilename == "" {
		return "schema.json"
	}
	return cfg.JSONFilename
}

func (cfg HandlerConfig) yamlFilename() string {
	if cfg.YAMLFilename == "" {
		return "schema.yaml"
	}
	return cfg.YAMLFilename
}

// resolvePath joins a relative filename under basePath.
func resolvePath(basePath, filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	if basePath == "" {
		return "/" + filename
	}
	return basePath + "/" + filename
}

// docCache builds the document once and keeps both encodings.
type docCache struct {
	source Source

	once     sync.Once
	doc      *Document
	jsonData []byte
	yamlData []byte
	err      error
}

func (c *docCache) load() error {
	c.once.Do(func() {
		defer func() {
			if rv := recover(); rv != nil {
				c.err = fmt.Errorf("openapi: build document: %v", rv)
			}
		}()

		doc, err := c.source()
		if err != nil {
			c.err = err
			return
		}
		c.doc = doc

		if c.jsonData, c.err = MarshalJSON(doc); c.err != nil {
			return
		}
		c.yamlData, c.err = MarshalYAML(doc)
	})
	return c.err
}

// NewHandler returns a handler serving the document produced by source
// under basePath:
//
//	<basePath>/            - interactive HTML docs (unless DisableDocs)
//	<JSONFilename path>    - document as JSON  (unless JSONFilename is "-")
//	<YAMLFilename path>    - document as YAML  (unless YAMLFilename is "-")
//
// The document is built on the first request and cached. Requests outside
// these routes get 404. The config parameter is optional.
func NewHandler(basePath string, source Source, cfg *HandlerConfig) http.Handler {
	if cfg == nil {
		cfg = &HandlerConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")

	cache := &docCache{source: source}
	r := mux.NewRouter()

	var jsonPath, yamlPath string

	if name := cfg.jsonFilename(); name != "-" {
		jsonPath = resolvePath(basePath, name)
		r.HandleFunc(jsonPath, func(w http.ResponseWriter, _ *http.Request) {
			if err := cache.load(); err != nil {
				http.Error(w, "failed to build OpenAPI document", http.StatusInternalServerError)
				return
			}
			writeBody(w, "application/json", cache.jsonData)
		}).Methods(http.MethodGet, http.MethodHead)
	}

	if name := cfg.yamlFilename(); name != "-" {
		yamlPath = resolvePath(basePath, name)
		r.HandleFunc(yamlPath, func(w http.ResponseWriter, _ *http.Request) {
			if err := cache.load(); err != nil {
				http.Error(w, "failed to build OpenAPI document", http.StatusInternalServerError)
				return
			}
			writeBody(w, "application/x-yaml", cache.yamlData)
		}).Methods(http.MethodGet, http.MethodHead)
	}

	specURL := jsonPath
	if specURL == "" {
		specURL = yamlPath
	}

	if !cfg.DisableDocs && specURL != "" {
		var (
			once sync.Once
			page []byte
		)
		docs := func(w http.ResponseWriter, _ *http.Request) {
			once.Do(func() {
				title := cfg.Title
				if title == "" && cache.load() == nil {
					title = cache.doc.Info.Title
				}
				page = []byte(docsPage(cfg, title, specURL))
			})
			writeBody(w, "text/html; charset=utf-8", page)
		}

		if basePath == "" {
			r.HandleFunc("/", docs).Methods(http.MethodGet, http.MethodHead)
		} else {
			r.HandleFunc(basePath, docs).Methods(http.MethodGet, http.MethodHead)
			r.HandleFunc(basePath+"/", docs).Methods(http.MethodGet, http.MethodHead)
		}
	}

	return r
}

func writeBody(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func docsPage(cfg *HandlerConfig, title, specURL string) string {
	switch cfg.UI {
	case DocsRapiDoc:
		return rapidocTemplate(title, specURL)
	case DocsRedoc:
		return redocTemplate(title, specURL)
	default:
		return swaggerUITemplate(title, specURL, cfg.SwaggerUIConfig)
	}
}

func swaggerUITemplate(title, specURL string, config map[string]any) string {
	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var extra strings.Builder
	for _, k := range keys {
		v, err := json.Marshal(config[k])
		if err != nil {
			continue
		}
		fmt.Fprintf(&extra, ", %q: %s", k, v)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
window.ui = SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"%s});
</script>
</body>
</html>`, html.EscapeString(title), specURL, extra.String())
}

func rapidocTemplate(title, specURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
<script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>
</head>
<body>
<rapi-doc spec-url=%q render-style="read"></rapi-doc>
</body>
</html>`, html.EscapeString(title), specURL)
}

func redocTemplate(title, specURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
</head>
<body>
<redoc spec-url=%q></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`, html.EscapeString(title), specURL)
}
