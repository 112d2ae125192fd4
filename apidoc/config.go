package apidoc

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/automd/openapi"
)

// ParameterStyle selects how parameter groups are rendered into an operation.
type ParameterStyle string

const (
	// StyleExpanded renders one Parameter Object per field and a JSON
	// request body for json fields.
	StyleExpanded ParameterStyle = "expanded"

	// StyleNested renders a single query parameter named "parameters"
	// whose schema references the composite parameter schema.
	StyleNested ParameterStyle = "nested"
)

// DuplicatePolicy decides what registering a second operation on the same
// path and method does.
type DuplicatePolicy string

const (
	// PolicyOverwrite keeps the last registration.
	PolicyOverwrite DuplicatePolicy = "overwrite"

	// PolicyReject fails with ErrDuplicateOperation when the second
	// registration differs from the first.
	PolicyReject DuplicatePolicy = "reject"
)

const (
	DefaultAppVersion     = "1.0.0"
	DefaultOpenAPIVersion = "3.0.0"
)

var openAPIVersionRegexp = regexp.MustCompile(`^3\.0\.\d+$`)

// Config controls document generation.
type Config struct {
	Title           string           `yaml:"title"`
	AppVersion      string           `yaml:"app_version"`
	OpenAPIVersion  string           `yaml:"openapi_version"`
	Info            openapi.Info     `yaml:"info"`
	DefaultTag      string           `yaml:"default_tag"`
	Servers         []openapi.Server `yaml:"servers"`
	ParameterStyle  ParameterStyle   `yaml:"parameter_style"`
	DuplicatePolicy DuplicatePolicy  `yaml:"duplicate_policy"`
	FailFast        bool             `yaml:"fail_fast"`
}

// LoadConfig reads a YAML config file. Unknown keys are rejected. Defaults
// are applied and the result is validated.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig for in-memory YAML.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefaults returns a copy of cfg with empty settings filled in.
func (cfg Config) WithDefaults() Config {
	if cfg.AppVersion == "" {
		cfg.AppVersion = DefaultAppVersion
	}
	if cfg.OpenAPIVersion == "" {
		cfg.OpenAPIVersion = DefaultOpenAPIVersion
	}
	if cfg.DefaultTag == "" {
		cfg.DefaultTag = cfg.Title
	}
	if cfg.ParameterStyle == "" {
		cfg.ParameterStyle = StyleExpanded
	}
	if cfg.DuplicatePolicy == "" {
		cfg.DuplicatePolicy = PolicyOverwrite
	}
	return cfg
}

// Validate checks a config with defaults applied.
func (cfg Config) Validate() error {
	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Title, validation.Required),
		validation.Field(&cfg.AppVersion, validation.Required),
		validation.Field(&cfg.OpenAPIVersion, validation.Required,
			validation.Match(openAPIVersionRegexp).Error("must be an OpenAPI 3.0.x version")),
		validation.Field(&cfg.DefaultTag, validation.Required),
		validation.Field(&cfg.ParameterStyle, validation.In(StyleExpanded, StyleNested)),
		validation.Field(&cfg.DuplicatePolicy, validation.In(PolicyOverwrite, PolicyReject)),
		validation.Field(&cfg.Servers, validation.Each(validation.By(validateServer))),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := validateInfo(cfg.Info); err != nil {
		return fmt.Errorf("%w: info: %w", ErrInvalidConfig, err)
	}
	return nil
}

func validateServer(value any) error {
	server, _ := value.(openapi.Server)
	return validation.Validate(server.URL, validation.Required)
}

func validateInfo(info openapi.Info) error {
	if err := validation.Validate(info.TermsOfService, is.URL); err != nil {
		return fmt.Errorf("terms_of_service: %w", err)
	}

	if c := info.Contact; c != nil {
		err := validation.ValidateStruct(c,
			validation.Field(&c.URL, is.URL),
			validation.Field(&c.Email, is.EmailFormat),
		)
		if err != nil {
			return fmt.Errorf("contact: %w", err)
		}
	}

	if l := info.License; l != nil {
		err := validation.ValidateStruct(l,
			validation.Field(&l.Name, validation.Required),
			validation.Field(&l.URL, is.URL),
		)
		if err != nil {
			return fmt.Errorf("license: %w", err)
		}
	}
	return nil
}

// documentInfo builds the Info Object from cfg.
func (cfg Config) documentInfo() openapi.Info {
	info := cfg.Info
	info.Title = cfg.Title
	info.Version = cfg.AppVersion
	return info
}
