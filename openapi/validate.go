package openapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrInvalidDocument is returned by Validate when the document does not
// conform to the OpenAPI 3.0 specification.
var ErrInvalidDocument = errors.New("openapi: invalid document")

// Validate checks doc against the OpenAPI 3.0 rules by loading its JSON
// form with kin-openapi and running the loader's validation.
//
// See: https://spec.openapis.org/oas/v3.0.3
func Validate(ctx context.Context, doc *Document) error {
	data, err := MarshalJSON(doc)
	if err != nil {
		return err
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx

	parsed, err := loader.LoadFromData(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := parsed.Validate(loader.Context); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}
