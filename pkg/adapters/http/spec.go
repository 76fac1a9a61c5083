package http

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawSpec []byte

var (
	swaggerOnce sync.Once
	swagger     *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the parsed OpenAPI document served at /openapi.yaml.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		swagger, swaggerErr = openapi3.NewLoader().LoadFromData(rawSpec)
	})
	return swagger, swaggerErr
}

// validator checks decoded JSON values against component schemas of the document.
type validator struct {
	doc *openapi3.T
}

func newValidator() (*validator, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if doc.Components == nil {
		return nil, errors.New("OpenAPI spec has no components")
	}
	return &validator{doc: doc}, nil
}

// Validate reports the first schema violation of value against components.schemas[name].
func (v *validator) Validate(name string, value any) error {
	ref, ok := v.doc.Components.Schemas[name]
	if !ok || ref.Value == nil {
		return fmt.Errorf("unknown schema %q", name)
	}
	return ref.Value.VisitJSON(value)
}
