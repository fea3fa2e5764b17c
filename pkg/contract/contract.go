// Package contract embeds the OpenAPI description of the prediction
// endpoint and checks payloads and field registries against it.
package contract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-careerpath/internal/openapi/parser"
	"github.com/goliatone/go-careerpath/pkg/model"
)

// PredictOperationID identifies the prediction operation in the document.
const PredictOperationID = "predict"

//go:embed predict.openapi.yaml
var predictDocument []byte

// Document returns a copy of the embedded OpenAPI document.
func Document() []byte {
	return append([]byte(nil), predictDocument...)
}

// ValidationError lists every problem found in a payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "contract: invalid payload: " + strings.Join(e.Problems, "; ")
}

// Contract is the parsed prediction contract.
type Contract struct {
	doc     *parser.Document
	predict parser.Operation
}

// Load parses the embedded document.
func Load(ctx context.Context) (*Contract, error) {
	return Parse(ctx, predictDocument)
}

// Parse builds a contract from raw, which must describe the predict
// operation with a JSON request body.
func Parse(ctx context.Context, raw []byte) (*Contract, error) {
	doc, err := parser.New(parser.Options{ResolveReferences: true}).Parse(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	op, ok := doc.Operation(PredictOperationID)
	if !ok {
		return nil, fmt.Errorf("contract: operation %q not found", PredictOperationID)
	}
	if op.Request == nil {
		return nil, fmt.Errorf("contract: operation %q has no request schema", PredictOperationID)
	}
	return &Contract{doc: doc, predict: op}, nil
}

// Predict returns the prediction operation.
func (c *Contract) Predict() parser.Operation {
	return c.predict
}

// ValidateRequest checks a decoded JSON body against the request schema.
func (c *Contract) ValidateRequest(body any) error {
	return validate(c.predict.Request, body)
}

// ValidateResponse checks a decoded JSON body against the schema declared
// for status.
func (c *Contract) ValidateResponse(status string, body any) error {
	schema, ok := c.predict.Responses[status]
	if !ok {
		return fmt.Errorf("contract: no response declared for status %s", status)
	}
	return validate(schema, body)
}

// CheckRegistry reports drift between the request properties and the field
// registry: names, required flags and select options must agree.
func (c *Contract) CheckRegistry(reg *model.Registry) error {
	if reg == nil {
		return errors.New("contract: registry is nil")
	}
	var problems []string
	for _, field := range reg.Fields() {
		prop, ok := c.predict.Property(field.Name)
		if !ok {
			problems = append(problems, fmt.Sprintf("field %q is not part of the request", field.Name))
			continue
		}
		if field.Required && !prop.Required {
			problems = append(problems, fmt.Sprintf("field %q is required but optional on the wire", field.Name))
		}
		if field.Kind == model.FieldKindSelect && len(prop.Enum) > 0 {
			for _, option := range field.Options {
				if !contains(prop.Enum, option) {
					problems = append(problems, fmt.Sprintf("option %q of field %q is not accepted", option, field.Name))
				}
			}
		}
	}
	for _, name := range c.predict.PropertyNames() {
		if !reg.Has(name) {
			problems = append(problems, fmt.Sprintf("request property %q has no field", name))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validate(schema *openapi3.Schema, body any) error {
	if schema == nil {
		return errors.New("contract: schema is nil")
	}
	err := schema.VisitJSON(body, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var problems []string
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, item := range multi {
			problems = append(problems, describe(item))
		}
	} else {
		problems = append(problems, describe(err))
	}
	sort.Strings(problems)
	return &ValidationError{Problems: problems}
}

func describe(err error) string {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := strings.Join(schemaErr.JSONPointer(), "/")
		if pointer == "" {
			return schemaErr.Reason
		}
		return pointer + ": " + schemaErr.Reason
	}
	return err.Error()
}

func contains(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
