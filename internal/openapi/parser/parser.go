// Package parser extracts operations and their request properties from an
// OpenAPI 3 document using kin-openapi.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Options tunes how documents are loaded.
type Options struct {
	// ResolveReferences allows external $ref targets and validates the
	// document once loaded.
	ResolveReferences bool
	// AllowPartialDocuments accepts documents without paths.
	AllowPartialDocuments bool
}

// Property is a flattened request body property.
type Property struct {
	Name        string   `json:"name"`
	Type        string   `json:"type,omitempty"`
	Format      string   `json:"format,omitempty"`
	Description string   `json:"description,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Required    bool     `json:"required"`
}

// Operation is a single method/path pair of the document.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	// MediaType is the request content type the schema was taken from.
	MediaType string
	// Request is the resolved request body schema, nil without a body.
	Request *openapi3.Schema
	// Properties lists the request body properties sorted by name.
	Properties []Property
	// Responses maps status codes to their JSON schema.
	Responses map[string]*openapi3.Schema
}

// Property returns the named request property.
func (o Operation) Property(name string) (Property, bool) {
	for _, prop := range o.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// PropertyNames lists the request property names sorted.
func (o Operation) PropertyNames() []string {
	out := make([]string, len(o.Properties))
	for i, prop := range o.Properties {
		out[i] = prop.Name
	}
	return out
}

// Document is a loaded specification together with its operations keyed by
// operationId.
type Document struct {
	Spec       *openapi3.T
	Operations map[string]Operation
}

// Operation returns the operation registered under id.
func (d *Document) Operation(id string) (Operation, bool) {
	if d == nil {
		return Operation{}, false
	}
	op, ok := d.Operations[id]
	return op, ok
}

// Parser loads documents with kin-openapi.
type Parser struct {
	options Options
}

// New constructs a Parser with the given options.
func New(options Options) *Parser {
	return &Parser{options: options}
}

// Parse loads raw and collects its operations.
func (p *Parser) Parse(ctx context.Context, raw []byte) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ResolveReferences,
	}

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}

	if spec.Paths == nil || spec.Paths.Len() == 0 {
		if !p.options.AllowPartialDocuments {
			return nil, errors.New("openapi parser: document does not contain any paths")
		}
	}

	if p.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	operations := make(map[string]Operation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			for method, operation := range item.Operations() {
				p.collectOperation(operations, method, path, operation)
			}
		}
	}

	if len(operations) == 0 && !p.options.AllowPartialDocuments {
		return nil, errors.New("openapi parser: no operations extracted")
	}

	return &Document{Spec: spec, Operations: operations}, nil
}

func (p *Parser) collectOperation(target map[string]Operation, method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	opID := operation.OperationID
	if opID == "" {
		opID = strings.ToLower(method) + ":" + path
	}
	mediaType, request := requestSchema(operation.RequestBody)
	target[opID] = Operation{
		ID:          opID,
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     operation.Summary,
		Description: operation.Description,
		MediaType:   mediaType,
		Request:     request,
		Properties:  properties(request),
		Responses:   responseSchemas(operation.Responses),
	}
}

func requestSchema(body *openapi3.RequestBodyRef) (string, *openapi3.Schema) {
	if body == nil || body.Value == nil {
		return "", nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mediaType, mt.Schema.Value
		}
	}
	for mediaType, mt := range content {
		if mt != nil && mt.Schema != nil {
			return mediaType, mt.Schema.Value
		}
	}
	return "", nil
}

func responseSchemas(responses *openapi3.Responses) map[string]*openapi3.Schema {
	if responses == nil || responses.Len() == 0 {
		return nil
	}
	result := make(map[string]*openapi3.Schema)
	for status, ref := range responses.Map() {
		if ref == nil || ref.Value == nil {
			continue
		}
		mt := ref.Value.Content.Get("application/json")
		if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
			continue
		}
		result[status] = mt.Schema.Value
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func properties(schema *openapi3.Schema) []Property {
	if schema == nil || len(schema.Properties) == 0 {
		return nil
	}
	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	out := make([]Property, 0, len(schema.Properties))
	for name, ref := range schema.Properties {
		prop := Property{Name: name}
		if _, ok := required[name]; ok {
			prop.Required = true
		}
		if ref != nil && ref.Value != nil {
			src := ref.Value
			prop.Type = firstSchemaType(src.Type)
			prop.Format = src.Format
			prop.Description = src.Description
			prop.Pattern = src.Pattern
			for _, value := range src.Enum {
				prop.Enum = append(prop.Enum, fmt.Sprint(value))
			}
		}
		out = append(out, prop)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values, ",")
	}
}
