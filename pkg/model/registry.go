package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyRegistry  = errors.New("model: registry requires at least one field")
	ErrDuplicateField = errors.New("model: duplicate field name")
	ErrFieldName      = errors.New("model: field name is required")
	ErrSelectOptions  = errors.New("model: select field requires options")
	ErrUnknownKind    = errors.New("model: unknown field kind")
)

// Registry is the fixed, ordered catalog of form fields. It is immutable once
// constructed; accessors hand out copies.
type Registry struct {
	fields []Field
	index  map[string]int
}

// NewRegistry validates the provided fields and returns a registry preserving
// their order.
func NewRegistry(fields ...Field) (*Registry, error) {
	if len(fields) == 0 {
		return nil, ErrEmptyRegistry
	}

	reg := &Registry{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return nil, ErrFieldName
		}
		if _, exists := reg.index[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, name)
		}
		switch field.Kind {
		case FieldKindText, FieldKindNumber:
		case FieldKindSelect:
			if len(field.Options) == 0 {
				return nil, fmt.Errorf("%w: %q", ErrSelectOptions, name)
			}
		default:
			return nil, fmt.Errorf("%w: %q (%s)", ErrUnknownKind, field.Kind, name)
		}

		field.Name = name
		field.Options = append([]string(nil), field.Options...)
		field.Validations = cloneRules(field.Validations)
		reg.index[name] = len(reg.fields)
		reg.fields = append(reg.fields, field)
	}
	return reg, nil
}

// MustRegistry panics on construction failure. Useful for init-time wiring.
func MustRegistry(fields ...Field) *Registry {
	reg, err := NewRegistry(fields...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Len reports the number of registered fields.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Field looks up a field by name.
func (r *Registry) Field(name string) (Field, bool) {
	if r == nil {
		return Field{}, false
	}
	idx, ok := r.index[name]
	if !ok {
		return Field{}, false
	}
	return copyField(r.fields[idx]), true
}

// Has reports whether name is a registered field.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[name]
	return ok
}

// Fields returns every field in registration order.
func (r *Registry) Fields() []Field {
	if r == nil {
		return nil
	}
	out := make([]Field, len(r.fields))
	for i, field := range r.fields {
		out[i] = copyField(field)
	}
	return out
}

// Names returns the field names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.fields))
	for i, field := range r.fields {
		out[i] = field.Name
	}
	return out
}

func copyField(field Field) Field {
	field.Options = append([]string(nil), field.Options...)
	field.Validations = cloneRules(field.Validations)
	return field
}

func cloneRules(rules []ValidationRule) []ValidationRule {
	if len(rules) == 0 {
		return nil
	}
	out := make([]ValidationRule, len(rules))
	for i, rule := range rules {
		out[i] = ValidationRule{Kind: rule.Kind}
		if len(rule.Params) > 0 {
			out[i].Params = make(map[string]string, len(rule.Params))
			for k, v := range rule.Params {
				out[i].Params[k] = v
			}
		}
	}
	return out
}
