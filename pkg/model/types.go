package model

// FieldKind is the input kind a field is rendered with. Values are always
// collected as strings regardless of the kind.
type FieldKind string

const (
	FieldKindText   FieldKind = "text"
	FieldKindNumber FieldKind = "number"
	FieldKindSelect FieldKind = "select"
)

const (
	ValidationRuleMin  = "min"
	ValidationRuleMax  = "max"
	ValidationRuleStep = "step"
)

// ValidationRule represents an optional constraint applied on top of the
// required check. Numeric bounds encode their threshold in Params["value"] so
// renderers can copy them onto HTML attributes unchanged.
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Field describes a single profile input. Struct fields are annotated so
// renderers can serialise them directly when needed.
type Field struct {
	Name        string           `json:"name"`
	Kind        FieldKind        `json:"kind"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder,omitempty"`
	Description string           `json:"description,omitempty"`
	Options     []string         `json:"options,omitempty"`
	Required    bool             `json:"required"`
	Validations []ValidationRule `json:"validations,omitempty"`
}

// Rule returns the first validation rule of the given kind.
func (f Field) Rule(kind string) (ValidationRule, bool) {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return ValidationRule{}, false
}

// HasOption reports whether value is one of the select options.
func (f Field) HasOption(value string) bool {
	for _, option := range f.Options {
		if option == value {
			return true
		}
	}
	return false
}

func bound(kind, value string) ValidationRule {
	return ValidationRule{Kind: kind, Params: map[string]string{"value": value}}
}
