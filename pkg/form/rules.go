package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-careerpath/pkg/model"
)

type fieldRules struct {
	required bool
	number   bool
	options  []string
	min      *float64
	max      *float64
}

func collectRules(field model.Field) fieldRules {
	rules := fieldRules{
		required: field.Required,
		number:   field.Kind == model.FieldKindNumber,
	}
	if field.Kind == model.FieldKindSelect {
		rules.options = field.Options
	}
	for _, v := range field.Validations {
		switch v.Kind {
		case model.ValidationRuleMin:
			if val, ok := parseFloat(v.Params["value"]); ok {
				rules.min = &val
			}
		case model.ValidationRuleMax:
			if val, ok := parseFloat(v.Params["value"]); ok {
				rules.max = &val
			}
		}
	}
	return rules
}

// check runs the typed layer against a non-empty value and returns the
// message to display, or "" when the value passes.
func (r fieldRules) check(value string) string {
	if len(r.options) > 0 {
		for _, option := range r.options {
			if option == value {
				return ""
			}
		}
		return "Select one of the listed options"
	}
	if !r.number {
		return ""
	}
	v, ok := parseFloat(strings.TrimSpace(value))
	if !ok {
		return "Enter a number"
	}
	if r.min != nil && v < *r.min {
		return fmt.Sprintf("Must be at least %s", formatBound(*r.min))
	}
	if r.max != nil && v > *r.max {
		return fmt.Sprintf("Must be at most %s", formatBound(*r.max))
	}
	return ""
}

func parseFloat(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	return val, err == nil
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
