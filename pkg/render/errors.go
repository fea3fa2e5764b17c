package render

import (
	"sort"
	"strings"

	"github.com/goliatone/go-careerpath/pkg/form"
	"github.com/goliatone/go-careerpath/pkg/model"
)

// ErrorMapping splits validation feedback into field-level messages keyed by
// field name and form-level messages shown above the fields.
type ErrorMapping struct {
	Fields map[string]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapSessionErrors scopes session errors to the fields of page. Errors keyed
// by names the page does not own are lifted to form level so they are not
// lost; a notice (submission failure) is appended last.
func MapSessionErrors(partition *model.Partition, s form.Session, notice string) ErrorMapping {
	mapping := ErrorMapping{}

	owned := make(map[string]struct{})
	if partition != nil {
		for _, field := range partition.PageFields(s.Page) {
			owned[field.Name] = struct{}{}
		}
	}

	var stray []string
	for name, message := range s.Errors {
		message = strings.TrimSpace(message)
		if message == "" {
			continue
		}
		if _, ok := owned[name]; ok {
			if mapping.Fields == nil {
				mapping.Fields = make(map[string]string)
			}
			mapping.Fields[name] = message
			continue
		}
		stray = append(stray, name+": "+message)
	}
	sort.Strings(stray)

	mapping.Form = MergeFormErrors(stray, notice)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
