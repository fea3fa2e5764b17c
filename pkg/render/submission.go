package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PageFieldName is the hidden input that echoes the page a form post was
// rendered for. The server compares it with the session page to detect
// stale submissions from a back-navigated browser tab.
const PageFieldName = "_page"

// SessionFieldName carries the session id for clients that drop cookies.
const SessionFieldName = "_session"

// HiddenField represents a hidden form input emitted alongside the visible
// fields.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// PageField returns the hidden page marker for the zero-based page index.
func PageField(index int) HiddenField {
	return Hidden(PageFieldName, strconv.Itoa(index))
}

// ParsePageField reads a page marker posted back by the browser.
func ParsePageField(raw string) (int, bool) {
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

// WithHidden returns a copy of v whose hidden fields include fields, sorted
// by name. A field replaces an existing one with the same name.
func (v View) WithHidden(fields ...HiddenField) View {
	base := make(map[string]string, len(v.Hidden))
	for _, field := range v.Hidden {
		base[field.Name] = field.Value
	}
	v.Hidden = SortedHiddenFields(MergeHiddenFields(base, fields...))
	return v
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{
			Name:  strings.TrimSpace(name),
			Value: fields[name],
		})
	}
	return result
}
