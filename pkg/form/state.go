package form

import "github.com/goliatone/go-careerpath/pkg/model"

// MessageRequired is the inline error attached to an empty required field.
const MessageRequired = "This field is required"

// Record holds the collected values keyed by field name. Values stay strings
// until submission, including number and select fields.
type Record map[string]string

// Errors maps field names to their validation message for the visible page.
type Errors map[string]string

// Session tracks one user's in-progress fill. It is a value: transitions
// return a new Session and never mutate the receiver's maps.
type Session struct {
	Page   int    `json:"page"`
	Record Record `json:"record"`
	Errors Errors `json:"errors,omitempty"`
}

// NewSession returns an empty session positioned on the first page.
func NewSession() Session {
	return Session{
		Record: make(Record),
		Errors: make(Errors),
	}
}

// Value returns the stored value for name, or "" when unset.
func (s Session) Value(name string) string {
	return s.Record[name]
}

// Error returns the validation message for name, or "" when none.
func (s Session) Error(name string) string {
	return s.Errors[name]
}

// Clone deep-copies the session maps.
func (s Session) Clone() Session {
	return Session{
		Page:   s.Page,
		Record: s.Record.Clone(),
		Errors: s.Errors.Clone(),
	}
}

// Progress reports completion as a percentage derived from the page index.
func (s Session) Progress(pages int) float64 {
	if pages <= 0 {
		return 0
	}
	return float64(s.Page+1) / float64(pages) * 100
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Payload expands the record to one entry per registry field so the wire body
// always carries every key, even ones never edited.
func (r Record) Payload(reg *model.Registry) map[string]string {
	names := reg.Names()
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = r[name]
	}
	return out
}

// Clone returns an independent copy of the error map.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Fields lists the field names carrying an error, in registry order.
func (e Errors) Fields(reg *model.Registry) []string {
	if len(e) == 0 {
		return nil
	}
	var out []string
	for _, name := range reg.Names() {
		if _, ok := e[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
