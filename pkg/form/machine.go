package form

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-careerpath/pkg/model"
)

// Option configures a Machine.
type Option func(*Machine)

// WithTypedValidation layers numeric checks on top of the required check:
// number fields must parse and honour their min/max rules. Off by default so
// the emptiness-only contract is preserved.
func WithTypedValidation(enabled bool) Option {
	return func(m *Machine) {
		m.typed = enabled
	}
}

// Machine applies events to sessions for a fixed partition. It holds no
// session state and is safe for concurrent use.
type Machine struct {
	partition *model.Partition
	registry  *model.Registry
	typed     bool
	rules     map[string]fieldRules
}

// NewMachine builds a Machine over the provided partition.
func NewMachine(partition *model.Partition, options ...Option) (*Machine, error) {
	if partition == nil || partition.Len() == 0 {
		return nil, errors.New("form: partition is required")
	}
	m := &Machine{
		partition: partition,
		registry:  partition.Registry(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	m.rules = make(map[string]fieldRules, m.registry.Len())
	for _, field := range m.registry.Fields() {
		m.rules[field.Name] = collectRules(field)
	}
	return m, nil
}

// MustMachine panics on construction failure.
func MustMachine(partition *model.Partition, options ...Option) *Machine {
	m, err := NewMachine(partition, options...)
	if err != nil {
		panic(err)
	}
	return m
}

// Partition exposes the page layout the machine drives.
func (m *Machine) Partition() *model.Partition {
	return m.partition
}

// Registry exposes the field registry behind the partition.
func (m *Machine) Registry() *model.Registry {
	return m.registry
}

// Pages reports the number of pages.
func (m *Machine) Pages() int {
	return m.partition.Len()
}

// Apply runs a single event against s and returns the resulting session. The
// input session is never mutated. When an error is returned the original
// session is handed back unchanged.
func (m *Machine) Apply(s Session, ev Event) (Session, Outcome, error) {
	if ev.Kind == EventReset {
		return NewSession(), Outcome{Kind: OutcomeReset}, nil
	}
	if s.Page < 0 || s.Page >= m.partition.Len() {
		return s, Outcome{}, fmt.Errorf("%w: %d", ErrPageOutOfRange, s.Page)
	}

	switch ev.Kind {
	case EventEdit:
		if !m.registry.Has(ev.Field) {
			return s, Outcome{}, fmt.Errorf("%w: %q", ErrUnknownField, ev.Field)
		}
		next := s.Clone()
		next.Record[ev.Field] = ev.Value
		delete(next.Errors, ev.Field)
		return next, Outcome{Kind: OutcomeUpdated}, nil

	case EventPrevious:
		if s.Page == 0 {
			return s, Outcome{}, fmt.Errorf("%w: previous from first page", ErrInvalidTransition)
		}
		next := s.Clone()
		next.Page--
		return next, Outcome{Kind: OutcomeRetreated}, nil

	case EventNext:
		if s.Page >= m.partition.Last() {
			return s, Outcome{}, fmt.Errorf("%w: next from last page", ErrInvalidTransition)
		}
		next, failing := m.gate(s)
		if len(failing) > 0 {
			return next, Outcome{Kind: OutcomeBlocked, Failing: failing}, nil
		}
		next.Page++
		return next, Outcome{Kind: OutcomeAdvanced}, nil

	case EventSubmit:
		if s.Page != m.partition.Last() {
			return s, Outcome{}, fmt.Errorf("%w: submit from page %d", ErrInvalidTransition, s.Page)
		}
		next, failing := m.gate(s)
		if len(failing) > 0 {
			return next, Outcome{Kind: OutcomeBlocked, Failing: failing}, nil
		}
		return next, Outcome{Kind: OutcomeSubmit, Payload: next.Record.Payload(m.registry)}, nil
	}

	return s, Outcome{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
}

// gate validates the current page and replaces the session errors with the
// result, matching the page-scoped error contract.
func (m *Machine) gate(s Session) (Session, []string) {
	next := s.Clone()
	errs := m.validatePage(s.Record, s.Page)
	next.Errors = errs
	if len(errs) == 0 {
		return next, nil
	}
	failing := make([]string, 0, len(errs))
	page, _ := m.partition.Page(s.Page)
	for _, name := range page.Fields {
		if _, ok := errs[name]; ok {
			failing = append(failing, name)
		}
	}
	return next, failing
}

// Validate returns the names of the fields on page that fail, in page order.
// An empty result means the page may be left.
func (m *Machine) Validate(record Record, page int) []string {
	errs := m.validatePage(record, page)
	if len(errs) == 0 {
		return nil
	}
	p, _ := m.partition.Page(page)
	out := make([]string, 0, len(errs))
	for _, name := range p.Fields {
		if _, ok := errs[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func (m *Machine) validatePage(record Record, page int) Errors {
	errs := make(Errors)
	for _, field := range m.partition.PageFields(page) {
		if msg := m.fieldError(field.Name, record[field.Name]); msg != "" {
			errs[field.Name] = msg
		}
	}
	return errs
}

// FieldError returns the message value would fail with when validated as
// field name, or "" when it passes. Unknown names always pass.
func (m *Machine) FieldError(name, value string) string {
	if !m.registry.Has(name) {
		return ""
	}
	return m.fieldError(name, value)
}

func (m *Machine) fieldError(name, value string) string {
	rules := m.rules[name]
	if value == "" {
		if rules.required {
			return MessageRequired
		}
		return ""
	}
	if !m.typed {
		return ""
	}
	return rules.check(value)
}
