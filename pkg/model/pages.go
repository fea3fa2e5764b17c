package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoPages          = errors.New("model: partition requires at least one page")
	ErrEmptyPage        = errors.New("model: page has no fields")
	ErrUnknownPageField = errors.New("model: page references unknown field")
	ErrOverlappingPage  = errors.New("model: field assigned to more than one page")
	ErrUnassignedField  = errors.New("model: field not assigned to any page")
)

// Page groups a subset of registry fields shown together.
type Page struct {
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

// Partition splits a registry into ordered pages. Pages are disjoint and their
// union is exactly the registry.
type Partition struct {
	registry *Registry
	pages    []Page
	owner    map[string]int
}

// NewPartition checks that pages cover the registry exactly once.
func NewPartition(reg *Registry, pages ...Page) (*Partition, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, ErrEmptyRegistry
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	p := &Partition{
		registry: reg,
		pages:    make([]Page, 0, len(pages)),
		owner:    make(map[string]int, reg.Len()),
	}
	for idx, page := range pages {
		if len(page.Fields) == 0 {
			return nil, fmt.Errorf("%w: page %d", ErrEmptyPage, idx)
		}
		names := make([]string, 0, len(page.Fields))
		for _, raw := range page.Fields {
			name := strings.TrimSpace(raw)
			if !reg.Has(name) {
				return nil, fmt.Errorf("%w: %q on page %d", ErrUnknownPageField, name, idx)
			}
			if prev, taken := p.owner[name]; taken {
				return nil, fmt.Errorf("%w: %q on pages %d and %d", ErrOverlappingPage, name, prev, idx)
			}
			p.owner[name] = idx
			names = append(names, name)
		}
		p.pages = append(p.pages, Page{Title: page.Title, Fields: names})
	}

	for _, name := range reg.Names() {
		if _, ok := p.owner[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnassignedField, name)
		}
	}
	return p, nil
}

// MustPartition panics on construction failure.
func MustPartition(reg *Registry, pages ...Page) *Partition {
	p, err := NewPartition(reg, pages...)
	if err != nil {
		panic(err)
	}
	return p
}

// Registry returns the registry the partition was built from.
func (p *Partition) Registry() *Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

// Len reports the number of pages.
func (p *Partition) Len() int {
	if p == nil {
		return 0
	}
	return len(p.pages)
}

// Last returns the index of the final page.
func (p *Partition) Last() int {
	return p.Len() - 1
}

// Page returns the page at idx.
func (p *Partition) Page(idx int) (Page, bool) {
	if p == nil || idx < 0 || idx >= len(p.pages) {
		return Page{}, false
	}
	page := p.pages[idx]
	page.Fields = append([]string(nil), page.Fields...)
	return page, true
}

// PageFields resolves the field descriptors assigned to page idx.
func (p *Partition) PageFields(idx int) []Field {
	page, ok := p.Page(idx)
	if !ok {
		return nil
	}
	out := make([]Field, 0, len(page.Fields))
	for _, name := range page.Fields {
		if field, ok := p.registry.Field(name); ok {
			out = append(out, field)
		}
	}
	return out
}

// PageOf reports which page a field belongs to.
func (p *Partition) PageOf(name string) (int, bool) {
	if p == nil {
		return 0, false
	}
	idx, ok := p.owner[name]
	return idx, ok
}
