// Package model defines the field registry and page partition of the career
// profile form. A Registry is the fixed, ordered catalog of inputs (name,
// kind, required-ness, select options and optional numeric bounds); a
// Partition groups those inputs into pages for progressive disclosure and
// guarantees every field is shown on exactly one page. Both are immutable
// once constructed and safe to share between sessions.
//
// Values are never typed here: every field is collected as a string, and the
// ValidationRule entries only describe bounds renderers may copy onto HTML
// attributes or opt-in validators may check.
package model
