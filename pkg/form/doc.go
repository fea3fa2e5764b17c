// Package form implements the multi-page form state machine.
//
// A Session carries the current page index, the collected Record and the
// page-scoped Errors. Machine.Apply is a pure transition function
// (Session, Event) -> (Session, Outcome): edits store the raw string and clear
// that field's error, Next and Submit are gated by required-field validation
// of the current page, Previous always succeeds from any page but the first.
// Validation only runs on navigation attempts, never on edits.
package form
