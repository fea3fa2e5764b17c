package form

import "errors"

var (
	// ErrUnknownField is returned when an edit targets a name outside the
	// registry.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrInvalidTransition is returned when an event is not allowed from the
	// session's current page (Next on the last page, Previous on the first,
	// Submit before the last page).
	ErrInvalidTransition = errors.New("form: invalid transition")
	// ErrUnknownEvent signals an event kind the machine does not handle.
	ErrUnknownEvent = errors.New("form: unknown event")
	// ErrPageOutOfRange is returned when a session points outside the partition.
	ErrPageOutOfRange = errors.New("form: page out of range")
)
