package form

// EventKind identifies a user interaction applied to a session.
type EventKind string

const (
	EventEdit     EventKind = "edit"
	EventNext     EventKind = "next"
	EventPrevious EventKind = "previous"
	EventSubmit   EventKind = "submit"
	EventReset    EventKind = "reset"
)

// Event is a single interaction. Field and Value are only read for edits.
type Event struct {
	Kind  EventKind `json:"kind"`
	Field string    `json:"field,omitempty"`
	Value string    `json:"value,omitempty"`
}

// Edit builds an edit event.
func Edit(name, value string) Event {
	return Event{Kind: EventEdit, Field: name, Value: value}
}

// Next builds a forward navigation event.
func Next() Event { return Event{Kind: EventNext} }

// Previous builds a backward navigation event.
func Previous() Event { return Event{Kind: EventPrevious} }

// Submit builds a submission event.
func Submit() Event { return Event{Kind: EventSubmit} }

// Reset builds an event discarding the session.
func Reset() Event { return Event{Kind: EventReset} }

// OutcomeKind summarises what a transition did.
type OutcomeKind string

const (
	OutcomeUpdated   OutcomeKind = "updated"
	OutcomeAdvanced  OutcomeKind = "advanced"
	OutcomeRetreated OutcomeKind = "retreated"
	OutcomeBlocked   OutcomeKind = "blocked"
	OutcomeSubmit    OutcomeKind = "submit"
	OutcomeReset     OutcomeKind = "reset"
)

// Outcome reports the result of Apply. Failing lists the fields that blocked
// a Next/Submit attempt; Payload carries the record snapshot to send when
// Kind is OutcomeSubmit.
type Outcome struct {
	Kind    OutcomeKind       `json:"kind"`
	Failing []string          `json:"failing,omitempty"`
	Payload map[string]string `json:"-"`
}
