package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-careerpath/pkg/form"
	"github.com/goliatone/go-careerpath/pkg/render"
	"github.com/goliatone/go-careerpath/pkg/result"
	"github.com/goliatone/go-careerpath/pkg/session"
)

const maxEventBodyBytes = 64 << 10

var errSubmitNotLast = errors.New("server: submit must be the last event")

// EventsRequest is the body of POST /api/form/events.
type EventsRequest struct {
	Events []form.Event `json:"events"`
}

// StateResponse describes the session after a request. On a successful
// submission View is the result page and Location points at it.
type StateResponse struct {
	Session  string        `json:"session"`
	View     render.View   `json:"view"`
	Outcome  *form.Outcome `json:"outcome,omitempty"`
	Applied  int           `json:"applied"`
	Notice   string        `json:"notice,omitempty"`
	Location string        `json:"location,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAPIForm(w http.ResponseWriter, r *http.Request) {
	entry := s.sessionFor(w, r)
	state := entry.Snapshot()
	view, err := render.FormPage(s.machine.Partition(), state.Session, state.Notice)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{
		Session: entry.ID(),
		View:    view,
		Notice:  state.Notice,
	})
}

// handleAPIEvents applies a batch of events atomically: an invalid event
// leaves the session untouched. Processing stops at the first blocked
// transition, and a submit must come last.
func (s *Server) handleAPIEvents(w http.ResponseWriter, r *http.Request) {
	var req EventsRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be a JSON object with an events array"})
		return
	}

	entry := s.sessionFor(w, r)
	var (
		last    form.Outcome
		applied int
		payload map[string]string
	)
	err := entry.Update(func(state *session.State) error {
		next := state.Session
		for i, ev := range req.Events {
			if payload != nil {
				return errSubmitNotLast
			}
			var (
				outcome form.Outcome
				err     error
			)
			next, outcome, err = s.machine.Apply(next, ev)
			if err != nil {
				return err
			}
			applied = i + 1
			last = outcome
			if outcome.Kind == form.OutcomeSubmit {
				payload = outcome.Payload
			}
			if outcome.Kind == form.OutcomeBlocked {
				break
			}
			if outcome.Kind == form.OutcomeReset || ev.Kind == form.EventEdit {
				state.Notice = ""
			}
		}
		if payload != nil {
			state.Notice = ""
		}
		state.Session = next
		return nil
	})
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !isEventError(err) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	resp := StateResponse{Session: entry.ID(), Applied: applied}
	if applied > 0 {
		outcome := last
		resp.Outcome = &outcome
	}

	if payload != nil {
		location, text, ok := s.submit(r.Context(), entry, payload)
		if ok {
			s.clearCookie(w)
			resp.View = render.ResultView(result.Present(text, true))
			resp.Location = location
			writeJSON(w, http.StatusOK, resp)
			return
		}
	}

	state := entry.Snapshot()
	view, viewErr := render.FormPage(s.machine.Partition(), state.Session, state.Notice)
	if viewErr != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: viewErr.Error()})
		return
	}
	resp.View = view
	resp.Notice = state.Notice
	writeJSON(w, http.StatusOK, resp)
}

func isEventError(err error) bool {
	return errors.Is(err, errSubmitNotLast) ||
		errors.Is(err, form.ErrInvalidTransition) ||
		errors.Is(err, form.ErrUnknownField) ||
		errors.Is(err, form.ErrUnknownEvent) ||
		errors.Is(err, form.ErrPageOutOfRange)
}
