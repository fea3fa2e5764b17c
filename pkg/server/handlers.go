package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-careerpath/pkg/form"
	"github.com/goliatone/go-careerpath/pkg/predict"
	"github.com/goliatone/go-careerpath/pkg/render"
	"github.com/goliatone/go-careerpath/pkg/result"
	"github.com/goliatone/go-careerpath/pkg/session"
)

// Form actions posted by the page buttons.
const (
	ActionNext     = "next"
	ActionPrevious = "previous"
	ActionSubmit   = "submit"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, render.HomeView())
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, render.ResultView(result.FromQuery(r.URL.Query())))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleFormPage(w http.ResponseWriter, r *http.Request) {
	entry := s.sessionFor(w, r)
	state := entry.Snapshot()
	view, err := render.FormPage(s.machine.Partition(), state.Session, state.Notice)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.render(w, r, http.StatusOK, view.WithHidden(render.Hidden(render.SessionFieldName, entry.ID())))
}

// handleFormPost stores the posted values of the visible page, then applies
// the requested action. A post for a page other than the current one is
// stale and only redirects back.
func (s *Server) handleFormPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	entry := s.sessionFor(w, r)
	posted, hasPage := render.ParsePageField(r.PostForm.Get(render.PageFieldName))
	action := r.PostForm.Get("action")

	var payload map[string]string
	err := entry.Update(func(state *session.State) error {
		current := state.Session
		if hasPage && posted != current.Page {
			s.logger.Debug("stale form post",
				zap.String("session", entry.ID()),
				zap.Int("posted", posted),
				zap.Int("current", current.Page))
			return nil
		}

		next := current
		for _, field := range s.machine.Partition().PageFields(current.Page) {
			values, ok := r.PostForm[field.Name]
			if !ok {
				continue
			}
			value := ""
			if len(values) > 0 {
				value = values[0]
			}
			var err error
			if next, _, err = s.machine.Apply(next, form.Edit(field.Name, value)); err != nil {
				return err
			}
			state.Notice = ""
		}

		if ev, ok := actionEvent(action); ok {
			var (
				outcome form.Outcome
				err     error
			)
			next, outcome, err = s.machine.Apply(next, ev)
			if err != nil {
				state.Session = next
				return err
			}
			if outcome.Kind == form.OutcomeSubmit {
				payload = outcome.Payload
				state.Notice = ""
			}
		}
		state.Session = next
		return nil
	})
	if err != nil {
		s.logger.Warn("form action rejected", zap.String("action", action), zap.Error(err))
	}

	if payload == nil {
		http.Redirect(w, r, s.formLocation(r, entry), http.StatusSeeOther)
		return
	}

	location, _, ok := s.submit(r.Context(), entry, payload)
	if ok {
		s.clearCookie(w)
		http.Redirect(w, r, location, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, s.formLocation(r, entry), http.StatusSeeOther)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	entry := s.sessionFor(w, r)
	_ = entry.Update(func(state *session.State) error {
		next, _, err := s.machine.Apply(state.Session, form.Reset())
		if err != nil {
			return err
		}
		state.Session = next
		state.Notice = ""
		return nil
	})
	http.Redirect(w, r, s.formLocation(r, entry), http.StatusSeeOther)
}

// submit sends payload outside the entry lock. The request is detached from
// the caller's cancellation so a dropped connection does not abort it. On
// success the session is discarded and the result location returned;
// otherwise the failure message is recorded on the entry.
func (s *Server) submit(ctx context.Context, entry *session.Entry, payload map[string]string) (string, string, bool) {
	prediction, err := s.predictor.Predict(context.WithoutCancel(ctx), payload)
	if err == nil {
		s.sessions.Delete(entry.ID())
		s.logger.Info("prediction delivered",
			zap.String("session", entry.ID()),
			zap.String("request_id", middleware.GetReqID(ctx)))
		return result.URL(s.paths.Result, prediction), prediction, true
	}

	notice := predict.UserMessage(err)
	s.logger.Warn("prediction failed",
		zap.String("session", entry.ID()),
		zap.Bool("rejected", predict.IsRejection(err)),
		zap.Error(err))
	_ = entry.Update(func(state *session.State) error {
		state.Notice = notice
		return nil
	})
	return "", notice, false
}

func actionEvent(action string) (form.Event, bool) {
	switch action {
	case ActionNext:
		return form.Next(), true
	case ActionPrevious:
		return form.Previous(), true
	case ActionSubmit:
		return form.Submit(), true
	}
	return form.Event{}, false
}

// render writes view with the renderer negotiated from the Accept header.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, view render.View) {
	renderer, err := s.renderers.Negotiate(r.Header.Get("Accept"), fallbackRenderer)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	body, err := renderer.Render(r.Context(), view)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	http.Error(w, http.StatusText(status), status)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
