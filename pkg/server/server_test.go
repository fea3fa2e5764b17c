package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-careerpath/pkg/form"
	"github.com/goliatone/go-careerpath/pkg/model"
	"github.com/goliatone/go-careerpath/pkg/predict"
	"github.com/goliatone/go-careerpath/pkg/render"
	"github.com/goliatone/go-careerpath/pkg/server"
	"github.com/goliatone/go-careerpath/pkg/session"
	"github.com/goliatone/go-careerpath/pkg/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePredictor struct {
	mu       sync.Mutex
	payloads []map[string]string
	result   string
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (p *fakePredictor) Predict(_ context.Context, payload map[string]string) (string, error) {
	p.mu.Lock()
	p.payloads = append(p.payloads, payload)
	p.mu.Unlock()
	if p.started != nil {
		close(p.started)
	}
	if p.release != nil {
		<-p.release
	}
	return p.result, p.err
}

func (p *fakePredictor) calls() []map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]map[string]string(nil), p.payloads...)
}

type harness struct {
	t         *testing.T
	handler   http.Handler
	sessions  *session.Store
	predictor *fakePredictor
	cookie    *http.Cookie
}

func newHarness(t *testing.T, predictor *fakePredictor, options ...server.Option) *harness {
	t.Helper()
	sessions, err := session.New(16)
	require.NoError(t, err)
	machine := form.MustMachine(model.DefaultPartition())
	srv, err := server.New(machine, predictor, sessions, options...)
	require.NoError(t, err)
	return &harness{t: t, handler: srv.Handler(), sessions: sessions, predictor: predictor}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	h.t.Helper()
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name != server.DefaultCookieName {
			continue
		}
		if cookie.MaxAge < 0 {
			h.cookie = nil
			continue
		}
		h.cookie = cookie
	}
	return rec
}

func (h *harness) get(path string, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return h.do(req)
}

func (h *harness) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) postEvents(events ...form.Event) *httptest.ResponseRecorder {
	raw, err := json.Marshal(server.EventsRequest{Events: events})
	require.NoError(h.t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/form/events", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	return h.do(req)
}

func pageValues(page int, action string) url.Values {
	values := url.Values{}
	for name, value := range testsupport.PageValues(model.DefaultPartition(), testsupport.ValidProfile(), page) {
		values.Set(name, value)
	}
	values.Set(render.PageFieldName, strconv.Itoa(page))
	if action != "" {
		values.Set("action", action)
	}
	return values
}

func editEvents(page int) []form.Event {
	var events []form.Event
	for name, value := range testsupport.PageValues(model.DefaultPartition(), testsupport.ValidProfile(), page) {
		events = append(events, form.Edit(name, value))
	}
	return events
}

func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, location, rec.Header().Get("Location"))
}

func TestHome_NegotiatesRenderer(t *testing.T) {
	h := newHarness(t, &fakePredictor{})

	rec := h.get("/", "text/html,application/xhtml+xml,*/*;q=0.8")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "Predict Your Career Path")

	rec = h.get("/", "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	var view render.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, render.KindHome, view.Kind)
}

func TestFormFlow_SubmitRedirectsToResult(t *testing.T) {
	predictor := &fakePredictor{result: "Data Scientist"}
	h := newHarness(t, predictor)

	rec := h.get("/form", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, h.cookie, "expected a session cookie")
	require.Contains(t, rec.Body.String(), "Page 1 of 3: Basic Information")

	requireRedirect(t, h.postForm("/form", pageValues(0, server.ActionNext)), "/form")
	require.Contains(t, h.get("/form", "").Body.String(), "Page 2 of 3: Skills and Interests")

	requireRedirect(t, h.postForm("/form", pageValues(1, server.ActionNext)), "/form")
	require.Contains(t, h.get("/form", "").Body.String(), "Page 3 of 3: Experience and Preferences")

	rec = h.postForm("/form", pageValues(2, server.ActionSubmit))
	requireRedirect(t, rec, "/result?prediction=Data%20Scientist")
	require.Nil(t, h.cookie, "expected the session cookie to be cleared")
	require.Equal(t, 0, h.sessions.Len())

	calls := predictor.calls()
	require.Len(t, calls, 1)
	require.Equal(t, map[string]string(testsupport.ValidProfile()), calls[0])

	rec = h.get("/result?prediction=Data%20Scientist", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<p>Data Scientist</p>")
}

func TestFormPost_BlockedNextShowsErrors(t *testing.T) {
	h := newHarness(t, &fakePredictor{})

	values := pageValues(0, server.ActionNext)
	values.Set("studentId", "")
	requireRedirect(t, h.postForm("/form", values), "/form")

	body := h.get("/form", "").Body.String()
	require.Contains(t, body, "Page 1 of 3")
	require.Contains(t, body, form.MessageRequired)
	require.Contains(t, body, `value="Priya Sharma"`, "valid edits must be kept")
}

func TestFormPost_StalePageIsIgnored(t *testing.T) {
	h := newHarness(t, &fakePredictor{})
	h.get("/form", "")

	stale := pageValues(2, server.ActionSubmit)
	requireRedirect(t, h.postForm("/form", stale), "/form")

	rec := h.get("/api/form", "application/json")
	var state server.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, 0, state.View.Form.PageIndex)
	for _, field := range state.View.Form.Fields {
		require.Empty(t, field.Value)
	}
	require.Empty(t, h.predictor.calls())
}

func TestFormPost_SessionFieldWithoutCookie(t *testing.T) {
	h := newHarness(t, &fakePredictor{})

	var view render.View
	require.NoError(t, json.Unmarshal(h.get("/form", "application/json").Body.Bytes(), &view))
	var id string
	for _, hidden := range view.Hidden {
		if hidden.Name == render.SessionFieldName {
			id = hidden.Value
		}
	}
	require.NotEmpty(t, id)

	h.cookie = nil
	values := pageValues(0, server.ActionNext)
	values.Set(render.SessionFieldName, id)
	location := "/form?" + url.Values{render.SessionFieldName: {id}}.Encode()
	requireRedirect(t, h.postForm("/form", values), location)

	rec := h.get(location, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, h.cookie, "a known session must not issue a new cookie")
	body := rec.Body.String()
	require.Contains(t, body, "Page 2 of 3: Skills and Interests")
	require.Contains(t, body, `name="_session" value="`+id+`"`)
	require.Equal(t, 1, h.sessions.Len())

	requireRedirect(t, h.postForm("/form/restart", url.Values{render.SessionFieldName: {id}}), location)
	require.Contains(t, h.get(location, "").Body.String(), "Page 1 of 3: Basic Information")
	require.Equal(t, 1, h.sessions.Len())
}

func TestFormPost_EditClearsFailureNotice(t *testing.T) {
	predictor := &fakePredictor{err: &predict.RejectionError{Status: 400, Message: "Missing field: gpa"}}
	h := newHarness(t, predictor)

	h.postForm("/form", pageValues(0, server.ActionNext))
	h.postForm("/form", pageValues(1, server.ActionNext))
	h.postForm("/form", pageValues(2, server.ActionSubmit))
	require.Contains(t, h.get("/form", "").Body.String(), "Prediction failed: Missing field: gpa")

	h.postForm("/form", pageValues(2, server.ActionPrevious))
	h.postForm("/form", pageValues(1, server.ActionNext))
	require.NotContains(t, h.get("/form", "").Body.String(), "Prediction failed")

	var state server.StateResponse
	require.NoError(t, json.Unmarshal(h.get("/api/form", "").Body.Bytes(), &state))
	require.Empty(t, state.Notice)
	require.Len(t, predictor.calls(), 1)
}

func TestAPI_EditClearsFailureNotice(t *testing.T) {
	predictor := &fakePredictor{err: &predict.TransportError{Err: errors.New("connection refused")}}
	h := newHarness(t, predictor)

	events := editEvents(0)
	events = append(events, form.Next())
	events = append(events, editEvents(1)...)
	events = append(events, form.Next())
	events = append(events, editEvents(2)...)
	events = append(events, form.Submit())
	rec := h.postEvents(events...)
	require.Equal(t, http.StatusOK, rec.Code)
	var state server.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, predict.MessageTransportFailure, state.Notice)

	rec = h.postEvents(form.Edit("leadershipRole", "Team Lead"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Empty(t, state.Notice)
}

func TestResult_TryAgainDiscardsInProgressSession(t *testing.T) {
	h := newHarness(t, &fakePredictor{})
	requireRedirect(t, h.postForm("/form", pageValues(0, server.ActionNext)), "/form")
	require.Contains(t, h.get("/form", "").Body.String(), "Page 2 of 3")

	body := h.get("/result", "").Body.String()
	require.Contains(t, body, `<form method="post" action="/form/restart"`)
	require.Contains(t, body, "Try Another Prediction")

	requireRedirect(t, h.postForm("/form/restart", url.Values{}), "/form")
	body = h.get("/form", "").Body.String()
	require.Contains(t, body, "Page 1 of 3: Basic Information")
	require.NotContains(t, body, `value="Priya Sharma"`)
}

func TestFormPost_FailedSubmissionKeepsSession(t *testing.T) {
	predictor := &fakePredictor{err: &predict.RejectionError{Status: 400, Message: "Missing field: gpa"}}
	h := newHarness(t, predictor)

	h.postForm("/form", pageValues(0, server.ActionNext))
	h.postForm("/form", pageValues(1, server.ActionNext))
	requireRedirect(t, h.postForm("/form", pageValues(2, server.ActionSubmit)), "/form")

	require.NotNil(t, h.cookie)
	require.Equal(t, 1, h.sessions.Len())
	body := h.get("/form", "").Body.String()
	require.Contains(t, body, "Prediction failed: Missing field: gpa")
	require.Contains(t, body, `value="Club President"`)

	predictor.err = &predict.TransportError{Err: errors.New("connection refused")}
	h.postForm("/form", pageValues(2, server.ActionSubmit))
	require.Contains(t, h.get("/form", "").Body.String(), predict.MessageTransportFailure)
	require.Len(t, predictor.calls(), 2)
}

func TestRestart_ClearsSession(t *testing.T) {
	h := newHarness(t, &fakePredictor{})
	h.postForm("/form", pageValues(0, server.ActionNext))

	requireRedirect(t, h.postForm("/form/restart", url.Values{}), "/form")
	body := h.get("/form", "").Body.String()
	require.Contains(t, body, "Page 1 of 3")
	require.NotContains(t, body, `value="Priya Sharma"`)
}

func TestResult_WithoutPrediction(t *testing.T) {
	h := newHarness(t, &fakePredictor{})
	rec := h.get("/result", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No prediction yet.")
}

func TestAPI_EventsAdvanceAndValidate(t *testing.T) {
	h := newHarness(t, &fakePredictor{})

	rec := h.get("/api/form", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state server.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.NotEmpty(t, state.Session)
	require.Equal(t, state.Session, rec.Header().Get(server.SessionHeader))
	require.Len(t, state.View.Form.Fields, 7)

	rec = h.postEvents(form.Edit("studentId", "CS1"), form.Next())
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, form.OutcomeBlocked, state.Outcome.Kind)
	require.Equal(t, 2, state.Applied)
	require.Len(t, state.Outcome.Failing, 6)
	require.Equal(t, 0, state.View.Form.PageIndex)

	rec = h.postEvents(form.Edit("nickname", "x"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.postEvents(form.Previous())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.postEvents(form.Reset(), form.Edit("studentId", "CS2"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Empty(t, state.View.Form.Fields[0].Error)
	require.Equal(t, "CS2", state.View.Form.Fields[0].Value)
}

func TestAPI_BatchIsAtomic(t *testing.T) {
	h := newHarness(t, &fakePredictor{})

	rec := h.postEvents(form.Edit("studentId", "CS1"), form.Edit("unknown", "x"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var state server.StateResponse
	require.NoError(t, json.Unmarshal(h.get("/api/form", "").Body.Bytes(), &state))
	require.Empty(t, state.View.Form.Fields[0].Value)

	rec = h.postEvents(form.Event{Kind: "jump"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/form/events", strings.NewReader("{"))
	require.Equal(t, http.StatusBadRequest, h.do(req).Code)
}

func TestAPI_SubmitReturnsResult(t *testing.T) {
	predictor := &fakePredictor{result: "Cloud Engineer"}
	h := newHarness(t, predictor)

	profile := testsupport.ValidProfile()
	var events []form.Event
	for page := 0; page < 3; page++ {
		for _, field := range model.DefaultPartition().PageFields(page) {
			events = append(events, form.Edit(field.Name, profile[field.Name]))
		}
		if page < 2 {
			events = append(events, form.Next())
		}
	}

	rec := h.postEvents(append(events, form.Submit(), form.Reset())...)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, "submit must be last")
	require.Empty(t, predictor.calls())

	rec = h.postEvents(append(events, form.Submit())...)
	require.Equal(t, http.StatusOK, rec.Code)
	var state server.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, render.KindResult, state.View.Kind)
	require.Equal(t, "Cloud Engineer", state.View.Result.Prediction)
	require.Equal(t, "/result?prediction=Cloud%20Engineer", state.Location)
	require.Equal(t, 0, h.sessions.Len())
}

func TestSubmit_EditsDuringFlightAffectLaterSubmissions(t *testing.T) {
	predictor := &fakePredictor{
		err:     &predict.TransportError{Err: errors.New("timeout")},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := newHarness(t, predictor)
	h.postForm("/form", pageValues(0, server.ActionNext))
	h.postForm("/form", pageValues(1, server.ActionNext))

	cookie := h.cookie
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		values := pageValues(2, server.ActionSubmit)
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		h.handler.ServeHTTP(httptest.NewRecorder(), req)
	}()

	<-predictor.started
	req := httptest.NewRequest(http.MethodPost, "/api/form/events",
		strings.NewReader(`{"events":[{"kind":"edit","field":"leadershipRole","value":"None"}]}`))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "edits must not wait for the submission")

	close(predictor.release)
	wg.Wait()

	calls := predictor.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "Club President", calls[0]["leadershipRole"])

	var state server.StateResponse
	require.NoError(t, json.Unmarshal(h.get("/api/form", "").Body.Bytes(), &state))
	require.Equal(t, predict.MessageTransportFailure, state.Notice)
	for _, field := range state.View.Form.Fields {
		if field.Name == "leadershipRole" {
			require.Equal(t, "None", field.Value)
		}
	}
}

func TestAPI_CORS(t *testing.T) {
	h := newHarness(t, &fakePredictor{}, server.WithAllowedOrigins("http://localhost:3000"))

	req := httptest.NewRequest(http.MethodOptions, "/api/form/events", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := h.do(req)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAssetsAndHealth(t *testing.T) {
	h := newHarness(t, &fakePredictor{})

	rec := h.get("/assets/careerpath.css", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "--brand")

	rec = h.get("/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","sessions":0}`, rec.Body.String())
}

func TestNew_RequiresDependencies(t *testing.T) {
	sessions, err := session.New(1)
	require.NoError(t, err)
	machine := form.MustMachine(model.DefaultPartition())

	_, err = server.New(nil, &fakePredictor{}, sessions)
	require.Error(t, err)
	_, err = server.New(machine, nil, sessions)
	require.Error(t, err)
	_, err = server.New(machine, &fakePredictor{}, nil)
	require.Error(t, err)
	_, err = server.New(machine, &fakePredictor{}, sessions, server.WithRenderers(render.NewRegistry()))
	require.Error(t, err)
}
