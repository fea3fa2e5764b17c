package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-careerpath/pkg/render"
	"github.com/goliatone/go-careerpath/pkg/session"
)

// sessionFor resolves the visitor's entry from the session header, cookie
// or posted session field, issuing a new one when none names a live session.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Entry {
	id := requestSessionID(r, s.cookieName)
	entry, created := s.sessions.GetOrCreate(id)
	if created {
		s.setCookie(w, entry.ID())
	}
	w.Header().Set(SessionHeader, entry.ID())
	return entry
}

// formLocation is the form page URL for entry. Visitors that named their
// session through the form field or query keep it in the URL.
func (s *Server) formLocation(r *http.Request, entry *session.Entry) string {
	if id, carried := requestSessionField(r, s.cookieName); carried && id == entry.ID() {
		return s.paths.Form + "?" + url.Values{render.SessionFieldName: {id}}.Encode()
	}
	return s.paths.Form
}

func requestSessionID(r *http.Request, cookieName string) string {
	id, _ := requestSessionField(r, cookieName)
	return id
}

// requestSessionField resolves the id from the header, the cookie, the
// posted field or the query, in that order. carried reports whether it came
// from one of the last two. The posted field is only consulted once the
// handler parsed the form.
func requestSessionField(r *http.Request, cookieName string) (string, bool) {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id, false
	}
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, false
	}
	if r.PostForm != nil {
		if id := strings.TrimSpace(r.PostForm.Get(render.SessionFieldName)); id != "" {
			return id, true
		}
	}
	if id := strings.TrimSpace(r.URL.Query().Get(render.SessionFieldName)); id != "" {
		return id, true
	}
	return "", false
}

func (s *Server) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
