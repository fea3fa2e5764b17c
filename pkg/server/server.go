// Package server mounts the career path pages and the JSON form API on a
// chi router. Each visitor owns one session entry; form events are applied
// under the entry lock and the prediction request runs outside it.
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/goliatone/go-careerpath/pkg/form"
	"github.com/goliatone/go-careerpath/pkg/predict"
	"github.com/goliatone/go-careerpath/pkg/render"
	careerhtml "github.com/goliatone/go-careerpath/pkg/renderers/html"
	"github.com/goliatone/go-careerpath/pkg/session"
)

const (
	// DefaultCookieName carries the session id.
	DefaultCookieName = "careerpath_session"
	// SessionHeader carries the session id for API clients that cannot keep
	// cookies.
	SessionHeader = "X-Careerpath-Session"

	fallbackRenderer = "html"
)

// Option customises the server.
type Option func(*Server)

// WithLogger attaches a structured logger used for request logs.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderers replaces the page renderers. The registry must contain a
// renderer named "html".
func WithRenderers(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.renderers = registry
		}
	}
}

// WithAssets serves files under /assets from assets.
func WithAssets(assets fs.FS) Option {
	return func(s *Server) {
		if assets != nil {
			s.assets = assets
		}
	}
}

// WithAllowedOrigins enables CORS on the /api routes for origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		for _, origin := range origins {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				s.allowedOrigins = append(s.allowedOrigins, trimmed)
			}
		}
	}
}

// WithCookie sets the session cookie name and Secure flag.
func WithCookie(name string, secure bool) Option {
	return func(s *Server) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.cookieName = trimmed
		}
		s.cookieSecure = secure
	}
}

// Server wires the form machine, the predictor and the session store to
// HTTP routes.
type Server struct {
	machine   *form.Machine
	predictor predict.Predictor
	sessions  *session.Store
	renderers *render.Registry
	assets    fs.FS
	paths     careerhtml.Paths
	logger    *zap.Logger

	allowedOrigins []string
	cookieName     string
	cookieSecure   bool

	router chi.Router
}

// New builds the server and its routes.
func New(machine *form.Machine, predictor predict.Predictor, sessions *session.Store, options ...Option) (*Server, error) {
	if machine == nil {
		return nil, errors.New("server: form machine is required")
	}
	if predictor == nil {
		return nil, errors.New("server: predictor is required")
	}
	if sessions == nil {
		return nil, errors.New("server: session store is required")
	}

	s := &Server{
		machine:    machine,
		predictor:  predictor,
		sessions:   sessions,
		paths:      careerhtml.DefaultPaths(),
		logger:     zap.NewNop(),
		cookieName: DefaultCookieName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.renderers == nil {
		registry, err := DefaultRenderers()
		if err != nil {
			return nil, err
		}
		s.renderers = registry
	}
	if !s.renderers.Has(fallbackRenderer) {
		return nil, fmt.Errorf("server: renderer %q is required", fallbackRenderer)
	}
	if s.assets == nil {
		s.assets = careerhtml.AssetsFS()
	}

	s.router = s.routes()
	return s, nil
}

// DefaultRenderers registers the HTML and JSON renderers with their
// default options.
func DefaultRenderers(options ...careerhtml.Option) (*render.Registry, error) {
	htmlRenderer, err := careerhtml.New(options...)
	if err != nil {
		return nil, fmt.Errorf("server: html renderer: %w", err)
	}
	registry := render.NewRegistry()
	if err := registry.Register(htmlRenderer); err != nil {
		return nil, err
	}
	if err := registry.Register(render.NewJSONRenderer()); err != nil {
		return nil, err
	}
	return registry, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get(s.paths.Home, s.handleHome)
	r.Get(s.paths.Form, s.handleFormPage)
	r.Post(s.paths.Form, s.handleFormPost)
	r.Post(s.paths.Restart, s.handleRestart)
	r.Get(s.paths.Result, s.handleResult)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(s.assets))))

	r.Route("/api", func(api chi.Router) {
		if len(s.allowedOrigins) > 0 {
			api.Use(cors.Handler(cors.Options{
				AllowedOrigins:   s.allowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader},
				ExposedHeaders:   []string{SessionHeader},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		api.Get("/form", s.handleAPIForm)
		api.Post("/form/events", s.handleAPIEvents)
	})
	return r
}
