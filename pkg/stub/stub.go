// Package stub serves a local stand-in for the prediction service. Requests
// are checked against the embedded contract and answered with a
// deterministic, rule-based prediction.
package stub

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-careerpath/pkg/contract"
)

const maxBodyBytes = 1 << 20

// DefaultCareer is predicted when no rule matches and the profile names no
// target role.
const DefaultCareer = "Software Engineer"

// PredictFunc maps a validated profile to a career.
type PredictFunc func(profile map[string]string) (string, error)

// Option configures the Handler.
type Option func(*Handler)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithPredictFunc replaces the built-in rules.
func WithPredictFunc(fn PredictFunc) Option {
	return func(h *Handler) {
		if fn != nil {
			h.predict = fn
		}
	}
}

// Handler answers POST /predict.
type Handler struct {
	contract *contract.Contract
	predict  PredictFunc
	logger   *zap.Logger
}

// New builds a handler validating requests with c.
func New(c *contract.Contract, options ...Option) (*Handler, error) {
	if c == nil {
		return nil, errors.New("stub: contract is required")
	}
	h := &Handler{
		contract: c,
		predict:  Predict,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// RegisterRoutes mounts the prediction and health routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Post(h.contract.Predict().Path, h.Predict)
}

// Router returns a standalone router serving the stub.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Predict validates the body and returns {"prediction": ...}, or
// {"error": ...} with 400 for bad input and 500 when the rules fail.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var body any
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&body); err != nil {
		h.reject(w, r, http.StatusBadRequest, "Request body must be a JSON object")
		return
	}
	if err := h.contract.ValidateRequest(body); err != nil {
		message := err.Error()
		var verr *contract.ValidationError
		if errors.As(err, &verr) {
			message = "Invalid profile: " + strings.Join(verr.Problems, "; ")
		}
		h.reject(w, r, http.StatusBadRequest, message)
		return
	}

	profile := make(map[string]string)
	for key, value := range body.(map[string]any) {
		if text, ok := value.(string); ok {
			profile[key] = text
		}
	}
	prediction, err := h.predict(profile)
	if err != nil {
		h.logger.Error("stub prediction failed", zap.Error(err), zap.String("request_id", middleware.GetReqID(r.Context())))
		h.reject(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	h.logger.Info("stub prediction",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("prediction", prediction),
	)
	writeJSON(w, http.StatusOK, map[string]string{"prediction": prediction})
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.logger.Warn("stub request rejected",
		zap.Int("status", status),
		zap.String("reason", message),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type domainRule struct {
	keyword string
	career  string
}

// Keyword rules scanned against the interested domain, then the
// concentration. The first match wins.
var domainRules = []domainRule{
	{"security", "Security Analyst"},
	{"machine learning", "Machine Learning Engineer"},
	{"artificial intelligence", "Machine Learning Engineer"},
	{"database", "Database Administrator"},
	{"data", "Data Scientist"},
	{"web", "Web Developer"},
	{"mobile", "Mobile App Developer"},
	{"cloud", "Cloud Engineer"},
	{"network", "Network Engineer"},
	{"game", "Game Developer"},
}

// Predict is the built-in rule set. Strong research profiles predict a
// research role; otherwise the domain keywords decide, then the stated
// future career, then DefaultCareer.
func Predict(profile map[string]string) (string, error) {
	gpa, _ := strconv.ParseFloat(strings.TrimSpace(profile["gpa"]), 64)
	if profile["researchExperience"] == "Yes" && gpa >= 9 {
		return "Research Scientist", nil
	}

	for _, key := range []string{"interestedDomain", "concentration"} {
		value := strings.ToLower(profile[key])
		if value == "" {
			continue
		}
		for _, rule := range domainRules {
			if strings.Contains(value, rule.keyword) {
				if rule.career == "Data Scientist" && profile["python"] != "Advanced" {
					return "Data Analyst", nil
				}
				return rule.career, nil
			}
		}
	}

	if career := strings.TrimSpace(profile["futureCareer"]); career != "" {
		return career, nil
	}
	return DefaultCareer, nil
}
