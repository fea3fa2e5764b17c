// Package config resolves runtime settings from defaults, an optional YAML
// file, a .env file and CAREERPATH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigFile      = "CAREERPATH_CONFIG"
	EnvAddr            = "CAREERPATH_ADDR"
	EnvPredictURL      = "CAREERPATH_PREDICT_URL"
	EnvPredictTimeout  = "CAREERPATH_PREDICT_TIMEOUT"
	EnvLogLevel        = "CAREERPATH_LOG_LEVEL"
	EnvLogDevelopment  = "CAREERPATH_LOG_DEVELOPMENT"
	EnvSessionCapacity = "CAREERPATH_SESSION_CAPACITY"
	EnvAllowedOrigins  = "CAREERPATH_ALLOWED_ORIGINS"
	EnvTypedValidation = "CAREERPATH_TYPED_VALIDATION"
	EnvTheme           = "CAREERPATH_THEME"
	EnvThemeVariant    = "CAREERPATH_THEME_VARIANT"
	EnvStubAddr        = "CAREERPATH_STUB_ADDR"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Predict PredictConfig `yaml:"predict"`
	Session SessionConfig `yaml:"session"`
	Form    FormConfig    `yaml:"form"`
	Theme   ThemeConfig   `yaml:"theme"`
	Log     LogConfig     `yaml:"log"`
	Stub    StubConfig    `yaml:"stub"`
}

// ServerConfig configures the web front-end.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PredictConfig points at the prediction service. A zero timeout leaves
// requests unbounded.
type PredictConfig struct {
	BaseURL string        `yaml:"base_url"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig bounds the in-memory session store.
type SessionConfig struct {
	Capacity     int    `yaml:"capacity"`
	CookieName   string `yaml:"cookie_name"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

// FormConfig toggles optional validation.
type FormConfig struct {
	TypedValidation bool `yaml:"typed_validation"`
	ValidateOnInput bool `yaml:"validate_on_input"`
}

// ThemeConfig selects the HTML theme.
type ThemeConfig struct {
	Name         string `yaml:"name"`
	Variant      string `yaml:"variant"`
	TemplatesDir string `yaml:"templates_dir"`
	AboutHTML    string `yaml:"about_html"`
	Contact      string `yaml:"contact"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// StubConfig configures the local prediction stub.
type StubConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Predict: PredictConfig{
			BaseURL: "http://localhost:5000",
			Path:    "/predict",
		},
		Session: SessionConfig{
			Capacity:   4096,
			CookieName: "careerpath_session",
		},
		Log:  LogConfig{Level: "info"},
		Stub: StubConfig{Addr: ":5000"},
	}
}

// Load reads .env from the working directory when present, then resolves
// the configuration. An empty path falls back to CAREERPATH_CONFIG.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return Resolve(path, os.Getenv)
}

// loadDotEnv exports the variables in file. A missing file is not an error.
func loadDotEnv(file string) error {
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", file, err)
	}
	return nil
}

// Resolve builds the configuration from the YAML file at path and the
// variables returned by getenv, then validates it.
func Resolve(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	cfg := Default()

	path = firstNonEmpty(strings.TrimSpace(path), strings.TrimSpace(getenv(EnvConfigFile)))
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(getenv func(string) string) error {
	lookup := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	c.Server.Addr = firstNonEmpty(lookup(EnvAddr), c.Server.Addr)
	c.Predict.BaseURL = firstNonEmpty(lookup(EnvPredictURL), c.Predict.BaseURL)
	c.Log.Level = firstNonEmpty(lookup(EnvLogLevel), c.Log.Level)
	c.Theme.Name = firstNonEmpty(lookup(EnvTheme), c.Theme.Name)
	c.Theme.Variant = firstNonEmpty(lookup(EnvThemeVariant), c.Theme.Variant)
	c.Stub.Addr = firstNonEmpty(lookup(EnvStubAddr), c.Stub.Addr)

	if raw := lookup(EnvAllowedOrigins); raw != "" {
		c.Server.AllowedOrigins = splitList(raw)
	}
	if raw := lookup(EnvPredictTimeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvPredictTimeout, err)
		}
		c.Predict.Timeout = timeout
	}
	if raw := lookup(EnvSessionCapacity); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSessionCapacity, err)
		}
		c.Session.Capacity = capacity
	}
	if raw := lookup(EnvTypedValidation); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvTypedValidation, err)
		}
		c.Form.TypedValidation = enabled
	}
	if raw := lookup(EnvLogDevelopment); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvLogDevelopment, err)
		}
		c.Log.Development = enabled
	}
	return nil
}

// Validate rejects settings the application cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}
	if err := validateBaseURL(c.Predict.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.Predict.Timeout < 0 {
		errs = append(errs, errors.New("predict.timeout must not be negative"))
	}
	if c.Session.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("session.capacity must be positive, got %d", c.Session.Capacity))
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		errs = append(errs, errors.New("session.cookie_name is required"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}

func validateBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("predict.base_url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("predict.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("predict.base_url: unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("predict.base_url: host is required")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
