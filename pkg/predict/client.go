package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultPath is the prediction route appended to the base address.
const DefaultPath = "/predict"

// maxResponseBytes bounds how much of a response body is decoded.
const maxResponseBytes = 1 << 20

// Predictor is the contract consumed by front-ends.
type Predictor interface {
	Predict(ctx context.Context, payload map[string]string) (string, error)
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. The default client has no
// timeout; the wait is bounded only by the network stack.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets an overall request timeout on the default HTTP client.
// Zero keeps the unbounded behaviour.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithPath overrides the prediction route.
func WithPath(path string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			c.path = trimmed
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client performs the single POST exchange with the prediction service.
type Client struct {
	base    string
	path    string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

var _ Predictor = (*Client)(nil)

// New builds a client for the service at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("predict: base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("predict: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("predict: unsupported scheme %q", parsed.Scheme)
	}

	c := &Client{
		base:   base,
		path:   DefaultPath,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// Endpoint returns the full prediction URL.
func (c *Client) Endpoint() string {
	if strings.HasPrefix(c.path, "/") {
		return c.base + c.path
	}
	return c.base + "/" + c.path
}

type response struct {
	Prediction json.RawMessage `json:"prediction"`
	Error      string          `json:"error"`
}

// Predict serialises payload as one JSON object and posts it. It returns the
// prediction, a *RejectionError when the service answered without one, or a
// *TransportError when no usable response arrived.
func (c *Client) Predict(ctx context.Context, payload map[string]string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("predict: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("predict: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("prediction request failed",
			zap.String("endpoint", c.Endpoint()),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		c.logger.Warn("prediction response undecodable",
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return "", &TransportError{Err: fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)}
	}

	if prediction, ok := predictionText(decoded.Prediction); ok {
		c.logger.Debug("prediction received",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(started)))
		return prediction, nil
	}

	message := strings.TrimSpace(decoded.Error)
	if message == "" {
		message = FallbackRejection
	}
	c.logger.Info("prediction rejected",
		zap.Int("status", resp.StatusCode),
		zap.String("reason", message))
	return "", &RejectionError{Status: resp.StatusCode, Message: message}
}

// predictionText accepts a non-empty JSON string, or a number rendered as its
// literal text. Null, booleans, objects and empty strings count as missing.
func predictionText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil || n.String() == "0" {
			return "", false
		}
		return n.String(), true
	default:
		return "", false
	}
}
