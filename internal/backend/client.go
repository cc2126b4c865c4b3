// Package backend is the HTTP client for a text-to-SQL backend.
//
// Every call is bounded by the configured timeout. Transport failures are
// wrapped in ErrBackendUnreachable and non-2xx responses become
// *RequestFailedError; callers decide how much of that to surface.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Paths of the fixed backend endpoints. The query endpoint is configurable.
const (
	HealthPath     = "/api/health"
	ExplainPath    = "/api/explain"
	SchemaPath     = "/api/schema"
	ConnectPath    = "/api/connect"
	DisconnectPath = "/api/disconnect"
	ValidatePath   = "/api/validate"
)

// Defaults for Config.
const (
	DefaultBaseURL  = "http://localhost:8000"
	DefaultEndpoint = "/api/text-to-sql"
	DefaultTimeout  = 30 * time.Second

	// QueryLimit is the row limit sent with every generation request.
	QueryLimit = 100
)

// Config configures a Client.
type Config struct {
	BaseURL  string
	Endpoint string
	Timeout  time.Duration
	Logger   *slog.Logger
	// HTTPClient overrides the underlying transport. Optional.
	HTTPClient *http.Client
}

// Client talks to one backend base URL. It is safe for concurrent use.
type Client struct {
	http     *resty.Client
	baseURL  string
	endpoint string
	logger   *slog.Logger
}

// New creates a client from cfg, filling unset fields with defaults.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetLogger(&restyLogger{logger: logger})

	return &Client{
		http:     rc,
		baseURL:  baseURL,
		endpoint: endpoint,
		logger:   logger,
	}
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Endpoint returns the query endpoint path.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// do executes one request and classifies the outcome. A nil body sends no
// payload.
func (c *Client) do(ctx context.Context, method, path string, body any) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Debug("backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %s %s: %w", ErrBackendUnreachable, method, path, err)
	}

	c.logger.Debug("backend request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode()),
		slog.Duration("elapsed", time.Since(start)))

	if !resp.IsSuccess() {
		return resp, newRequestFailed(resp)
	}
	return resp, nil
}

// restyLogger routes resty's internal logging into slog at debug level.
type restyLogger struct {
	logger *slog.Logger
}

func (l *restyLogger) Errorf(format string, v ...any) {
	l.logger.Debug("resty: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *restyLogger) Warnf(format string, v ...any) {
	l.logger.Debug("resty: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug("resty: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}
