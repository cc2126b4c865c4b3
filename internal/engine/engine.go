// Package engine is the orchestration facade for a text-to-SQL session.
//
// An Engine owns the API configuration, the connection monitor and the
// session state. Presentation layers call its methods and read its state;
// backend failures become state (an error message, an empty schema, a
// fallback explanation) rather than escaping as panics.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/leapstack-labs/sqlpilot/internal/backend"
	"github.com/leapstack-labs/sqlpilot/internal/monitor"
	"github.com/leapstack-labs/sqlpilot/internal/session"
	"github.com/leapstack-labs/sqlpilot/internal/state"
)

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL  string `json:"base_url"`
	Endpoint string `json:"endpoint"`
}

func (c APIConfig) normalized() APIConfig {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = backend.DefaultBaseURL
	}
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.Endpoint == "" {
		c.Endpoint = backend.DefaultEndpoint
	}
	if !strings.HasPrefix(c.Endpoint, "/") {
		c.Endpoint = "/" + c.Endpoint
	}
	return c
}

// Config holds engine configuration.
type Config struct {
	// API locates the backend.
	API APIConfig
	// Timeout bounds every backend call.
	Timeout time.Duration
	// PollInterval is the connectivity probe cadence.
	PollInterval time.Duration
	// StatePath is the SQLite database holding bookmarks. Ignored when Blobs
	// is set; bookmarks live in memory when both are empty.
	StatePath string
	// Blobs overrides bookmark persistence.
	Blobs session.BlobStore
	// HTTPClient overrides the backend transport (optional).
	HTTPClient *http.Client
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine is one session against a backend.
type Engine struct {
	logger     *slog.Logger
	timeout    time.Duration
	httpClient *http.Client

	cfgMu  sync.RWMutex
	api    APIConfig
	client *backend.Client

	store   *state.SQLiteStore
	session *session.Store
	monitor *monitor.Monitor

	// submitGate admits one submission at a time.
	submitGate *semaphore.Weighted

	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

// New creates an engine. The monitor is not started until Start.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	api := cfg.API.normalized()

	logger.Debug("initializing engine",
		slog.String("base_url", api.BaseURL),
		slog.String("endpoint", api.Endpoint))

	e := &Engine{
		logger:     logger,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		api:        api,
		submitGate: semaphore.NewWeighted(1),
	}
	e.client = e.newClient(api)

	blobs := cfg.Blobs
	if blobs == nil && cfg.StatePath != "" {
		store := state.NewSQLiteStore(logger)
		if err := store.Open(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		e.store = store
		blobs = store
	}

	e.session = session.New(session.Config{Blobs: blobs, Logger: logger})
	e.monitor = monitor.New(monitor.Config{
		Interval: cfg.PollInterval,
		Logger:   logger,
		NewProber: func(baseURL string) monitor.Prober {
			return e.newClient(APIConfig{BaseURL: baseURL, Endpoint: api.Endpoint})
		},
	})

	return e, nil
}

func (e *Engine) newClient(api APIConfig) *backend.Client {
	return backend.New(backend.Config{
		BaseURL:    api.BaseURL,
		Endpoint:   api.Endpoint,
		Timeout:    e.timeout,
		Logger:     e.logger,
		HTTPClient: e.httpClient,
	})
}

// Load reads persisted bookmarks. A read failure is logged and leaves the
// session with no bookmarks.
func (e *Engine) Load(ctx context.Context) {
	if err := e.session.LoadBookmarks(ctx); err != nil {
		e.logger.Warn("could not load bookmarks", slog.String("error", err.Error()))
	}
}

// Start loads bookmarks, starts the connection monitor and refreshes the
// schema whenever the backend gains a database session.
func (e *Engine) Start(ctx context.Context) {
	e.Load(ctx)

	ch := e.monitor.Subscribe()
	wctx, cancel := context.WithCancel(ctx)
	e.watchCancel = cancel
	e.watchDone = make(chan struct{})
	go e.watch(wctx, ch)

	e.monitor.Start(ctx, e.APIConfig().BaseURL)
}

func (e *Engine) watch(ctx context.Context, ch chan monitor.Status) {
	defer close(e.watchDone)
	defer e.monitor.Unsubscribe(ch)

	connected := false
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-ch:
			if !ok {
				return
			}
			if st.Connected && !connected {
				e.RefreshSchema(ctx)
			}
			connected = st.Connected
		}
	}
}

// Close stops background work and releases the state store.
func (e *Engine) Close() error {
	e.monitor.Stop()
	if e.watchCancel != nil {
		e.watchCancel()
		<-e.watchDone
		e.watchCancel = nil
	}
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// APIConfig returns the current API configuration.
func (e *Engine) APIConfig() APIConfig {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.api
}

func (e *Engine) backendClient() *backend.Client {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.client
}

// Reconfigure replaces the API configuration. The monitor moves to the new
// base URL; a submission already in flight finishes against the old one.
func (e *Engine) Reconfigure(api APIConfig) {
	api = api.normalized()

	e.cfgMu.Lock()
	if api == e.api {
		e.cfgMu.Unlock()
		return
	}
	e.api = api
	e.client = e.newClient(api)
	e.cfgMu.Unlock()

	e.logger.Info("api configuration changed",
		slog.String("base_url", api.BaseURL),
		slog.String("endpoint", api.Endpoint))

	e.monitor.Reconfigure(api.BaseURL)
}

// Connected reports the most recent probe result.
func (e *Engine) Connected() bool {
	return e.monitor.Connected()
}

// Status returns the most recent probe outcome.
func (e *Engine) Status() monitor.Status {
	return e.monitor.Status()
}

// Probe checks connectivity now.
func (e *Engine) Probe(ctx context.Context) monitor.Status {
	return e.monitor.ProbeStatus(ctx, e.APIConfig().BaseURL)
}

// Subscribe returns a channel of connectivity changes.
func (e *Engine) Subscribe() chan monitor.Status {
	return e.monitor.Subscribe()
}

// Unsubscribe releases a channel returned by Subscribe.
func (e *Engine) Unsubscribe(ch chan monitor.Status) {
	e.monitor.Unsubscribe(ch)
}

// Output returns what the session currently displays.
func (e *Engine) Output() session.Display {
	return e.session.Display()
}

// History returns the session history, newest first.
func (e *Engine) History() []session.HistoryItem {
	return e.session.History()
}

// Bookmarks returns the saved queries, newest first.
func (e *Engine) Bookmarks() []session.SavedQuery {
	return e.session.Bookmarks()
}

// Schema returns the cached schema and whether a refresh is running.
func (e *Engine) Schema() ([]session.TableInfo, bool) {
	return e.session.Schema()
}

// Stats summarizes the history.
func (e *Engine) Stats() session.Stats {
	return e.session.Stats()
}
