// Package monitor tracks whether the backend has a live database session.
//
// A Monitor probes the backend's health endpoint immediately and then on a
// fixed interval. Connectivity is derived only from the most recent probe.
// Listeners are notified when the observed status changes.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/sqlpilot/internal/backend"
	"github.com/leapstack-labs/sqlpilot/internal/notifier"
)

// DefaultInterval is the probe cadence.
const DefaultInterval = 5 * time.Second

// Prober performs one health check.
type Prober interface {
	Health(ctx context.Context) (backend.Health, error)
}

// Status is the outcome of the most recent probe.
type Status struct {
	BaseURL      string    `json:"base_url"`
	Connected    bool      `json:"connected"`
	Reachable    bool      `json:"reachable"`
	DatabaseType string    `json:"database_type,omitempty"`
	DatabaseName string    `json:"database_name,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
	// Error is the probe failure, if any.
	Error string `json:"error,omitempty"`
}

func (s Status) sameAs(o Status) bool {
	return s.BaseURL == o.BaseURL &&
		s.Connected == o.Connected &&
		s.Reachable == o.Reachable &&
		s.DatabaseType == o.DatabaseType &&
		s.DatabaseName == o.DatabaseName
}

// Config configures a Monitor.
type Config struct {
	Interval time.Duration
	Logger   *slog.Logger
	// NewProber builds a prober for a base URL. Defaults to a backend client.
	NewProber func(baseURL string) Prober
}

// Monitor runs the periodic probe loop. At most one loop runs at a time.
type Monitor struct {
	interval  time.Duration
	logger    *slog.Logger
	newProber func(string) Prober

	// loop lifecycle
	lifeMu  sync.Mutex
	parent  context.Context
	baseURL string
	cancel  context.CancelFunc
	done    chan struct{}

	// probe results; target mirrors baseURL so the loop never takes lifeMu
	stateMu sync.RWMutex
	target  string
	status  Status
	probed  bool

	notify *notifier.Notifier[Status]
}

// New creates a stopped Monitor.
func New(cfg Config) *Monitor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	newProber := cfg.NewProber
	if newProber == nil {
		newProber = func(baseURL string) Prober {
			return backend.New(backend.Config{BaseURL: baseURL, Logger: logger})
		}
	}
	return &Monitor{
		interval:  interval,
		logger:    logger,
		newProber: newProber,
		notify:    notifier.New[Status](),
	}
}

// Start begins probing baseURL. It probes once immediately, then every
// interval until ctx is done, Stop is called or the URL is reconfigured.
// Calling Start on a running monitor restarts it.
func (m *Monitor) Start(ctx context.Context, baseURL string) {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	m.stopLocked()
	m.parent = ctx
	m.startLocked(baseURL)
}

// Reconfigure moves the loop to a new base URL. The old loop is cancelled and
// has exited before the new one starts. An unchanged URL is a no-op.
func (m *Monitor) Reconfigure(baseURL string) {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	if baseURL == m.baseURL {
		return
	}
	running := m.cancel != nil
	m.stopLocked()
	m.setTarget(baseURL)
	m.stateMu.Lock()
	m.probed = false
	m.stateMu.Unlock()

	if running {
		m.startLocked(baseURL)
	}
}

// Stop cancels the loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	m.stopLocked()
}

func (m *Monitor) startLocked(baseURL string) {
	parent := m.parent
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	m.setTarget(baseURL)
	m.cancel = cancel
	m.done = done

	m.logger.Debug("connection monitor started",
		slog.String("base_url", baseURL),
		slog.Duration("interval", m.interval))

	go m.run(ctx, baseURL, done)
}

func (m *Monitor) setTarget(baseURL string) {
	m.baseURL = baseURL
	m.stateMu.Lock()
	m.target = baseURL
	m.stateMu.Unlock()
}

func (m *Monitor) stopLocked() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil
	m.logger.Debug("connection monitor stopped", slog.String("base_url", m.baseURL))
}

func (m *Monitor) run(ctx context.Context, baseURL string, done chan struct{}) {
	defer close(done)

	prober := m.newProber(baseURL)
	m.probeWith(ctx, baseURL, prober)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probeWith(ctx, baseURL, prober)
		}
	}
}

// Probe performs a one-shot check against baseURL and returns whether a
// database session is live. The result is recorded when baseURL is the
// monitored URL, or when nothing is monitored yet. Probe never fails.
func (m *Monitor) Probe(ctx context.Context, baseURL string) bool {
	return m.ProbeStatus(ctx, baseURL).Connected
}

// ProbeStatus is Probe returning the full outcome.
func (m *Monitor) ProbeStatus(ctx context.Context, baseURL string) Status {
	return m.probeWith(ctx, baseURL, m.newProber(baseURL))
}

func (m *Monitor) probeWith(ctx context.Context, baseURL string, p Prober) Status {
	st := Status{BaseURL: baseURL, CheckedAt: time.Now()}

	h, err := p.Health(ctx)
	if err != nil {
		st.Error = err.Error()
		if ctx.Err() != nil {
			return st
		}
		m.logger.Debug("health probe failed",
			slog.String("base_url", baseURL),
			slog.String("error", err.Error()))
	} else {
		st.Reachable = true
		st.Connected = h.Connected
		st.DatabaseType = h.DatabaseType
		st.DatabaseName = h.DatabaseName
	}

	m.record(st)
	return st
}

func (m *Monitor) record(st Status) {
	m.stateMu.Lock()
	if m.target != "" && m.target != st.BaseURL {
		m.stateMu.Unlock()
		return
	}
	changed := !m.probed || !m.status.sameAs(st)
	m.status = st
	m.probed = true
	m.stateMu.Unlock()

	if changed {
		m.logger.Info("backend status changed",
			slog.String("base_url", st.BaseURL),
			slog.Bool("reachable", st.Reachable),
			slog.Bool("connected", st.Connected))
		m.notify.Broadcast(st)
	}
}

// Connected reports the result of the most recent probe.
func (m *Monitor) Connected() bool {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.status.Connected
}

// Status returns the most recent probe outcome.
func (m *Monitor) Status() Status {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.status
}

// BaseURL returns the monitored URL.
func (m *Monitor) BaseURL() string {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	return m.baseURL
}

// Subscribe returns a channel receiving every status change.
func (m *Monitor) Subscribe() chan Status {
	return m.notify.Subscribe()
}

// Unsubscribe releases a channel returned by Subscribe.
func (m *Monitor) Unsubscribe(ch chan Status) {
	m.notify.Unsubscribe(ch)
}
