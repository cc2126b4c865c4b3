package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/testutil"
)

func newTestEngine(t *testing.T, fb *testutil.FakeBackend) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.Config{
		API:          engine.APIConfig{BaseURL: fb.URL, Endpoint: testutil.Endpoint},
		Timeout:      5 * time.Second,
		PollInterval: time.Hour,
		Logger:       testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestHandler_NotFound(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	s := NewServer(Config{Engine: newTestEngine(t, fb)})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

func TestHandler_EmptyHistory(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	s := NewServer(Config{Engine: newTestEngine(t, fb)})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServe_Lifecycle(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	s := NewServer(Config{
		Engine: newTestEngine(t, fb),
		Addr:   "127.0.0.1:0",
		Logger: testutil.NewTestLogger(t),
	})

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	var addr net.Addr
	select {
	case addr = <-s.Ready():
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server never became ready")
	}

	resp, err := http.Post("http://"+addr.String()+"/api/ask", "application/json",
		jsonBody(t, map[string]string{"query": "one"}))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Output struct {
			SQL string `json:"sql"`
		} `json:"output"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "SELECT 1", body.Output.SQL)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_ListenError(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	s := NewServer(Config{Engine: newTestEngine(t, fb), Addr: "127.0.0.1:99999"})

	err := s.Serve(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestWatchConfig_Reconfigures(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	other := testutil.NewFakeBackend(t)
	eng := newTestEngine(t, fb)

	path := filepath.Join(t.TempDir(), "sqlpilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: "+fb.URL+"\n"), 0o600))

	var next atomic.Value
	next.Store(engine.APIConfig{BaseURL: fb.URL, Endpoint: testutil.Endpoint})
	s := NewServer(Config{
		Engine:     eng,
		ConfigPath: path,
		Reload: func() (engine.APIConfig, error) {
			return next.Load().(engine.APIConfig), nil
		},
		Logger: testutil.NewTestLogger(t),
	})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go func() { _ = s.watchConfig(ctx) }()

	next.Store(engine.APIConfig{BaseURL: other.URL, Endpoint: testutil.Endpoint})
	require.Eventually(t, func() bool {
		// Keep touching the file until the watcher is registered.
		_ = os.WriteFile(path, []byte("api:\n  base_url: "+other.URL+"\n"), 0o600)
		return eng.APIConfig().BaseURL == other.URL
	}, 5*time.Second, 200*time.Millisecond)
}

func TestApplyConfig_ReloadErrorKeepsBackend(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	eng := newTestEngine(t, fb)
	s := NewServer(Config{
		Engine: eng,
		Reload: func() (engine.APIConfig, error) {
			return engine.APIConfig{}, assert.AnError
		},
		Logger: testutil.NewTestLogger(t),
	})

	s.applyConfig("sqlpilot.yaml")
	assert.Equal(t, fb.URL, eng.APIConfig().BaseURL)
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}
