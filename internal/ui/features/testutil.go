// Package features holds shared test fixtures for the bridge features.
package features

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/testutil"
)

// TestFixture wires an engine to a fake backend behind a router.
type TestFixture struct {
	Backend *testutil.FakeBackend
	Engine  *engine.Engine
	Router  chi.Router
}

// SetupTestFixture creates a fixture; setup registers routes on the router.
func SetupTestFixture(t *testing.T, setup func(chi.Router, *engine.Engine)) *TestFixture {
	t.Helper()

	fb := testutil.NewFakeBackend(t)
	eng, err := engine.New(engine.Config{
		API:          engine.APIConfig{BaseURL: fb.URL, Endpoint: testutil.Endpoint},
		Timeout:      5 * time.Second,
		PollInterval: time.Hour,
		Logger:       testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	r := chi.NewRouter()
	if setup != nil {
		setup(r, eng)
	}

	return &TestFixture{Backend: fb, Engine: eng, Router: r}
}

// Do sends a request with an optional JSON body through the router.
func (f *TestFixture) Do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.Router.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals a recorded response body.
func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

// StatusOK asserts a 200 answer.
func StatusOK(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
}
