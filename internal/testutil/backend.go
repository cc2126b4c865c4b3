package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// Reply is a canned response: a status code and a JSON-encodable body. A nil
// Body writes nothing; a string Body is written verbatim.
type Reply struct {
	Status int
	Body   any
	// Delay holds the response back, honoring client cancellation.
	Delay time.Duration
}

// Request is a request observed by FakeBackend.
type Request struct {
	Method string
	Path   string
	Body   map[string]any
}

// FakeBackend is an in-process text-to-SQL backend. Replies can be changed
// at any time with Set; every request is recorded.
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	replies  map[string]Reply
	requests []Request
}

// Default replies served by a new FakeBackend.
var (
	HealthyConnected = Reply{Status: http.StatusOK, Body: map[string]any{
		"status":             "healthy",
		"database_connected": true,
		"database_type":      "postgresql",
		"database_name":      "shop",
	}}
	HealthyDisconnected = Reply{Status: http.StatusOK, Body: map[string]any{
		"status":             "healthy",
		"database_connected": false,
	}}
	SelectOne = Reply{Status: http.StatusOK, Body: map[string]any{
		"sql":            "SELECT 1",
		"results":        []map[string]any{{"?column?": 1}},
		"execution_time": 0.012,
	}}
)

// Endpoint is the query path served by FakeBackend.
const Endpoint = "/api/text-to-sql"

// NewFakeBackend starts a fake backend that is closed with the test.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	f := &FakeBackend{
		replies: map[string]Reply{
			"GET /api/health":      HealthyConnected,
			"POST " + Endpoint:     SelectOne,
			"POST /api/explain":    {Status: http.StatusOK, Body: map[string]any{"explanation": "Returns the constant one."}},
			"GET /api/schema":      {Status: http.StatusOK, Body: map[string]any{"tables": []any{}}},
			"POST /api/connect":    {Status: http.StatusOK, Body: map[string]any{"message": "Connected successfully!", "status": "connected"}},
			"POST /api/disconnect": {Status: http.StatusOK, Body: map[string]any{"message": "Disconnected successfully"}},
			"POST /api/validate":   {Status: http.StatusOK, Body: map[string]any{"valid": true, "message": "SQL syntax is valid"}},
		},
	}

	r := chi.NewRouter()
	r.HandleFunc("/*", f.serve)
	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)

	return f
}

// Set replaces the reply for "METHOD /path".
func (f *FakeBackend) Set(route string, reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[route] = reply
}

// Requests returns the recorded requests for "METHOD /path".
func (f *FakeBackend) Requests(route string) []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Request
	for _, r := range f.requests {
		if r.Method+" "+r.Path == route {
			out = append(out, r)
		}
	}
	return out
}

// Hits counts the recorded requests for "METHOD /path".
func (f *FakeBackend) Hits(route string) int {
	return len(f.Requests(route))
}

func (f *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	rec := Request{Method: r.Method, Path: r.URL.Path}
	if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	reply, ok := f.replies[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	switch body := reply.Body.(type) {
	case nil:
		w.WriteHeader(status)
	case string:
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
