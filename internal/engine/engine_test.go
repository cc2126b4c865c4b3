package engine

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlpilot/internal/backend"
	"github.com/leapstack-labs/sqlpilot/internal/session"
	"github.com/leapstack-labs/sqlpilot/internal/testutil"
)

const (
	health = "GET /api/health"
	query  = "POST " + testutil.Endpoint
)

func newTestEngine(t *testing.T, fb *testutil.FakeBackend, opts ...func(*Config)) *Engine {
	t.Helper()
	cfg := Config{
		API:          APIConfig{BaseURL: fb.URL, Endpoint: testutil.Endpoint},
		Timeout:      5 * time.Second,
		PollInterval: time.Hour,
		Logger:       testutil.NewTestLogger(t),
	}
	for _, o := range opts {
		o(&cfg)
	}
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestSubmit_Success(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	e := newTestEngine(t, fb)

	item, err := e.Submit(context.Background(), "give me one")
	require.NoError(t, err)

	assert.Equal(t, session.StatusSuccess, item.Status)
	assert.Equal(t, "SELECT 1", item.SQL)
	assert.Equal(t, "give me one", item.NaturalQuery)
	require.Len(t, item.Rows, 1)
	require.NotNil(t, item.ExecutionTime)

	out := e.Output()
	assert.Equal(t, "SELECT 1", out.SQL)
	assert.Equal(t, "give me one", out.NaturalQuery)
	assert.True(t, out.HasRows)
	assert.Empty(t, out.Error)

	h := e.History()
	require.Len(t, h, 1)
	assert.Equal(t, item.ID, h[0].ID)

	// the health probe precedes the query
	assert.Equal(t, 1, fb.Hits(health))
	assert.Equal(t, 1, fb.Hits(query))
	assert.True(t, e.Connected())
}

func TestSubmit_NotConnected(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set(health, testutil.HealthyDisconnected)
	e := newTestEngine(t, fb)

	item, err := e.Submit(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrNoActiveConnection)

	assert.Equal(t, 0, fb.Hits(query), "query must not be sent without a database session")
	assert.Equal(t, session.StatusError, item.Status)
	assert.Empty(t, item.SQL)
	assert.Nil(t, item.Rows)

	h := e.History()
	require.Len(t, h, 1)
	assert.Equal(t, session.StatusError, h[0].Status)

	out := e.Output()
	assert.Equal(t, "Please connect to a database first", out.Error)
	assert.Empty(t, out.SQL)
}

func TestSubmit_Unreachable(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set(health, testutil.Reply{Status: http.StatusBadGateway})
	e := newTestEngine(t, fb)

	_, err := e.Submit(context.Background(), "q")
	assert.ErrorIs(t, err, backend.ErrBackendUnreachable)
	assert.Equal(t, "Cannot reach backend", e.Output().Error)
	assert.Equal(t, 0, fb.Hits(query))
	assert.Len(t, e.History(), 1)
}

func TestSubmit_RequestFailed(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set(query, testutil.Reply{Status: http.StatusInternalServerError})
	e := newTestEngine(t, fb)

	item, err := e.Submit(context.Background(), "q")
	var rf *backend.RequestFailedError
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, http.StatusInternalServerError, rf.StatusCode)
	assert.Equal(t, "API error: 500 Internal Server Error", e.Output().Error)
	assert.Equal(t, "API error: 500 Internal Server Error", item.Error)
}

func TestSubmit_ClearsPreviousOutput(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	e := newTestEngine(t, fb)
	ctx := context.Background()

	_, err := e.Submit(ctx, "first")
	require.NoError(t, err)
	_, err = e.Explain(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, e.Output().Explanation)

	fb.Set(query, testutil.Reply{Status: http.StatusInternalServerError})
	_, err = e.Submit(ctx, "second")
	require.Error(t, err)

	out := e.Output()
	assert.Equal(t, "second", out.NaturalQuery)
	assert.Empty(t, out.SQL)
	assert.Empty(t, out.Explanation)
	assert.Nil(t, out.Rows)
}

func TestSubmit_EmptyQuery(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	e := newTestEngine(t, fb)

	_, err := e.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, e.History())
	assert.Equal(t, 0, fb.Hits(health))
}

func TestSubmit_ConcurrentRejected(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	slow := testutil.SelectOne
	slow.Delay = 300 * time.Millisecond
	fb.Set(query, slow)
	e := newTestEngine(t, fb)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = e.Submit(context.Background(), "slow one")
	}()

	require.Eventually(t, func() bool { return fb.Hits(query) == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err := e.Submit(context.Background(), "impatient")
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.Equal(t, "slow one", e.Output().NaturalQuery, "rejected call must not touch state")

	wg.Wait()
	require.NoError(t, firstErr)
	assert.Len(t, e.History(), 1)
	assert.Equal(t, 1, fb.Hits(query))
}

func TestSubmit_NotDeduplicated(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	e := newTestEngine(t, fb)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.Submit(ctx, "same")
		require.NoError(t, err)
	}
	assert.Len(t, e.History(), 3)
	assert.Equal(t, 3, fb.Hits(query))
}

func TestExplain_Cached(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	e := newTestEngine(t, fb)
	ctx := context.Background()

	_, err := e.Explain(ctx)
	assert.ErrorIs(t, err, ErrNothingToExplain)

	_, err = e.Submit(ctx, "q")
	require.NoError(t, err)

	text, err := e.Explain(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Returns the constant one.", text)

	text, err = e.Explain(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Returns the constant one.", text)
	assert.Equal(t, 1, fb.Hits("POST /api/explain"))
}

func TestExplain_Fallback(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set("POST /api/explain", testutil.Reply{Status: http.StatusNotFound})
	e := newTestEngine(t, fb)
	ctx := context.Background()

	_, err := e.Submit(ctx, "q")
	require.NoError(t, err)

	text, err := e.Explain(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExplainFallback, text)
}

func TestRefreshSchema(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set("GET /api/schema", testutil.Reply{Body: map[string]any{"tables": []any{
		map[string]any{"name": "users", "columns": []any{}},
	}}})
	e := newTestEngine(t, fb)

	tables := e.RefreshSchema(context.Background())
	require.Len(t, tables, 1)

	cached, loading := e.Schema()
	assert.False(t, loading)
	assert.Equal(t, tables, cached)

	fb.Set("GET /api/schema", testutil.Reply{Status: http.StatusBadRequest, Body: map[string]any{"detail": "Not connected to database"}})
	assert.Empty(t, e.RefreshSchema(context.Background()))
	cached, loading = e.Schema()
	assert.False(t, loading)
	assert.Empty(t, cached)
}

func TestStart_RefreshesSchemaWhenConnected(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set("GET /api/schema", testutil.Reply{Body: []any{map[string]any{"name": "orders"}}})
	e := newTestEngine(t, fb)

	e.Start(context.Background())

	assert.Eventually(t, func() bool {
		tables, _ := e.Schema()
		return len(tables) == 1 && tables[0].Name == "orders"
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, e.Connected())
}

func TestReconfigure(t *testing.T) {
	a := testutil.NewFakeBackend(t)
	b := testutil.NewFakeBackend(t)
	e := newTestEngine(t, a)
	ctx := context.Background()

	_, err := e.Submit(ctx, "to a")
	require.NoError(t, err)

	e.Reconfigure(APIConfig{BaseURL: b.URL + "/", Endpoint: "api/text-to-sql"})
	assert.Equal(t, APIConfig{BaseURL: b.URL, Endpoint: testutil.Endpoint}, e.APIConfig())

	_, err = e.Submit(ctx, "to b")
	require.NoError(t, err)

	assert.Equal(t, 1, a.Hits(query))
	assert.Equal(t, 1, b.Hits(query))
	assert.Len(t, e.History(), 2, "history survives reconfiguration")
}

func TestBookmarks(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	e := newTestEngine(t, fb)
	ctx := context.Background()

	_, err := e.SaveBookmark(ctx, "nothing yet")
	assert.ErrorIs(t, err, session.ErrNothingToSave)

	_, err = e.Submit(ctx, "one please")
	require.NoError(t, err)

	_, err = e.SaveBookmark(ctx, "")
	assert.ErrorIs(t, err, session.ErrEmptyName)

	saved, err := e.SaveBookmark(ctx, "the one")
	require.NoError(t, err)
	assert.Equal(t, "one please", saved.NaturalQuery)
	assert.Equal(t, "SELECT 1", saved.SQL)
	require.Len(t, e.Bookmarks(), 1)

	_, err = e.RunBookmark(ctx, saved.ID)
	require.NoError(t, err)
	reqs := fb.Requests(query)
	assert.Equal(t, "one please", reqs[len(reqs)-1].Body["query"])

	_, err = e.RunBookmark(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, e.DeleteBookmark(ctx, saved.ID))
	assert.Empty(t, e.Bookmarks())
}

func TestBookmarks_PersistAcrossEngines(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	path := filepath.Join(t.TempDir(), "state.db")
	withState := func(c *Config) { c.StatePath = path }
	ctx := context.Background()

	e := newTestEngine(t, fb, withState)
	_, err := e.Submit(ctx, "q")
	require.NoError(t, err)
	_, err = e.SaveBookmark(ctx, "kept")
	require.NoError(t, err)
	require.NoError(t, e.Close())

	e2 := newTestEngine(t, fb, withState)
	e2.Load(ctx)
	require.Len(t, e2.Bookmarks(), 1)
	assert.Equal(t, "kept", e2.Bookmarks()[0].Name)
}

func TestSelectHistory(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	e := newTestEngine(t, fb)
	ctx := context.Background()

	first, err := e.Submit(ctx, "first")
	require.NoError(t, err)

	fb.Set(query, testutil.Reply{Body: map[string]any{"sql": "SELECT 2", "results": []any{}}})
	_, err = e.Submit(ctx, "second")
	require.NoError(t, err)
	_, err = e.Explain(ctx)
	require.NoError(t, err)

	_, err = e.SelectHistory(first.ID)
	require.NoError(t, err)

	out := e.Output()
	assert.Equal(t, "SELECT 1", out.SQL)
	assert.Equal(t, "first", out.NaturalQuery)
	assert.Len(t, out.Rows, 1)
	assert.Empty(t, out.Explanation)

	_, err = e.SelectHistory("missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestBrowseTable(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	e := newTestEngine(t, fb)

	item, err := e.BrowseTable(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, "Show all records from users", item.NaturalQuery)
	assert.Equal(t, "Show all records from users", fb.Requests(query)[0].Body["query"])
}

func TestConnect(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set("GET /api/schema", testutil.Reply{Body: map[string]any{"tables": []any{map[string]any{"name": "t"}}}})
	e := newTestEngine(t, fb)

	msg, err := e.Connect(context.Background(), backend.ConnectRequest{ConnectionString: "postgres://u:p@h/db"})
	require.NoError(t, err)
	assert.Equal(t, "Connected successfully!", msg)

	tables, _ := e.Schema()
	assert.Len(t, tables, 1)
}

func TestConnect_Errors(t *testing.T) {
	tests := []struct {
		name  string
		reply testutil.Reply
		want  string
	}{
		{"detail", testutil.Reply{Status: http.StatusInternalServerError, Body: map[string]any{"detail": "password authentication failed"}}, "password authentication failed"},
		{"message", testutil.Reply{Status: http.StatusBadRequest, Body: map[string]any{"message": "unsupported"}}, "unsupported"},
		{"status only", testutil.Reply{Status: http.StatusBadGateway}, "Connection failed (502)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBackend(t)
			fb.Set("POST /api/connect", tt.reply)
			e := newTestEngine(t, fb)

			_, err := e.Connect(context.Background(), backend.ConnectRequest{ConnectionString: "mysql://h/db"})
			var ce *ConnectError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, ce.Error())
			assert.Equal(t, tt.reply.Status, backend.StatusCode(err))
		})
	}
}

func TestDisconnect_IgnoresFailure(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set("POST /api/disconnect", testutil.Reply{Status: http.StatusInternalServerError})
	fb.Set(health, testutil.HealthyDisconnected)
	e := newTestEngine(t, fb)

	e.Disconnect(context.Background())
	assert.False(t, e.Connected())
	assert.Equal(t, 1, fb.Hits("POST /api/disconnect"))
}

func TestValidate(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	e := newTestEngine(t, fb)

	v, err := e.Validate(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.True(t, v.Valid)

	_, err = e.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestStats(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	e := newTestEngine(t, fb)
	ctx := context.Background()

	_, err := e.Submit(ctx, "ok")
	require.NoError(t, err)
	fb.Set(health, testutil.HealthyDisconnected)
	_, err = e.Submit(ctx, "fails")
	require.Error(t, err)

	st := e.Stats()
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.Success)
	assert.Equal(t, 1, st.Errors)
	assert.Equal(t, 50, st.SuccessRate)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Cannot reach backend", Message(backend.ErrBackendUnreachable))
	assert.Equal(t, "Please connect to a database first", Message(backend.ErrNoActiveConnection))
	assert.Equal(t, "API error: 404 Not Found", Message(&backend.RequestFailedError{StatusCode: 404, Status: "404 Not Found"}))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
