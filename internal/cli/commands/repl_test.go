package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitest "github.com/leapstack-labs/sqlpilot/internal/cli/testutil"
	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/testutil"
)

func newTestREPL(t *testing.T) (*repl, *clitest.TestRenderer, *testutil.FakeBackend) {
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

	tr := clitest.NewTestRendererTable()
	return newREPL(eng, tr.Renderer), tr, fb
}

func TestREPL_QuitAndBlank(t *testing.T) {
	p, tr, _ := newTestREPL(t)

	assert.False(t, p.handleLine(t.Context(), "   "))
	assert.True(t, p.handleLine(t.Context(), ".quit"))
	assert.True(t, p.handleLine(t.Context(), ".EXIT"))
	assert.Empty(t, tr.Output())
}

func TestREPL_AskAndHistory(t *testing.T) {
	p, tr, fb := newTestREPL(t)
	ctx := t.Context()

	p.handleLine(ctx, "how many users")
	assert.Contains(t, tr.Output(), "SELECT 1")
	assert.Contains(t, tr.Output(), "(1 rows)")
	assert.Equal(t, "how many users", fb.Requests("POST "+testutil.Endpoint)[0].Body["query"])

	tr.Reset()
	p.handleLine(ctx, ".history")
	assert.Contains(t, tr.Output(), "how many users")

	tr.Reset()
	p.handleLine(ctx, ".show 1")
	assert.Contains(t, tr.Output(), "SELECT 1")

	tr.Reset()
	p.handleLine(ctx, ".stats")
	assert.Contains(t, tr.Output(), "100%")
}

func TestREPL_AskFailure(t *testing.T) {
	p, tr, fb := newTestREPL(t)
	fb.Set("GET /api/health", testutil.HealthyDisconnected)

	p.handleLine(t.Context(), "how many users")
	assert.Contains(t, tr.ErrorOutput(), "Please connect to a database first")
	assert.Equal(t, 0, fb.Hits("POST "+testutil.Endpoint))
}

func TestREPL_Bookmarks(t *testing.T) {
	p, tr, fb := newTestREPL(t)
	ctx := t.Context()

	p.handleLine(ctx, ".save weekly")
	assert.Contains(t, tr.ErrorOutput(), "no query to save")

	p.handleLine(ctx, "orders last week")
	tr.Reset()
	p.handleLine(ctx, ".save weekly")
	assert.Contains(t, tr.Output(), "Saved bookmark weekly")

	tr.Reset()
	p.handleLine(ctx, ".bookmarks")
	assert.Contains(t, tr.Output(), "weekly")

	p.handleLine(ctx, ".run 1")
	assert.Equal(t, 2, fb.Hits("POST "+testutil.Endpoint))

	tr.Reset()
	p.handleLine(ctx, ".delete 1")
	assert.Contains(t, tr.Output(), "Deleted bookmark")
	assert.Empty(t, p.eng.Bookmarks())

	tr.Reset()
	p.handleLine(ctx, ".run 1")
	assert.Contains(t, tr.ErrorOutput(), "out of range")
}

func TestREPL_ExplainValidateExport(t *testing.T) {
	p, tr, _ := newTestREPL(t)
	ctx := t.Context()

	p.handleLine(ctx, ".explain")
	assert.Contains(t, tr.ErrorOutput(), "no SQL to explain")

	p.handleLine(ctx, "one")
	tr.Reset()
	p.handleLine(ctx, ".explain")
	assert.Contains(t, tr.Output(), "Returns the constant one.")

	tr.Reset()
	p.handleLine(ctx, ".validate")
	assert.Contains(t, tr.Output(), "Valid: SQL syntax is valid")

	path := filepath.Join(t.TempDir(), "out.sql")
	tr.Reset()
	p.handleLine(ctx, ".export sql "+path)
	assert.Contains(t, tr.Output(), "Exported to")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", string(data))

	tr.Reset()
	p.handleLine(ctx, ".export csv")
	assert.Contains(t, tr.ErrorOutput(), "Usage: .export")
}

func TestREPL_SchemaAndBrowse(t *testing.T) {
	p, tr, fb := newTestREPL(t)
	fb.Set("GET /api/schema", testutil.Reply{Body: map[string]any{"tables": []map[string]any{{
		"name":    "users",
		"columns": []map[string]any{{"name": "id", "type": "integer", "isPrimary": true}},
	}}}})
	ctx := t.Context()

	p.handleLine(ctx, ".schema")
	assert.Contains(t, tr.Output(), "users")
	assert.Equal(t, 1, fb.Hits("GET /api/schema"))

	tr.Reset()
	p.handleLine(ctx, ".schema users")
	assert.Contains(t, tr.Output(), "Table: users")
	assert.Contains(t, tr.Output(), "PK")

	tr.Reset()
	p.handleLine(ctx, ".schema orders")
	assert.Contains(t, tr.ErrorOutput(), `table "orders" not found`)

	p.handleLine(ctx, ".browse users")
	reqs := fb.Requests("POST " + testutil.Endpoint)
	require.Len(t, reqs, 1)
	assert.Equal(t, engine.BrowseTablePrefix+"users", reqs[0].Body["query"])
}

func TestREPL_ConnectAndConfig(t *testing.T) {
	p, tr, fb := newTestREPL(t)
	ctx := t.Context()

	p.handleLine(ctx, ".connect not-a-uri")
	assert.Contains(t, tr.ErrorOutput(), "expected scheme")
	assert.Equal(t, 0, fb.Hits("POST /api/connect"))

	p.handleLine(ctx, ".connect postgresql://app:pw@db/shop")
	assert.Contains(t, tr.Output(), "Connected successfully!")
	assert.Equal(t, "postgresql://app:pw@db/shop", fb.Requests("POST /api/connect")[0].Body["connection_string"])

	tr.Reset()
	p.handleLine(ctx, ".config")
	assert.Contains(t, tr.Output(), "base_url: "+fb.URL)
	assert.Contains(t, tr.Output(), "endpoint: "+testutil.Endpoint)

	other := testutil.NewFakeBackend(t)
	tr.Reset()
	p.handleLine(ctx, ".config "+other.URL+"/")
	assert.Contains(t, tr.Output(), "Using "+other.URL+testutil.Endpoint)
	assert.Equal(t, other.URL, p.eng.APIConfig().BaseURL)
	assert.Equal(t, 1, other.Hits("GET /api/health"))
}

func TestREPL_UnknownCommand(t *testing.T) {
	p, tr, _ := newTestREPL(t)
	p.handleLine(t.Context(), ".frobnicate")
	assert.Contains(t, tr.ErrorOutput(), "Unknown command: .frobnicate")
}

func TestREPL_Help(t *testing.T) {
	p, tr, _ := newTestREPL(t)
	p.handleLine(t.Context(), ".help")
	for _, c := range []string{".schema", ".bookmarks", ".export", ".config", ".quit"} {
		assert.Contains(t, tr.Output(), c)
	}
}
