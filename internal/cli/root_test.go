package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlpilot/internal/cli/config"
	"github.com/leapstack-labs/sqlpilot/internal/testutil"
)

// run executes the root command against fb with an in-memory store.
func run(t *testing.T, fb *testutil.FakeBackend, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(config.ResetConfig)

	base := []string{"--state", config.MemoryState, "--color", "never"}
	if fb != nil {
		base = append(base, "--base-url", fb.URL)
	}

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, base...))

	err := cmd.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

func TestRoot_Help(t *testing.T) {
	out, _, err := run(t, nil, "--help")
	require.NoError(t, err)

	for _, c := range []string{"ask", "repl", "schema", "connect", "bookmarks", "serve", "doctor", "parse-uri"} {
		assert.Contains(t, out, c)
	}
}

func TestRoot_Version(t *testing.T) {
	out, _, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlpilot v"+Version)
}

func TestRoot_Ask(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	out, _, err := run(t, fb, "ask", "how", "many", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT 1")
	assert.Contains(t, out, "(1 rows)")

	reqs := fb.Requests("POST " + testutil.Endpoint)
	require.Len(t, reqs, 1)
	assert.Equal(t, "how many users", reqs[0].Body["query"])
}

func TestRoot_AskNotConnected(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set("GET /api/health", testutil.HealthyDisconnected)

	_, _, err := run(t, fb, "ask", "how many users")
	require.Error(t, err)
	assert.Equal(t, "Please connect to a database first", err.Error())
}

func TestRoot_AskJSON(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	out, _, err := run(t, fb, "ask", "one", "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "SELECT 1", got["sql"])
	assert.Equal(t, "one", got["naturalQuery"])
}

func TestRoot_StatusJSON(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set("GET /api/schema", testutil.Reply{Status: http.StatusOK, Body: []map[string]any{{"name": "users"}, {"name": "orders"}}})

	out, _, err := run(t, fb, "status", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Connected    bool   `json:"connected"`
		DatabaseName string `json:"database_name"`
		Tables       int    `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Connected)
	assert.Equal(t, "shop", got.DatabaseName)
	assert.Equal(t, 2, got.Tables)
}

func TestRoot_ConnectURI(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	out, _, err := run(t, fb, "connect", "postgresql://app:secret@db/shop")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected successfully!")
	assert.NotContains(t, out, "secret")
	assert.Equal(t, 1, fb.Hits("POST /api/connect"))
}

func TestRoot_ParseURI(t *testing.T) {
	out, _, err := run(t, nil, "parse-uri", "mysql://app:secret@db/shop", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"db_type":"mysql","host":"db","port":3306,"database":"shop","username":"app","password":"****"}`, out)
}

func TestRoot_InvalidFlagValue(t *testing.T) {
	_, _, err := run(t, nil, "status", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRoot_ConfigFile(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	path := filepath.Join(t.TempDir(), "sqlpilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: "+fb.URL+"\noutput: json\n"), 0o600))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"status", "--config", path, "--state", config.MemoryState})
	t.Cleanup(config.ResetConfig)

	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.Equal(t, path, config.GetConfigFileUsed())
	assert.Contains(t, out.String(), `"connected": true`)
	assert.Equal(t, 1, fb.Hits("GET /api/health"))
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := run(t, nil, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlpilot")
}
