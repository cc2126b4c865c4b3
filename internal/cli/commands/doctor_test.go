package commands

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlpilot/internal/cli/config"
	clitest "github.com/leapstack-labs/sqlpilot/internal/cli/testutil"
	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/state"
	"github.com/leapstack-labs/sqlpilot/internal/testutil"
)

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		want   int
	}{
		{"no checks returns 100", nil, 100},
		{"all passing returns 100", []HealthCheck{{Status: checkPass}, {Status: checkPass}}, 100},
		{"warnings reduce score", []HealthCheck{{Status: checkPass}, {Status: checkWarn}}, 85},
		{"errors reduce score more", []HealthCheck{{Status: checkError}}, 70},
		{
			name: "clamped at zero",
			checks: []HealthCheck{
				{Status: checkError}, {Status: checkError}, {Status: checkError}, {Status: checkError},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateHealthScore(tt.checks))
		})
	}
}

func TestGenerateRecommendations(t *testing.T) {
	checks := []HealthCheck{
		{CheckID: "BK01", Status: checkError},
		{CheckID: "BK02", Status: checkPass},
		{CheckID: "CF01", Status: checkWarn},
		{CheckID: "XX99", Status: checkWarn},
	}

	recs := generateRecommendations(checks)
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0], "api.base_url")
	assert.Contains(t, recs[1], "sqlpilot init")
}

func newDoctorEngine(t *testing.T, baseURL string) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.Config{
		API:          engine.APIConfig{BaseURL: baseURL, Endpoint: testutil.Endpoint},
		Timeout:      2 * time.Second,
		PollInterval: time.Hour,
		Logger:       testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func checkByID(t *testing.T, out *DoctorOutput, id string) HealthCheck {
	t.Helper()
	for _, c := range out.HealthChecks {
		if c.CheckID == id {
			return c
		}
	}
	t.Fatalf("check %s not reported", id)
	return HealthCheck{}
}

func TestBuildDoctorOutput_Healthy(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set("GET /api/schema", testutil.Reply{Status: http.StatusOK, Body: []map[string]any{{"name": "users"}}})
	eng := newDoctorEngine(t, fb.URL)

	cfg := &config.Config{StatePath: filepath.Join(t.TempDir(), "state.db")}
	out := buildDoctorOutput(t.Context(), eng, cfg, "sqlpilot.yaml")

	assert.Equal(t, 100, out.Score)
	assert.Zero(t, out.IssueCount)
	assert.Empty(t, out.Recommendations)
	assert.Equal(t, 1, out.Summary.Tables)
	assert.Equal(t, fb.URL, out.Summary.BaseURL)
	assert.Equal(t, []string{"postgresql shop"}, checkByID(t, out, "BK02").Details)

	groups := make([]string, 0, len(out.HealthChecks))
	for _, c := range out.HealthChecks {
		groups = append(groups, c.Group)
	}
	assert.IsNonDecreasing(t, groups)
}

func TestBuildDoctorOutput_Problems(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Set("GET /api/health", testutil.HealthyDisconnected)
	eng := newDoctorEngine(t, fb.URL)

	out := buildDoctorOutput(t.Context(), eng, &config.Config{}, "")

	assert.Equal(t, checkWarn, checkByID(t, out, "CF01").Status)
	assert.Equal(t, checkWarn, checkByID(t, out, "ST01").Status)
	assert.Equal(t, checkPass, checkByID(t, out, "BK01").Status)
	assert.Equal(t, checkWarn, checkByID(t, out, "BK02").Status)
	assert.Equal(t, checkWarn, checkByID(t, out, "BK03").Status)
	assert.Equal(t, 0, fb.Hits("GET /api/schema"))
	assert.Less(t, out.Score, 100)
}

func TestBuildDoctorOutput_Unreachable(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	url := fb.URL
	fb.Close()
	eng := newDoctorEngine(t, url)

	out := buildDoctorOutput(t.Context(), eng, &config.Config{}, "")

	reach := checkByID(t, out, "BK01")
	assert.Equal(t, checkError, reach.Status)
	assert.Equal(t, []string{"skipped, backend unreachable"}, checkByID(t, out, "BK04").Details)
}

func TestCheckStorage_Unwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	c := checkStorage(t.Context(), filepath.Join(blocker, "state.db"))
	assert.Equal(t, checkError, c.Status)
	require.Len(t, c.Details, 1)
}

func TestCheckStorage_ListsBlobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.PutBlob(t.Context(), "text2sql_saved_queries", []byte("[]")))
	require.NoError(t, store.Close())

	c := checkStorage(t.Context(), path)
	assert.Equal(t, checkPass, c.Status)
	require.Len(t, c.Details, 2)
	assert.Contains(t, c.Details[0], "schema version 1")
	assert.Contains(t, c.Details[1], "text2sql_saved_queries: 2 bytes")
}

func TestRenderDoctor(t *testing.T) {
	out := &DoctorOutput{
		Summary: SetupSummary{BaseURL: "http://localhost:8000", Endpoint: "/api/text-to-sql", StatePath: "state.db"},
		HealthChecks: []HealthCheck{
			{CheckID: "BK01", Name: "Backend reachable", Group: "backend", Status: checkError, Details: []string{"connection refused"}},
		},
		Score:           70,
		Recommendations: []string{"Start the backend"},
		IssueCount:      1,
	}

	tr := clitest.NewTestRendererTable()
	renderDoctorText(tr.Renderer, out)
	text := tr.Output()
	clitest.AssertNoANSI(t, text)
	assert.Contains(t, text, "Backend\n")
	assert.Contains(t, text, "✗ BK01: Backend reachable")
	assert.Contains(t, text, "connection refused")
	assert.Contains(t, text, "70/100")

	md := clitest.NewTestRenderer("md", false)
	renderDoctorMarkdown(md.Renderer, out)
	assert.Contains(t, md.Output(), "### Backend")
	assert.Contains(t, md.Output(), "- **[ERROR]** BK01: Backend reachable")
	assert.Contains(t, md.Output(), "1. Start the backend")
}
