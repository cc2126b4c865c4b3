package schema

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/session"
	"github.com/leapstack-labs/sqlpilot/internal/testutil"
	"github.com/leapstack-labs/sqlpilot/internal/ui/features"
)

func TestRefreshAndSchema(t *testing.T) {
	f := features.SetupTestFixture(t, SetupRoutes)
	f.Backend.Set("GET /api/schema", testutil.Reply{Status: http.StatusOK, Body: map[string]any{
		"tables": []map[string]any{{
			"name":     "users",
			"rowCount": 3,
			"columns": []map[string]any{
				{"name": "id", "type": "integer", "isPrimary": true},
				{"name": "email", "type": "text"},
			},
		}},
	}})

	rec := f.Do(t, http.MethodGet, "/api/schema", nil)
	features.StatusOK(t, rec)
	assert.Empty(t, features.Decode[Response](t, rec).Tables)

	rec = f.Do(t, http.MethodPost, "/api/schema/refresh", nil)
	features.StatusOK(t, rec)
	resp := features.Decode[Response](t, rec)
	require.Len(t, resp.Tables, 1)
	assert.Equal(t, "users", resp.Tables[0].Name)
	require.NotNil(t, resp.Tables[0].RowCount)
	assert.Equal(t, int64(3), *resp.Tables[0].RowCount)
	assert.Equal(t, []session.ColumnInfo{
		{Name: "id", Type: "integer", IsPrimary: true},
		{Name: "email", Type: "text"},
	}, resp.Tables[0].Columns)

	rec = f.Do(t, http.MethodGet, "/api/schema", nil)
	features.StatusOK(t, rec)
	resp = features.Decode[Response](t, rec)
	assert.Len(t, resp.Tables, 1)
	assert.False(t, resp.Loading)
}

func TestRefresh_BackendFailure(t *testing.T) {
	f := features.SetupTestFixture(t, SetupRoutes)
	f.Backend.Set("GET /api/schema", testutil.Reply{Status: http.StatusInternalServerError})

	rec := f.Do(t, http.MethodPost, "/api/schema/refresh", nil)
	features.StatusOK(t, rec)
	assert.Empty(t, features.Decode[Response](t, rec).Tables)
}

func TestBrowse(t *testing.T) {
	f := features.SetupTestFixture(t, SetupRoutes)

	rec := f.Do(t, http.MethodPost, "/api/schema/users/browse", nil)
	features.StatusOK(t, rec)

	d := features.Decode[session.Display](t, rec)
	assert.Equal(t, engine.BrowseTablePrefix+"users", d.NaturalQuery)

	reqs := f.Backend.Requests("POST " + testutil.Endpoint)
	require.Len(t, reqs, 1)
	assert.Equal(t, engine.BrowseTablePrefix+"users", reqs[0].Body["query"])
}
