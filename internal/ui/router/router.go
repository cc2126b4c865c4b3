// Package router sets up HTTP routes for the local bridge.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
	bookmarksFeature "github.com/leapstack-labs/sqlpilot/internal/ui/features/bookmarks"
	"github.com/leapstack-labs/sqlpilot/internal/ui/features/common"
	queryFeature "github.com/leapstack-labs/sqlpilot/internal/ui/features/query"
	schemaFeature "github.com/leapstack-labs/sqlpilot/internal/ui/features/schema"
	statusFeature "github.com/leapstack-labs/sqlpilot/internal/ui/features/status"
)

// SetupRoutes configures all routes for the bridge.
func SetupRoutes(router chi.Router, eng *engine.Engine) {
	queryFeature.SetupRoutes(router, eng)
	bookmarksFeature.SetupRoutes(router, eng)
	schemaFeature.SetupRoutes(router, eng)
	statusFeature.SetupRoutes(router, eng)

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSON(w, http.StatusNotFound, common.ErrorBody{Error: "not found"})
	})
}
