// Package schema exposes the connected database's tables.
package schema

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
)

// SetupRoutes configures routes for the schema feature.
func SetupRoutes(router chi.Router, eng *engine.Engine) {
	handlers := NewHandlers(eng)

	router.Get("/api/schema", handlers.Schema)
	router.Post("/api/schema/refresh", handlers.Refresh)
	router.Post("/api/schema/{table}/browse", handlers.Browse)
}
