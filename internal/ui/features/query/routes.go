// Package query exposes question submission, explanation and history.
package query

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
)

// SetupRoutes configures routes for the query feature.
func SetupRoutes(router chi.Router, eng *engine.Engine) {
	handlers := NewHandlers(eng)

	router.Post("/api/ask", handlers.Ask)
	router.Get("/api/output", handlers.Output)
	router.Post("/api/explain", handlers.Explain)
	router.Post("/api/validate", handlers.Validate)
	router.Get("/api/history", handlers.History)
	router.Post("/api/history/{id}/select", handlers.SelectHistory)
	router.Get("/api/stats", handlers.Stats)
}
