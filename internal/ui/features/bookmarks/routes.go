// Package bookmarks exposes saved queries.
package bookmarks

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
)

// SetupRoutes configures routes for the bookmarks feature.
func SetupRoutes(router chi.Router, eng *engine.Engine) {
	handlers := NewHandlers(eng)

	router.Get("/api/bookmarks", handlers.List)
	router.Post("/api/bookmarks", handlers.Save)
	router.Delete("/api/bookmarks/{id}", handlers.Delete)
	router.Post("/api/bookmarks/{id}/run", handlers.Run)
}
