// Package status exposes connectivity, the backend location and the
// database session.
package status

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
)

// SetupRoutes configures routes for the status feature.
func SetupRoutes(router chi.Router, eng *engine.Engine) {
	handlers := NewHandlers(eng)

	router.Get("/api/status", handlers.Status)
	router.Post("/api/status/probe", handlers.Probe)
	router.Get("/api/status/stream", handlers.Stream)
	router.Get("/api/config", handlers.Config)
	router.Put("/api/config", handlers.Reconfigure)
	router.Post("/api/connect", handlers.Connect)
	router.Post("/api/disconnect", handlers.Disconnect)
}
