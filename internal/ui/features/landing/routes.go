// Package landing provides the public landing page.
package landing

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures routes for the landing feature.
func SetupRoutes(router chi.Router, demo Highlighter) error {
	handlers := NewHandlers(demo)

	router.Get("/", handlers.LandingPage)
	router.Get("/highlights", handlers.HighlightsUpdates)

	return nil
}
