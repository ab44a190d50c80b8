// Package settings provides the read-only workspace settings page.
package settings

import "github.com/go-chi/chi/v5"

// SetupRoutes configures routes for the settings feature.
func SetupRoutes(router chi.Router, settings Settings) error {
	handlers := NewHandlers(settings)

	router.Get("/settings", handlers.SettingsPage)

	return nil
}
