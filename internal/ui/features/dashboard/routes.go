// Package dashboard provides the signed-in overview page.
package dashboard

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
)

// SetupRoutes configures routes for the dashboard feature.
func SetupRoutes(router chi.Router, container *registry.Container, notify *notifier.Notifier) error {
	handlers := NewHandlers(container, notify)

	router.Get("/dashboard", handlers.DashboardPage)
	router.Get("/dashboard/updates", handlers.DashboardUpdates)

	return nil
}
