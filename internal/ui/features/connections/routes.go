// Package connections provides the database connection registry pages.
package connections

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
)

// SetupRoutes configures routes for the connections feature.
func SetupRoutes(router chi.Router, container *registry.Container, notify *notifier.Notifier) error {
	handlers := NewHandlers(container, notify)

	router.Get("/connections", handlers.ConnectionsPage)
	router.Post("/connections", handlers.CreateConnection)
	router.Get("/connections/updates", handlers.ConnectionsUpdates)
	router.Post("/connections/{id}", handlers.UpdateConnection)
	router.Post("/connections/{id}/delete", handlers.DeleteConnection)
	router.Post("/connections/{id}/test", handlers.TestConnection)

	return nil
}
