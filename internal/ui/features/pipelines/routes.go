// Package pipelines provides the pipeline registry pages.
package pipelines

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
)

// SetupRoutes configures routes for the pipelines feature.
func SetupRoutes(router chi.Router, container *registry.Container, notify *notifier.Notifier) error {
	handlers := NewHandlers(container, notify)

	router.Get("/pipeline", handlers.PipelinesPage)
	router.Post("/pipeline", handlers.CreatePipeline)
	router.Get("/pipeline/updates", handlers.PipelineUpdates)
	router.Get("/pipeline/{id}", handlers.PipelineDetailPage)
	router.Post("/pipeline/{id}", handlers.UpdatePipeline)
	router.Post("/pipeline/{id}/delete", handlers.DeletePipeline)
	router.Post("/pipeline/{id}/run", handlers.RunPipeline)
	router.Post("/pipeline/{id}/builder/table", handlers.SelectTable)
	router.Post("/pipeline/{id}/builder/columns", handlers.SelectColumns)
	router.Post("/pipeline/{id}/builder/fields", handlers.AddField)
	router.Post("/pipeline/{id}/builder/fields/{field}", handlers.UpdateField)
	router.Post("/pipeline/{id}/builder/fields/{field}/delete", handlers.RemoveField)

	return nil
}
