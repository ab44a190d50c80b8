// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/launchpad/internal/auth"
	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
	"github.com/leapstack-labs/launchpad/internal/ui/features/common"
	connectionsFeature "github.com/leapstack-labs/launchpad/internal/ui/features/connections"
	dashboardFeature "github.com/leapstack-labs/launchpad/internal/ui/features/dashboard"
	landingFeature "github.com/leapstack-labs/launchpad/internal/ui/features/landing"
	loginFeature "github.com/leapstack-labs/launchpad/internal/ui/features/login"
	pipelinesFeature "github.com/leapstack-labs/launchpad/internal/ui/features/pipelines"
	settingsFeature "github.com/leapstack-labs/launchpad/internal/ui/features/settings"
	"github.com/leapstack-labs/launchpad/internal/ui/resources"
	"github.com/leapstack-labs/launchpad/internal/ui/session"
)

// Deps are the services the feature routes are built on.
type Deps struct {
	Container    *registry.Container
	Auth         *auth.Service
	Demo         landingFeature.Highlighter
	Notifier     *notifier.Notifier
	SessionStore sessions.Store
	Settings     settingsFeature.Settings
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the UI server. Everything except
// the landing page, sign-in and static assets requires a session.
func SetupRoutes(router chi.Router, deps Deps) error {
	router.Use(common.WithLogger(deps.Logger))
	router.Handle("/static/*", resources.Handler())

	var err error
	router.Group(func(public chi.Router) {
		public.Use(session.Optional(deps.SessionStore, deps.Auth))
		if err = landingFeature.SetupRoutes(public, deps.Demo); err != nil {
			return
		}
		err = loginFeature.SetupRoutes(public, deps.SessionStore, deps.Auth, deps.Logger)
	})
	if err != nil {
		return err
	}

	router.Group(func(private chi.Router) {
		private.Use(session.Require(deps.SessionStore, deps.Auth))
		if err = dashboardFeature.SetupRoutes(private, deps.Container, deps.Notifier); err != nil {
			return
		}
		if err = connectionsFeature.SetupRoutes(private, deps.Container, deps.Notifier); err != nil {
			return
		}
		if err = pipelinesFeature.SetupRoutes(private, deps.Container, deps.Notifier); err != nil {
			return
		}
		err = settingsFeature.SetupRoutes(private, deps.Settings)
	})
	return err
}
