// Package login provides sign-in and sign-out.
package login

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/launchpad/internal/auth"
	"github.com/leapstack-labs/launchpad/internal/ui/session"
)

// SetupRoutes configures routes for the login feature.
func SetupRoutes(router chi.Router, sessionStore sessions.Store, authService *auth.Service, logger *slog.Logger) error {
	handlers := NewHandlers(sessionStore, authService, logger)

	router.Group(func(r chi.Router) {
		r.Use(session.RedirectSignedIn(sessionStore, authService))
		r.Get("/login", handlers.LoginPage)
		r.Post("/login", handlers.Login)
	})
	router.Post("/logout", handlers.Logout)

	return nil
}
