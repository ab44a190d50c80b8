// Package ui provides the Launchpad web dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/launchpad/internal/auth"
	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
	"github.com/leapstack-labs/launchpad/internal/scheduler"
	"github.com/leapstack-labs/launchpad/internal/state"
	"github.com/leapstack-labs/launchpad/internal/ui/features/landing"
	"github.com/leapstack-labs/launchpad/internal/ui/features/settings"
	"github.com/leapstack-labs/launchpad/internal/ui/router"
	"github.com/leapstack-labs/launchpad/internal/ui/session"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// Server is the main UI server.
type Server struct {
	container    *registry.Container
	auth         *auth.Service
	demo         landing.Highlighter
	scheduler    *scheduler.Scheduler
	watch        *state.FileStore
	notifier     *notifier.Notifier
	sessionStore sessions.Store
	settings     settings.Settings
	port         int
	logger       *slog.Logger
}

// Config holds configuration for the UI server.
type Config struct {
	Container *registry.Container
	Auth      *auth.Service
	Demo      landing.Highlighter
	// Scheduler, when set, fires pipeline runs from their cron schedules.
	Scheduler *scheduler.Scheduler
	// Watch, when set, reloads records written to the state directory by
	// other processes.
	Watch         *state.FileStore
	Notifier      *notifier.Notifier
	Port          int
	SessionSecret string
	Settings      settings.Settings
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	n := cfg.Notifier
	if n == nil {
		n = notifier.New()
	}
	return &Server{
		container:    cfg.Container,
		auth:         cfg.Auth,
		demo:         cfg.Demo,
		scheduler:    cfg.Scheduler,
		watch:        cfg.Watch,
		notifier:     n,
		sessionStore: session.NewStore(cfg.SessionSecret),
		settings:     cfg.Settings,
		port:         cfg.Port,
		logger:       logger,
	}
}

// Handler builds the routed handler with the request middleware.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, router.Deps{
		Container:    s.container,
		Auth:         s.auth,
		Demo:         s.demo,
		Notifier:     s.notifier,
		SessionStore: s.sessionStore,
		Settings:     s.settings,
		Logger:       s.logger,
	}); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch != nil {
		eg.Go(func() error {
			return s.watchState(egctx)
		})
	}

	if s.scheduler != nil {
		eg.Go(func() error {
			return s.scheduler.Run(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchState picks up records persisted by another process, such as the
// CLI editing connections while the dashboard is open.
func (s *Server) watchState(ctx context.Context) error {
	err := state.Watch(ctx, s.watch, state.DefaultDebounce, s.logger, func(key string) {
		s.applyExternalChange(ctx, key)
	})
	if err != nil {
		// Don't fail - continue without watching
		s.logger.Error("failed to watch state directory", "dir", s.watch.Dir(), "error", err)
	}
	return nil
}

func (s *Server) applyExternalChange(ctx context.Context, key string) {
	switch key {
	case core.StateKey:
		s.logger.Debug("state changed on disk, reloading")
		if err := s.container.Reload(ctx); err != nil {
			s.logger.Error("reload failed", "error", err)
		}
	case core.SessionKey:
		s.logger.Debug("session changed on disk, restoring")
		if _, _, err := s.auth.Restore(ctx); err != nil {
			s.logger.Error("restore session failed", "error", err)
		}
	}
}
