package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/launchpad/internal/auth"
	"github.com/leapstack-labs/launchpad/internal/cli/config"
	"github.com/leapstack-labs/launchpad/internal/cli/output"
	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
	"github.com/leapstack-labs/launchpad/internal/secret"
	"github.com/leapstack-labs/launchpad/internal/state"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Renderer  *output.Renderer
	Store     core.KVStore
	Notifier  *notifier.Notifier
	Container *registry.Container
	Auth      *auth.Service
}

// NewCommandContext opens the configured state backend and loads both
// registries and the persisted session from it.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutState(cmd)
	cfg := cmdCtx.Cfg
	ctx := cmd.Context()

	store, err := state.Open(ctx, state.Options{
		Driver: cfg.State.Driver,
		Path:   cfg.State.Path,
		DSN:    cfg.State.DSN,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state: %w", err)
	}

	var sealer *secret.Sealer
	if cfg.Secrets.Key != "" {
		if sealer, err = secret.NewSealer(cfg.Secrets.Key); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("invalid secrets.key: %w", err)
		}
	}

	notify := notifier.New()
	container, err := registry.New(ctx, registry.Config{
		Store:       store,
		Notifier:    notify,
		Logger:      cmdCtx.Logger,
		Sealer:      sealer,
		TestLatency: cfg.Simulation.TestLatency,
		RunLatency:  cfg.Simulation.RunLatency,
		SkipSeed:    !cfg.State.Seed,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	authService := auth.NewService(auth.Config{
		Store:    store,
		Notifier: notify,
		Logger:   cmdCtx.Logger,
		Latency:  cfg.Simulation.LoginLatency,
	})
	if _, _, err := authService.Restore(ctx); err != nil {
		_ = container.Close()
		_ = store.Close()
		return nil, nil, err
	}

	cmdCtx.Store = store
	cmdCtx.Notifier = notify
	cmdCtx.Container = container
	cmdCtx.Auth = authService

	cleanup := func() {
		_ = container.Close()
		_ = store.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutState creates a CommandContext without opening
// the state backend. Useful for commands that only print.
func NewCommandContextWithoutState(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}
