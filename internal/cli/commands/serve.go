package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/launchpad/internal/demoapi"
	"github.com/leapstack-labs/launchpad/internal/scheduler"
	"github.com/leapstack-labs/launchpad/internal/state"
	"github.com/leapstack-labs/launchpad/internal/ui"
	"github.com/leapstack-labs/launchpad/internal/ui/features/settings"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Scheduler bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the Launchpad dashboard",
		Long: `Start a local web server hosting the Launchpad dashboard.

The dashboard provides:
- Sign-in and workspace session
- Database connection registry with simulated tests
- Pipeline registry with simulated runs
- Read-only workspace settings

With the file state driver, changes made from another terminal are picked
up while the server is running.`,
		Example: `  # Start on the default port
  launchpad serve

  # Start on a custom port without opening a browser
  launchpad serve --port 3000 --no-browser

  # Also fire pipeline runs from their cron schedules
  launchpad serve --scheduler`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Scheduler, "scheduler", false, "Run pipelines on their cron schedules")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	// CLI flags override config file
	port := cfg.UI.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := cfg.UI.AutoOpen && !opts.NoBrowser
	schedulerEnabled := cfg.Scheduler.Enabled
	if cmd.Flags().Changed("scheduler") {
		schedulerEnabled = opts.Scheduler
	}

	secret, dev := cfg.SessionSecret()
	if dev {
		logger.Warn("using the development session secret; set ui.session_secret in production")
	}

	var sched *scheduler.Scheduler
	if schedulerEnabled {
		sched = scheduler.New(scheduler.Config{
			Runner:   cmdCtx.Container,
			Notifier: cmdCtx.Notifier,
			Logger:   logger,
		})
	}

	var watch *state.FileStore
	if fs, ok := cmdCtx.Store.(*state.FileStore); ok && cfg.State.Watch {
		watch = fs
	}

	server := ui.NewServer(ui.Config{
		Container: cmdCtx.Container,
		Auth:      cmdCtx.Auth,
		Demo: demoapi.NewClient(demoapi.Config{
			BaseURL:      cfg.DemoAPI.BaseURL,
			Timeout:      cfg.DemoAPI.Timeout,
			CacheTTL:     cfg.DemoAPI.CacheTTL,
			ProductLimit: cfg.DemoAPI.ProductLimit,
			Retries:      cfg.DemoAPI.Retries,
			Logger:       logger,
		}),
		Scheduler:     sched,
		Watch:         watch,
		Notifier:      cmdCtx.Notifier,
		Port:          port,
		SessionSecret: secret,
		Settings: settings.Settings{
			WorkspaceName:    cfg.UI.WorkspaceName,
			DeploymentAlerts: cfg.UI.DeploymentAlerts,
			DailySummary:     cfg.UI.DailySummary,
			StateDriver:      cfg.State.Driver,
			SchedulerEnabled: schedulerEnabled,
		},
		Logger: logger,
	})

	if autoOpen {
		url := fmt.Sprintf("http://localhost:%d", port)
		go openBrowser(url)
	}

	r := cmdCtx.Renderer
	r.Printf("Starting Launchpad on http://localhost:%d\n", port)
	r.Println(r.Muted("Press Ctrl+C to stop"))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
