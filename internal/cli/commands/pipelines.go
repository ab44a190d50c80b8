package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/launchpad/internal/cli/output"
	"github.com/leapstack-labs/launchpad/internal/registry"
	"github.com/leapstack-labs/launchpad/internal/scheduler"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// defaultSchedule matches the dashboard's add form.
const defaultSchedule = "0 * * * *"

var errPipelineRequired = errors.New("pipeline name, connection and owner are required")

type pipelineView struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	ConnectionID   string     `json:"connectionId" yaml:"connection_id"`
	ConnectionName string     `json:"connectionName" yaml:"connection_name"`
	Dangling       bool       `json:"dangling" yaml:"dangling"`
	Schedule       string     `json:"schedule" yaml:"schedule"`
	NextRun        *time.Time `json:"nextRun,omitempty" yaml:"next_run,omitempty"`
	Owner          string     `json:"owner" yaml:"owner"`
	Description    string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status         string     `json:"status" yaml:"status"`
	LastRunAt      *time.Time `json:"lastRunAt" yaml:"last_run_at"`
}

func newPipelineView(p core.Pipeline, c *registry.Container, now time.Time) pipelineView {
	_, exists := c.GetConnection(p.ConnectionID)
	v := pipelineView{
		ID:             p.ID,
		Name:           p.Name,
		ConnectionID:   p.ConnectionID,
		ConnectionName: p.ConnectionName,
		Dangling:       !exists,
		Schedule:       p.Schedule,
		Owner:          p.Owner,
		Description:    p.Description,
		Status:         string(p.Status),
		LastRunAt:      p.LastRunAt,
	}
	if next, ok := scheduler.NextRun(p.Schedule, now); ok {
		v.NextRun = &next
	}
	return v
}

// NewPipelinesCommand creates the pipelines command group.
func NewPipelinesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pipelines",
		Aliases: []string{"pipeline", "pl"},
		Short:   "Manage pipeline definitions",
		Long: `List, add, edit, remove and run the workspace's pipelines.

Runs are simulated. A pipeline whose id contains "legacy" always fails.`,
	}

	cmd.AddCommand(newPipelinesListCommand())
	cmd.AddCommand(newPipelinesAddCommand())
	cmd.AddCommand(newPipelinesEditCommand())
	cmd.AddCommand(newPipelinesRemoveCommand())
	cmd.AddCommand(newPipelinesRunCommand())
	return cmd
}

func newPipelinesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pipelines",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now()
			pipelines := cmdCtx.Container.ListPipelines()
			views := make([]pipelineView, len(pipelines))
			for i, p := range pipelines {
				views[i] = newPipelineView(p, cmdCtx.Container, now)
			}
			return renderPipelines(cmdCtx.Renderer, views)
		},
	}
}

func renderPipelines(r *output.Renderer, views []pipelineView) error {
	if handled, err := r.Data(views); handled {
		return err
	}
	if len(views) == 0 {
		r.Println(r.Muted("No pipelines yet. Add one with `launchpad pipelines add`."))
		return nil
	}

	rows := make([][]string, len(views))
	for i, v := range views {
		conn := v.ConnectionName
		if v.Dangling {
			conn += " " + r.Muted("(missing)")
		}
		lastRun := "Never"
		if v.LastRunAt != nil {
			lastRun = v.LastRunAt.Local().Format(time.DateTime)
		}
		rows[i] = []string{v.ID, v.Name, conn, v.Schedule, v.Owner, r.FormatStatus(v.Status), lastRun}
	}
	r.Header(fmt.Sprintf("Pipelines (%d)", len(views)))
	r.Table([]string{"ID", "NAME", "CONNECTION", "SCHEDULE", "OWNER", "STATUS", "LAST RUN"}, rows)
	return nil
}

type pipelineFlags struct {
	name        string
	connection  string
	schedule    string
	owner       string
	description string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Display name")
	cmd.Flags().StringVar(&f.connection, "connection", "", "Connection id")
	cmd.Flags().StringVar(&f.schedule, "schedule", defaultSchedule, "Cron schedule")
	cmd.Flags().StringVar(&f.owner, "owner", "", "Owning team or person")
	cmd.Flags().StringVar(&f.description, "description", "", "What the pipeline does")
}

// apply overlays the flags that were set on base and resolves the
// connection name snapshot. An unchanged dangling connection keeps its
// stale name.
func (f *pipelineFlags) apply(cmd *cobra.Command, c *registry.Container, base core.PipelineInput) (core.PipelineInput, error) {
	in := base
	set := cmd.Flags().Changed
	if set("name") {
		in.Name = f.name
	}
	connChanged := set("connection")
	if connChanged {
		in.ConnectionID = f.connection
	}
	if set("schedule") || in.Schedule == "" {
		in.Schedule = f.schedule
	}
	if set("owner") {
		in.Owner = f.owner
	}
	if set("description") {
		in.Description = f.description
	}

	if in.Name == "" || in.ConnectionID == "" || in.Owner == "" {
		return in, errPipelineRequired
	}
	name := c.ResolveConnectionName(in.ConnectionID)
	switch {
	case name != "":
		in.ConnectionName = name
	case connChanged || in.ConnectionName == "":
		return in, fmt.Errorf("connection %q not found", in.ConnectionID)
	}
	return in, nil
}

func newPipelinesAddCommand() *cobra.Command {
	flags := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pipeline",
		Example: `  launchpad pipelines add --name "Nightly orders" --connection conn-1 \
    --owner "Data Platform" --schedule "0 2 * * *"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			in, err := flags.apply(cmd, cmdCtx.Container, core.PipelineInput{})
			if err != nil {
				return err
			}
			p := cmdCtx.Container.AddPipeline(cmd.Context(), in)

			r := cmdCtx.Renderer
			if handled, err := r.Data(newPipelineView(p, cmdCtx.Container, time.Now())); handled {
				return err
			}
			r.Success(fmt.Sprintf("Added pipeline %s (%s)", p.Name, p.ID))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newPipelinesEditCommand() *cobra.Command {
	flags := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a pipeline",
		Long: `Edit a pipeline. Only the flags given are changed; the status and
last run time are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			current, ok := cmdCtx.Container.GetPipeline(args[0])
			if !ok {
				return fmt.Errorf("pipeline %q not found", args[0])
			}
			in, err := flags.apply(cmd, cmdCtx.Container, current.Input())
			if err != nil {
				return err
			}
			if !cmdCtx.Container.EditPipeline(cmd.Context(), current.ID, in) {
				return fmt.Errorf("pipeline %q not found", args[0])
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Updated pipeline %s", in.Name))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newPipelinesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a pipeline",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cmdCtx.Container.RemovePipeline(cmd.Context(), args[0]) {
				return fmt.Errorf("pipeline %q not found", args[0])
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Removed pipeline %s", args[0]))
			return nil
		},
	}
}

func newPipelinesRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <id>",
		Short: "Run a pipeline",
		Long:  `Start a simulated run and wait for it to finish.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, ok := cmdCtx.Container.GetPipeline(args[0]); !ok {
				return fmt.Errorf("pipeline %q not found", args[0])
			}

			r := cmdCtx.Renderer
			if r.Mode() == output.ModeText {
				r.Println(r.Muted("Running " + args[0] + "..."))
			}
			res, err := cmdCtx.Container.RunPipeline(cmd.Context(), args[0]).Wait(cmd.Context())
			if err != nil {
				return err
			}

			if handled, err := r.Data(map[string]any{
				"id":         res.PipelineID,
				"status":     string(res.Status),
				"finishedAt": res.FinishedAt,
				"applied":    res.Applied,
			}); handled {
				return err
			}
			if res.Status == core.PipelineFailed {
				return fmt.Errorf("pipeline %s failed", args[0])
			}
			r.Success(fmt.Sprintf("%s %s", args[0], res.Status))
			return nil
		},
	}
}
