package commands

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/launchpad/internal/cli/output"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// errConnectionRequired mirrors the dashboard's add-form message.
var errConnectionRequired = errors.New("connection name and host are required")

// connectionView is the printable shape of a connection. It never carries
// the password.
type connectionView struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Engine      string `json:"engine" yaml:"engine"`
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	Database    string `json:"database,omitempty" yaml:"database,omitempty"`
	Username    string `json:"username,omitempty" yaml:"username,omitempty"`
	HasPassword bool   `json:"hasPassword" yaml:"has_password"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Status      string `json:"status" yaml:"status"`
	LastError   string `json:"lastError,omitempty" yaml:"last_error,omitempty"`
}

func newConnectionView(c core.Connection) connectionView {
	v := connectionView{
		ID:          c.ID,
		Name:        c.Name,
		Engine:      string(c.Engine),
		Host:        c.Host,
		Port:        c.Port,
		Database:    c.Database,
		Username:    c.Username,
		HasPassword: c.Password != "",
		Notes:       c.Notes,
		Status:      string(c.Status),
	}
	if c.LastError != nil {
		v.LastError = *c.LastError
	}
	return v
}

// NewConnectionsCommand creates the connections command group.
func NewConnectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "Manage database connection records",
		Long: `List, add, edit, remove and test the workspace's database connections.

Changes are written to the configured state backend. A dashboard serving
the same file backend picks them up immediately.`,
	}

	cmd.AddCommand(newConnectionsListCommand())
	cmd.AddCommand(newConnectionsAddCommand())
	cmd.AddCommand(newConnectionsEditCommand())
	cmd.AddCommand(newConnectionsRemoveCommand())
	cmd.AddCommand(newConnectionsTestCommand())
	return cmd
}

func newConnectionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List connections",
		Example: `  launchpad connections list
  launchpad connections list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			conns := cmdCtx.Container.ListConnections()
			cl := collate.New(language.English, collate.IgnoreCase)
			sort.SliceStable(conns, func(i, j int) bool {
				return cl.CompareString(conns[i].Name, conns[j].Name) < 0
			})

			views := make([]connectionView, len(conns))
			for i, c := range conns {
				views[i] = newConnectionView(c)
			}
			return renderConnections(cmdCtx.Renderer, views)
		},
	}
}

func renderConnections(r *output.Renderer, views []connectionView) error {
	if handled, err := r.Data(views); handled {
		return err
	}
	if len(views) == 0 {
		r.Println(r.Muted("No connections yet. Add one with `launchpad connections add`."))
		return nil
	}

	rows := make([][]string, len(views))
	for i, v := range views {
		rows[i] = []string{v.ID, v.Name, v.Engine, fmt.Sprintf("%s:%d", v.Host, v.Port), r.FormatStatus(v.Status), v.LastError}
	}
	r.Header(fmt.Sprintf("Connections (%d)", len(views)))
	r.Table([]string{"ID", "NAME", "ENGINE", "ADDRESS", "STATUS", "LAST ERROR"}, rows)
	return nil
}

// connectionFlags binds the editable connection fields.
type connectionFlags struct {
	name     string
	engine   string
	host     string
	port     int
	database string
	username string
	password string
	notes    string
}

func (f *connectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Display name")
	cmd.Flags().StringVar(&f.engine, "engine", string(core.EnginePostgreSQL), "Database engine")
	cmd.Flags().StringVar(&f.host, "host", "", "Host name or address")
	cmd.Flags().IntVar(&f.port, "port", 0, "Listener port (default: the engine's port)")
	cmd.Flags().StringVar(&f.database, "database", "", "Database name")
	cmd.Flags().StringVar(&f.username, "username", "", "User name")
	cmd.Flags().StringVar(&f.password, "password", "", "Password")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-form notes")

	_ = cmd.RegisterFlagCompletionFunc("engine", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		engines := core.Engines()
		names := make([]string, len(engines))
		for i, e := range engines {
			names[i] = string(e)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

// apply overlays the flags that were set on base.
func (f *connectionFlags) apply(cmd *cobra.Command, base core.ConnectionInput) (core.ConnectionInput, error) {
	in := base
	set := cmd.Flags().Changed
	if set("name") {
		in.Name = f.name
	}
	if set("engine") || in.Engine == "" {
		in.Engine = core.Engine(f.engine)
	}
	if set("host") {
		in.Host = f.host
	}
	if set("port") {
		in.Port = f.port
	}
	if set("database") {
		in.Database = f.database
	}
	if set("username") {
		in.Username = f.username
	}
	if set("password") {
		in.Password = f.password
	}
	if set("notes") {
		in.Notes = f.notes
	}

	if in.Name == "" || in.Host == "" {
		return in, errConnectionRequired
	}
	if !in.Engine.Valid() {
		return in, fmt.Errorf("unknown engine %q", in.Engine)
	}
	if in.Port <= 0 {
		in.Port = defaultPort(in.Engine)
	}
	return in, nil
}

// defaultPort falls back to 5432 for engines without a listener, as the
// add form does.
func defaultPort(e core.Engine) int {
	if p, ok := e.DefaultPort(); ok {
		return p
	}
	return 5432
}

func newConnectionsAddCommand() *cobra.Command {
	flags := &connectionFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a connection",
		Example: `  launchpad connections add --name "Warehouse" --engine PostgreSQL \
    --host warehouse.internal --database analytics --username etl --password 'S3cure!pass'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			in, err := flags.apply(cmd, core.ConnectionInput{})
			if err != nil {
				return err
			}
			conn := cmdCtx.Container.AddConnection(cmd.Context(), in)

			r := cmdCtx.Renderer
			if handled, err := r.Data(newConnectionView(conn)); handled {
				return err
			}
			r.Success(fmt.Sprintf("Added connection %s (%s)", conn.Name, conn.ID))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newConnectionsEditCommand() *cobra.Command {
	flags := &connectionFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a connection",
		Long: `Edit a connection. Only the flags given are changed; the status and
last error are kept.`,
		Example: `  launchpad connections edit conn-1 --host replica.internal --port 6432`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			current, ok := cmdCtx.Container.GetConnection(args[0])
			if !ok {
				return fmt.Errorf("connection %q not found", args[0])
			}
			in, err := flags.apply(cmd, current.Input())
			if err != nil {
				return err
			}
			if !cmdCtx.Container.EditConnection(cmd.Context(), current.ID, in) {
				return fmt.Errorf("connection %q not found", args[0])
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Updated connection %s", in.Name))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newConnectionsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a connection",
		Long: `Remove a connection. Pipelines that reference it are kept and show the
connection as missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cmdCtx.Container.RemoveConnection(cmd.Context(), args[0]) {
				return fmt.Errorf("connection %q not found", args[0])
			}

			r := cmdCtx.Renderer
			r.Success(fmt.Sprintf("Removed connection %s", args[0]))
			for _, p := range cmdCtx.Container.ListPipelines() {
				if p.ConnectionID == args[0] {
					r.Warning(fmt.Sprintf("pipeline %s (%s) now has no connection", p.Name, p.ID))
				}
			}
			return nil
		},
	}
}

func newConnectionsTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test <id>",
		Short: "Test a connection",
		Long: `Run the simulated connection test and wait for the result. The record
is checked against the validation rules as stored when the test resolves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, ok := cmdCtx.Container.GetConnection(args[0]); !ok {
				return fmt.Errorf("connection %q not found", args[0])
			}

			r := cmdCtx.Renderer
			if r.Mode() == output.ModeText {
				r.Println(r.Muted("Testing " + args[0] + "..."))
			}
			res, err := cmdCtx.Container.TestConnection(cmd.Context(), args[0]).Wait(cmd.Context())
			if err != nil {
				return err
			}

			if handled, err := r.Data(map[string]any{
				"id":      res.ConnectionID,
				"status":  string(res.Status),
				"reason":  res.Reason,
				"applied": res.Applied,
			}); handled {
				return err
			}
			if res.Status == core.ConnectionConnected {
				r.Success(fmt.Sprintf("%s is %s", args[0], res.Status))
				return nil
			}
			r.Println(r.FormatStatus(string(res.Status)) + " " + res.Reason)
			return nil
		},
	}
}
