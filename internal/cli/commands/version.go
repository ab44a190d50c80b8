package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/launchpad/internal/state"
)

// versionInfo is what `version -o json` prints.
type versionInfo struct {
	Version      string   `json:"version" yaml:"version"`
	GoVersion    string   `json:"goVersion" yaml:"goVersion"`
	Platform     string   `json:"platform" yaml:"platform"`
	StateDrivers []string `json:"stateDrivers" yaml:"stateDrivers"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the Launchpad version, the Go runtime it was built with and the supported state drivers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
				return nil
			}

			info := versionInfo{
				Version:      version,
				GoVersion:    runtime.Version(),
				Platform:     runtime.GOOS + "/" + runtime.GOARCH,
				StateDrivers: state.Drivers(),
			}

			r := NewCommandContextWithoutState(cmd).Renderer
			if ok, err := r.Data(info); ok {
				return err
			}

			r.Printf("Launchpad v%s\n", info.Version)
			r.Println("Workspace dashboard for database connections and pipelines")
			r.Println(r.Muted(fmt.Sprintf("%s %s, state drivers: %s",
				info.GoVersion, info.Platform, strings.Join(info.StateDrivers, ", "))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")

	return cmd
}
