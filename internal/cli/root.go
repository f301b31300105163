// Package cli implements the dashboard command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/config"
)

// RootFlags are shared by every command.
type RootFlags struct {
	ConfigPath string
	Verbose    bool
}

// LoadConfig reads the config file, falling back to the environment.
func (f *RootFlags) LoadConfig() *config.Config {
	cfg := config.LoadOrEnvWithPath(f.ConfigPath)
	if f.Verbose {
		cfg.Observability.Logging.Level = "debug"
	}
	return cfg
}

// NewRootCommand builds the dashboard command tree.
func NewRootCommand() *cobra.Command {
	flags := &RootFlags{}

	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Browse and filter magazine editions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "Path to config file")
	root.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(
		newServeCommand(flags),
		newListCommand(flags),
		newGetCommand(flags),
		newRunsCommand(flags),
	)
	return root
}
