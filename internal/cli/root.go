package cli

import (
	"github.com/spf13/cobra"
	"github.com/thruflo/cobble/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "cobble",
	Short: "Declarative, stamp-based task runner",
	Long: `Cobble runs named tasks declared in cobble.hcl. Each task's completion is
memoized through a stamp file, so work re-executes only when a declared input
or prerequisite is newer than the last successful run. External tool commands
are provisioned lazily into an isolated environment on first use.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case verbosity >= 2:
			logging.SetLevel(logging.LevelDebug)
		case verbosity == 1:
			logging.SetLevel(logging.LevelInfo)
		}
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("cobble version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
