package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thruflo/cobble/internal/engine"
)

var (
	runForce bool
	runJobs  int
)

var runCmd = &cobra.Command{
	Use:   "run [task...]",
	Short: "Run stale tasks and their prerequisites",
	Long: `Runs the named tasks and their transitive prerequisites, executing only the
targets whose stamp is absent or older than a declared input or prerequisite.

With no arguments, runs the manifest's default task. With --force, the named
tasks are cleaned first so their work always re-executes; prerequisites are
still only stale-checked.

Example:
  cobble run
  cobble run build test
  cobble run test --force --jobs 4`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runForce, "force", "f", false, "clean the named tasks first, forcing their work to re-execute")
	runCmd.Flags().IntVarP(&runJobs, "jobs", "j", 0, "number of parallel workers (defaults to the configured value)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		name, ok := p.man.DefaultTask()
		if !ok {
			return fmt.Errorf("no task specified and no default task declared")
		}
		names = []string{name}
	}

	jobs := runJobs
	if jobs <= 0 {
		jobs = p.cfg.Jobs
	}

	return p.eng.Run(context.Background(), names, engine.RunOptions{Force: runForce, Jobs: jobs})
}
