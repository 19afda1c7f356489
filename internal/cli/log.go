package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thruflo/cobble/internal/journal"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent task executions",
	Long: `Prints recent entries from the execution journal. Each entry records one
executed run or install operation with its outcome, duration and the run id
of the invocation that produced it. Up-to-date targets are not journaled.`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	entries, err := p.journal.Recent(logLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No journal entries.")
		return nil
	}

	taskWidth := len("TASK")
	for _, e := range entries {
		if len(e.Task) > taskWidth {
			taskWidth = len(e.Task)
		}
	}

	fmt.Printf("%-19s  %-*s  %-9s  %9s  %s\n", "TIME", taskWidth, "TASK", "OUTCOME", "DURATION", "RUN")
	for _, e := range entries {
		fmt.Printf("%-19s  %-*s  %-9s  %8dms  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			taskWidth, e.Task,
			renderOutcome(e.Outcome),
			e.DurationMS,
			shortRunID(e.RunID))
	}
	return nil
}

func renderOutcome(outcome string) string {
	switch outcome {
	case journal.OutcomeOK, journal.OutcomeInstalled:
		return freshStyle.Render(outcome)
	case journal.OutcomeFailed:
		return missingStyle.Render(outcome)
	default:
		return outcome
	}
}

// shortRunID abbreviates a run id to its first uuid group.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
