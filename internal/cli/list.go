package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List declared tasks and their staleness",
	Long: `Lists every task declared in cobble.hcl with its staleness status:

  fresh    the stamp exists and no input or prerequisite is newer
  stale    the stamp exists but some input or prerequisite is newer
  missing  no stamp exists; the task has never completed (or was cleaned)

The default task is marked with an asterisk.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	tasks := p.eng.Tasks()
	if len(tasks) == 0 {
		fmt.Println("No tasks declared.")
		return nil
	}

	nameWidth := len("TASK")
	for _, t := range tasks {
		if len(t.Name)+2 > nameWidth {
			nameWidth = len(t.Name) + 2
		}
	}

	fmt.Printf("%-*s  %-8s  %s\n", nameWidth, "TASK", "STATUS", "DESCRIPTION")
	for _, t := range tasks {
		name := t.Name
		if t.Default {
			name += " *"
		}
		fmt.Printf("%-*s  %-8s  %s\n", nameWidth, name, taskStatus(p, t.Name), t.Description)
	}
	return nil
}

// taskStatus renders a task's staleness for display.
func taskStatus(p *project, name string) string {
	if !p.stamps.Exists(name) {
		return missingStyle.Render("missing")
	}
	stale, err := p.eng.Stale(name)
	if err != nil {
		return dimStyle.Render("unknown")
	}
	if stale {
		return staleStyle.Render("stale")
	}
	return freshStyle.Render("fresh")
}
