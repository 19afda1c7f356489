package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [task...]",
	Short: "Print the dependency tree of tasks",
	Long: `Prints the declared dependency tree of the named tasks, or of every task
when no argument is given. Tool dependencies appear as their install
operations.

Example:
  cobble graph test`,
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		for _, t := range p.man.Tasks {
			names = append(names, t.Name)
		}
	}

	for _, name := range names {
		if _, ok := p.man.Task(name); !ok {
			return fmt.Errorf("unknown task: %s", name)
		}
		printTree(p, name, 0)
	}
	return nil
}

// printTree prints one task and its declared dependencies, indented by depth.
// The engine has already rejected cycles, so the recursion terminates.
func printTree(p *project, name string, depth int) {
	indent := strings.Repeat("  ", depth)
	tb, ok := p.man.Task(name)
	if !ok {
		return
	}

	fmt.Printf("%s%s\n", indent, name)
	for _, dep := range tb.Needs {
		printTree(p, dep, depth+1)
	}
	for _, tool := range tb.Tools {
		fmt.Printf("%s  %s %s\n", indent, tool+"-install", dimStyle.Render("(tool)"))
	}
	for _, input := range tb.Inputs {
		fmt.Printf("%s  %s %s\n", indent, input, dimStyle.Render("(file)"))
	}
}
