package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show declared tools and their installed state",
	Long: `Lists every tool declared in cobble.hcl with its resolved command path and
whether the command exists in the tool environment, plus the provisioning
state of the environment itself.`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	envState := missingStyle.Render("not provisioned")
	if p.env.Provisioned() {
		envState = freshStyle.Render("provisioned")
	}
	fmt.Printf("Environment: %s (%s)\n\n", p.env.Root, envState)

	tools := p.tools.Tools()
	if len(tools) == 0 {
		fmt.Println("No tools declared.")
		return nil
	}

	nameWidth := len("TOOL")
	sourceWidth := len("SOURCE")
	for _, t := range tools {
		if len(t.Name) > nameWidth {
			nameWidth = len(t.Name)
		}
		if len(t.Source) > sourceWidth {
			sourceWidth = len(t.Source)
		}
	}

	fmt.Printf("%-*s  %-*s  %-10s  %s\n", nameWidth, "TOOL", sourceWidth, "SOURCE", "INSTALLED", "PATH")
	for _, t := range tools {
		op, _ := p.tools.Install(t.Name)
		installed := missingStyle.Render("no")
		if op.Satisfied() {
			installed = freshStyle.Render("yes")
		}
		fmt.Printf("%-*s  %-*s  %-10s  %s\n", nameWidth, t.Name, sourceWidth, t.Source, installed, op.Path())
	}
	return nil
}
