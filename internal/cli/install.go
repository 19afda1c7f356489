package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var installAllFlag bool

var installCmd = &cobra.Command{
	Use:   "install [tool...]",
	Short: "Install declared tools into the environment",
	Long: `Runs the install operation of the named tools. A tool whose command path
already exists is skipped; otherwise the environment is provisioned if needed
and the tool is installed from its configured source.

With --all, every declared tool is installed.

Example:
  cobble install widget
  cobble install --all`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installAllFlag, "all", false, "install every declared tool")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	names := args
	if installAllFlag {
		names = nil
		for _, t := range p.tools.Tools() {
			names = append(names, t.Name)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no tool specified (use --all to install every tool)")
	}

	for _, name := range names {
		op, ok := p.tools.Install(name)
		if !ok {
			return fmt.Errorf("unknown tool: %s", name)
		}
		if op.Satisfied() {
			fmt.Printf("%s already installed: %s\n", name, op.Path())
			continue
		}
		if err := op.Run(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Installed %s: %s\n", name, op.Path())
	}
	return nil
}
