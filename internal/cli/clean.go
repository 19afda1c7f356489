package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanAllFlag bool

var cleanCmd = &cobra.Command{
	Use:   "clean [task...]",
	Short: "Remove task stamps",
	Long: `Invokes the clean operation of the named tasks: the task's custom clean
command when one is declared, otherwise removal of its stamp. A cleaned task
re-executes on its next run.

With --all, every declared task's stamp is removed directly; custom clean
commands are not invoked.

Example:
  cobble clean build
  cobble clean --all`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAllFlag, "all", false, "remove every declared task's stamp")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	if cleanAllFlag {
		if err := p.eng.CleanAll(); err != nil {
			return err
		}
		fmt.Printf("Removed stamps for %d tasks\n", len(p.eng.Tasks()))
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("no task specified (use --all to clean every stamp)")
	}

	for _, name := range args {
		if err := p.eng.Clean(name); err != nil {
			return err
		}
		fmt.Printf("Cleaned %s\n", name)
	}
	return nil
}
