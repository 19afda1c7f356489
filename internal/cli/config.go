package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the configuration in effect after merging .cobble/config.yaml with
defaults and COBBLE_* environment variable overrides, followed by the
overriding variables currently set.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// overrideVars are the environment variables layered over the config file.
var overrideVars = []string{
	"COBBLE_STAMP_DIR",
	"COBBLE_ENV_DIR",
	"COBBLE_JOBS",
	"COBBLE_INSTALL_OPTS",
}

func runConfig(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(p.cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(data))

	var set []string
	for _, key := range overrideVars {
		if v, ok := os.LookupEnv(key); ok {
			set = append(set, fmt.Sprintf("%s=%s", key, v))
		}
	}
	if len(set) > 0 {
		fmt.Println()
		fmt.Println("# environment overrides")
		for _, kv := range set {
			fmt.Println(kv)
		}
	}
	return nil
}
