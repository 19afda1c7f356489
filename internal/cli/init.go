package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/thruflo/cobble/internal/manifest"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a cobble project",
	Long: `Creates the .cobble/ directory and a starter cobble.hcl manifest.

This command sets up:
  - cobble.hcl with an example task and tool
  - .cobble/config.yaml with stamp and environment locations
  - .cobble/.gitignore so stamps, the tool environment and the journal
    stay out of version control`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing cobble.hcl")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root := projectRoot
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		root = cwd
	}

	manifestPath := filepath.Join(root, manifest.DefaultPath)
	if _, err := os.Stat(manifestPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", manifest.DefaultPath)
	}

	cobbleDir := filepath.Join(root, ".cobble")
	if err := os.MkdirAll(cobbleDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", cobbleDir, err)
	}

	if err := os.WriteFile(manifestPath, []byte(manifestHCLContent), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifest.DefaultPath, err)
	}
	if err := os.WriteFile(filepath.Join(cobbleDir, "config.yaml"), []byte(configYAMLContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config.yaml: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cobbleDir, ".gitignore"), []byte(gitignoreContent), 0o644); err != nil {
		return fmt.Errorf("failed to write .gitignore: %w", err)
	}

	fmt.Println("Initialized cobble project")
	return nil
}

const manifestHCLContent = `# Cobble task manifest
# See https://github.com/thruflo/cobble for documentation

task "build" {
  description = "compile the project"
  command     = "echo replace me"
  inputs      = []
  default     = true
}

task "test" {
  description = "run the test suite"
  command     = "echo replace me"
  needs       = ["build"]
}

# tool "widget" {
#   source = "widget-cli"
# }
`

const configYAMLContent = `# Cobble configuration

# Where task completion stamps are stored
stamp_dir: .cobble/stamps

# Default number of parallel workers for cobble run
jobs: 1

env:
  # Root of the isolated tool environment
  dir: .cobble/env

  # Environment descriptor file; its existence marks the environment
  # as provisioned
  descriptor: env.yaml

  # Installer invocation for tools; options are passed through untouched
  installer: [pip, install]
  options: []
`

const gitignoreContent = `stamps/
env/
journal.jsonl
`
