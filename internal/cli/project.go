package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thruflo/cobble/internal/config"
	"github.com/thruflo/cobble/internal/engine"
	"github.com/thruflo/cobble/internal/journal"
	"github.com/thruflo/cobble/internal/manifest"
	"github.com/thruflo/cobble/internal/shell"
	"github.com/thruflo/cobble/internal/stamp"
	"github.com/thruflo/cobble/internal/toolenv"
)

// runner executes task and installer commands.
// It can be overridden in tests.
var runner shell.Runner

// projectRoot is the project root used by commands.
// Empty means the current working directory; it can be overridden in tests.
var projectRoot string

// project bundles the loaded configuration, manifest and wired engine for
// one command invocation.
type project struct {
	root    string
	cfg     *config.Config
	man     *manifest.Manifest
	stamps  *stamp.Store
	env     *toolenv.Env
	tools   *toolenv.Registry
	eng     *engine.Engine
	journal *journal.Journal
}

// openProject loads config and manifest from the project root and registers
// every declared task and tool into a fresh engine.
func openProject() (*project, error) {
	root := projectRoot
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		root = cwd
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	man, err := manifest.Load(filepath.Join(root, manifest.DefaultPath))
	if err != nil {
		return nil, err
	}
	if err := man.CheckVersion(Version); err != nil {
		return nil, err
	}

	applyManifestEnv(cfg, man.Env)

	r := runner
	if r == nil {
		r = shell.NewLocalRunner()
	}

	stamps := stamp.NewStore(resolvePath(root, cfg.StampDir))
	env := &toolenv.Env{
		Root:       resolvePath(root, cfg.Env.Dir),
		Descriptor: cfg.Env.Descriptor,
		Installer:  cfg.Env.Installer,
		Options:    cfg.Env.Options,
		Runner:     r,
	}
	tools := toolenv.NewRegistry(env)
	eng := engine.New(stamps)

	j := journal.New(root)
	eng.SetRecorder(j)

	for _, tb := range man.Tools {
		tools.Register(&toolenv.Tool{
			Name:     tb.Name,
			Source:   tb.Source,
			Requires: resolveOptionalPath(root, tb.Requires),
		})
	}
	for _, op := range tools.Installs() {
		eng.RegisterInstall(op)
	}

	for _, tb := range man.Tasks {
		eng.Register(taskFromBlock(root, r, stamps, tb))
	}

	if err := eng.Validate(); err != nil {
		return nil, err
	}

	return &project{
		root:    root,
		cfg:     cfg,
		man:     man,
		stamps:  stamps,
		env:     env,
		tools:   tools,
		eng:     eng,
		journal: j,
	}, nil
}

// applyManifestEnv layers the manifest's env block over the loaded config.
// COBBLE_ENV_DIR keeps precedence over the manifest; options accumulate.
func applyManifestEnv(cfg *config.Config, env *manifest.EnvBlock) {
	if env == nil {
		return
	}
	if env.Dir != "" && os.Getenv("COBBLE_ENV_DIR") == "" {
		cfg.Env.Dir = env.Dir
	}
	if env.Descriptor != "" {
		cfg.Env.Descriptor = env.Descriptor
	}
	if len(env.Installer) > 0 {
		cfg.Env.Installer = env.Installer
	}
	cfg.Env.Options = append(cfg.Env.Options, env.Options...)
}

// taskFromBlock adapts a manifest task block into an engine task. Tool
// references become needs on the corresponding install operations, and
// relative input paths are resolved against the project root.
func taskFromBlock(root string, r shell.Runner, stamps *stamp.Store, tb *manifest.TaskBlock) *engine.Task {
	needs := append([]string(nil), tb.Needs...)
	for _, tool := range tb.Tools {
		needs = append(needs, tool+"-install")
	}

	inputs := make([]string, 0, len(tb.Inputs))
	for _, in := range tb.Inputs {
		inputs = append(inputs, resolvePath(root, in))
	}

	t := &engine.Task{
		Name:        tb.Name,
		Description: tb.Description,
		Needs:       needs,
		Inputs:      inputs,
		Default:     tb.Default,
	}

	if tb.Command != "" {
		command := tb.Command
		t.Action = func(ctx context.Context) error {
			return r.Run(ctx, root, shell.Command(command), printLine)
		}
	}

	if tb.Clean != "" {
		command := tb.Clean
		name := tb.Name
		// A custom clean must also remove the task's stamp; the adapter
		// appends the removal to honor that postcondition.
		t.Clean = func() error {
			if err := r.Run(context.Background(), root, shell.Command(command), printLine); err != nil {
				return fmt.Errorf("clean %s: %w", name, err)
			}
			return stamps.Remove(name)
		}
	}

	return t
}

func printLine(line string) {
	fmt.Println(line)
}

// resolvePath resolves a possibly relative path against the project root.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// resolveOptionalPath is resolvePath for fields that may be empty.
func resolveOptionalPath(root, path string) string {
	if path == "" {
		return ""
	}
	return resolvePath(root, path)
}
