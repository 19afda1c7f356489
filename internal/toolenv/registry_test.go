package toolenv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/cobble/internal/shell"
)

// installingRunner simulates an installer by creating the tool's command file.
func installingRunner(env *Env) *shell.MockRunner {
	return &shell.MockRunner{
		RunFunc: func(ctx context.Context, dir string, argv []string, onLine func(string)) error {
			name := argv[len(argv)-1]
			return os.WriteFile(env.CommandPath(name), []byte("#!/bin/sh\n"), 0o755)
		},
	}
}

func TestRegistryRegisterIdempotent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestEnv(t))

	reg.Register(&Tool{Name: "widget"})
	reg.Register(&Tool{Name: "widget", Source: "other-source"})
	reg.Register(&Tool{Name: "sphinx", Source: "sphinx-build"})

	tools := reg.Tools()
	require.Len(t, tools, 2)

	// First registration wins.
	widget, ok := reg.Lookup("widget")
	require.True(t, ok)
	assert.Equal(t, "widget", widget.Source)

	sphinx, ok := reg.Lookup("sphinx")
	require.True(t, ok)
	assert.Equal(t, "sphinx-build", sphinx.Source)
}

func TestRegistrySourceDefaultsToName(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestEnv(t))
	reg.Register(&Tool{Name: "widget"})

	tool, ok := reg.Lookup("widget")
	require.True(t, ok)
	assert.Equal(t, "widget", tool.Source)
}

func TestInstallRunProvisionsEnvFirst(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Runner = installingRunner(env)

	reg := NewRegistry(env)
	reg.Register(&Tool{Name: "widget"})

	op, ok := reg.Install("widget")
	require.True(t, ok)
	assert.Equal(t, "widget-install", op.Name())
	assert.False(t, op.Satisfied())

	require.NoError(t, op.Run(context.Background()))

	// Env descriptor was created before the install ran.
	assert.True(t, env.Provisioned())
	assert.True(t, op.Satisfied())
}

func TestInstallRunPassesOpaqueOptions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Options = []string{"--no-cache", "--index-url", "https://internal/simple"}
	mock := installingRunner(env)
	env.Runner = mock

	reg := NewRegistry(env)
	reg.Register(&Tool{Name: "widget", Source: "widget-cli"})

	op, _ := reg.Install("widget")
	// The command file is keyed by tool name, not source.
	mock.RunFunc = func(ctx context.Context, dir string, argv []string, onLine func(string)) error {
		return os.WriteFile(env.CommandPath("widget"), []byte("#!/bin/sh\n"), 0o755)
	}
	require.NoError(t, op.Run(context.Background()))

	require.Len(t, mock.Calls, 1)
	assert.Equal(t, []string{"pip", "install", "--no-cache", "--index-url", "https://internal/simple", "widget-cli"}, mock.Calls[0])
}

func TestInstallRunMemoized(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	mock := installingRunner(env)
	env.Runner = mock

	reg := NewRegistry(env)
	reg.Register(&Tool{Name: "widget"})
	op, _ := reg.Install("widget")

	require.NoError(t, op.Run(context.Background()))
	require.NoError(t, op.Run(context.Background()))

	// The installer ran exactly once: the command path satisfies the
	// second invocation.
	assert.Len(t, mock.Calls, 1)
}

func TestInstallRunRequiresOverride(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	mock := installingRunner(env)
	env.Runner = mock

	gate := filepath.Join(t.TempDir(), "pyproject.toml")

	reg := NewRegistry(env)
	reg.Register(&Tool{Name: "widget", Requires: gate})
	op, _ := reg.Install("widget")

	// Missing prerequisite blocks the install.
	err := op.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires")
	assert.Empty(t, mock.Calls)

	// With the prerequisite present the install proceeds, and the env
	// descriptor is not touched: the override replaces the default gate.
	require.NoError(t, os.WriteFile(gate, []byte(""), 0o644))
	require.NoError(t, os.MkdirAll(env.BinDir(), 0o755))
	require.NoError(t, op.Run(context.Background()))
	assert.False(t, env.Provisioned())
	assert.Len(t, mock.Calls, 1)
}

func TestInstallRunInstallerFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Runner = &shell.MockRunner{
		RunFunc: func(ctx context.Context, dir string, argv []string, onLine func(string)) error {
			return fmt.Errorf("command exited with code 1")
		},
	}

	reg := NewRegistry(env)
	reg.Register(&Tool{Name: "widget"})
	op, _ := reg.Install("widget")

	err := op.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install tool widget")
	assert.False(t, op.Satisfied())
}

func TestInstallRunCommandNotCreated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Runner = &shell.MockRunner{} // succeeds but creates nothing

	reg := NewRegistry(env)
	reg.Register(&Tool{Name: "widget"})
	op, _ := reg.Install("widget")

	err := op.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was not created")
}

func TestRegistryInstallsOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestEnv(t))
	reg.Register(&Tool{Name: "widget"})
	reg.Register(&Tool{Name: "sphinx"})

	installs := reg.Installs()
	require.Len(t, installs, 2)
	assert.Equal(t, "widget-install", installs[0].Name())
	assert.Equal(t, "sphinx-install", installs[1].Name())
}

func TestInstallUnknownTool(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestEnv(t))
	_, ok := reg.Install("ghost")
	assert.False(t, ok)
}
