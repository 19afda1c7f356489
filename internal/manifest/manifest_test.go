package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullManifest(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `
cobble {
  required_version = ">= 0.1.0"
}

tool "widget" {
  source = "widget-cli"
}

tool "sphinx" {
  requires = "pyproject.toml"
}

task "build" {
  description = "compile the project"
  command     = "make compile"
  inputs      = ["src/main.c"]
  default     = true
}

task "test" {
  command = "make check"
  needs   = ["build"]
  tools   = ["widget"]
  clean   = "rm -rf .testcache"
}
`)

	m, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, m.Cobble)
	assert.Equal(t, ">= 0.1.0", m.Cobble.RequiredVersion)

	require.Len(t, m.Tools, 2)
	assert.Equal(t, "widget", m.Tools[0].Name)
	assert.Equal(t, "widget-cli", m.Tools[0].Source)
	assert.Equal(t, "sphinx", m.Tools[1].Name)
	assert.Equal(t, "pyproject.toml", m.Tools[1].Requires)

	require.Len(t, m.Tasks, 2)
	build := m.Tasks[0]
	assert.Equal(t, "build", build.Name)
	assert.Equal(t, "compile the project", build.Description)
	assert.Equal(t, "make compile", build.Command)
	assert.Equal(t, []string{"src/main.c"}, build.Inputs)
	assert.True(t, build.Default)

	test := m.Tasks[1]
	assert.Equal(t, []string{"build"}, test.Needs)
	assert.Equal(t, []string{"widget"}, test.Tools)
	assert.Equal(t, "rm -rf .testcache", test.Clean)
}

func TestLoadEnvBlock(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `
env {
  dir       = "tools/env"
  installer = ["uv", "pip", "install"]
  options   = ["--no-cache"]
}

task "build" {
  command = "make compile"
}
`)

	m, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, m.Env)
	assert.Equal(t, "tools/env", m.Env.Dir)
	assert.Equal(t, []string{"uv", "pip", "install"}, m.Env.Installer)
	assert.Equal(t, []string{"--no-cache"}, m.Env.Options)
	assert.Empty(t, m.Env.Descriptor)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), DefaultPath))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest not found")
	assert.Contains(t, err.Error(), "cobble init")
}

func TestLoadParseError(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `task "build" {`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse manifest")
}

func TestLoadMultipleDefaults(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `
task "build" {
  default = true
}

task "test" {
  default = true
}
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple default tasks")
}

func TestDefaultTask(t *testing.T) {
	t.Parallel()

	m := &Manifest{Tasks: []*TaskBlock{
		{Name: "build"},
		{Name: "all", Default: true},
	}}

	name, ok := m.DefaultTask()
	require.True(t, ok)
	assert.Equal(t, "all", name)

	m = &Manifest{Tasks: []*TaskBlock{{Name: "build"}}}
	_, ok = m.DefaultTask()
	assert.False(t, ok)
}

func TestTaskLookup(t *testing.T) {
	t.Parallel()

	m := &Manifest{Tasks: []*TaskBlock{{Name: "build"}, {Name: "test"}}}

	tb, ok := m.Task("test")
	require.True(t, ok)
	assert.Equal(t, "test", tb.Name)

	_, ok = m.Task("deploy")
	assert.False(t, ok)
}

func TestCheckVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		constraint string
		version    string
		wantErr    string
	}{
		{"satisfied", ">= 0.1.0", "0.2.0", ""},
		{"not satisfied", ">= 1.0.0", "0.2.0", "does not satisfy"},
		{"dev build skips check", ">= 1.0.0", "dev", ""},
		{"no constraint", "", "0.0.1", ""},
		{"bad constraint", "not-a-constraint", "0.2.0", "invalid required_version"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := &Manifest{}
			if tt.constraint != "" {
				m.Cobble = &SettingsBlock{RequiredVersion: tt.constraint}
			}

			err := m.CheckVersion(tt.version)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
