// Package testutil provides shared test helpers for cobble: project fixtures
// with the .cobble directory structure, file helpers, and mtime manipulation
// so staleness tests never sleep-and-hope.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// DefaultManifest is the manifest content SetupTestDir writes: a build/test
// chain plus a widget tool, enough for most command tests.
const DefaultManifest = `task "build" {
  description = "compile the project"
  command     = "echo building"
  default     = true
}

task "test" {
  description = "run the test suite"
  command     = "echo testing"
  needs       = ["build"]
}

tool "widget" {}
`

// SetupTestDir creates a temporary project directory with a .cobble structure
// and a default cobble.hcl manifest. The directory is cleaned up when the
// test completes.
func SetupTestDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".cobble"), 0o755))

	configContent := `stamp_dir: .cobble/stamps
jobs: 1
env:
  dir: .cobble/env
  descriptor: env.yaml
  installer: [pip, install]
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".cobble", "config.yaml"), []byte(configContent), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "cobble.hcl"), []byte(DefaultManifest), 0o644))

	return tmpDir
}

// WriteManifest replaces the project's cobble.hcl with the given content.
func WriteManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cobble.hcl"), []byte(content), 0o644))
}

// WriteFile writes content to a path relative to the project directory,
// creating parent directories as needed.
func WriteFile(t *testing.T, dir, relativePath, content string) string {
	t.Helper()
	fullPath := filepath.Join(dir, relativePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	return fullPath
}

// AgePath pushes a file's mtime into the past by the given duration, so a
// later write or touch is unambiguously newer.
func AgePath(t *testing.T, path string, d time.Duration) {
	t.Helper()
	past := time.Now().Add(-d)
	require.NoError(t, os.Chtimes(path, past, past))
}
