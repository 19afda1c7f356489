package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/thruflo/cobble/internal/shell"
	"github.com/thruflo/cobble/internal/testutil"
)

// setupProject creates a fixture project and points the command seams at it,
// restoring them when the test completes.
func setupProject(t *testing.T) (string, *shell.MockRunner) {
	t.Helper()

	dir := testutil.SetupTestDir(t)
	mock := &shell.MockRunner{}

	projectRoot = dir
	runner = mock
	t.Cleanup(func() {
		projectRoot = ""
		runner = nil
	})

	return dir, mock
}

// installingMock returns a MockRunner that creates the given files when
// invoked, simulating a tool installer.
func installingMock(paths ...string) *shell.MockRunner {
	return &shell.MockRunner{
		RunFunc: func(ctx context.Context, dir string, argv []string, onLine func(string)) error {
			for _, path := range paths {
				if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}
