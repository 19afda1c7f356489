// Package shell runs external commands for task actions and tool installers,
// streaming their output line by line.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner defines the interface for executing external commands.
// This abstraction allows for testing with mock runners.
type Runner interface {
	// Run executes argv in the given directory. The onLine callback, when
	// non-nil, is called for each line of combined stdout/stderr output.
	Run(ctx context.Context, dir string, argv []string, onLine func(string)) error
}

// Command builds the argv for running a shell command string.
func Command(command string) []string {
	return []string{"sh", "-c", command}
}

// LocalRunner executes commands as local child processes.
type LocalRunner struct {
	// Env holds extra KEY=VALUE entries appended to the inherited environment.
	Env []string
}

// NewLocalRunner creates a LocalRunner with the inherited environment.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes argv and streams its output.
func (r *LocalRunner) Run(ctx context.Context, dir string, argv []string, onLine func(string)) error {
	if len(argv) == 0 {
		return fmt.Errorf("no command specified")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	errCh := make(chan error, 2)
	stream := func(r io.Reader) {
		scanner := bufio.NewScanner(r)
		buf := make([]byte, 64*1024)
		scanner.Buffer(buf, 1024*1024)

		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
		errCh <- scanner.Err()
	}

	go stream(stdout)
	go stream(stderr)

	// Drain both streams before Wait closes the pipes.
	streamErr1 := <-errCh
	streamErr2 := <-errCh

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("command exited with code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("command failed: %w", err)
	}

	if streamErr1 != nil {
		return fmt.Errorf("failed to read command output: %w", streamErr1)
	}
	if streamErr2 != nil {
		return fmt.Errorf("failed to read command output: %w", streamErr2)
	}

	return nil
}

// MockRunner is a test double for Runner.
type MockRunner struct {
	// RunFunc is called when Run is invoked. If nil, Run returns nil.
	RunFunc func(ctx context.Context, dir string, argv []string, onLine func(string)) error

	// Calls records the argv of every Run invocation.
	Calls [][]string
}

// Run records the call and delegates to RunFunc if set.
func (m *MockRunner) Run(ctx context.Context, dir string, argv []string, onLine func(string)) error {
	m.Calls = append(m.Calls, argv)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, dir, argv, onLine)
	}
	return nil
}
