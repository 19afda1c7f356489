// Package toolenv provisions named external tool commands into an isolated
// environment. The environment's descriptor file doubles as its provisioning
// marker: once the descriptor exists the environment is considered ready, and
// each tool's installed state is read straight off its resolved command path,
// so no per-tool stamp is ever allocated.
package toolenv

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/thruflo/cobble/internal/logging"
	"github.com/thruflo/cobble/internal/shell"
	"gopkg.in/yaml.v3"
)

// Notify writes a provisioning notice to stderr. Provisioning talks to the
// user directly because it runs interleaved with task output.
func Notify(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "#-- cobble: "+format+"\n", args...)
}

// descriptor is the environment descriptor file content.
type descriptor struct {
	CreatedAt time.Time `yaml:"created_at"`
	Bin       string    `yaml:"bin"`
	Installer []string  `yaml:"installer"`
}

// Env is the isolated environment tools are installed into.
type Env struct {
	// Root is the environment root directory.
	Root string
	// Descriptor is the descriptor file path, relative to Root unless
	// absolute. Its existence is the environment's provisioning marker.
	Descriptor string
	// Installer is the argv prefix used to install tools.
	Installer []string
	// Options holds opaque extra installer arguments.
	Options []string
	// Runner executes the installer.
	Runner shell.Runner
}

// binSubdir returns the platform's executable subdirectory name.
func binSubdir() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

// DescriptorPath returns the absolute path of the environment descriptor.
func (e *Env) DescriptorPath() string {
	if filepath.IsAbs(e.Descriptor) {
		return e.Descriptor
	}
	return filepath.Join(e.Root, e.Descriptor)
}

// BinDir returns the directory tool commands are resolved in.
func (e *Env) BinDir() string {
	return filepath.Join(e.Root, binSubdir())
}

// CommandPath resolves a tool name to its command path inside the environment.
func (e *Env) CommandPath(name string) string {
	return filepath.Join(e.BinDir(), name)
}

// Provisioned reports whether the environment descriptor exists.
func (e *Env) Provisioned() bool {
	_, err := os.Stat(e.DescriptorPath())
	return err == nil
}

// Ensure provisions the environment if the descriptor is absent. The
// descriptor is written last, after the layout exists, so an interrupted
// provisioning run is retried from scratch on the next invocation.
func (e *Env) Ensure() error {
	if e.Provisioned() {
		logging.Debug("environment already provisioned", "root", e.Root)
		return nil
	}

	Notify("creating tool environment: %s", e.Root)

	if err := os.MkdirAll(e.BinDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create environment: %w", err)
	}

	desc := descriptor{
		CreatedAt: time.Now().UTC(),
		Bin:       binSubdir(),
		Installer: e.Installer,
	}
	data, err := yaml.Marshal(desc)
	if err != nil {
		return fmt.Errorf("failed to marshal environment descriptor: %w", err)
	}

	descPath := e.DescriptorPath()
	if err := os.MkdirAll(filepath.Dir(descPath), 0o755); err != nil {
		return fmt.Errorf("failed to create descriptor directory: %w", err)
	}
	if err := os.WriteFile(descPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write environment descriptor: %w", err)
	}

	return nil
}
