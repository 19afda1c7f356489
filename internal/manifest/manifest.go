// Package manifest loads the cobble.hcl project manifest. The manifest is the
// declarative input that drives task and tool registration: task blocks
// become engine tasks, tool blocks become provisioning registry entries.
package manifest

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// DefaultPath is the manifest file name, resolved against the project root.
const DefaultPath = "cobble.hcl"

// SettingsBlock holds project-wide settings from the cobble block.
type SettingsBlock struct {
	// RequiredVersion is an optional semver constraint checked against the
	// running binary's version.
	RequiredVersion string `hcl:"required_version,optional"`
}

// TaskBlock represents a task block from the manifest.
type TaskBlock struct {
	Name        string `hcl:"name,label"`
	Description string `hcl:"description,optional"`
	// Command is the shell command the task runs. A task without a command
	// is a pure grouping target.
	Command string `hcl:"command,optional"`
	// Needs lists the tasks whose stamps gate this task.
	Needs []string `hcl:"needs,optional"`
	// Inputs lists file prerequisites compared against the task's stamp.
	Inputs []string `hcl:"inputs,optional"`
	// Tools lists tool names this task requires; shorthand for needing the
	// corresponding install operations.
	Tools []string `hcl:"tools,optional"`
	// Clean is an optional shell command replacing the default clean
	// operation. The stamp is still removed after it runs.
	Clean   string `hcl:"clean,optional"`
	Default bool   `hcl:"default,optional"`
}

// EnvBlock overrides tool-environment settings from the manifest. The env
// block is declarative project configuration, so it takes precedence over
// .cobble/config.yaml; COBBLE_* variables still win over both.
type EnvBlock struct {
	Dir        string   `hcl:"dir,optional"`
	Descriptor string   `hcl:"descriptor,optional"`
	Installer  []string `hcl:"installer,optional"`
	// Options holds opaque extra installer arguments appended after the
	// configured ones.
	Options []string `hcl:"options,optional"`
}

// ToolBlock represents a tool block from the manifest.
type ToolBlock struct {
	Name string `hcl:"name,label"`
	// Source is the installer package name; defaults to the tool name.
	Source string `hcl:"source,optional"`
	// Requires overrides the prerequisite file the install is gated on.
	// By default the install depends on the environment descriptor.
	Requires string `hcl:"requires,optional"`
}

// Manifest represents the decoded top-level structure of cobble.hcl.
type Manifest struct {
	Cobble *SettingsBlock `hcl:"cobble,block"`
	Env    *EnvBlock      `hcl:"env,block"`
	Tasks  []*TaskBlock   `hcl:"task,block"`
	Tools  []*ToolBlock   `hcl:"tool,block"`
}

// Load parses and decodes the manifest file at path.
func Load(path string) (*Manifest, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("manifest not found: %s (run 'cobble init' to create one)", path)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %s", path, diags.Error())
	}

	var m Manifest
	diags = gohcl.DecodeBody(file.Body, nil, &m)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %s", path, diags.Error())
	}

	if err := validate(&m); err != nil {
		return nil, err
	}

	return &m, nil
}

// validate checks manifest-level constraints that don't require the engine.
func validate(m *Manifest) error {
	var defaultTask string
	for _, t := range m.Tasks {
		if !t.Default {
			continue
		}
		if defaultTask != "" {
			return fmt.Errorf("multiple default tasks: %s and %s", defaultTask, t.Name)
		}
		defaultTask = t.Name
	}
	return nil
}

// DefaultTask returns the name of the task marked default, if any.
func (m *Manifest) DefaultTask() (string, bool) {
	for _, t := range m.Tasks {
		if t.Default {
			return t.Name, true
		}
	}
	return "", false
}

// Task returns the task block with the given name, if declared.
func (m *Manifest) Task(name string) (*TaskBlock, bool) {
	for _, t := range m.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// CheckVersion validates the manifest's required_version constraint against
// the running binary's version. Development builds whose version is not a
// valid semver (e.g. "dev") skip the check.
func (m *Manifest) CheckVersion(version string) error {
	if m.Cobble == nil || m.Cobble.RequiredVersion == "" {
		return nil
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return nil
	}

	c, err := semver.NewConstraint(m.Cobble.RequiredVersion)
	if err != nil {
		return fmt.Errorf("invalid required_version constraint %q: %w", m.Cobble.RequiredVersion, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("cobble version %s does not satisfy required_version %q", version, m.Cobble.RequiredVersion)
	}
	return nil
}
