package toolenv

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/thruflo/cobble/internal/logging"
)

// Tool describes a named external tool command.
type Tool struct {
	Name string
	// Source is the installer package name; defaults to Name.
	Source string
	// Requires, when set, replaces the environment descriptor as the
	// prerequisite file the install is gated on.
	Requires string
}

// Registry holds the declared tools for one environment. Registration is
// idempotent so a tool may be declared from multiple composition points.
type Registry struct {
	env *Env

	mu    sync.Mutex
	tools map[string]*Tool
	order []string
}

// NewRegistry creates an empty Registry for the given environment.
func NewRegistry(env *Env) *Registry {
	return &Registry{
		env:   env,
		tools: make(map[string]*Tool),
	}
}

// Env returns the registry's environment.
func (r *Registry) Env() *Env {
	return r.env
}

// Register adds a tool. Re-registering an already-registered name is a silent
// no-op: the first registration wins.
func (r *Registry) Register(t *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[t.Name]; ok {
		logging.Debug("tool already registered", "tool", t.Name)
		return
	}
	if t.Source == "" {
		t.Source = t.Name
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
}

// Lookup returns the tool with the given name, if registered.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns all registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Install returns the install operation for a registered tool name.
func (r *Registry) Install(name string) (*Install, bool) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	return &Install{env: r.env, tool: t}, true
}

// Installs returns install operations for every registered tool, in
// registration order.
func (r *Registry) Installs() []*Install {
	tools := r.Tools()
	out := make([]*Install, 0, len(tools))
	for _, t := range tools {
		out = append(out, &Install{env: r.env, tool: t})
	}
	return out
}

// Install is the depend-able operation that provisions one tool. Its name is
// "<tool>-install" and it is satisfied once the resolved command path exists;
// the command file stands in for a completion stamp.
type Install struct {
	env  *Env
	tool *Tool
}

// Name returns the operation name task definitions depend on.
func (i *Install) Name() string {
	return i.tool.Name + "-install"
}

// Tool returns the tool this operation installs.
func (i *Install) Tool() *Tool {
	return i.tool
}

// Path returns the resolved command path inside the environment.
func (i *Install) Path() string {
	return i.env.CommandPath(i.tool.Name)
}

// Satisfied reports whether the tool command already exists.
func (i *Install) Satisfied() bool {
	_, err := os.Stat(i.Path())
	return err == nil
}

// Run installs the tool if its command path does not already exist. The base
// environment (or the configured prerequisite file) must exist first; the
// installer argv and options are passed through without interpretation.
func (i *Install) Run(ctx context.Context) error {
	if i.Satisfied() {
		logging.Debug("tool already installed", "tool", i.tool.Name)
		return nil
	}

	if i.tool.Requires != "" {
		if _, err := os.Stat(i.tool.Requires); err != nil {
			return fmt.Errorf("tool %s requires %s: %w", i.tool.Name, i.tool.Requires, err)
		}
	} else if err := i.env.Ensure(); err != nil {
		return err
	}

	Notify("installing tool %s (source %s)", i.tool.Name, i.tool.Source)

	argv := make([]string, 0, len(i.env.Installer)+len(i.env.Options)+1)
	argv = append(argv, i.env.Installer...)
	argv = append(argv, i.env.Options...)
	argv = append(argv, i.tool.Source)

	if err := i.env.Runner.Run(ctx, i.env.Root, argv, func(line string) {
		fmt.Println(line)
	}); err != nil {
		return fmt.Errorf("failed to install tool %s: %w", i.tool.Name, err)
	}

	if !i.Satisfied() {
		return fmt.Errorf("tool %s: installer succeeded but %s was not created", i.tool.Name, i.Path())
	}
	return nil
}
