// Package engine implements the task registry and stamp-based scheduler.
//
// Tasks are registered once, by name, into an explicit registry; registration
// is idempotent so the same declaration may arrive from multiple composition
// points. Each task gets three operations: a run operation that executes the
// task's action only when its stamp is stale, a clean operation that removes
// the stamp (or a custom replacement), and a composite force operation that
// cleans and then runs. Staleness is a raw mtime comparison of the task's
// stamp against its declared inputs and prerequisite stamps.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/thruflo/cobble/internal/logging"
	"github.com/thruflo/cobble/internal/stamp"
)

// ErrUnknownTarget is returned when a name resolves to neither a registered
// task nor a tool-install operation.
var ErrUnknownTarget = errors.New("unknown target")

// CycleError is returned when the declared dependency edges form a cycle.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Cycle, " -> ")
}

// Task is a named unit of work.
type Task struct {
	Name        string
	Description string
	// Needs lists the names of tasks or tool-install operations whose
	// completion gates this task. Depending on a task here means needing
	// its result without forcing it to re-run.
	Needs []string
	// Inputs lists file prerequisites. A missing input is a hard error.
	Inputs []string
	// Action performs the task's work. A nil action is a grouping target.
	Action func(ctx context.Context) error
	// Clean replaces the default clean operation. A custom clean must
	// itself remove the task's stamp; the engine does not do it on the
	// override's behalf.
	Clean   func() error
	Default bool
}

// ToolInstall is a depend-able operation that provisions an external tool.
// It is satisfied by the existence of the tool's command path rather than by
// a stamp of its own.
type ToolInstall interface {
	Name() string
	Path() string
	Satisfied() bool
	Run(ctx context.Context) error
}

// Recorder receives a record for every executed operation.
type Recorder interface {
	Record(task, outcome string, d time.Duration)
}

// Engine owns the task registry, the tool-install operations and the global
// stamp collection.
type Engine struct {
	stamps   *stamp.Store
	recorder Recorder

	mu       sync.Mutex
	tasks    map[string]*Task
	installs map[string]ToolInstall
	order    []string
	// collected is the global stamp collection: appended to during
	// registration only, consumed by CleanAll.
	collected []string
}

// New creates an Engine over the given stamp store.
func New(stamps *stamp.Store) *Engine {
	return &Engine{
		stamps:   stamps,
		tasks:    make(map[string]*Task),
		installs: make(map[string]ToolInstall),
	}
}

// SetRecorder sets the execution recorder.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

// Stamps returns the engine's stamp store.
func (e *Engine) Stamps() *stamp.Store {
	return e.stamps
}

// Register adds a task. Re-registering an already-registered name is a silent
// no-op: the first registration wins, and the task's stamp joins the global
// collection exactly once.
func (e *Engine) Register(t *Task) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.tasks[t.Name]; ok {
		logging.Debug("task already registered", "task", t.Name)
		return
	}
	e.tasks[t.Name] = t
	e.order = append(e.order, t.Name)
	e.collected = append(e.collected, t.Name)
}

// RegisterInstall adds a tool-install operation, keyed by its name.
// Re-registering a name is a silent no-op.
func (e *Engine) RegisterInstall(op ToolInstall) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.installs[op.Name()]; ok {
		logging.Debug("install operation already registered", "name", op.Name())
		return
	}
	e.installs[op.Name()] = op
}

// Lookup returns the registered task with the given name.
func (e *Engine) Lookup(name string) (*Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tasks[name]
	return t, ok
}

// Tasks returns all registered tasks in registration order.
func (e *Engine) Tasks() []*Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*Task, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.tasks[name])
	}
	return out
}

// DefaultTask returns the task registered with Default set, if any.
func (e *Engine) DefaultTask() (*Task, bool) {
	for _, t := range e.Tasks() {
		if t.Default {
			return t, true
		}
	}
	return nil, false
}

// Stale reports whether a task must run: its stamp is absent, or some
// declared input or prerequisite is strictly newer than the stamp. Instants
// are compared raw; a freshly recreated prerequisite stamp counts as newer.
func (e *Engine) Stale(name string) (bool, error) {
	t, ok := e.Lookup(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}
	return e.staleTask(t)
}

func (e *Engine) staleTask(t *Task) (bool, error) {
	mod, ok := e.stamps.ModTime(t.Name)
	if !ok {
		return true, nil
	}

	for _, input := range t.Inputs {
		info, err := os.Stat(input)
		if err != nil {
			return false, fmt.Errorf("task %s: input %s: %w", t.Name, input, err)
		}
		if info.ModTime().After(mod) {
			return true, nil
		}
	}

	for _, dep := range t.Needs {
		if op, ok := e.installs[dep]; ok {
			info, err := os.Stat(op.Path())
			if err != nil {
				// The install operation will create it; until then
				// the dependent is stale.
				return true, nil
			}
			if info.ModTime().After(mod) {
				return true, nil
			}
			continue
		}
		depMod, ok := e.stamps.ModTime(dep)
		if !ok {
			return true, nil
		}
		if depMod.After(mod) {
			return true, nil
		}
	}

	return false, nil
}

// Clean invokes a task's clean operation: the custom one if supplied,
// otherwise removal of the task's stamp.
func (e *Engine) Clean(name string) error {
	t, ok := e.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}
	if t.Clean != nil {
		return t.Clean()
	}
	return e.stamps.Remove(name)
}

// CleanAll removes every stamp in the global collection. Custom clean
// operations are not invoked; removal order is irrelevant.
func (e *Engine) CleanAll() error {
	e.mu.Lock()
	collected := append([]string(nil), e.collected...)
	e.mu.Unlock()

	for _, name := range collected {
		if err := e.stamps.Remove(name); err != nil {
			return err
		}
	}
	return nil
}

// Validate resolves every registered task, surfacing unknown dependency
// names and cycles as load-time errors.
func (e *Engine) Validate() error {
	e.mu.Lock()
	order := append([]string(nil), e.order...)
	e.mu.Unlock()

	_, err := e.resolve(order)
	return err
}

func (e *Engine) record(name, outcome string, d time.Duration) {
	if e.recorder != nil {
		e.recorder.Record(name, outcome, d)
	}
}
