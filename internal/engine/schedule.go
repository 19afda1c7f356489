package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thruflo/cobble/internal/journal"
	"github.com/thruflo/cobble/internal/logging"
)

// RunOptions controls a Run invocation.
type RunOptions struct {
	// Force invokes the composite operation for the requested tasks:
	// their clean operation runs first, so the work always re-executes.
	Force bool
	// Jobs is the number of parallel workers. Values below 2 run the
	// graph serially in deterministic order.
	Jobs int
}

// node is one schedulable target: either a task or a tool install.
type node struct {
	name string
	task *Task
	inst ToolInstall
	deps []string
}

// Run executes the named tasks and their transitive prerequisites.
// Prerequisites always complete before their dependents; independent targets
// may run concurrently when Jobs allows it.
func (e *Engine) Run(ctx context.Context, names []string, opts RunOptions) error {
	order, err := e.resolve(names)
	if err != nil {
		return err
	}

	if opts.Force {
		for _, name := range names {
			if _, ok := e.Lookup(name); ok {
				if err := e.Clean(name); err != nil {
					return err
				}
			}
		}
	}

	nodes := make(map[string]*node, len(order))
	for _, name := range order {
		nodes[name] = e.node(name)
	}

	if opts.Jobs > 1 {
		return e.runParallel(ctx, nodes, opts.Jobs)
	}

	for _, name := range order {
		if err := e.runNode(ctx, nodes[name]); err != nil {
			return err
		}
	}
	return nil
}

// resolve expands the requested names into execution order via depth-first
// traversal, rejecting unknown names and cycles.
func (e *Engine) resolve(names []string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	const (
		white = iota // unvisited
		gray         // on the current path
		black        // done
	)

	color := make(map[string]int)
	var order []string

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			// Trim the path back to the first occurrence to report
			// just the cycle.
			cycle := []string{name}
			for i := len(path) - 1; i >= 0; i-- {
				cycle = append([]string{path[i]}, cycle...)
				if path[i] == name {
					break
				}
			}
			return &CycleError{Cycle: cycle}
		}

		var deps []string
		if t, ok := e.tasks[name]; ok {
			deps = t.Needs
		} else if _, ok := e.installs[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTarget, name)
		}

		color[name] = gray
		for _, dep := range deps {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		color[name] = black
		order = append(order, name)
		return nil
	}

	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// node builds the schedulable node for a resolved name. resolve has already
// established that the name is known.
func (e *Engine) node(name string) *node {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.tasks[name]; ok {
		return &node{name: name, task: t, deps: t.Needs}
	}
	return &node{name: name, inst: e.installs[name]}
}

// runNode executes one target if it is stale. For tasks, the stamp touch is
// strictly the last step: a failed action leaves no stamp, so the task stays
// stale and re-runs on the next invocation.
func (e *Engine) runNode(ctx context.Context, n *node) error {
	if n.inst != nil {
		if n.inst.Satisfied() {
			logging.Debug("tool install satisfied", "name", n.name)
			return nil
		}
		start := time.Now()
		if err := n.inst.Run(ctx); err != nil {
			e.record(n.name, journal.OutcomeFailed, time.Since(start))
			return err
		}
		e.record(n.name, journal.OutcomeInstalled, time.Since(start))
		return nil
	}

	stale, err := e.staleTask(n.task)
	if err != nil {
		return err
	}
	if !stale {
		logging.Debug("task up to date", "task", n.name)
		return nil
	}

	logging.Info("running task", "task", n.name)
	start := time.Now()
	if n.task.Action != nil {
		if err := n.task.Action(ctx); err != nil {
			e.record(n.name, journal.OutcomeFailed, time.Since(start))
			return fmt.Errorf("task %s: %w", n.name, err)
		}
	}
	if err := e.stamps.Touch(n.name); err != nil {
		return err
	}
	e.record(n.name, journal.OutcomeOK, time.Since(start))
	return nil
}

// runParallel executes the graph with a worker pool. A target becomes ready
// when all of its prerequisites have completed; when a target fails, its
// transitive dependents are skipped and the first error is returned after
// in-flight work drains.
func (e *Engine) runParallel(ctx context.Context, nodes map[string]*node, jobs int) error {
	pending := make(map[string]int, len(nodes))
	dependents := make(map[string][]string)
	for _, n := range nodes {
		count := 0
		for _, dep := range n.deps {
			if _, ok := nodes[dep]; ok {
				dependents[dep] = append(dependents[dep], n.name)
				count++
			}
		}
		pending[n.name] = count
	}

	type result struct {
		name string
		err  error
	}

	readyCh := make(chan string, len(nodes))
	resultCh := make(chan result, len(nodes))
	for name, count := range pending {
		if count == 0 {
			readyCh <- name
		}
	}

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range readyCh {
				resultCh <- result{name: name, err: e.runNode(workerCtx, nodes[name])}
			}
		}()
	}

	skipped := make(map[string]bool)
	completed := 0

	var skipDependents func(name string)
	skipDependents = func(name string) {
		for _, dep := range dependents[name] {
			if skipped[dep] {
				continue
			}
			skipped[dep] = true
			completed++
			logging.Warn("skipping target, prerequisite failed", "target", dep, "prerequisite", name)
			skipDependents(dep)
		}
	}

	var firstErr error
	for completed < len(nodes) {
		res := <-resultCh
		completed++

		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
				cancel()
			}
			skipDependents(res.name)
			continue
		}

		for _, dep := range dependents[res.name] {
			if skipped[dep] {
				continue
			}
			pending[dep]--
			if pending[dep] == 0 {
				readyCh <- dep
			}
		}
	}

	close(readyCh)
	wg.Wait()

	return firstErr
}
