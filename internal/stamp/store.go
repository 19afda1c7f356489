// Package stamp implements the completion-marker store. A stamp is an empty
// file whose existence and modification time record when a task's work last
// completed successfully. Stamps are the only persisted completion signal:
// there is no separate state file and nothing is cached across invocations.
package stamp

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store maps task names to stamp files under a single root directory.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. The directory is
// created lazily on the first Touch.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the stamp root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the stamp file path for a task name. The mapping is pure and
// deterministic: one file per name, directly under the root.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, name)
}

// Exists reports whether a stamp is present for the given task name.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// ModTime returns the modification instant of a task's stamp. The second
// return value is false when no stamp exists.
func (s *Store) ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Touch creates the stamp for a task (and the root directory if needed) and
// sets its modification instant to now. Callers must invoke Touch only as the
// final step of a successful run, so a partial failure never leaves a stamp.
func (s *Store) Touch(name string) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create stamp directory: %w", err)
	}

	path := s.Path(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create stamp %s: %w", name, err)
	}
	f.Close()

	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("failed to touch stamp %s: %w", name, err)
	}
	return nil
}

// Remove deletes a task's stamp. Removing an absent stamp is not an error.
func (s *Store) Remove(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stamp %s: %w", name, err)
	}
	return nil
}
