// Package journal records task executions as JSON Lines under the project
// dot-directory. Every executed run or install operation appends one entry;
// up-to-date targets are not recorded.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thruflo/cobble/internal/logging"
)

// FileName is the journal file name under the .cobble directory.
const FileName = "journal.jsonl"

// Entry is one recorded execution.
type Entry struct {
	// RunID groups entries written by a single cobble invocation.
	RunID      string    `json:"run_id"`
	Task       string    `json:"task"`
	Outcome    string    `json:"outcome"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Outcome values for journal entries.
const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeInstalled = "installed"
)

// Journal appends execution records to a JSON Lines file.
type Journal struct {
	mu    sync.Mutex
	path  string
	runID string
}

// New creates a Journal for the project at basePath. All entries written by
// this Journal share one freshly generated run id.
func New(basePath string) *Journal {
	return &Journal{
		path:  filepath.Join(basePath, ".cobble", FileName),
		runID: uuid.NewString(),
	}
}

// RunID returns the run identifier shared by this invocation's entries.
func (j *Journal) RunID() string {
	return j.runID
}

// Record appends an entry for an executed operation. Errors are logged and
// swallowed: a broken journal must never fail the build itself.
func (j *Journal) Record(task, outcome string, d time.Duration) {
	entry := Entry{
		RunID:      j.runID,
		Task:       task,
		Outcome:    outcome,
		DurationMS: d.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if err := j.Append(entry); err != nil {
		logging.Warn("failed to record journal entry", "task", task, "error", err)
	}
}

// Append writes one entry to the journal file, creating it if needed.
func (j *Journal) Append(entry Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return nil
}

// Recent returns the last n journal entries, oldest first. A missing journal
// yields an empty slice. Malformed lines are skipped.
func (j *Journal) Recent(n int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
