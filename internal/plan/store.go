package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/maars-dev/maars/internal/task"
)

const (
	planFileName      = "plan.json"
	executionFileName = "execution.json"
)

// ErrNotFound is returned when a requested document does not exist yet.
var ErrNotFound = errors.New("plan document not found")

// Document is the serialized shape shared by plan.json and
// execution.json.
type Document struct {
	Tasks []task.Task `json:"tasks"`
}

// Store reads and writes plan documents in a data directory. All writes
// are atomic and flock-guarded. Store is safe for concurrent use; the
// lock serializes writers across processes.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating the directory if
// needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// PlanPath returns the path of the plan file.
func (s *Store) PlanPath() string {
	return filepath.Join(s.dir, planFileName)
}

// ExecutionPath returns the path of the run-state file.
func (s *Store) ExecutionPath() string {
	return filepath.Join(s.dir, executionFileName)
}

// SavePlan writes the raw task tree.
func (s *Store) SavePlan(tasks []task.Task) error {
	return s.save(planFileName, tasks)
}

// LoadPlan reads the raw task tree. Returns ErrNotFound if no plan has
// been saved.
func (s *Store) LoadPlan() ([]task.Task, error) {
	return s.load(planFileName)
}

// SaveExecution writes the staged task list with current statuses.
func (s *Store) SaveExecution(tasks []task.Task) error {
	return s.save(executionFileName, tasks)
}

// LoadExecution reads the staged task list. Returns ErrNotFound if no
// run state has been saved.
func (s *Store) LoadExecution() ([]task.Task, error) {
	return s.load(executionFileName)
}

// save writes a document atomically: marshal, write to a temp file, then
// rename into place under the directory lock.
func (s *Store) save(name string, tasks []task.Task) error {
	fl := NewFileLock(s.dir)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := json.MarshalIndent(Document{Tasks: tasks}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *Store) load(name string) ([]task.Task, error) {
	fl := NewFileLock(s.dir)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return doc.Tasks, nil
}
