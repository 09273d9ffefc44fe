package runner

import (
	"context"
	"encoding/json"

	"github.com/maars-dev/maars/internal/task"
)

// Executor performs the actual work of a task. Implementations may be
// slow and should honor ctx cancellation where they can; a returned
// error counts as one execution failure subject to the retry cap.
type Executor interface {
	Execute(ctx context.Context, t task.Task) (json.RawMessage, error)
}

// ValidationResult is the outcome of checking a task's output.
type ValidationResult struct {
	Pass   bool
	Report json.RawMessage
}

// Validator checks whether a completed task's output meets its
// acceptance criteria. A returned error and a Pass=false result are
// treated identically: one validation failure.
type Validator interface {
	Validate(ctx context.Context, t task.Task, output json.RawMessage) (ValidationResult, error)
}

// Persister receives a snapshot of the full task list after each
// status mutation. Write failures are logged and swallowed; they never
// interrupt the run.
type Persister interface {
	SaveExecution(tasks []task.Task) error
}
