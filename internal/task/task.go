package task

import "encoding/json"

// Status represents the execution state of a task during a run.
type Status string

const (
	// StatusUndone indicates the task has not started. Tasks revert to
	// undone when a failed attempt is retried.
	StatusUndone Status = "undone"

	// StatusDoing indicates the task holds an executor slot and is running.
	StatusDoing Status = "doing"

	// StatusValidating indicates execution finished and the output is
	// being checked against the task's validation criteria.
	StatusValidating Status = "validating"

	// StatusDone indicates the task executed and validated successfully.
	StatusDone Status = "done"

	// StatusExecutionFailed indicates execution failed and retries are
	// exhausted.
	StatusExecutionFailed Status = "execution-failed"

	// StatusValidationFailed indicates validation failed and retries are
	// exhausted.
	StatusValidationFailed Status = "validation-failed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusExecutionFailed || s == StatusValidationFailed
}

// Valid returns true if s is one of the defined status values.
func (s Status) Valid() bool {
	switch s {
	case StatusUndone, StatusDoing, StatusValidating, StatusDone,
		StatusExecutionFailed, StatusValidationFailed:
		return true
	}
	return false
}

// Task is a single unit of work in a plan. Tasks are produced by the
// planner and, once resolved, are immutable except for Status, which the
// runner mutates exclusively during a run.
//
// Input, Output, and Validation are opaque payloads consumed by the
// execution and validation collaborators; the core never interprets them.
type Task struct {
	// ID is the hierarchical task identifier, e.g. "1", "1_2", "1_2_3".
	ID string `json:"task_id"`

	// Description is free text describing the work.
	Description string `json:"description,omitempty"`

	// Dependencies lists the IDs of tasks that must be done before this
	// one may start. The planner only emits sibling references; the
	// resolver may rewrite the set to point at atomic descendants.
	Dependencies []string `json:"dependencies"`

	// Status is the current execution state.
	Status Status `json:"status,omitempty"`

	// Stage is the 1-based execution stage assigned by the stage
	// scheduler. Zero until computed.
	Stage int `json:"stage,omitempty"`

	// Input describes what the task consumes.
	Input json.RawMessage `json:"input,omitempty"`

	// Output describes what the task must produce.
	Output json.RawMessage `json:"output,omitempty"`

	// Validation describes the acceptance criteria for the output.
	Validation json.RawMessage `json:"validation,omitempty"`
}

// Clone returns a copy of the task with its own dependency slice.
// The opaque payloads are shared; they are never mutated by the core.
func (t Task) Clone() Task {
	cp := t
	if t.Dependencies != nil {
		cp.Dependencies = make([]string, len(t.Dependencies))
		copy(cp.Dependencies, t.Dependencies)
	}
	return cp
}

// CloneAll returns a deep copy of the task list. Used by components that
// must not mutate their input.
func CloneAll(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// DependsOn reports whether the task lists depID as a dependency.
func (t Task) DependsOn(depID string) bool {
	for _, d := range t.Dependencies {
		if d == depID {
			return true
		}
	}
	return false
}
