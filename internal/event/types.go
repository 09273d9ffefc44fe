package event

import (
	"time"

	"github.com/maars-dev/maars/internal/pool"
	"github.com/maars-dev/maars/internal/task"
)

// Event type identifiers, "category.action".
const (
	TypeTaskStatus   = "task.status"
	TypeRunStarted   = "run.started"
	TypeRunCompleted = "run.completed"
	TypeRunStopped   = "run.stopped"
	TypePoolState    = "pool.state"
	TypeStageWarning = "stage.warning"
	TypePlanReloaded = "plan.reloaded"
)

// Event is the interface all events implement.
type Event interface {
	// EventType returns a string identifier, "category.action".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// TaskStatusEvent is emitted after every task status mutation.
type TaskStatusEvent struct {
	baseEvent
	TaskID    string
	OldStatus task.Status
	NewStatus task.Status
	Attempt   int // failure count at the time of the transition
}

// NewTaskStatusEvent creates a TaskStatusEvent.
func NewTaskStatusEvent(taskID string, oldStatus, newStatus task.Status, attempt int) TaskStatusEvent {
	return TaskStatusEvent{
		baseEvent: newBaseEvent(TypeTaskStatus),
		TaskID:    taskID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Attempt:   attempt,
	}
}

// RunStartedEvent is emitted when a run begins.
type RunStartedEvent struct {
	baseEvent
	TotalTasks int
}

// NewRunStartedEvent creates a RunStartedEvent.
func NewRunStartedEvent(totalTasks int) RunStartedEvent {
	return RunStartedEvent{baseEvent: newBaseEvent(TypeRunStarted), TotalTasks: totalTasks}
}

// RunCompletedEvent is emitted when every task has reached a terminal
// status. Failed counts tasks that ended in a failed terminal state; the
// run as a whole has no separate fatal channel.
type RunCompletedEvent struct {
	baseEvent
	Done   int
	Failed int
	Total  int
}

// NewRunCompletedEvent creates a RunCompletedEvent.
func NewRunCompletedEvent(done, failed, total int) RunCompletedEvent {
	return RunCompletedEvent{
		baseEvent: newBaseEvent(TypeRunCompleted),
		Done:      done,
		Failed:    failed,
		Total:     total,
	}
}

// RunStoppedEvent is emitted when a run ends early on an external stop
// signal, after in-flight work drained.
type RunStoppedEvent struct {
	baseEvent
	Done  int
	Total int
}

// NewRunStoppedEvent creates a RunStoppedEvent.
func NewRunStoppedEvent(done, total int) RunStoppedEvent {
	return RunStoppedEvent{baseEvent: newBaseEvent(TypeRunStopped), Done: done, Total: total}
}

// PoolStateEvent carries a snapshot of one worker pool.
type PoolStateEvent struct {
	baseEvent
	Pool  string // "executors" or "validators"
	Slots []pool.Slot
	Stats pool.Stats
}

// NewPoolStateEvent creates a PoolStateEvent.
func NewPoolStateEvent(name string, slots []pool.Slot, stats pool.Stats) PoolStateEvent {
	return PoolStateEvent{
		baseEvent: newBaseEvent(TypePoolState),
		Pool:      name,
		Slots:     slots,
		Stats:     stats,
	}
}

// StageWarningEvent is emitted when staging had to dump unschedulable
// tasks into a defensive final stage.
type StageWarningEvent struct {
	baseEvent
	TaskIDs []string
}

// NewStageWarningEvent creates a StageWarningEvent.
func NewStageWarningEvent(taskIDs []string) StageWarningEvent {
	return StageWarningEvent{baseEvent: newBaseEvent(TypeStageWarning), TaskIDs: taskIDs}
}

// PlanReloadedEvent is emitted when the plan file changed on disk and was
// re-staged.
type PlanReloadedEvent struct {
	baseEvent
	Path  string
	Tasks int
}

// NewPlanReloadedEvent creates a PlanReloadedEvent.
func NewPlanReloadedEvent(path string, tasks int) PlanReloadedEvent {
	return PlanReloadedEvent{baseEvent: newBaseEvent(TypePlanReloaded), Path: path, Tasks: tasks}
}
