// Package pool provides fixed-size worker slot tracking for the execution
// runner. A pool is the sole concurrency bound for its phase: the runner
// owns one pool for executors and one for validators.
package pool

import "sync"

// SlotStatus represents the state of a single worker slot.
type SlotStatus string

const (
	// SlotIdle indicates the slot is free for assignment.
	SlotIdle SlotStatus = "idle"

	// SlotBusy indicates the slot is assigned to a task.
	SlotBusy SlotStatus = "busy"

	// SlotFailed indicates an externally detected anomaly. Slots never
	// transition to failed on their own.
	SlotFailed SlotStatus = "failed"
)

// Slot is a single worker slot. At most one slot in a pool holds a given
// task ID at a time.
type Slot struct {
	ID     int        `json:"id"`
	Status SlotStatus `json:"status"`
	TaskID string     `json:"taskId,omitempty"`
}

// Stats is a snapshot of slot state counts. Busy+Idle+Failed == Total.
type Stats struct {
	Total  int `json:"total"`
	Busy   int `json:"busy"`
	Idle   int `json:"idle"`
	Failed int `json:"failed"`
}

// Pool tracks a fixed number of worker slots. The slot count is fixed at
// construction for the lifetime of the run. All methods are safe for
// concurrent use; assignment never blocks.
type Pool struct {
	mu    sync.Mutex
	name  string
	slots []Slot
}

// New creates a pool with the given number of slots, all idle. The name
// is used for logging and events ("executors", "validators").
func New(name string, size int) *Pool {
	p := &Pool{name: name}
	p.slots = freshSlots(size)
	return p
}

func freshSlots(size int) []Slot {
	slots := make([]Slot, size)
	for i := range slots {
		slots[i] = Slot{ID: i + 1, Status: SlotIdle}
	}
	return slots
}

// Name returns the pool's name.
func (p *Pool) Name() string {
	return p.name
}

// Size returns the fixed slot count.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// Assign claims an idle slot for the task. Returns the slot ID, or ok
// false when every slot is busy or failed; callers poll on the next
// scheduling pass rather than block.
func (p *Pool) Assign(taskID string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.slots {
		if p.slots[i].Status == SlotIdle {
			p.slots[i].Status = SlotBusy
			p.slots[i].TaskID = taskID
			return p.slots[i].ID, true
		}
	}
	return 0, false
}

// ReleaseByTask frees the busy slot holding the given task. Releasing a
// task no slot holds is a safe no-op: concurrent completion and
// cancellation can race, so idempotency here is a contract, not a
// convenience. A failed slot keeps its task and status until Reset.
func (p *Pool) ReleaseByTask(taskID string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.slots {
		if p.slots[i].Status == SlotBusy && p.slots[i].TaskID == taskID && taskID != "" {
			id := p.slots[i].ID
			p.slots[i].Status = SlotIdle
			p.slots[i].TaskID = ""
			return id, true
		}
	}
	return 0, false
}

// MarkFailed flags a slot after an externally detected anomaly. The slot
// no longer participates in assignment until Reset.
func (p *Pool) MarkFailed(slotID int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.slots {
		if p.slots[i].ID == slotID {
			p.slots[i].Status = SlotFailed
			return
		}
	}
}

// Reset returns every slot to idle. Called between runs.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slots = freshSlots(len(p.slots))
}

// Snapshot returns a copy of all slots.
func (p *Pool) Snapshot() []Slot {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Slot, len(p.slots))
	copy(out, p.slots)
	return out
}

// Stats returns the current slot state counts. If accounting is ever
// inconsistent the pool re-initializes itself and reports all slots idle
// rather than wedge the run.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{Total: len(p.slots)}
	for _, slot := range p.slots {
		switch slot.Status {
		case SlotBusy:
			s.Busy++
		case SlotIdle:
			s.Idle++
		case SlotFailed:
			s.Failed++
		}
	}
	if s.Busy+s.Idle+s.Failed != s.Total {
		p.slots = freshSlots(len(p.slots))
		return Stats{Total: s.Total, Idle: s.Total}
	}
	return s
}
