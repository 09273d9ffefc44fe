package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/maars-dev/maars/internal/event"
	"github.com/maars-dev/maars/internal/logging"
	"github.com/maars-dev/maars/internal/pool"
	"github.com/maars-dev/maars/internal/task"
)

// Config holds the tunables for a single run.
type Config struct {
	// Executors is the execution pool size.
	Executors int

	// Validators is the validation pool size.
	Validators int

	// MaxFailures is the per-task retry cap. A task failing execution
	// or validation this many times lands in a terminal failed status.
	MaxFailures int

	// PollInterval is the scheduling loop tick.
	PollInterval time.Duration

	// RollbackOnExhaustion reverts a failed task's neighbors to undone
	// when its retries run out, so a later pass can retry the subgraph.
	RollbackOnExhaustion bool
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() Config {
	return Config{
		Executors:    7,
		Validators:   5,
		MaxFailures:  3,
		PollInterval: 25 * time.Millisecond,
	}
}

type failurePhase int

const (
	phaseExecution failurePhase = iota
	phaseValidation
)

// Runner executes a resolved, staged task plan. It owns the worker
// pools and is the only writer of task status; everything else
// observes the run through the event bus or the Persister snapshots.
type Runner struct {
	cfg       Config
	executor  Executor
	validator Validator
	bus       *event.Bus
	persister Persister
	log       *logging.Logger

	executors  *pool.Pool
	validators *pool.Pool

	mu         sync.Mutex
	tasks      map[string]*task.Task
	order      []string
	failures   map[string]int
	inflight   map[string]bool
	dependents map[string][]string
	started    bool
	stopped    bool

	ctx       context.Context
	cancel    context.CancelFunc
	stopChan  chan struct{}
	persistCh chan []task.Task
	wg        sync.WaitGroup
	taskWG    sync.WaitGroup
}

// New creates a Runner. The persister may be nil to disable snapshot
// writes; a nil logger falls back to a no-op logger.
func New(cfg Config, executor Executor, validator Validator, bus *event.Bus, persister Persister, log *logging.Logger) *Runner {
	def := DefaultConfig()
	if cfg.Executors <= 0 {
		cfg.Executors = def.Executors
	}
	if cfg.Validators <= 0 {
		cfg.Validators = def.Validators
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if bus == nil {
		bus = event.NewBus()
	}
	if log == nil {
		log = logging.NopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cfg:        cfg,
		executor:   executor,
		validator:  validator,
		bus:        bus,
		persister:  persister,
		log:        log.WithComponent("runner"),
		executors:  pool.New("executors", cfg.Executors),
		validators: pool.New("validators", cfg.Validators),
		tasks:      make(map[string]*task.Task),
		failures:   make(map[string]int),
		inflight:   make(map[string]bool),
		dependents: make(map[string][]string),
		ctx:        ctx,
		cancel:     cancel,
		stopChan:   make(chan struct{}),
		persistCh:  make(chan []task.Task, 1),
	}
}

// Start begins driving the given tasks and returns immediately.
// The slice is cloned; the caller's copy is never mutated.
func (r *Runner) Start(tasks []task.Task) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("runner already started")
	}
	if len(tasks) == 0 {
		r.mu.Unlock()
		return fmt.Errorf("no tasks to run")
	}

	for _, t := range tasks {
		ct := t.Clone()
		if ct.Status == "" {
			ct.Status = task.StatusUndone
		}
		r.tasks[ct.ID] = &ct
		r.order = append(r.order, ct.ID)
	}
	sort.Slice(r.order, func(i, j int) bool {
		return task.NaturalLess(r.order[i], r.order[j])
	})

	// Reverse dependency index, used for rollback and diagnostics.
	for _, id := range r.order {
		for _, dep := range r.tasks[id].Dependencies {
			r.dependents[dep] = append(r.dependents[dep], id)
		}
	}

	r.started = true
	total := len(r.order)
	r.mu.Unlock()

	r.log.Info("run started", "tasks", total,
		"executors", r.cfg.Executors, "validators", r.cfg.Validators)
	r.bus.Publish(event.NewRunStartedEvent(total))

	r.wg.Add(2)
	go r.loop()
	go r.persistLoop()
	return nil
}

// Stop requests a cooperative shutdown: no new assignments are made,
// but in-flight executions and validations finish and release their
// slots normally. Stop returns immediately; use Wait to block.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started || r.stopped {
		return
	}
	r.stopped = true
	close(r.stopChan)
}

// Wait blocks until the run finishes or a stop has fully drained.
// It returns an error when any task ended in a terminal failed status.
func (r *Runner) Wait() error {
	r.wg.Wait()

	_, failed, total := r.counts()
	if failed > 0 {
		return fmt.Errorf("%d of %d tasks failed", failed, total)
	}
	return nil
}

// Tasks returns a snapshot of the run state in natural ID order.
func (r *Runner) Tasks() []task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// ExecutorStats reports the execution pool's slot accounting.
func (r *Runner) ExecutorStats() pool.Stats { return r.executors.Stats() }

// ValidatorStats reports the validation pool's slot accounting.
func (r *Runner) ValidatorStats() pool.Stats { return r.validators.Stats() }

func (r *Runner) loop() {
	defer r.wg.Done()
	defer close(r.persistCh)
	defer r.cancel()

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			r.taskWG.Wait()
			done, failed, total := r.counts()
			r.log.Info("run stopped", "done", done, "failed", failed, "total", total)
			r.bus.Publish(event.NewRunStoppedEvent(done, total))
			return

		case <-ticker.C:
			if r.schedulePass() {
				r.taskWG.Wait()
				done, failed, total := r.counts()
				r.log.Info("run completed", "done", done, "failed", failed, "total", total)
				r.bus.Publish(event.NewRunCompletedEvent(done, failed, total))
				return
			}
		}
	}
}

// schedulePass performs one scheduling tick and reports whether the
// run is complete: nothing in flight and no task can make progress.
func (r *Runner) schedulePass() bool {
	var evts []event.Event
	statusChanged := false

	r.mu.Lock()

	// A tick queued behind a slow publish can start a pass after Stop
	// returned; such a pass must not assign anything.
	if r.stopped {
		r.mu.Unlock()
		return false
	}

	// Tasks whose execution succeeded wait here for a validator slot.
	for _, id := range r.order {
		t := r.tasks[id]
		if t.Status != task.StatusValidating || r.inflight[id] {
			continue
		}
		if _, ok := r.validators.Assign(id); !ok {
			break
		}
		r.inflight[id] = true
		evts = append(evts, r.poolEventLocked(r.validators))
		r.taskWG.Add(1)
		go r.validate(t.Clone())
	}

	for _, id := range r.order {
		t := r.tasks[id]
		if t.Status != task.StatusUndone || !r.readyLocked(t) {
			continue
		}
		if _, ok := r.executors.Assign(id); !ok {
			break
		}
		evts = append(evts, r.setStatusLocked(t, task.StatusDoing))
		evts = append(evts, r.poolEventLocked(r.executors))
		statusChanged = true
		r.inflight[id] = true
		r.taskWG.Add(1)
		go r.execute(t.Clone())
	}

	complete := r.completeLocked()
	var snap []task.Task
	if statusChanged {
		snap = r.snapshotLocked()
	}
	r.mu.Unlock()

	for _, e := range evts {
		r.bus.Publish(e)
	}
	if snap != nil {
		r.queuePersist(snap)
	}
	return complete
}

// readyLocked reports whether every dependency of t is done. A
// dependency that is not part of the run can never complete, so its
// dependents are treated as blocked rather than ready.
func (r *Runner) readyLocked(t *task.Task) bool {
	for _, dep := range t.Dependencies {
		dt, ok := r.tasks[dep]
		if !ok || dt.Status != task.StatusDone {
			return false
		}
	}
	return true
}

// completeLocked reports whether the run can make no further progress:
// nothing is in flight, nothing awaits validation, and no undone task
// has all of its dependencies done. Tasks left undone at that point are
// blocked behind a terminal failure or a missing dependency.
func (r *Runner) completeLocked() bool {
	if len(r.inflight) > 0 {
		return false
	}
	for _, id := range r.order {
		t := r.tasks[id]
		switch t.Status {
		case task.StatusDoing, task.StatusValidating:
			return false
		case task.StatusUndone:
			if r.readyLocked(t) {
				return false
			}
		}
	}
	return true
}

func (r *Runner) execute(t task.Task) {
	defer r.taskWG.Done()

	output, err := r.executor.Execute(r.ctx, t)

	r.mu.Lock()
	delete(r.inflight, t.ID)
	r.executors.ReleaseByTask(t.ID)
	cur := r.tasks[t.ID]

	var evts []event.Event
	evts = append(evts, r.poolEventLocked(r.executors))
	if err != nil {
		r.log.Warn("execution failed", "task", t.ID, "error", err)
		evts = append(evts, r.failLocked(cur, phaseExecution)...)
	} else {
		cur.Output = output
		evts = append(evts, r.setStatusLocked(cur, task.StatusValidating))
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	for _, e := range evts {
		r.bus.Publish(e)
	}
	r.queuePersist(snap)
}

func (r *Runner) validate(t task.Task) {
	defer r.taskWG.Done()

	res, err := r.validator.Validate(r.ctx, t, t.Output)

	r.mu.Lock()
	delete(r.inflight, t.ID)
	r.validators.ReleaseByTask(t.ID)
	cur := r.tasks[t.ID]

	var evts []event.Event
	evts = append(evts, r.poolEventLocked(r.validators))
	if err != nil || !res.Pass {
		if err != nil {
			r.log.Warn("validation failed", "task", t.ID, "error", err)
		} else {
			r.log.Warn("validation rejected output", "task", t.ID)
		}
		evts = append(evts, r.failLocked(cur, phaseValidation)...)
	} else {
		cur.Validation = res.Report
		evts = append(evts, r.setStatusLocked(cur, task.StatusDone))
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	for _, e := range evts {
		r.bus.Publish(e)
	}
	r.queuePersist(snap)
}

// failLocked records one failure for cur and either re-queues it or
// moves it to the phase's terminal status once retries are exhausted.
func (r *Runner) failLocked(cur *task.Task, phase failurePhase) []event.Event {
	r.failures[cur.ID]++
	attempt := r.failures[cur.ID]

	if attempt < r.cfg.MaxFailures {
		// Re-execute from scratch on the next pass, never resume.
		cur.Output = nil
		cur.Validation = nil
		r.log.Info("task re-queued", "task", cur.ID,
			"attempt", attempt, "max", r.cfg.MaxFailures)
		return []event.Event{r.setStatusLocked(cur, task.StatusUndone)}
	}

	terminal := task.StatusExecutionFailed
	if phase == phaseValidation {
		terminal = task.StatusValidationFailed
	}
	r.log.Error("task retries exhausted", "task", cur.ID, "status", terminal.String())

	evts := []event.Event{r.setStatusLocked(cur, terminal)}
	if r.cfg.RollbackOnExhaustion {
		evts = append(evts, r.rollbackLocked(cur)...)
	}
	return evts
}

// rollbackLocked reverts the exhausted task's direct upstream
// dependencies and its transitive downstream dependents to undone with
// cleared failure counts, readying the subgraph for a fresh pass. The
// exhausted task itself keeps its terminal status. In-flight tasks are
// left alone.
func (r *Runner) rollbackLocked(cur *task.Task) []event.Event {
	var evts []event.Event

	reset := func(t *task.Task) {
		r.failures[t.ID] = 0
		t.Output = nil
		t.Validation = nil
		evts = append(evts, r.setStatusLocked(t, task.StatusUndone))
	}

	for _, dep := range cur.Dependencies {
		if dt, ok := r.tasks[dep]; ok && dt.Status == task.StatusDone {
			reset(dt)
		}
	}

	seen := map[string]bool{cur.ID: true}
	queue := append([]string(nil), r.dependents[cur.ID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		queue = append(queue, r.dependents[id]...)

		dt, ok := r.tasks[id]
		if !ok || r.inflight[id] || dt.Status == task.StatusUndone {
			continue
		}
		reset(dt)
	}

	if len(evts) > 0 {
		r.log.Warn("rolled back neighbors of exhausted task",
			"task", cur.ID, "reverted", len(evts))
	}
	return evts
}

func (r *Runner) setStatusLocked(cur *task.Task, next task.Status) event.Event {
	old := cur.Status
	cur.Status = next
	return event.NewTaskStatusEvent(cur.ID, old, next, r.failures[cur.ID])
}

func (r *Runner) poolEventLocked(p *pool.Pool) event.Event {
	return event.NewPoolStateEvent(p.Name(), p.Snapshot(), p.Stats())
}

func (r *Runner) snapshotLocked() []task.Task {
	out := make([]task.Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tasks[id].Clone())
	}
	return out
}

func (r *Runner) counts() (done, failed, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		switch r.tasks[id].Status {
		case task.StatusDone:
			done++
		case task.StatusExecutionFailed, task.StatusValidationFailed:
			failed++
		}
	}
	return done, failed, len(r.order)
}

// queuePersist hands a snapshot to the persistence goroutine without
// ever blocking. When a write is already pending the stale snapshot is
// dropped in favor of the newer one.
func (r *Runner) queuePersist(snap []task.Task) {
	if r.persister == nil {
		return
	}
	select {
	case r.persistCh <- snap:
	default:
		select {
		case <-r.persistCh:
		default:
		}
		select {
		case r.persistCh <- snap:
		default:
		}
	}
}

func (r *Runner) persistLoop() {
	defer r.wg.Done()
	for snap := range r.persistCh {
		if r.persister == nil {
			continue
		}
		if err := r.persister.SaveExecution(snap); err != nil {
			r.log.Warn("persist failed", "error", err)
		}
	}
}
