// Package stage partitions a resolved task graph into ordered execution
// stages via greedy topological batching.
//
// Input must already be resolver output (see the graph package). Each
// stage is a batch of tasks whose dependencies are all satisfied by
// earlier stages; stages execute in order, tasks within a stage may run
// concurrently.
package stage

import (
	"sort"

	"github.com/maars-dev/maars/internal/task"
)

// Result is the output of a staging pass.
type Result struct {
	// Stages is the ordered partition of the input. Every task appears in
	// exactly one stage, annotated with its 1-based stage number.
	Stages [][]task.Task

	// Unstaged lists the IDs of tasks that could never become ready
	// because of a cycle or a dangling dependency. They are dumped into the final
	// stage so the run still terminates; a non-empty list is a
	// data-integrity warning, not a hard failure.
	Unstaged []string
}

// HasWarning reports whether the pass dumped unschedulable tasks into the
// final stage.
func (r Result) HasWarning() bool {
	return len(r.Unstaged) > 0
}

// Compute partitions tasks into execution stages. The input is not
// mutated; returned tasks are copies with Stage set.
//
// Each pass collects every task whose dependencies are all already
// staged. If no task is ready while tasks remain, the remainder is
// emitted as one final stage and recorded in Result.Unstaged.
func Compute(tasks []task.Task) Result {
	var res Result
	if len(tasks) == 0 {
		return res
	}

	pending := task.CloneAll(tasks)
	sort.Slice(pending, func(i, j int) bool { return task.NaturalLess(pending[i].ID, pending[j].ID) })

	completed := make(map[string]bool, len(pending))
	staged := make(map[string]bool, len(pending))

	for len(staged) < len(pending) {
		var ready []task.Task
		for _, t := range pending {
			if staged[t.ID] {
				continue
			}
			if depsCompleted(t, completed) {
				ready = append(ready, t)
			}
		}

		if len(ready) == 0 {
			// Cycle or unresolved dependency: emit everything left as a
			// single terminating stage.
			var remaining []task.Task
			for _, t := range pending {
				if !staged[t.ID] {
					remaining = append(remaining, t)
					res.Unstaged = append(res.Unstaged, t.ID)
				}
			}
			appendStage(&res, remaining)
			return res
		}

		appendStage(&res, ready)
		for _, t := range ready {
			staged[t.ID] = true
			completed[t.ID] = true
		}
	}
	return res
}

// CleanDependencies produces a display-only view of the staged tasks in
// which each task keeps only the dependencies sitting in the immediately
// preceding stage. The first stage keeps its dependencies untouched. The
// input stages are not mutated; the resolved dependencies remain the
// source of truth for execution readiness.
func CleanDependencies(stages [][]task.Task) [][]task.Task {
	if len(stages) == 0 {
		return nil
	}
	cleaned := make([][]task.Task, len(stages))
	for i, st := range stages {
		cleaned[i] = task.CloneAll(st)
	}

	for i := 1; i < len(cleaned); i++ {
		prev := make(map[string]bool, len(cleaned[i-1]))
		for _, t := range cleaned[i-1] {
			prev[t.ID] = true
		}
		for j := range cleaned[i] {
			kept := cleaned[i][j].Dependencies[:0]
			for _, dep := range cleaned[i][j].Dependencies {
				if prev[dep] {
					kept = append(kept, dep)
				}
			}
			cleaned[i][j].Dependencies = kept
		}
	}
	return cleaned
}

// Flatten returns the staged tasks as a single list in stage order.
func Flatten(stages [][]task.Task) []task.Task {
	var out []task.Task
	for _, st := range stages {
		out = append(out, st...)
	}
	return out
}

func appendStage(res *Result, batch []task.Task) {
	n := len(res.Stages) + 1
	for i := range batch {
		batch[i].Stage = n
	}
	res.Stages = append(res.Stages, batch)
}

func depsCompleted(t task.Task, completed map[string]bool) bool {
	for _, dep := range t.Dependencies {
		if dep == "" || dep == t.ID {
			continue
		}
		if !completed[dep] {
			return false
		}
	}
	return true
}
