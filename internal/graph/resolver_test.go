package graph

import (
	"testing"

	"github.com/maars-dev/maars/internal/task"
)

func mk(id string, deps ...string) task.Task {
	return task.Task{ID: id, Dependencies: deps}
}

func depsOf(tasks []task.Task, id string) []string {
	for _, t := range tasks {
		if t.ID == id {
			return t.Dependencies
		}
	}
	return nil
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	set := make(map[string]bool, len(got))
	for _, id := range got {
		set[id] = true
	}
	for _, id := range want {
		if !set[id] {
			return false
		}
	}
	return true
}

func TestResolveAtomicGraphUnchanged(t *testing.T) {
	tasks := []task.Task{
		mk("1"),
		mk("2", "1"),
		mk("3", "1", "2"),
	}
	resolved := Resolve(tasks)

	if len(resolved) != len(tasks) {
		t.Fatalf("Resolve returned %d tasks, want %d", len(resolved), len(tasks))
	}
	for _, orig := range tasks {
		if !sameIDs(depsOf(resolved, orig.ID), orig.Dependencies) {
			t.Errorf("task %s deps changed: got %v, want %v",
				orig.ID, depsOf(resolved, orig.ID), orig.Dependencies)
		}
	}
}

func TestResolveSinksToSoleLeaf(t *testing.T) {
	// Task 1 is decomposed into 1_1 -> 1_2 (sequential). Task 2 depends
	// on "1", which must sink to the subtree's terminal leaf 1_2.
	tasks := []task.Task{
		mk("1"),
		mk("1_1"),
		mk("1_2", "1_1"),
		mk("2", "1"),
	}
	resolved := Resolve(tasks)

	if got := depsOf(resolved, "2"); !sameIDs(got, []string{"1_2"}) {
		t.Errorf("task 2 deps = %v, want [1_2]", got)
	}
	// Post-resolution, no edge may target the decomposed task.
	tree := task.NewTree(resolved)
	for _, rt := range resolved {
		for _, dep := range rt.Dependencies {
			if tree.HasChildren(dep) {
				t.Errorf("task %s depends on non-atomic task %s", rt.ID, dep)
			}
		}
	}
}

func TestResolveFansOutToParallelLeaves(t *testing.T) {
	// Subtree of 1 has two terminal leaves (1_2 and 1_3 both depend on
	// 1_1, nothing depends on them), so the edge fans out to both.
	tasks := []task.Task{
		mk("1"),
		mk("1_1"),
		mk("1_2", "1_1"),
		mk("1_3", "1_1"),
		mk("2", "1"),
	}
	resolved := Resolve(tasks)

	if got := depsOf(resolved, "2"); !sameIDs(got, []string{"1_2", "1_3"}) {
		t.Errorf("task 2 deps = %v, want [1_2 1_3]", got)
	}
}

func TestResolveMultiLevelSubtree(t *testing.T) {
	// 1 decomposed into 1_1 -> 1_2, and 1_2 further into 1_2_1 -> 1_2_2.
	// The deepest terminal tasks are the subtree's leaves: 1_2_2.
	tasks := []task.Task{
		mk("1"),
		mk("1_1"),
		mk("1_2", "1_1"),
		mk("1_2_1"),
		mk("1_2_2", "1_2_1"),
		mk("2", "1"),
	}
	resolved := Resolve(tasks)

	if got := depsOf(resolved, "2"); !sameIDs(got, []string{"1_2_2"}) {
		t.Errorf("task 2 deps = %v, want [1_2_2]", got)
	}
}

func TestResolveKeepsIntraSubtreeReference(t *testing.T) {
	// 1_2 depends on its own ancestor "1": a direct intra-subtree
	// reference, not a lateral dependency to redirect.
	tasks := []task.Task{
		mk("1"),
		mk("1_1"),
		mk("1_2", "1"),
	}
	resolved := Resolve(tasks)

	if got := depsOf(resolved, "1_2"); !sameIDs(got, []string{"1"}) {
		t.Errorf("task 1_2 deps = %v, want [1]", got)
	}
}

func TestResolveKeepsDanglingAndReportsIt(t *testing.T) {
	tasks := []task.Task{
		mk("1", "99"),
	}
	resolved, report := ResolveWithReport(tasks)

	if got := depsOf(resolved, "1"); !sameIDs(got, []string{"99"}) {
		t.Errorf("task 1 deps = %v, want [99]", got)
	}
	if len(report.Dangling) != 1 || report.Dangling[0] != "99" {
		t.Errorf("report.Dangling = %v, want [99]", report.Dangling)
	}
}

func TestResolveRootDependency(t *testing.T) {
	// A dependency on the synthetic root sinks to the leaves among the
	// top-level tasks. "2" is the only top-level task nothing depends on.
	tasks := []task.Task{
		mk("1"),
		mk("2", "1"),
		mk("1_1", "0"),
	}
	resolved := Resolve(tasks)

	if got := depsOf(resolved, "1_1"); !sameIDs(got, []string{"2"}) {
		t.Errorf("task 1_1 deps = %v, want [2]", got)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	tasks := []task.Task{
		mk("1"),
		mk("1_1"),
		mk("1_2", "1_1"),
		mk("2", "1"),
	}
	Resolve(tasks)

	if !sameIDs(tasks[3].Dependencies, []string{"1"}) {
		t.Errorf("input task mutated: deps = %v", tasks[3].Dependencies)
	}
}

func TestResolveDeduplicatesFanOut(t *testing.T) {
	// Both "1" and "1_2" sink/point to 1_2; the resulting set must not
	// contain duplicates.
	tasks := []task.Task{
		mk("1"),
		mk("1_1"),
		mk("1_2", "1_1"),
		mk("2", "1", "1_2"),
	}
	resolved := Resolve(tasks)

	got := depsOf(resolved, "2")
	if !sameIDs(got, []string{"1_2"}) {
		t.Errorf("task 2 deps = %v, want [1_2]", got)
	}
}

func TestAtomicTasksDropsDecomposed(t *testing.T) {
	tasks := []task.Task{
		mk("1"),
		mk("1_1"),
		mk("1_2", "1_1"),
		mk("2"),
	}
	atomic := AtomicTasks(tasks)

	ids := make(map[string]bool)
	for _, at := range atomic {
		ids[at.ID] = true
	}
	if ids["1"] {
		t.Error("decomposed task 1 survived")
	}
	for _, want := range []string{"1_1", "1_2", "2"} {
		if !ids[want] {
			t.Errorf("atomic task %s missing", want)
		}
	}
}
