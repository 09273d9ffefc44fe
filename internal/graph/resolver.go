// Package graph rewrites task dependency edges so that no edge points at a
// decomposed (non-atomic) task.
//
// The planner only emits sibling dependencies, but the task tree grows by
// decomposition: a dependency on task P goes stale the moment P acquires
// children, because P itself never executes. Resolve redirects every such
// edge to the terminal leaves of P's subtree, meaning the tasks no other member
// of that subtree depends on. This is called sinking.
package graph

import (
	"github.com/maars-dev/maars/internal/task"
)

// ResolveReport carries diagnostics from a resolve pass. Dangling entries
// are dependency IDs that reference no task in the input; they are left in
// place for the stage scheduler's defensive handling rather than dropped
// silently.
type ResolveReport struct {
	// Sunk maps a rewritten dependency ID to the leaf IDs it fanned out to.
	Sunk map[string][]string

	// Dangling lists dependency IDs not present in the input, in the order
	// first encountered.
	Dangling []string
}

// Resolve returns a copy of tasks with every dependency on a decomposed
// task redirected to that task's subtree leaves. The input is never
// mutated. Dependencies on atomic tasks, dangling dependencies, and
// intra-subtree references (a task depending on its own ancestor) pass
// through unchanged.
func Resolve(tasks []task.Task) []task.Task {
	resolved, _ := ResolveWithReport(tasks)
	return resolved
}

// ResolveWithReport is Resolve plus a diagnostic report.
func ResolveWithReport(tasks []task.Task) ([]task.Task, ResolveReport) {
	report := ResolveReport{Sunk: make(map[string][]string)}
	if len(tasks) == 0 {
		return nil, report
	}

	// All subtree lookups use the original, un-rewritten tree so that
	// every dependency is sunk exactly once.
	tree := task.NewTree(tasks)
	seenDangling := make(map[string]bool)

	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		cp := t.Clone()
		if len(cp.Dependencies) == 0 {
			out = append(out, cp)
			continue
		}

		sunk := make([]string, 0, len(cp.Dependencies))
		seen := make(map[string]bool, len(cp.Dependencies))
		add := func(id string) {
			if id != cp.ID && !seen[id] {
				seen[id] = true
				sunk = append(sunk, id)
			}
		}

		for _, depID := range cp.Dependencies {
			if depID == "" || depID == cp.ID {
				continue
			}
			if !tree.Contains(depID) && depID != task.RootID {
				if !seenDangling[depID] {
					seenDangling[depID] = true
					report.Dangling = append(report.Dangling, depID)
				}
				add(depID)
				continue
			}
			// A task inside the dependency's subtree references its own
			// ancestor directly; that edge is not a lateral dependency.
			if task.InSubtree(cp.ID, depID) {
				add(depID)
				continue
			}
			leaves := subtreeLeaves(tree, depID)
			if len(leaves) == 0 {
				add(depID)
				continue
			}
			for _, leaf := range leaves {
				add(leaf)
			}
			report.Sunk[depID] = leaves
		}
		cp.Dependencies = sunk
		out = append(out, cp)
	}
	return out, report
}

// AtomicTasks returns a copy of tasks with decomposed tasks removed.
// Only atomic tasks execute; after Resolve no surviving edge points at
// a removed task.
func AtomicTasks(tasks []task.Task) []task.Task {
	tree := task.NewTree(tasks)
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if tree.HasChildren(t.ID) {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

// subtreeLeaves returns the terminal tasks of parentID's subtree: members
// that no other member of the same subtree depends on. An atomic task has
// no subtree, so the result is empty and the caller keeps the edge as-is.
//
// A terminal member that is itself decomposed sinks further into its own
// subtree, so the result only ever names atomic tasks.
func subtreeLeaves(tree *task.Tree, parentID string) []string {
	members := tree.SubtreeMembers(parentID)
	if len(members) == 0 {
		return nil
	}

	dependedOn := make(map[string]bool)
	for _, id := range members {
		member, ok := tree.Get(id)
		if !ok {
			continue
		}
		for _, depID := range member.Dependencies {
			if task.InSubtree(depID, parentID) {
				dependedOn[depID] = true
			}
		}
	}

	var leaves []string
	seen := make(map[string]bool)
	for _, id := range members {
		if dependedOn[id] {
			continue
		}
		if tree.HasChildren(id) {
			for _, leaf := range subtreeLeaves(tree, id) {
				if !seen[leaf] {
					seen[leaf] = true
					leaves = append(leaves, leaf)
				}
			}
			continue
		}
		if !seen[id] {
			seen[id] = true
			leaves = append(leaves, id)
		}
	}
	return leaves
}
