package task

import "sort"

// Tree is an explicit parent/children index over a task list. It is built
// once per resolve or stage pass so that subtree queries do not rely on
// repeated string-prefix scans.
//
// A Tree is immutable after construction and safe for concurrent reads.
type Tree struct {
	byID     map[string]Task
	children map[string][]string // parent ID -> direct child IDs
	ids      []string            // all task IDs in natural order
}

// NewTree builds a Tree from a task list. Tasks without an ID are skipped;
// duplicate IDs keep the first occurrence.
func NewTree(tasks []Task) *Tree {
	tr := &Tree{
		byID:     make(map[string]Task, len(tasks)),
		children: make(map[string][]string),
	}
	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		if _, ok := tr.byID[t.ID]; ok {
			continue
		}
		tr.byID[t.ID] = t
		tr.ids = append(tr.ids, t.ID)
		parent := ParentID(t.ID)
		tr.children[parent] = append(tr.children[parent], t.ID)
	}
	sort.Slice(tr.ids, func(i, j int) bool { return NaturalLess(tr.ids[i], tr.ids[j]) })
	for _, kids := range tr.children {
		sort.Slice(kids, func(i, j int) bool { return NaturalLess(kids[i], kids[j]) })
	}
	return tr
}

// Get returns the task with the given ID.
func (tr *Tree) Get(id string) (Task, bool) {
	t, ok := tr.byID[id]
	return t, ok
}

// Contains reports whether a task with the given ID exists.
func (tr *Tree) Contains(id string) bool {
	_, ok := tr.byID[id]
	return ok
}

// Len returns the number of indexed tasks.
func (tr *Tree) Len() int {
	return len(tr.ids)
}

// IDs returns all task IDs in natural order. The returned slice must not
// be modified.
func (tr *Tree) IDs() []string {
	return tr.ids
}

// Children returns the direct child IDs of the given task, in natural
// order. The returned slice must not be modified.
func (tr *Tree) Children(id string) []string {
	return tr.children[id]
}

// HasChildren reports whether the task has been decomposed, i.e. whether
// any indexed task is a direct child of it. Non-atomic tasks never execute.
func (tr *Tree) HasChildren(id string) bool {
	return len(tr.children[id]) > 0
}

// SubtreeMembers returns the IDs belonging to parentID's subtree, in
// natural order. For the root this is its direct children (the bare
// integer IDs); for any other parent it is every descendant.
func (tr *Tree) SubtreeMembers(parentID string) []string {
	if parentID == RootID {
		return tr.children[RootID]
	}
	var members []string
	var walk func(id string)
	walk = func(id string) {
		for _, child := range tr.children[id] {
			members = append(members, child)
			walk(child)
		}
	}
	walk(parentID)
	sort.Slice(members, func(i, j int) bool { return NaturalLess(members[i], members[j]) })
	return members
}
