// Package task defines the shared task graph model used by the resolver,
// stage scheduler, layout engine, and execution runner.
//
// Tasks carry hierarchical string IDs that encode the decomposition tree:
// the synthetic root is "0", its children are bare positive integers
// ("1", "2", ...), and children of any task P are P_1, P_2, and so on.
// The ID of a task's parent is always a strict prefix of its own ID under
// the "_" join rule. IDs are never reused or renumbered.
//
// The core type is [Task]. A task with children (by ID) is non-atomic and
// is never executed directly; only atomic tasks run. The [Tree] type builds
// an explicit parent/children index over a task list so that subtree
// queries do not re-derive prefix relationships with string operations on
// every comparison.
package task
