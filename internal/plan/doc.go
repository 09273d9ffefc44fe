// Package plan persists plan and run-state JSON files and watches the
// plan file for live changes.
//
// Two documents live in the data directory: plan.json, the raw task tree
// written by the planner, and execution.json, the staged task list whose
// statuses the runner updates throughout a run. Writes are atomic
// (temp file + rename) and guarded by a flock(2) lock for cross-process
// safety. A persistence failure never aborts a run; callers log it and
// move on.
package plan
