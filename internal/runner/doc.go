// Package runner drives the execution of a resolved task plan.
//
// A Runner owns two fixed-size worker pools (executors and validators)
// and a scheduling loop that moves each task through the status machine
// undone -> doing -> validating -> done, with retry-capped failure
// branches to execution-failed and validation-failed. The loop never
// blocks on a single task: slot assignment is non-blocking, and tasks
// that cannot acquire a slot simply wait for a later pass.
//
// Status changes are published to an event bus and snapshotted to a
// Persister on every mutation. Both are best-effort: a slow subscriber
// or a failed write never stalls the run.
package runner
