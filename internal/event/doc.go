// Package event provides a pub-sub event bus carrying run status to
// observers.
//
// The execution runner publishes an event after every task status
// mutation, pool change, and run lifecycle transition. Observers (the
// terminal monitor, loggers, tests) subscribe without the runner knowing
// who they are. Delivery is best-effort: handlers are called
// synchronously but protected against panics, so one misbehaving
// subscriber cannot block delivery to the rest.
//
// Event types follow the "category.action" convention:
//   - task.status
//   - run.started, run.completed, run.stopped
//   - pool.state
//   - stage.warning
//   - plan.reloaded
package event
