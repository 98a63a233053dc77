// Package executor defines the contract between the graph and the background
// machinery that runs asynchronous nodes.
//
// The graph only needs three capabilities: submit a task, poll whether its
// result is ready, and retrieve the result (blocking). Everything else, such
// as how many tasks may run at once, belongs to the implementation. The
// reference implementation lives in internal/localexecutor.
package executor

import "context"

// Task is a unit of background work. Arguments are bound by the submitter
// before the call, so a task never touches the graph's scope.
type Task func(ctx context.Context) (any, error)

// Handle tracks one submitted Task.
type Handle interface {
	// IsReady reports whether the task has finished, successfully or not.
	IsReady() bool
	// Get blocks until the task has finished or ctx is done and returns the
	// task's result. Calling Get more than once returns the same result.
	Get(ctx context.Context) (any, error)
}

// Executor accepts tasks for background execution.
type Executor interface {
	// Submit schedules task and returns its handle. Implementations may
	// block until capacity is available; they must honour ctx while doing so.
	Submit(ctx context.Context, task Task) (Handle, error)
}
