// Package localexecutor provides a concrete, in-process implementation of the
// executor.Executor interface with a single concurrent slot: a second task
// cannot start while one is still running.
package localexecutor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/pumpgrid/internal/ctxlog"
	"github.com/specialistvlad/pumpgrid/internal/executor"
	"golang.org/x/sync/semaphore"
)

// Executor runs tasks on background goroutines, one at a time.
type Executor struct {
	slots *semaphore.Weighted
}

// New creates a new single-slot local executor.
func New() *Executor {
	return &Executor{slots: semaphore.NewWeighted(1)}
}

// Submit waits for the slot, then starts task on its own goroutine. The slot
// is released as soon as the task returns, whether or not anyone has
// collected the result yet.
func (e *Executor) Submit(ctx context.Context, task executor.Task) (executor.Handle, error) {
	if task == nil {
		return nil, fmt.Errorf("localexecutor: nil task")
	}
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("localexecutor: waiting for slot: %w", err)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Background task submitted.")

	h := &handle{done: make(chan struct{})}
	// The task outlives the submitting call; it only inherits ctx values.
	taskCtx := context.WithoutCancel(ctx)
	go func() {
		defer e.slots.Release(1)
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				h.err = fmt.Errorf("panic: %v", r)
			}
		}()
		h.value, h.err = task(taskCtx)
	}()
	return h, nil
}

// handle is the executor.Handle for a task started by Executor.
type handle struct {
	done  chan struct{}
	value any
	err   error
}

func (h *handle) IsReady() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *handle) Get(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
