// Package tasks runs named background jobs. It replaces fire-and-forget
// goroutines with an explicit handle: Submit returns immediately and the
// caller may optionally Wait for completion (blocking mode). Failures of
// unawaited tasks surface only through the runner's logger.
package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Task is a handle to one submitted job.
type Task struct {
	ID   string
	Name string

	done chan struct{}
	err  error
}

// Wait blocks until the task finishes or ctx is done, returning the
// task's error.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return t.err
	}
}

// Err returns the task's error. Only valid after Wait (or Shutdown) has
// observed completion.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Runner dispatches background tasks. The zero value is not usable; use
// NewRunner.
type Runner struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewRunner creates a Runner logging through logger. A nil logger falls
// back to slog.Default().
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Submit starts fn in the background and returns its handle immediately.
// The task runs on a fresh context detached from any request: the caller
// already received its acknowledgment and must not cancel the work by
// disconnecting.
func (r *Runner) Submit(name string, fn func(context.Context) error) *Task {
	t := &Task{
		ID:   uuid.New().String(),
		Name: name,
		done: make(chan struct{}),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(t.done)

		start := time.Now()
		r.logger.Info("task started", "task", t.Name, "task_id", t.ID)

		t.err = fn(context.Background())

		if t.err != nil {
			r.logger.Error("task failed", "task", t.Name, "task_id", t.ID, "error", t.err, "duration", time.Since(start))
			return
		}
		r.logger.Info("task completed", "task", t.Name, "task_id", t.ID, "duration", time.Since(start))
	}()

	return t
}

// Shutdown waits for all in-flight tasks to finish or for ctx to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
