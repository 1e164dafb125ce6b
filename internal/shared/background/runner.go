// Package background runs fire-and-forget tasks that outlive the request that started them.
package background

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Runner starts tasks on their own goroutines and tracks them for shutdown.
type Runner struct {
	wg sync.WaitGroup
}

// NewRunner creates a Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Go runs fn in the background. fn receives a context that keeps ctx's values
// but is not canceled when ctx is. A panic in fn is logged and swallowed.
func (r *Runner) Go(ctx context.Context, name string, fn func(ctx context.Context)) {
	taskCtx := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				slog.Error("background task panicked", "task", name, "panic", fmt.Sprint(p))
			}
		}()
		slog.Info("background task started", "task", name)
		fn(taskCtx)
		slog.Info("background task finished", "task", name, "duration", time.Since(start))
	}()
}

// Wait blocks until every started task has returned or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
