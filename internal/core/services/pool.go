package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// WorkerPool bounds the number of provider calls in flight.
// Every embedding and generation call made by the pipeline goes through one
// pool so the call timeout is applied in a single place.
type WorkerPool struct {
	sem     *semaphore.Weighted
	size    int
	timeout time.Duration
}

// NewWorkerPool creates a pool running at most size calls at once.
// A zero timeout leaves calls bounded only by the caller's context.
func NewWorkerPool(size int, timeout time.Duration) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		sem:     semaphore.NewWeighted(int64(size)),
		size:    size,
		timeout: timeout,
	}
}

// Size returns the concurrency bound.
func (p *WorkerPool) Size() int {
	return p.size
}

// Future is the pending result of a submitted call.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Wait blocks until the call finishes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit schedules fn on the pool and returns immediately.
// The slot is acquired inside the goroutine, so Submit never blocks.
func Submit[T any](ctx context.Context, p *WorkerPool, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = run(ctx, p, fn)
	}()
	return f
}

// Do runs fn on the pool and waits for the result.
func Do[T any](ctx context.Context, p *WorkerPool, fn func(context.Context) (T, error)) (T, error) {
	return run(ctx, p, fn)
}

func run[T any](ctx context.Context, p *WorkerPool, fn func(context.Context) (T, error)) (val T, err error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return val, err
	}
	defer p.sem.Release(1)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	return fn(ctx)
}
