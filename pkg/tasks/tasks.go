// Package tasks is the concurrency boundary between a caller and one unit of
// CPU-bound work: submit a function, await its single result. No partial
// results cross the boundary, and an abandoned task is simply never awaited.
package tasks

import "context"

// Result carries a task's value or error.
type Result[T any] struct {
	Value T
	Err   error
}

// Submit runs fn on its own goroutine and returns a buffered channel that
// receives exactly one Result. The channel is closed afterwards, so an
// abandoned task never leaks its goroutine.
func Submit[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go func() {
		defer close(out)
		v, err := fn(ctx)
		out <- Result[T]{Value: v, Err: err}
	}()
	return out
}

// Await blocks until the task delivers or the context is cancelled. On
// cancellation the task's eventual result is discarded by the closed-over
// channel buffer.
func Await[T any](ctx context.Context, ch <-chan Result[T]) (T, error) {
	select {
	case r := <-ch:
		return r.Value, r.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Run is the synchronous convenience: submit and await in one call.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	return Await(ctx, Submit(ctx, fn))
}
