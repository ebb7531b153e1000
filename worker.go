package lifecycle

import (
	"context"
	"fmt"
)

// Worker computes a result of type R from an input of type T.
//
// A Worker must not write to state shared with other concurrently running workers:
// everything it needs arrives through its input, and everything it produces leaves
// through its return values. A returned error marks the worker as failed.
// Panics and runtime.Goexit are recovered and also reported as failures.
//
// Example:
//
//	double := lifecycle.WorkerValue(func(_ context.Context, in int) int { return in * 2 })
//	_ = double
type Worker[T, R any] func(context.Context, T) (R, error)

// WorkerFunc adapts func(ctx, T) (R, error) to Worker[T, R].
func WorkerFunc[T, R any](fn func(context.Context, T) (R, error)) Worker[T, R] {
	return Worker[T, R](fn)
}

// WorkerValue adapts func(ctx, T) R to Worker[T, R]. The resulting worker fails only by panicking.
func WorkerValue[T, R any](fn func(context.Context, T) R) Worker[T, R] {
	return func(ctx context.Context, in T) (R, error) { return fn(ctx, in), nil }
}

// runWorker executes w synchronously on the calling goroutine and passes exactly one
// WorkResult to publish, whatever way w terminates.
// publish is invoked from a deferred call so that it also runs when w calls runtime.Goexit.
func runWorker[T, R any](
	ctx context.Context, w Worker[T, R], id, index int, input T, publish func(WorkResult[R]),
) {
	var (
		value    R
		err      error
		returned bool
	)

	defer func() {
		if p := recover(); p != nil {
			var zero R
			publish(failedResult(id, zero, newWorkerTaggedError(fmt.Errorf("%w: %v", ErrWorkerPanicked, p), id, index)))
			return
		}
		switch {
		case !returned:
			publish(failedResult(id, value, newWorkerTaggedError(ErrWorkerExited, id, index)))
		case err != nil:
			publish(failedResult(id, value, newWorkerTaggedError(err, id, index)))
		default:
			publish(okResult(id, value))
		}
	}()

	value, err = w(ctx, input)
	returned = true
}
