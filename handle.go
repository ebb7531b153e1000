package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/errorc"
)

// handle states
const (
	handleIdle int32 = iota
	handleJoining
	handleConsumed
)

// Handle is a single-use reference to a launched worker or child process.
//
// The outcome type O is WorkResult[R] for goroutine workers (see Coordinator.SpawnAll)
// and ProcessResult for child processes (see Coordinator.RunChildProcess).
//
// Join is the only way to observe that the execution context has terminated.
// A successful join consumes the handle: every later join fails with ErrInvalidHandle.
// Abnormal termination of the worker is reported inside the outcome, never as a join error.
type Handle[O any] struct {
	id      int
	done    chan struct{}
	outcome O
	state   atomic.Int32

	// onJoin is called once, after the outcome has been handed to the caller.
	onJoin func()
}

func newHandle[O any](id int, onJoin func()) *Handle[O] {
	return &Handle[O]{id: id, done: make(chan struct{}), onJoin: onJoin}
}

// complete publishes the outcome. It must be called exactly once per handle.
func (h *Handle[O]) complete(o O) {
	h.outcome = o
	close(h.done)
}

// ID returns the worker identifier assigned at spawn time.
func (h *Handle[O]) ID() int {
	if h == nil {
		return -1
	}
	return h.id
}

// Join blocks until the underlying worker terminates and returns its outcome.
func (h *Handle[O]) Join() (O, error) {
	return h.JoinContext(context.Background())
}

// JoinTimeout is like Join but gives up after d with ErrJoinTimeout.
// A timed out handle is not consumed and may be joined again.
func (h *Handle[O]) JoinTimeout(d time.Duration) (O, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return h.JoinContext(ctx)
}

// JoinContext is like Join but stops waiting when ctx is done, returning an error
// that wraps both ErrJoinTimeout and ctx.Err(). The handle then stays joinable.
//
// Concurrent joins of the same handle are a programming error: only one of them
// proceeds, the others fail with ErrInvalidHandle.
func (h *Handle[O]) JoinContext(ctx context.Context) (O, error) {
	var zero O

	if err := h.validate(); err != nil {
		return zero, err
	}
	if !h.state.CompareAndSwap(handleIdle, handleJoining) {
		return zero, h.consumedError()
	}

	// An already terminated worker wins over an already expired ctx.
	select {
	case <-h.done:
		return h.consume(), nil
	default:
	}

	select {
	case <-h.done:
		return h.consume(), nil
	case <-ctx.Done():
		h.state.Store(handleIdle)
		return zero, fmt.Errorf("%w: worker %d: %w", ErrJoinTimeout, h.id, ctx.Err())
	}
}

func (h *Handle[O]) consume() O {
	var zero O
	o := h.outcome
	h.outcome = zero
	h.state.Store(handleConsumed)
	if h.onJoin != nil {
		h.onJoin()
	}
	return o
}

// validate reports whether h was produced by a coordinator.
func (h *Handle[O]) validate() error {
	if h == nil {
		return errorc.With(ErrInvalidHandle, errorc.String("handle", "nil"))
	}
	if h.done == nil {
		return errorc.With(ErrInvalidHandle, errorc.String("handle", "not produced by a coordinator"))
	}
	return nil
}

// joinable reports whether a join attempted now would not fail with ErrInvalidHandle.
func (h *Handle[O]) joinable() error {
	if err := h.validate(); err != nil {
		return err
	}
	if h.state.Load() != handleIdle {
		return h.consumedError()
	}
	return nil
}

func (h *Handle[O]) consumedError() error {
	return errorc.With(ErrInvalidHandle, errorc.String("worker_id", strconv.Itoa(h.id)))
}
