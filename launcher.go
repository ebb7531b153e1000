package lifecycle

import (
	"fmt"
	"sync"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/lifecycle/pool"
)

// launcher admits and starts execution contexts on behalf of a Coordinator and
// accounts for every context that is still alive, joined or not.
// Admission and Close are serialized by mu so that no inflight.Add races inflight.Wait.
type launcher struct {
	pool pool.Pool

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func newLauncher(p pool.Pool) *launcher {
	return &launcher{pool: p}
}

// admit reserves n pool slots, all or none, and accounts them as in flight.
func (l *launcher) admit(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errorc.With(ErrSpawnFailure, errorc.String("reason", "coordinator is closed"))
	}
	if !l.pool.Reserve(n) {
		return errorc.With(ErrSpawnFailure, errorc.String("reason", fmt.Sprintf("pool cannot admit %d more workers", n)))
	}
	l.inflight.Add(n)
	return nil
}

// track accounts for n execution contexts that do not run on the pool (process reapers).
func (l *launcher) track(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errorc.With(ErrSpawnFailure, errorc.String("reason", "coordinator is closed"))
	}
	l.inflight.Add(n)
	return nil
}

// untrack reverts a track for contexts that failed to start.
func (l *launcher) untrack(n int) {
	l.inflight.Add(-n)
}

// launch runs fn on one admitted pool slot.
func (l *launcher) launch(fn func()) {
	l.pool.Go(func() {
		defer l.inflight.Done()
		fn()
	})
}

// done marks one tracked context as terminated.
func (l *launcher) done() { l.inflight.Done() }

// stopAdmission makes every later admit and track fail.
func (l *launcher) stopAdmission() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}
