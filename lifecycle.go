package lifecycle

import "sync"

// lifecycleCoordinator encapsulates the shutdown sequence of a Coordinator.
// It doesn't own any execution context; it orchestrates admission stop,
// waiting and reporting in a deterministic order.
//
// Close() is safe for concurrent calls; the sequence executes exactly once.
type lifecycleCoordinator struct {
	stopAdmission   func()
	inflight        *sync.WaitGroup
	reportAbandoned func()

	once sync.Once
}

func newLifecycleCoordinator(
	stopAdmission func(),
	inflight *sync.WaitGroup,
	reportAbandoned func(),
) *lifecycleCoordinator {
	return &lifecycleCoordinator{
		stopAdmission:   stopAdmission,
		inflight:        inflight,
		reportAbandoned: reportAbandoned,
	}
}

// Close executes the shutdown sequence exactly once:
// 1) stop admitting new workers and processes
// 2) wait until every launched execution context has terminated
// 3) report handles that were never joined
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		if lc.stopAdmission != nil {
			lc.stopAdmission()
		}
		if lc.inflight != nil {
			lc.inflight.Wait()
		}
		if lc.reportAbandoned != nil {
			lc.reportAbandoned()
		}
	})
}
