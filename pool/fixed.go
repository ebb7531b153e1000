package pool

import "golang.org/x/sync/semaphore"

type fixed struct {
	sem      *semaphore.Weighted
	capacity int64
}

// NewFixed returns a Pool admitting at most capacity live execution contexts.
// A slot is held from Reserve until the goroutine started by Go terminates.
func NewFixed(capacity uint) Pool {
	return &fixed{sem: semaphore.NewWeighted(int64(capacity)), capacity: int64(capacity)}
}

func (p *fixed) Reserve(n int) bool {
	if n <= 0 {
		return true
	}
	if int64(n) > p.capacity {
		return false
	}
	return p.sem.TryAcquire(int64(n))
}

func (p *fixed) Go(fn func()) {
	go func() {
		defer p.sem.Release(1)
		fn()
	}()
}

func (p *fixed) Release(n int) {
	if n > 0 {
		p.sem.Release(int64(n))
	}
}
