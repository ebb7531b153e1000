//go:generate mockgen -destination=../internal/mocks/mock_pool.go -package=mocks github.com/ygrebnov/lifecycle/pool Pool

// Package pool admits and launches the execution contexts that run lifecycle workers.
package pool

// Pool is an interface that defines admission and launch of execution contexts.
// Implementations must be safe for concurrent use.
type Pool interface {
	// Reserve claims n slots at once. It returns false without claiming anything
	// when fewer than n slots are free.
	Reserve(n int) bool

	// Go runs fn in a new goroutine occupying one previously reserved slot.
	// The slot is freed when fn terminates, including via panic or runtime.Goexit.
	Go(fn func())

	// Release frees n reserved slots that will not be passed to Go.
	Release(n int)
}
