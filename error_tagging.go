package lifecycle

import (
	"errors"
	"fmt"
)

// WorkerMetaError exposes correlation metadata for a worker failure.
type WorkerMetaError interface {
	error
	Unwrap() error
	WorkerID() int
	WorkerIndex() int
}

type workerTaggedError struct {
	err   error
	id    int
	index int
}

// newWorkerTaggedError attaches the worker id and its position in the spawn batch to err.
// It returns nil for a nil err and leaves already tagged errors untouched.
func newWorkerTaggedError(err error, id, index int) error {
	if err == nil {
		return nil
	}
	var tagged WorkerMetaError
	if errors.As(err, &tagged) {
		return err
	}
	return &workerTaggedError{err: err, id: id, index: index}
}

func (e *workerTaggedError) Error() string    { return e.err.Error() }
func (e *workerTaggedError) Unwrap() error    { return e.err }
func (e *workerTaggedError) WorkerID() int    { return e.id }
func (e *workerTaggedError) WorkerIndex() int { return e.index }

func (e *workerTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "worker(id=%d,index=%d): %+v", e.id, e.index, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractWorkerID returns the worker ID from err if present.
func ExtractWorkerID(err error) (int, bool) {
	var wme WorkerMetaError
	if errors.As(err, &wme) {
		return wme.WorkerID(), true
	}
	return 0, false
}

// ExtractWorkerIndex returns the index of the worker within its spawn batch if present.
func ExtractWorkerIndex(err error) (int, bool) {
	var wme WorkerMetaError
	if errors.As(err, &wme) {
		return wme.WorkerIndex(), true
	}
	return 0, false
}
