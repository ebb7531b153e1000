package lifecycle

import "fmt"

// Status reports whether a worker or child process completed normally.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// WorkResult is the outcome of a single worker.
// It is produced exactly once, by the execution wrapper of the worker that completed,
// and is never modified afterwards. The zero value is not a valid result.
type WorkResult[R any] struct {
	workerID int
	value    R
	status   Status
	err      error
}

func okResult[R any](id int, value R) WorkResult[R] {
	return WorkResult[R]{workerID: id, value: value, status: StatusOK}
}

func failedResult[R any](id int, value R, err error) WorkResult[R] {
	return WorkResult[R]{workerID: id, value: value, status: StatusFailed, err: err}
}

// WorkerID returns the identifier assigned to the worker at spawn time.
func (r WorkResult[R]) WorkerID() int { return r.workerID }

// Value returns the value computed by the worker.
// For failed workers it is whatever the worker returned alongside its error (usually the zero value).
func (r WorkResult[R]) Value() R { return r.value }

// Status returns StatusOK or StatusFailed.
func (r WorkResult[R]) Status() Status { return r.status }

// Failed is a shorthand for Status() == StatusFailed.
func (r WorkResult[R]) Failed() bool { return r.status == StatusFailed }

// Reason returns the failure reason, or an empty string for successful workers.
func (r WorkResult[R]) Reason() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

// Err returns the failure cause. It is nil for successful workers.
// The error is tagged with worker metadata, see ExtractWorkerID.
func (r WorkResult[R]) Err() error { return r.err }

func (r WorkResult[R]) String() string {
	if r.status == StatusFailed {
		return fmt.Sprintf("Worker %d: failed: %s", r.workerID, r.Reason())
	}
	return fmt.Sprintf("Worker %d: ok: %v", r.workerID, r.value)
}
