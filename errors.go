package lifecycle

import "errors"

const Namespace = "lifecycle"

var (
	ErrSpawnFailure   = errors.New(Namespace + ": cannot create execution context")
	ErrInvalidHandle  = errors.New(Namespace + ": handle is invalid or already joined")
	ErrJoinTimeout    = errors.New(Namespace + ": join timed out before the worker terminated")
	ErrWorkerPanicked = errors.New(Namespace + ": worker panicked")
	ErrWorkerExited   = errors.New(Namespace + ": worker exited without returning")
	ErrProcessFailed  = errors.New(Namespace + ": child process terminated abnormally")
	ErrInvalidConfig  = errors.New(Namespace + ": invalid configuration")
)
