package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ygrebnov/lifecycle"
)

// Exit codes of the lifecycle command.
const (
	ExitSuccess       = 0   // Every worker or process completed normally.
	ExitErrorGeneric  = 1   // Spawning failed or another error occurred.
	ExitErrorTimeout  = 2   // Joining did not finish within the join timeout.
	ExitWorkersFailed = 3   // At least one worker or process terminated abnormally.
	ExitErrorConfig   = 4   // Invalid flags or configuration.
	ExitErrorCanceled = 130 // Interrupted.
)

// ErrWorkersFailed reports that at least one joined outcome has StatusFailed.
var ErrWorkersFailed = errors.New("one or more workers failed")

// ExitError makes the command exit with Code without printing anything.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, ErrWorkersFailed):
		return ExitWorkersFailed
	case errors.Is(err, lifecycle.ErrInvalidConfig):
		return ExitErrorConfig
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.Is(err, lifecycle.ErrJoinTimeout):
		return ExitErrorTimeout
	default:
		return ExitErrorGeneric
	}
}

// silent reports whether err should reach the user only through the exit status.
func silent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) || errors.Is(err, ErrWorkersFailed)
}

func failedCount[O interface{ Failed() bool }](outcomes []O) int {
	n := 0
	for _, o := range outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}
