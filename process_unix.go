//go:build unix

package lifecycle

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// isTransientStartError reports whether a failed process start may succeed when retried.
func isTransientStartError(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.ENOMEM) || errors.Is(err, unix.EINTR)
}

// exitSignal returns the name of the signal that terminated the process, if any.
func exitSignal(state *os.ProcessState) (string, bool) {
	if state == nil {
		return "", false
	}
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return "", false
	}
	if name := unix.SignalName(ws.Signal()); name != "" {
		return name, true
	}
	return ws.Signal().String(), true
}
