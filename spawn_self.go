package lifecycle

import (
	"context"
	"fmt"
	"os"

	"github.com/ygrebnov/errorc"
)

// RoleEnv is the environment variable that marks a process re-executed by SpawnSelf.
const RoleEnv = "LIFECYCLE_SPAWN_ROLE"

// SpawnOutcome tells which continuation of SpawnSelf the current process is running.
// It is either Parent or Child.
type SpawnOutcome interface {
	spawnOutcome()
}

// Parent is the outcome seen by the process that launched the child.
// Handle must be joined to collect the child's exit status.
type Parent struct {
	Handle *Handle[ProcessResult]
}

// Child is the outcome seen by the re-executed process.
type Child struct {
	// Role is the role passed to SpawnSelf by the parent.
	Role string
	// Args are the arguments passed to SpawnSelf by the parent.
	Args []string
}

func (Parent) spawnOutcome() {}
func (Child) spawnOutcome()  {}

// SpawnSelf re-executes the running binary as a child process playing role.
//
// In the launching process it returns Parent with a handle to the child.
// In the re-executed process, the first SpawnSelf (or ChildRole) call for the same
// role returns Child instead of launching anything, so both continuations are
// reached through the same call site:
//
//	out, err := c.SpawnSelf(ctx, "indexer", "--shard", "3")
//	switch o := out.(type) {
//	case lifecycle.Child:
//		os.Exit(runIndexer(o.Args))
//	case lifecycle.Parent:
//		res, _ := o.Handle.Join()
//		fmt.Println(res)
//	}
//
// The child must be reachable from program start up to that call site, which is
// what re-execution replays.
func (c *Coordinator[T, R]) SpawnSelf(ctx context.Context, role string, args ...string) (SpawnOutcome, error) {
	if role == "" {
		return nil, errorc.With(ErrInvalidConfig, errorc.String("", "SpawnSelf requires a role"))
	}
	if child, ok := ChildRole(); ok {
		if child.Role == role {
			return child, nil
		}
		// Not ours: leave the marker for the call site that owns this role.
		_ = os.Setenv(RoleEnv, child.Role)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: locate executable: %w", ErrSpawnFailure, err)
	}
	h, err := c.startProcess(ctx, exe, args, []string{RoleEnv + "=" + role})
	if err != nil {
		return nil, err
	}
	return Parent{Handle: h}, nil
}

// ChildRole reports whether the current process was started by SpawnSelf and,
// if so, returns its role and arguments. The marker is consumed: later calls
// return false, so that the child can launch children of its own.
func ChildRole() (Child, bool) {
	role, ok := os.LookupEnv(RoleEnv)
	if !ok || role == "" {
		return Child{}, false
	}
	_ = os.Unsetenv(RoleEnv)
	return Child{Role: role, Args: append([]string(nil), os.Args[1:]...)}, true
}
