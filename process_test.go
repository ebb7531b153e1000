//go:build unix

package lifecycle_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/lifecycle"
)

func newProcessCoordinator(t *testing.T, opts ...lifecycle.Option) *lifecycle.Coordinator[any, any] {
	t.Helper()
	c, err := lifecycle.New[any, any](nil, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestRunChildProcess_ExitStatus(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		exitCode int
		signal   string
		failed   bool
	}{
		{name: "success", args: []string{"-c", "exit 0"}, exitCode: 0},
		{name: "exit 7", args: []string{"-c", "exit 7"}, exitCode: 7, failed: true},
		{name: "killed", args: []string{"-c", "kill -KILL $$"}, exitCode: -1, signal: "SIGKILL", failed: true},
	}

	c := newProcessCoordinator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := c.RunChildProcess(context.Background(), "sh", tt.args...)
			require.NoError(t, err)
			require.NotNil(t, h)

			r, err := h.JoinTimeout(5 * time.Second)
			require.NoError(t, err)
			require.Equal(t, tt.exitCode, r.ExitCode())
			require.Equal(t, tt.signal, r.Signal())
			require.Equal(t, tt.failed, r.Failed())
			require.Positive(t, r.PID())
			require.Equal(t, h.ID(), r.WorkerID())
			if tt.failed {
				require.ErrorIs(t, r.Err(), lifecycle.ErrProcessFailed)
				require.Equal(t, lifecycle.StatusFailed, r.Status())
			} else {
				require.NoError(t, r.Err())
			}

			_, err = h.Join()
			require.ErrorIs(t, err, lifecycle.ErrInvalidHandle)
		})
	}
}

func TestRunChildProcess_MissingExecutable(t *testing.T) {
	c := newProcessCoordinator(t)

	h, err := c.RunChildProcess(context.Background(), "/nonexistent/lifecycle-test-binary")
	require.ErrorIs(t, err, lifecycle.ErrSpawnFailure)
	require.Nil(t, h)
	require.Equal(t, 0, c.Outstanding())
}

func TestRunChildProcess_OutputDirAndEnv(t *testing.T) {
	var stdout bytes.Buffer
	dir := t.TempDir()
	c := newProcessCoordinator(t,
		lifecycle.WithProcessOutput(&stdout, nil),
		lifecycle.WithProcessEnv("LIFECYCLE_TEST_VALUE=forty-two"),
		lifecycle.WithProcessDir(dir),
	)

	h, err := c.RunChildProcess(context.Background(), "sh", "-c", `printf '%s %s' "$LIFECYCLE_TEST_VALUE" "$(pwd -P)"`)
	require.NoError(t, err)
	r, err := h.JoinTimeout(5 * time.Second)
	require.NoError(t, err)
	require.False(t, r.Failed(), r.Reason())
	require.Contains(t, stdout.String(), "forty-two ")
	require.Contains(t, stdout.String(), filepath.Base(dir))
}

func TestRunChildProcess_IDsIndependentOfWorkers(t *testing.T) {
	c, err := lifecycle.New[int, int](double)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	first, err := c.RunChildProcess(context.Background(), "true")
	require.NoError(t, err)

	workers, err := c.SpawnAll(context.Background(), []int{5, 6})
	require.NoError(t, err)

	procs := []*lifecycle.Handle[lifecycle.ProcessResult]{first}
	for range 2 {
		h, err := c.RunChildProcess(context.Background(), "sh", "-c", "exit 0")
		require.NoError(t, err)
		procs = append(procs, h)
	}

	results, err := c.JoinAll(context.Background(), workers, lifecycle.SpawnOrder)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, ids(results))

	outcomes, err := lifecycle.JoinAll(context.Background(), procs, lifecycle.SpawnOrder)
	require.NoError(t, err)
	for i, o := range outcomes {
		require.Equal(t, i, o.WorkerID())
		require.False(t, o.Failed())
	}
}

func TestRunChildProcess_ConcurrentChildrenShareBuffer(t *testing.T) {
	var out bytes.Buffer
	c := newProcessCoordinator(t, lifecycle.WithProcessOutput(&out, &out))

	const children = 8
	handles := make([]*lifecycle.Handle[lifecycle.ProcessResult], children)
	for i := range handles {
		var err error
		handles[i], err = c.RunChildProcess(context.Background(), "sh", "-c", "echo out; echo err >&2")
		require.NoError(t, err)
	}

	results, err := lifecycle.JoinAll(context.Background(), handles, lifecycle.CompletionOrder)
	require.NoError(t, err)
	require.Len(t, results, children)
	for _, r := range results {
		require.False(t, r.Failed(), r.Reason())
	}
	require.Equal(t, children, strings.Count(out.String(), "out\n"))
	require.Equal(t, children, strings.Count(out.String(), "err\n"))
}

func TestSpawnSelf_ChildExitStatus(t *testing.T) {
	c := newProcessCoordinator(t)

	out, err := c.SpawnSelf(context.Background(), roleExitWith, "5")
	require.NoError(t, err)
	parent, ok := out.(lifecycle.Parent)
	require.True(t, ok, "test process must take the parent continuation, got %T", out)

	r, err := parent.Handle.JoinTimeout(10 * time.Second)
	require.NoError(t, err)
	require.Equal(t, 5, r.ExitCode())
	require.True(t, r.Failed())
}

func TestSpawnSelf_RequiresRole(t *testing.T) {
	c := newProcessCoordinator(t)
	_, err := c.SpawnSelf(context.Background(), "")
	require.ErrorIs(t, err, lifecycle.ErrInvalidConfig)
}

func TestChildRole_ConsumesMarker(t *testing.T) {
	t.Setenv(lifecycle.RoleEnv, "reader")

	child, ok := lifecycle.ChildRole()
	require.True(t, ok)
	require.Equal(t, "reader", child.Role)

	_, ok = lifecycle.ChildRole()
	require.False(t, ok)
}

func TestSpawnSelf_ReturnsChildForMatchingRole(t *testing.T) {
	t.Setenv(lifecycle.RoleEnv, "reader")
	c := newProcessCoordinator(t)

	out, err := c.SpawnSelf(context.Background(), "reader", "ignored")
	require.NoError(t, err)
	child, ok := out.(lifecycle.Child)
	require.True(t, ok)
	require.Equal(t, "reader", child.Role)
	require.Equal(t, 0, c.Outstanding())
}
