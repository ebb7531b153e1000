//go:build unix

package cli

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExec_ExitStatus(t *testing.T) {
	code, stdout, _ := execute(t, "exec", "--count", "2", "--", "sh", "-c", "exit 7")
	require.Equal(t, ExitWorkersFailed, code)
	got := lines(stdout)
	require.Len(t, got, 2)
	for _, l := range got {
		require.Contains(t, l, "exit status 7")
	}
}

func TestExec_ForwardsOutput(t *testing.T) {
	code, stdout, _ := execute(t, "exec", "sh", "-c", "echo hello from child")
	require.Equal(t, ExitSuccess, code)
	require.Contains(t, stdout, "hello from child")
	require.Contains(t, stdout, "Worker 0: exit status 0")
}

func TestExec_ConcurrentChildrenWriteOneStream(t *testing.T) {
	code, stdout, stderr := execute(t, "exec", "--count", "4", "--", "sh", "-c", "echo hello; echo oops >&2")
	require.Equal(t, ExitSuccess, code, stderr)
	require.Equal(t, 4, strings.Count(stdout, "hello\n"))
	require.Equal(t, 4, strings.Count(stderr, "oops\n"))
	for i := range 4 {
		require.Contains(t, stdout, fmt.Sprintf("Worker %d: exit status 0", i))
	}
}

func TestExec_MissingExecutable(t *testing.T) {
	code, stdout, stderr := execute(t, "exec", "/nonexistent/lifecycle-child")
	require.Equal(t, ExitErrorGeneric, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "cannot create execution context")
}

func TestFork_ParentJoinsChild(t *testing.T) {
	code, stdout, stderr := execute(t, "fork", "--child-exit", "3")
	require.Equal(t, ExitWorkersFailed, code, stderr)
	require.Contains(t, stdout, `child: running as "fork-child"`)

	parent := stdout[strings.Index(stdout, "parent:"):]
	require.Contains(t, parent, "exit status 3")
}

func TestFork_ChildSucceeds(t *testing.T) {
	code, stdout, stderr := execute(t, "fork")
	require.Equal(t, ExitSuccess, code, stderr)
	require.Contains(t, stdout, "child: running as")
	require.Contains(t, stdout, "exit status 0")
}
