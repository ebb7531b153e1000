package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProcessResult is the outcome of a child process started by RunChildProcess or SpawnSelf.
type ProcessResult struct {
	workerID int
	pid      int
	exitCode int
	signal   string
	status   Status
	err      error
}

// WorkerID returns the identifier assigned when the process was started.
func (r ProcessResult) WorkerID() int { return r.workerID }

// PID returns the operating system process ID.
func (r ProcessResult) PID() int { return r.pid }

// ExitCode returns the exit status, or -1 if the process was terminated by a signal.
func (r ProcessResult) ExitCode() int { return r.exitCode }

// Signal returns the name of the terminating signal ("SIGKILL"), or "".
func (r ProcessResult) Signal() string { return r.signal }

// Status is StatusOK only for a zero exit status.
func (r ProcessResult) Status() Status { return r.status }

// Failed is a shorthand for Status() == StatusFailed.
func (r ProcessResult) Failed() bool { return r.status == StatusFailed }

// Reason returns the failure reason, or "" for a successful process.
func (r ProcessResult) Reason() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

// Err returns an error wrapping ErrProcessFailed for failed processes.
func (r ProcessResult) Err() error { return r.err }

func (r ProcessResult) String() string {
	switch {
	case r.signal != "":
		return fmt.Sprintf("Worker %d: killed by %s (pid %d)", r.workerID, r.signal, r.pid)
	case r.err != nil && r.exitCode <= 0:
		return fmt.Sprintf("Worker %d: failed: %s (pid %d)", r.workerID, r.Reason(), r.pid)
	default:
		return fmt.Sprintf("Worker %d: exit status %d (pid %d)", r.workerID, r.exitCode, r.pid)
	}
}

// RunChildProcess starts name with args as a concurrently running child process and
// returns a handle whose join yields the process exit status.
//
// A process that cannot be started (missing executable, permission denied, or a
// transient resource shortage that persists across the configured retries) is
// reported as an error wrapping ErrSpawnFailure; no handle is returned.
// A process that starts and then exits non-zero or is killed is not an error:
// its joined ProcessResult has StatusFailed.
//
// ctx bounds the start retries only. The running process is never killed by the coordinator.
func (c *Coordinator[T, R]) RunChildProcess(ctx context.Context, name string, args ...string) (*Handle[ProcessResult], error) {
	return c.startProcess(ctx, name, args, nil)
}

func (c *Coordinator[T, R]) startProcess(
	ctx context.Context, name string, args []string, extraEnv []string,
) (*Handle[ProcessResult], error) {
	ctx, span := tracer.Start(ctx, "lifecycle.RunChildProcess", trace.WithAttributes(
		attribute.String("lifecycle.command", name),
	))
	defer span.End()

	if err := c.launcher.track(1); err != nil {
		return nil, c.spawnFailed(span, 1, err)
	}

	cmd, err := c.startCommand(ctx, name, args, extraEnv)
	if err != nil {
		c.launcher.untrack(1)
		return nil, c.spawnFailed(span, 1, fmt.Errorf("%w: %s: %w", ErrSpawnFailure, name, err))
	}

	id := int(c.processSeq.Add(1) - 1)
	pid := cmd.Process.Pid
	h := newHandle[ProcessResult](id, c.handleJoined)
	c.outstanding.Add(1)
	c.inst.outstanding.Add(1)
	c.inst.processes.Add(1)
	span.SetAttributes(attribute.Int("lifecycle.worker_id", id), attribute.Int("lifecycle.pid", pid))
	c.log.Debug().Int("worker_id", id).Int("pid", pid).Str("command", name).Msg("child process started")

	started := time.Now()
	go func() {
		defer c.launcher.done()
		r := processResult(id, pid, cmd.Wait())
		c.processDone(r, time.Since(started))
		h.complete(r)
	}()
	return h, nil
}

// startCommand starts a fresh exec.Cmd per attempt, retrying transient failures
// with exponential backoff.
func (c *Coordinator[T, R]) startCommand(
	ctx context.Context, name string, args []string, extraEnv []string,
) (*exec.Cmd, error) {
	var cmd *exec.Cmd
	op := func() error {
		cmd = c.command(name, args, extraEnv)
		err := cmd.Start()
		if err == nil {
			return nil
		}
		if isTransientStartError(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.StartRetryDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.config.StartRetries)), ctx)

	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		c.log.Debug().Err(err).Str("command", name).Dur("retry_in", wait).Msg("child process start failed, retrying")
	})
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

func (c *Coordinator[T, R]) command(name string, args []string, extraEnv []string) *exec.Cmd {
	cmd := exec.Command(name, args...)
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	cmd.Dir = c.config.ProcessDir
	if len(c.config.ProcessEnv) > 0 || len(extraEnv) > 0 {
		env := append(os.Environ(), c.config.ProcessEnv...)
		cmd.Env = append(env, extraEnv...)
	}
	return cmd
}

// lockedWriter serializes writes from the output copy goroutines of concurrently
// running children.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (lw lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// processOutput wraps the configured child output writers in lockedWriters sharing
// one mutex. A *os.File is handed to the child as is and needs no lock.
// Equal writers yield equal wrappers, so os/exec still shares one pipe for them.
func processOutput(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	mu := &sync.Mutex{}
	wrap := func(w io.Writer) io.Writer {
		if w == nil {
			return nil
		}
		if _, ok := w.(*os.File); ok {
			return w
		}
		return lockedWriter{mu: mu, w: w}
	}
	return wrap(stdout), wrap(stderr)
}

func (c *Coordinator[T, R]) processDone(r ProcessResult, took time.Duration) {
	if r.Failed() {
		c.inst.failed.Add(1)
		c.log.Warn().Int("worker_id", r.workerID).Int("pid", r.pid).Int("exit_code", r.exitCode).
			Str("signal", r.signal).Dur("took", took).Msg("child process failed")
		return
	}
	c.log.Debug().Int("worker_id", r.workerID).Int("pid", r.pid).Dur("took", took).Msg("child process exited")
}

// processResult converts the outcome of exec.Cmd.Wait into a ProcessResult.
func processResult(id, pid int, waitErr error) ProcessResult {
	r := ProcessResult{workerID: id, pid: pid}
	if waitErr == nil {
		r.status = StatusOK
		return r
	}

	r.status = StatusFailed
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		// The process may have exited fine but copying its output failed.
		r.exitCode = -1
		r.err = newWorkerTaggedError(fmt.Errorf("%w: %w", ErrProcessFailed, waitErr), id, 0)
		return r
	}

	r.exitCode = exitErr.ExitCode()
	if sig, ok := exitSignal(exitErr.ProcessState); ok {
		r.signal = sig
		r.err = newWorkerTaggedError(fmt.Errorf("%w: killed by %s", ErrProcessFailed, sig), id, 0)
		return r
	}
	r.err = newWorkerTaggedError(fmt.Errorf("%w: exit status %d", ErrProcessFailed, r.exitCode), id, 0)
	return r
}
