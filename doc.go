// Package lifecycle spawns concurrent workers, as goroutines or as child processes,
// and hands their outcomes back to the caller through single-use handles.
//
// Building blocks
//   - Worker[T, R]: a function computing R from an immutable input T. Workers share
//     no mutable state; the only way out is the return value.
//   - WorkResult[R]: the immutable outcome of one worker (ID, value, status, reason).
//   - Handle[O]: an owned reference to a launched worker (O = WorkResult[R]) or child
//     process (O = ProcessResult). Join blocks until termination and consumes the
//     handle; a second Join fails with ErrInvalidHandle.
//   - Coordinator[T, R]: launches workers (SpawnAll), child processes (RunChildProcess)
//     and re-executions of the current binary (SpawnSelf), and joins handles (JoinAll).
//
// Ordering
//   - SpawnOrder: result i belongs to handle i, whatever the completion timing.
//   - CompletionOrder: results come in the order their joins returned.
//
// Failures
//   - A worker that returns an error, panics or calls runtime.Goexit yields a
//     WorkResult with StatusFailed. A child process exiting non-zero or killed by a
//     signal yields a ProcessResult with StatusFailed. Neither aborts other joins.
//   - A rejected spawn (pool exhausted, closed coordinator, unstartable process)
//     returns ErrSpawnFailure and no handles.
//   - Joining a nil, foreign or consumed handle returns ErrInvalidHandle.
//
// Defaults
// Unless overridden, a new Coordinator uses:
//   - an unbounded (dynamic) execution pool; WithMaxOutstanding selects a fixed one
//   - concurrent joins; WithSequentialJoin awaits handles one at a time
//   - zerolog.Nop() logging and no-op metrics
//   - 3 start retries with 10ms initial backoff for transient process start errors
package lifecycle
