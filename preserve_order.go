package lifecycle

// Reorderer (spawn-order join)
//
// Responsibility:
// - Consume join completions of concurrently joined handles and emit outcomes
//   strictly in handle slice order, regardless of which worker finished first.
//
// Inputs:
// - events <-chan completionEvent[O]: one event per handle, sent by the goroutine
//   that joined it. Each event carries:
//     - idx: position of the handle in the slice passed to JoinAll,
//     - id: worker ID (for observability only),
//     - val: the joined outcome (when present == true),
//     - present: false when the join itself failed (ErrJoinTimeout, ErrInvalidHandle).
// - emit func(O): sink called on the reorderer goroutine, in order.
//
// Semantics:
// - For each event, buffer val at idx (or remember idx as absent), then flush
//   from the cursor while the next index is either buffered or absent.
// - Absent indices advance the cursor without emission, so a handle whose join
//   failed does not block the ones after it.
// - On events close, flush the contiguous tail. With one event per handle the
//   tail is always complete.
//
// Concurrency contracts:
// - Single goroutine: run() is called by JoinEach on the caller goroutine.
// - The reorderer never closes events; the join goroutines' owner does.

// completionEvent represents the end of one join.
type completionEvent[O any] struct {
	idx     int
	id      int
	val     O
	present bool
}
