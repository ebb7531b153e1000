package lifecycle

import "context"

// Run executes w once per input on a new Coordinator configured by opts and
// returns every result. It owns the lifecycle: New, SpawnAll, JoinAll, Close.
//
// Semantics:
// - Results follow order (see JoinAll). Failed workers are reported inside their results.
// - The returned error is non-nil only when spawning was rejected (ErrSpawnFailure),
//   the configuration was invalid, or ctx ended before every join (ErrJoinTimeout).
//   After a join timeout the results are not positional; see JoinAll.
// - Run waits for all workers to terminate before returning, even after a join timeout.
func Run[T, R any](ctx context.Context, w Worker[T, R], inputs []T, order Order, opts ...Option) ([]WorkResult[R], error) {
	c, err := New(w, opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	handles, err := c.SpawnAll(ctx, inputs)
	if err != nil {
		return nil, err
	}
	return c.JoinAll(ctx, handles, order)
}
