package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ygrebnov/errorc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Order selects how JoinAll orders its results.
type Order int

const (
	// SpawnOrder returns result i for handle i, regardless of completion timing.
	SpawnOrder Order = iota
	// CompletionOrder returns results in the order their joins returned.
	CompletionOrder
)

func (o Order) String() string {
	switch o {
	case SpawnOrder:
		return "spawn"
	case CompletionOrder:
		return "completion"
	default:
		return "Order(" + strconv.Itoa(int(o)) + ")"
	}
}

// ParseOrder converts "spawn" or "completion" into an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "spawn", "":
		return SpawnOrder, nil
	case "completion":
		return CompletionOrder, nil
	default:
		return 0, errorc.With(ErrInvalidConfig, errorc.String("order", s))
	}
}

type joinConfig struct {
	sequential bool
}

// JoinOption configures JoinAll and JoinEach.
type JoinOption func(*joinConfig)

// Sequentially awaits handles one after another in slice order instead of concurrently.
// Under CompletionOrder the results then come in slice order too, because that is
// the order in which the joins return.
func Sequentially() JoinOption {
	return func(jc *joinConfig) { jc.sequential = true }
}

// JoinAll joins every handle exactly once and returns one outcome per handle.
//
// Semantics:
//   - Before anything is joined, every handle is checked: a nil handle, a handle not
//     produced by a coordinator, an already joined handle or a handle listed twice
//     fails the call with ErrInvalidHandle and leaves all handles untouched.
//   - A worker that failed is reported through its outcome; it never stops the other joins.
//   - By default handles are joined concurrently, so the call takes as long as the
//     slowest worker. Sequentially() joins them one at a time.
//   - An empty slice returns an empty result immediately.
//   - If ctx is done first, JoinAll returns the outcomes joined so far together with an
//     error wrapping ErrJoinTimeout; handles that were not joined stay joinable.
//     Such a partial result is packed: it keeps the requested order but skips the
//     unjoined handles, so result[i] need not belong to handles[i] even under
//     SpawnOrder. Match outcomes to handles by WorkerID.
func JoinAll[O any](ctx context.Context, handles []*Handle[O], order Order, opts ...JoinOption) ([]O, error) {
	out := make([]O, 0, len(handles))
	err := JoinEach(ctx, handles, order, func(o O) { out = append(out, o) }, opts...)
	if err != nil && len(out) == 0 {
		return nil, err
	}
	return out, err
}

// JoinEach joins handles like JoinAll but passes every outcome to fn as soon as the
// requested order allows. fn is always called on the calling goroutine.
func JoinEach[O any](
	ctx context.Context, handles []*Handle[O], order Order, fn func(O), opts ...JoinOption,
) error {
	var jc joinConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&jc)
		}
	}

	if order != SpawnOrder && order != CompletionOrder {
		return errorc.With(ErrInvalidConfig, errorc.String("order", order.String()))
	}
	if err := validateHandles(handles); err != nil {
		return err
	}
	if len(handles) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "lifecycle.JoinAll", trace.WithAttributes(
		attribute.Int("lifecycle.handles", len(handles)),
		attribute.String("lifecycle.order", order.String()),
		attribute.Bool("lifecycle.sequential", jc.sequential),
	))
	defer span.End()

	var err error
	if jc.sequential {
		err = joinSequential(ctx, handles, fn)
	} else {
		err = joinConcurrent(ctx, handles, order, fn)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "join incomplete")
	}
	return err
}

// validateHandles rejects the batch if any handle cannot be joined right now.
func validateHandles[O any](handles []*Handle[O]) error {
	seen := make(map[*Handle[O]]int, len(handles))
	for i, h := range handles {
		if err := h.joinable(); err != nil {
			return fmt.Errorf("handle at index %d: %w", i, err)
		}
		if j, dup := seen[h]; dup {
			return fmt.Errorf("handle at index %d: %w", i,
				errorc.With(ErrInvalidHandle, errorc.String("duplicate_of", strconv.Itoa(j))))
		}
		seen[h] = i
	}
	return nil
}

func joinSequential[O any](ctx context.Context, handles []*Handle[O], fn func(O)) error {
	var errs []error
	for _, h := range handles {
		o, err := h.JoinContext(ctx)
		if err != nil {
			errs = append(errs, err)
			if errors.Is(err, ErrJoinTimeout) {
				break
			}
			continue
		}
		fn(o)
	}
	return errors.Join(errs...)
}

// joinConcurrent joins all handles at once. Completions are turned into events and
// either forwarded as they arrive or re-sequenced into spawn order by a reorderer.
func joinConcurrent[O any](ctx context.Context, handles []*Handle[O], order Order, fn func(O)) error {
	events := make(chan completionEvent[O], len(handles))

	var g errgroup.Group
	for i, h := range handles {
		g.Go(func() error {
			o, err := h.JoinContext(ctx)
			events <- completionEvent[O]{idx: i, id: h.id, val: o, present: err == nil}
			return err
		})
	}

	var waitErr error
	waited := make(chan struct{})
	go func() {
		waitErr = g.Wait()
		close(events)
		close(waited)
	}()

	if order == SpawnOrder {
		newReorderer[O](events, fn).run()
	} else {
		for ev := range events {
			if ev.present {
				fn(ev.val)
			}
		}
	}

	<-waited
	return waitErr
}
