package lifecycle

// reorderer enforces spawn-order emission of concurrently joined outcomes.
// See preserve_order.go for the contract.
type reorderer[O any] struct {
	events <-chan completionEvent[O]
	emit   func(O)

	next   int
	buf    map[int]O
	absent map[int]struct{}
}

func newReorderer[O any](events <-chan completionEvent[O], emit func(O)) *reorderer[O] {
	return &reorderer[O]{
		events: events,
		emit:   emit,
		buf:    make(map[int]O),
		absent: make(map[int]struct{}),
	}
}

// run consumes events until the channel is closed.
func (r *reorderer[O]) run() {
	for ev := range r.events {
		if ev.present {
			r.buf[ev.idx] = ev.val
		} else {
			r.absent[ev.idx] = struct{}{}
		}
		r.flushContiguous()
	}
	r.flushContiguous()
}

// flushContiguous emits buffered outcomes starting at the cursor and advances it.
func (r *reorderer[O]) flushContiguous() {
	for {
		if v, ok := r.buf[r.next]; ok {
			r.emit(v)
			delete(r.buf, r.next)
			r.next++
			continue
		}
		if _, ok := r.absent[r.next]; ok {
			delete(r.absent, r.next)
			r.next++
			continue
		}
		return
	}
}
