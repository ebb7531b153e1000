package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestHandle_InvalidHandles(t *testing.T) {
	var nilHandle *Handle[int]
	if _, err := nilHandle.Join(); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("nil handle: expected ErrInvalidHandle, got %v", err)
	}
	if id := nilHandle.ID(); id != -1 {
		t.Fatalf("nil handle ID = %d; want -1", id)
	}

	var zero Handle[int]
	if _, err := zero.JoinTimeout(time.Millisecond); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("zero handle: expected ErrInvalidHandle, got %v", err)
	}
}

func TestHandle_JoinConsumesOnce(t *testing.T) {
	joined := 0
	h := newHandle[int](7, func() { joined++ })
	h.complete(42)

	v, err := h.Join()
	if err != nil || v != 42 {
		t.Fatalf("first join = (%d, %v); want (42, nil)", v, err)
	}
	if _, err := h.Join(); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("second join: expected ErrInvalidHandle, got %v", err)
	}
	if joined != 1 {
		t.Fatalf("onJoin called %d times; want 1", joined)
	}
	if err := h.joinable(); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("consumed handle reported joinable")
	}
}

func TestHandle_DoneWinsOverExpiredContext(t *testing.T) {
	h := newHandle[string](0, nil)
	h.complete("done")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, err := h.JoinContext(ctx)
	if err != nil || v != "done" {
		t.Fatalf("JoinContext = (%q, %v); want (\"done\", nil)", v, err)
	}
}

func TestHandle_TimeoutKeepsHandleJoinable(t *testing.T) {
	h := newHandle[int](3, nil)

	_, err := h.JoinTimeout(10 * time.Millisecond)
	if !errors.Is(err, ErrJoinTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected ErrJoinTimeout wrapping DeadlineExceeded, got %v", err)
	}
	if err := h.joinable(); err != nil {
		t.Fatalf("handle not joinable after timeout: %v", err)
	}

	go h.complete(5)
	if v, err := h.Join(); err != nil || v != 5 {
		t.Fatalf("join after timeout = (%d, %v); want (5, nil)", v, err)
	}
}

func TestHandle_ConcurrentJoinsOnlyOneWins(t *testing.T) {
	h := newHandle[int](0, nil)

	const joiners = 8
	errs := make(chan error, joiners)
	var ready, wg sync.WaitGroup
	ready.Add(joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ready.Done()
			_, err := h.Join()
			errs <- err
		}()
	}
	ready.Wait()
	time.Sleep(10 * time.Millisecond)
	h.complete(1)
	wg.Wait()
	close(errs)

	var ok, invalid int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidHandle):
			invalid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || invalid != joiners-1 {
		t.Fatalf("ok=%d invalid=%d; want 1 and %d", ok, invalid, joiners-1)
	}
}
