package lifecycle

import (
	"errors"
	"fmt"
	"testing"
)

func TestWorkerTaggedError(t *testing.T) {
	base := errors.New("disk full")
	err := newWorkerTaggedError(base, 12, 3)

	if !errors.Is(err, base) {
		t.Fatalf("tagged error does not unwrap to base")
	}
	if id, ok := ExtractWorkerID(err); !ok || id != 12 {
		t.Fatalf("ExtractWorkerID = (%d, %v); want (12, true)", id, ok)
	}
	if idx, ok := ExtractWorkerIndex(fmt.Errorf("wrapped: %w", err)); !ok || idx != 3 {
		t.Fatalf("ExtractWorkerIndex through wrap = (%d, %v); want (3, true)", idx, ok)
	}
	if got := fmt.Sprintf("%v", err); got != "disk full" {
		t.Fatalf("%%v = %q", got)
	}
	if got := fmt.Sprintf("%+v", err); got != "worker(id=12,index=3): disk full" {
		t.Fatalf("%%+v = %q", got)
	}

	if again := newWorkerTaggedError(err, 99, 9); again != err {
		t.Fatalf("already tagged error was re-tagged")
	}
	if newWorkerTaggedError(nil, 1, 1) != nil {
		t.Fatalf("nil error must stay nil")
	}
	if _, ok := ExtractWorkerID(base); ok {
		t.Fatalf("untagged error reported a worker id")
	}
}
