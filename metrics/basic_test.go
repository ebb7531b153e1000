package metrics

import (
	"reflect"
	"runtime"
	"sync"
	"testing"
)

func TestBasicProvider_Counter_ReusedAndAccumulates(t *testing.T) {
	p := NewBasicProvider()

	c1 := p.Counter("workers_spawned")
	c2 := p.Counter("workers_spawned")
	if reflect.ValueOf(c1).Pointer() != reflect.ValueOf(c2).Pointer() {
		t.Fatalf("expected same counter instance for same name")
	}

	c1.Add(3)
	c2.Add(2)
	if got := p.CounterValue("workers_spawned"); got != 5 {
		t.Fatalf("counter value = %d; want 5", got)
	}
	if got := p.CounterValue("never_requested"); got != 0 {
		t.Fatalf("unknown counter value = %d; want 0", got)
	}
}

func TestBasicProvider_UpDownCounter_Moves(t *testing.T) {
	p := NewBasicProvider()
	u := p.UpDownCounter("outstanding")
	u.Add(+3)
	u.Add(-1)
	u.Add(+10)
	if got := p.UpDownValue("outstanding"); got != 12 {
		t.Fatalf("updown value = %d; want 12", got)
	}
}

func TestBasicProvider_Histogram_RecordsStats(t *testing.T) {
	p := NewBasicProvider()
	h := p.Histogram("worker_seconds", WithUnit("seconds"), WithDescription("worker run time"))

	if _, ok := p.HistogramSnapshot("missing"); ok {
		t.Fatalf("snapshot of unknown histogram reported ok")
	}

	h.Record(0.3)
	h.Record(0.1)
	h.Record(0.2)
	s, ok := p.HistogramSnapshot("worker_seconds")
	if !ok {
		t.Fatalf("snapshot of known histogram not ok")
	}
	if s.Count != 3 {
		t.Fatalf("count = %d; want 3", s.Count)
	}
	if s.Min != 0.1 || s.Max != 0.3 {
		t.Fatalf("min/max = (%v,%v); want (0.1,0.3)", s.Min, s.Max)
	}
	if m := s.Mean(); m < 0.19 || m > 0.21 {
		t.Fatalf("mean = %v; want ~0.2", m)
	}
	if p.meta["worker_seconds"].Unit != "seconds" {
		t.Fatalf("instrument unit not stored: %+v", p.meta["worker_seconds"])
	}
}

func TestBasicProvider_Concurrent_CounterAdd(t *testing.T) {
	p := NewBasicProvider()

	workers := runtime.NumCPU() * 2
	iters := 1000
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			c := p.Counter("hits")
			for i := 0; i < iters; i++ {
				c.Add(1)
			}
		}()
	}
	wg.Wait()
	if got, want := p.CounterValue("hits"), int64(workers*iters); got != want {
		t.Fatalf("counter = %d; want %d", got, want)
	}
}

func TestWithAttributes_CopiesInput(t *testing.T) {
	attrs := map[string]string{"pool": "fixed"}
	cfg := applyOptions([]InstrumentOption{WithAttributes(attrs), nil, WithAttributes(nil)})
	attrs["pool"] = "dynamic"
	if cfg.Attributes["pool"] != "fixed" {
		t.Fatalf("attributes alias caller map: %v", cfg.Attributes)
	}
}

func TestNoopProvider_DiscardsEverything(t *testing.T) {
	p := NewNoopProvider()
	p.Counter("a").Add(1)
	p.UpDownCounter("b").Add(-1)
	p.Histogram("c").Record(1.5)
}
