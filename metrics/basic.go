package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider keeps measurements in memory. It is meant for tests and small tools
// that want to inspect what a coordinator did after a run.
type BasicProvider struct {
	mu         sync.Mutex
	counters   map[string]*BasicCounter
	updowns    map[string]*BasicUpDownCounter
	histograms map[string]*BasicHistogram
	meta       map[string]InstrumentConfig
}

// NewBasicProvider constructs a new BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   make(map[string]*BasicCounter),
		updowns:    make(map[string]*BasicUpDownCounter),
		histograms: make(map[string]*BasicHistogram),
		meta:       make(map[string]InstrumentConfig),
	}
}

// lookup returns m[name], creating it with mk on first use.
// The caller must hold p.mu.
func lookup[T any](p *BasicProvider, m map[string]*T, name string, opts []InstrumentOption, mk func() *T) *T {
	if v, ok := m[name]; ok {
		return v
	}
	v := mk()
	m[name] = v
	p.meta[name] = applyOptions(opts)
	return v
}

// Counter returns the counter registered under name.
func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lookup(p, p.counters, name, opts, func() *BasicCounter { return &BasicCounter{} })
}

// UpDownCounter returns the up/down counter registered under name.
func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lookup(p, p.updowns, name, opts, func() *BasicUpDownCounter { return &BasicUpDownCounter{} })
}

// Histogram returns the histogram registered under name.
func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lookup(p, p.histograms, name, opts, func() *BasicHistogram { return &BasicHistogram{} })
}

// CounterValue returns the current value of the named counter, or 0 if it was never requested.
func (p *BasicProvider) CounterValue(name string) int64 {
	p.mu.Lock()
	c, ok := p.counters[name]
	p.mu.Unlock()
	if !ok {
		return 0
	}
	return c.Snapshot()
}

// UpDownValue returns the current value of the named up/down counter, or 0 if it was never requested.
func (p *BasicProvider) UpDownValue(name string) int64 {
	p.mu.Lock()
	u, ok := p.updowns[name]
	p.mu.Unlock()
	if !ok {
		return 0
	}
	return u.Snapshot()
}

// HistogramSnapshot returns the state of the named histogram and whether it exists.
func (p *BasicProvider) HistogramSnapshot(name string) (HistSnapshot, bool) {
	p.mu.Lock()
	h, ok := p.histograms[name]
	p.mu.Unlock()
	if !ok {
		return HistSnapshot{}, false
	}
	return h.Snapshot(), true
}

// BasicCounter is a thread-safe monotonic counter.
type BasicCounter struct {
	val atomic.Int64
}

func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a thread-safe up/down counter.
type BasicUpDownCounter struct {
	val atomic.Int64
}

func (u *BasicUpDownCounter) Add(n int64) { u.val.Add(n) }

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram tracks count, sum, min and max of recorded values. It keeps no buckets.
type BasicHistogram struct {
	mu   sync.Mutex
	snap HistSnapshot
}

// HistSnapshot is an immutable copy of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
}

// Mean returns Sum/Count, or 0 for an empty histogram.
func (s HistSnapshot) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.snap.Count == 0 || v < h.snap.Min {
		h.snap.Min = v
	}
	if h.snap.Count == 0 || v > h.snap.Max {
		h.snap.Max = v
	}
	h.snap.Count++
	h.snap.Sum += v
}

// Snapshot returns a copy of the histogram state.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}
