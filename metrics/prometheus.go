package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider exposes instruments as Prometheus collectors registered on reg.
// Counters map to prometheus.Counter, up/down counters to prometheus.Gauge and
// histograms to prometheus.Histogram with the default buckets.
type PrometheusProvider struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// NewPrometheusProvider returns a provider registering its collectors on reg.
// A nil reg selects prometheus.DefaultRegisterer.
func NewPrometheusProvider(reg prometheus.Registerer) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusProvider{
		reg:        reg,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

func help(name string, cfg InstrumentConfig) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return name
}

// register registers c on the provider registry and returns the collector that is
// actually registered, which differs from c when another provider got there first.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		// Unregistrable collectors still record; they are just not exported.
	}
	return c
}

// Counter returns a counter named name.
func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.counters[name]
	if !ok {
		cfg := applyOptions(opts)
		c = register(p.reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
		}))
		p.counters[name] = c
	}
	return promCounter{c}
}

// UpDownCounter returns a gauge named name.
func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.gauges[name]
	if !ok {
		cfg := applyOptions(opts)
		g = register(p.reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
		}))
		p.gauges[name] = g
	}
	return promGauge{g}
}

// Histogram returns a histogram named name.
func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.histograms[name]
	if !ok {
		cfg := applyOptions(opts)
		h = register(p.reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
			Buckets:     prometheus.DefBuckets,
		}))
		p.histograms[name] = h
	}
	return promHistogram{h}
}

type promCounter struct{ c prometheus.Counter }

// Add ignores negative deltas, which Prometheus counters reject with a panic.
func (c promCounter) Add(n int64) {
	if n > 0 {
		c.c.Add(float64(n))
	}
}

type promGauge struct{ g prometheus.Gauge }

func (g promGauge) Add(n int64) { g.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (h promHistogram) Record(v float64) { h.h.Observe(v) }
