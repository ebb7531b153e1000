package lifecycle

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/ygrebnov/errorc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ygrebnov/lifecycle/metrics"
)

const instrumentationName = "github.com/ygrebnov/lifecycle"

var tracer = otel.Tracer(instrumentationName)

// Instrument names recorded through the configured metrics.Provider.
const (
	MetricWorkersSpawned   = "lifecycle_workers_spawned_total"
	MetricWorkersFailed    = "lifecycle_workers_failed_total"
	MetricHandlesJoined    = "lifecycle_handles_joined_total"
	MetricOutstanding      = "lifecycle_workers_outstanding"
	MetricWorkerDuration   = "lifecycle_worker_duration_seconds"
	MetricProcessesStarted = "lifecycle_processes_started_total"
	MetricSpawnFailures    = "lifecycle_spawn_failures_total"
)

type instruments struct {
	spawned       metrics.Counter
	failed        metrics.Counter
	joined        metrics.Counter
	outstanding   metrics.UpDownCounter
	duration      metrics.Histogram
	processes     metrics.Counter
	spawnFailures metrics.Counter
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		spawned:       p.Counter(MetricWorkersSpawned, metrics.WithDescription("Goroutine workers launched.")),
		failed:        p.Counter(MetricWorkersFailed, metrics.WithDescription("Workers and child processes that terminated abnormally.")),
		joined:        p.Counter(MetricHandlesJoined, metrics.WithDescription("Handles consumed by a successful join.")),
		outstanding:   p.UpDownCounter(MetricOutstanding, metrics.WithDescription("Handles launched but not joined yet.")),
		duration:      p.Histogram(MetricWorkerDuration, metrics.WithDescription("Worker run time."), metrics.WithUnit("seconds")),
		processes:     p.Counter(MetricProcessesStarted, metrics.WithDescription("Child processes started.")),
		spawnFailures: p.Counter(MetricSpawnFailures, metrics.WithDescription("Rejected spawn requests.")),
	}
}

// Coordinator launches workers, hands out single-use handles for them and joins them.
// Methods are safe for concurrent use.
//
// SpawnAll assigns every worker the index of its input as its ID, so IDs are unique
// within one batch and start over at zero with the next one. Child processes have
// their own ID space: the n-th process started, counting from zero, gets ID n.
type Coordinator[T, R any] struct {
	// noCopy prevents accidental copying of the coordinator.
	//go:nocopy
	nc noCopy

	worker   Worker[T, R]
	config   *config
	log      zerolog.Logger
	inst     instruments
	launcher *launcher

	// stdout and stderr are the child process output writers, serialized across children.
	stdout, stderr io.Writer

	processSeq  atomic.Int64
	outstanding atomic.Int64

	lifecycle *lifecycleCoordinator
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates a Coordinator running w for every spawned input.
// w may be nil for coordinators that only run child processes; SpawnAll then fails.
func New[T, R any](w Worker[T, R], opts ...Option) (*Coordinator[T, R], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	c := &Coordinator[T, R]{
		worker:   w,
		config:   &cfg,
		log:      cfg.Logger.With().Str("component", "lifecycle").Logger(),
		inst:     newInstruments(cfg.Metrics),
		launcher: newLauncher(newPool(&cfg)),
	}
	c.stdout, c.stderr = processOutput(cfg.ProcessStdout, cfg.ProcessStderr)
	c.lifecycle = newLifecycleCoordinator(c.launcher.stopAdmission, &c.launcher.inflight, c.reportAbandoned)
	return c, nil
}

// SpawnAll launches one worker per input and returns their handles in input order.
// The worker for inputs[i] gets ID i.
//
// Workers start concurrently with each other and with the caller; SpawnAll does not
// wait for any of them to finish. An empty inputs slice yields an empty handle slice.
//
// Admission is all or nothing: if the execution pool cannot take every input, or ctx
// is already done, or the coordinator is closed, SpawnAll returns an error wrapping
// ErrSpawnFailure and no handles. ctx does not cancel running workers; they receive
// a context carrying ctx values without its cancellation.
func (c *Coordinator[T, R]) SpawnAll(ctx context.Context, inputs []T) ([]*Handle[WorkResult[R]], error) {
	ctx, span := tracer.Start(ctx, "lifecycle.SpawnAll", trace.WithAttributes(attribute.Int("lifecycle.inputs", len(inputs))))
	defer span.End()

	if len(inputs) == 0 {
		return []*Handle[WorkResult[R]]{}, nil
	}
	if c.worker == nil {
		return nil, errorc.With(ErrInvalidConfig, errorc.String("", "SpawnAll requires a coordinator created with a worker"))
	}
	if err := ctx.Err(); err != nil {
		return nil, c.spawnFailed(span, len(inputs), fmt.Errorf("%w: %w", ErrSpawnFailure, err))
	}
	if err := c.launcher.admit(len(inputs)); err != nil {
		return nil, c.spawnFailed(span, len(inputs), err)
	}

	n := int64(len(inputs))
	c.outstanding.Add(n)
	c.inst.outstanding.Add(n)
	c.inst.spawned.Add(n)

	wctx := context.WithoutCancel(ctx)
	handles := make([]*Handle[WorkResult[R]], len(inputs))
	for i := range inputs {
		handles[i] = newHandle[WorkResult[R]](i, c.handleJoined)
	}
	for i, in := range inputs {
		h := handles[i]
		c.launcher.launch(func() {
			started := time.Now()
			runWorker(wctx, c.worker, h.id, i, in, func(r WorkResult[R]) {
				c.workerDone(r, time.Since(started))
				h.complete(r)
			})
		})
	}

	c.log.Debug().Int("count", len(inputs)).Msg("workers spawned")
	return handles, nil
}

// JoinAll joins every handle exactly once and returns their results in the requested order.
// See the package level JoinAll for the full contract.
// With WithSequentialJoin the handles are awaited one by one in slice order.
func (c *Coordinator[T, R]) JoinAll(
	ctx context.Context, handles []*Handle[WorkResult[R]], order Order,
) ([]WorkResult[R], error) {
	return JoinAll(ctx, handles, order, c.joinOptions()...)
}

// JoinEach is like JoinAll but passes every result to fn as soon as the requested
// order allows it. fn runs on the calling goroutine.
func (c *Coordinator[T, R]) JoinEach(
	ctx context.Context, handles []*Handle[WorkResult[R]], order Order, fn func(WorkResult[R]),
) error {
	return JoinEach(ctx, handles, order, fn, c.joinOptions()...)
}

func (c *Coordinator[T, R]) joinOptions() []JoinOption {
	if c.config.SequentialJoin {
		return []JoinOption{Sequentially()}
	}
	return nil
}

// Outstanding returns the number of launched workers and processes whose handles
// have not been joined yet.
func (c *Coordinator[T, R]) Outstanding() int { return int(c.outstanding.Load()) }

// Close stops admitting new work and waits until every launched worker and child
// process has terminated, whether or not its handle was joined.
// Handles stay joinable after Close. Close is idempotent and safe for concurrent use.
func (c *Coordinator[T, R]) Close() {
	c.lifecycle.Close()
}

func (c *Coordinator[T, R]) handleJoined() {
	c.outstanding.Add(-1)
	c.inst.outstanding.Add(-1)
	c.inst.joined.Add(1)
}

func (c *Coordinator[T, R]) workerDone(r WorkResult[R], took time.Duration) {
	c.inst.duration.Record(took.Seconds())
	if r.Failed() {
		c.inst.failed.Add(1)
		c.log.Warn().Int("worker_id", r.WorkerID()).Err(r.Err()).Dur("took", took).Msg("worker failed")
		return
	}
	c.log.Debug().Int("worker_id", r.WorkerID()).Dur("took", took).Msg("worker finished")
}

func (c *Coordinator[T, R]) spawnFailed(span trace.Span, n int, err error) error {
	c.inst.spawnFailures.Add(1)
	span.RecordError(err)
	span.SetStatus(codes.Error, "spawn failed")
	c.log.Error().Err(err).Int("count", n).Msg("spawn rejected")
	return err
}

func (c *Coordinator[T, R]) reportAbandoned() {
	if n := c.outstanding.Load(); n > 0 {
		c.log.Warn().Int64("handles", n).Msg("coordinator closed with unjoined handles")
	}
}
