package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/ygrebnov/lifecycle"
	"github.com/ygrebnov/lifecycle/metrics"
)

type runOptions struct {
	inputs         []int
	fail           []int
	order          string
	maxOutstanding uint
	sequential     bool
	metrics        bool
}

// job is the input of one demo worker.
type job struct {
	value int
	fail  bool
}

func double(_ context.Context, j job) (int, error) {
	if j.fail {
		return 0, fmt.Errorf("input %d rejected", j.value)
	}
	return j.value * 2, nil
}

func newRunCommand(a *app) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Double every input in its own worker and report each result",
		Example: `  lifecycle run --inputs 1,2,3
  lifecycle run --inputs 1,2,3 --fail 1 --order completion`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, o)
		},
	}

	f := cmd.Flags()
	f.IntSliceVar(&o.inputs, "inputs", []int{1, 2, 3}, "worker inputs")
	f.IntSliceVar(&o.fail, "fail", nil, "indices of workers that fail")
	f.StringVar(&o.order, "order", "", "result order: spawn or completion (default from config)")
	f.UintVar(&o.maxOutstanding, "max-outstanding", 0, "maximum number of live workers")
	f.BoolVar(&o.sequential, "sequential", false, "join workers one by one in spawn order")
	f.BoolVar(&o.metrics, "metrics", false, "print Prometheus metrics after the report")
	return cmd
}

func (a *app) run(cmd *cobra.Command, o runOptions) error {
	cc := a.cfg.Coordinator
	if cmd.Flags().Changed("order") {
		cc.Order = o.order
	}
	if cmd.Flags().Changed("max-outstanding") {
		cc.MaxOutstanding = o.maxOutstanding
	}
	if o.sequential {
		cc.SequentialJoin = true
	}
	order, err := lifecycle.ParseOrder(cc.Order)
	if err != nil {
		return err
	}

	opts := append(cc.Options(), lifecycle.WithLogger(a.log))
	var reg *prometheus.Registry
	if o.metrics {
		reg = prometheus.NewRegistry()
		opts = append(opts, lifecycle.WithMetrics(metrics.NewPrometheusProvider(reg)))
	}

	failing := make(map[int]bool, len(o.fail))
	for _, i := range o.fail {
		if i < 0 || i >= len(o.inputs) {
			return fmt.Errorf("%w: --fail %d is not a worker index", lifecycle.ErrInvalidConfig, i)
		}
		failing[i] = true
	}
	jobs := make([]job, len(o.inputs))
	for i, v := range o.inputs {
		jobs[i] = job{value: v, fail: failing[i]}
	}

	c, err := lifecycle.New(lifecycle.WorkerFunc(double), opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	handles, err := c.SpawnAll(ctx, jobs)
	if err != nil {
		return err
	}

	joinCtx, cancel := joinContext(ctx, cc.JoinTimeout)
	defer cancel()
	results, err := c.JoinAll(joinCtx, handles, order)
	if rerr := lifecycle.Report(a.stdout, results); rerr != nil {
		return rerr
	}
	if err != nil {
		return err
	}

	if reg != nil {
		if err := writeMetrics(a.stdout, reg); err != nil {
			return err
		}
	}
	if n := failedCount(results); n > 0 {
		a.log.Warn().Int("failed", n).Int("workers", len(results)).Msg("run finished with failures")
		return ErrWorkersFailed
	}
	return nil
}

// writeMetrics prints every gathered metric family in the Prometheus text format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
