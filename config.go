package lifecycle

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/lifecycle/metrics"
	"github.com/ygrebnov/lifecycle/pool"
)

// config holds Coordinator configuration.
type config struct {
	// MaxOutstanding caps the number of live execution contexts (goroutine workers).
	// A SpawnAll that would exceed it fails with ErrSpawnFailure.
	// Default: 0 (unbounded, dynamic pool)
	MaxOutstanding uint

	// Pool overrides the execution pool selected from MaxOutstanding.
	// Default: nil
	Pool pool.Pool

	// SequentialJoin makes JoinAll await handles one by one in slice order
	// instead of joining them concurrently.
	// Default: false
	SequentialJoin bool

	// Logger receives lifecycle events.
	// Default: zerolog.Nop()
	Logger zerolog.Logger

	// Metrics receives lifecycle measurements.
	// Default: metrics.NoopProvider
	Metrics metrics.Provider

	// ProcessStdout and ProcessStderr receive child process output; nil discards it.
	ProcessStdout io.Writer
	ProcessStderr io.Writer

	// ProcessEnv is appended to the parent environment of every child process.
	ProcessEnv []string

	// ProcessDir is the working directory of child processes; empty means the parent's.
	ProcessDir string

	// StartRetries bounds how many times a child process start is retried after a
	// transient failure (EAGAIN, ENOMEM, EINTR).
	// Default: 3
	StartRetries uint

	// StartRetryDelay is the initial delay of the exponential start retry backoff.
	// Default: 10ms
	StartRetryDelay time.Duration
}

func defaultConfig() config {
	return config{
		MaxOutstanding:  0,
		SequentialJoin:  false,
		Logger:          zerolog.Nop(),
		Metrics:         metrics.NewNoopProvider(),
		StartRetries:    3,
		StartRetryDelay: 10 * time.Millisecond,
	}
}

// validateConfig checks invariants that span several options.
func validateConfig(cfg *config) error {
	if cfg.Pool != nil && cfg.MaxOutstanding > 0 {
		return errorc.With(ErrInvalidConfig, errorc.String("", "WithPool and WithMaxOutstanding are mutually exclusive"))
	}
	return nil
}

// newPool selects the execution pool described by cfg.
func newPool(cfg *config) pool.Pool {
	switch {
	case cfg.Pool != nil:
		return cfg.Pool
	case cfg.MaxOutstanding > 0:
		return pool.NewFixed(cfg.MaxOutstanding)
	default:
		return pool.NewDynamic()
	}
}

// Option configures a Coordinator. Use New(worker, opts...) to construct one.
type Option func(*config) error

// WithMaxOutstanding bounds the number of concurrently live workers (must be > 0).
func WithMaxOutstanding(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMaxOutstanding requires n > 0"))
		}
		cfg.MaxOutstanding = n
		return nil
	}
}

// WithPool runs workers on a caller supplied execution pool.
func WithPool(p pool.Pool) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithPool requires a non-nil pool"))
		}
		cfg.Pool = p
		return nil
	}
}

// WithSequentialJoin makes JoinAll await handles strictly one after another.
func WithSequentialJoin() Option {
	return func(cfg *config) error { cfg.SequentialJoin = true; return nil }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *config) error { cfg.Logger = l; return nil }
}

// WithMetrics sets the metrics provider.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}

// WithProcessOutput forwards child process stdout and stderr. Nil writers discard the stream.
// Writers other than *os.File are shared by all children of the coordinator; their
// writes are serialized, so a plain bytes.Buffer is safe.
func WithProcessOutput(stdout, stderr io.Writer) Option {
	return func(cfg *config) error { cfg.ProcessStdout, cfg.ProcessStderr = stdout, stderr; return nil }
}

// WithProcessEnv appends "KEY=value" entries to the environment of child processes.
func WithProcessEnv(env ...string) Option {
	return func(cfg *config) error {
		cfg.ProcessEnv = append(cfg.ProcessEnv, env...)
		return nil
	}
}

// WithProcessDir sets the working directory of child processes.
func WithProcessDir(dir string) Option {
	return func(cfg *config) error { cfg.ProcessDir = dir; return nil }
}

// WithStartRetries sets how often a transiently failing process start is retried
// and the initial backoff delay. Zero retries disables retrying.
func WithStartRetries(n uint, initialDelay time.Duration) Option {
	return func(cfg *config) error {
		if initialDelay <= 0 && n > 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithStartRetries requires a positive delay"))
		}
		cfg.StartRetries = n
		cfg.StartRetryDelay = initialDelay
		return nil
	}
}
