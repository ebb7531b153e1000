// Package cli implements the lifecycle command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ygrebnov/lifecycle"
	"github.com/ygrebnov/lifecycle/internal/config"
	"github.com/ygrebnov/lifecycle/internal/logging"
)

// app carries state shared by all commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	logLevel   string
	logFormat  string
	verbose    bool

	cfg       *config.Config
	log       zerolog.Logger
	logCloser io.Closer
}

// Execute runs the command line args and returns the process exit status.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	stdout, stderr = syncOutput(stdout, stderr)
	a := &app{stdout: stdout, stderr: stderr, log: zerolog.Nop()}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
	if err != nil && !silent(err) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return ExitCode(err)
}

// syncOutput makes stdout and stderr safe for use from several goroutines: the
// logger, the report and the output copies of child processes all write to them.
// The same writer passed twice gets a single wrapper.
func syncOutput(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	wrap := func(w io.Writer) io.Writer {
		if _, ok := w.(*os.File); ok || w == nil {
			return w
		}
		return zerolog.SyncWriter(w)
	}
	if stdout == stderr {
		w := wrap(stdout)
		return w, w
	}
	return wrap(stdout), wrap(stderr)
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lifecycle",
		Short: "Spawn concurrent workers and child processes, then join them",
		Long: `lifecycle launches goroutine workers or child processes, each with its own
input, and joins every one of them exactly once, reporting one status line
per worker.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.setup() },
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default is $LIFECYCLE_CONFIG or ./lifecycle.yaml)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, disabled")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: console or json")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (debug log level)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", lifecycle.ErrInvalidConfig, err)
	})

	cmd.AddCommand(
		newRunCommand(a),
		newExecCommand(a),
		newForkCommand(a),
		newVersionCommand(a),
	)
	return cmd
}

// setup loads the configuration, applies global flags and builds the logger.
func (a *app) setup() error {
	path := a.configFile
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "_CONFIG")
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer, err := logging.New(cfg.Logging, a.stdout, a.stderr)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.logCloser = cfg, log, closer
	a.log.Debug().Str("config", path).Msg("configuration loaded")
	return nil
}

// joinContext bounds joins by the configured join timeout, if any.
func joinContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
