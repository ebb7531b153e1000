// Package logging builds the zerolog logger of the lifecycle command.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ygrebnov/lifecycle"
	"github.com/ygrebnov/lifecycle/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger configured by cfg and a closer releasing its output.
// Output "stderr" and "stdout" write to the given streams; any other value is
// a file opened for appending.
func New(cfg config.LoggingConfig, stdout, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("%w: log level %q: %w", lifecycle.ErrInvalidConfig, cfg.Level, err)
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case "", "stderr":
		out = stderr
	case "stdout":
		out = stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("%w: log output: %w", lifecycle.ErrInvalidConfig, err)
		}
		out, closer = f, f
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
	case "console", "":
		out = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	default:
		_ = closer.Close()
		return zerolog.Nop(), nil, fmt.Errorf("%w: log format %q", lifecycle.ErrInvalidConfig, cfg.Format)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("service", "lifecycle").Logger()
	return logger, closer, nil
}
