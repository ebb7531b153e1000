// Package config loads the configuration of the lifecycle command.
//
// Sources, from highest to lowest precedence:
//  1. command line flags (applied by the caller)
//  2. LIFECYCLE_* environment variables, e.g. LIFECYCLE_LOGGING_LEVEL
//  3. a YAML configuration file
//  4. defaults
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ygrebnov/lifecycle"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys.
const EnvPrefix = "LIFECYCLE"

// Config is the complete configuration of the lifecycle command.
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator" yaml:"coordinator"`
}

// LoggingConfig controls the command logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	// Output is "stderr", "stdout" or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// CoordinatorConfig mirrors the coordinator options exposed on the command line.
type CoordinatorConfig struct {
	Order           string        `mapstructure:"order" yaml:"order"`
	MaxOutstanding  uint          `mapstructure:"max_outstanding" yaml:"max_outstanding"`
	SequentialJoin  bool          `mapstructure:"sequential_join" yaml:"sequential_join"`
	StartRetries    uint          `mapstructure:"start_retries" yaml:"start_retries"`
	StartRetryDelay time.Duration `mapstructure:"start_retry_delay" yaml:"start_retry_delay"`
	JoinTimeout     time.Duration `mapstructure:"join_timeout" yaml:"join_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
			Output: "stderr",
		},
		Coordinator: CoordinatorConfig{
			Order:           lifecycle.SpawnOrder.String(),
			MaxOutstanding:  0,
			SequentialJoin:  false,
			StartRetries:    3,
			StartRetryDelay: 10 * time.Millisecond,
			JoinTimeout:     0,
		},
	}
}

// LoadConfig loads configuration from configFile, the environment and defaults.
// An empty configFile searches ./lifecycle.yaml and $HOME/.config/lifecycle/lifecycle.yaml;
// a missing file is only an error when configFile names it explicitly.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("lifecycle")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lifecycle")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: read config: %w", lifecycle.ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config: %w", lifecycle.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)

	v.SetDefault("coordinator.order", d.Coordinator.Order)
	v.SetDefault("coordinator.max_outstanding", d.Coordinator.MaxOutstanding)
	v.SetDefault("coordinator.sequential_join", d.Coordinator.SequentialJoin)
	v.SetDefault("coordinator.start_retries", d.Coordinator.StartRetries)
	v.SetDefault("coordinator.start_retry_delay", d.Coordinator.StartRetryDelay)
	v.SetDefault("coordinator.join_timeout", d.Coordinator.JoinTimeout)
}

// Validate reports the first invalid setting as an error wrapping lifecycle.ErrInvalidConfig.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return invalid("logging.level", c.Logging.Level, "must be one of trace, debug, info, warn, error, disabled")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return invalid("logging.format", c.Logging.Format, "must be console or json")
	}
	if c.Logging.Output == "" {
		return invalid("logging.output", c.Logging.Output, "cannot be empty")
	}
	if _, err := lifecycle.ParseOrder(c.Coordinator.Order); err != nil {
		return invalid("coordinator.order", c.Coordinator.Order, "must be spawn or completion")
	}
	if c.Coordinator.StartRetries > 0 && c.Coordinator.StartRetryDelay <= 0 {
		return invalid("coordinator.start_retry_delay", c.Coordinator.StartRetryDelay.String(), "must be positive when retries are enabled")
	}
	if c.Coordinator.JoinTimeout < 0 {
		return invalid("coordinator.join_timeout", c.Coordinator.JoinTimeout.String(), "must not be negative")
	}
	return nil
}

// Options converts the coordinator settings into coordinator options.
func (c CoordinatorConfig) Options() []lifecycle.Option {
	opts := []lifecycle.Option{lifecycle.WithStartRetries(c.StartRetries, c.StartRetryDelay)}
	if c.MaxOutstanding > 0 {
		opts = append(opts, lifecycle.WithMaxOutstanding(c.MaxOutstanding))
	}
	if c.SequentialJoin {
		opts = append(opts, lifecycle.WithSequentialJoin())
	}
	return opts
}

func invalid(key, value, why string) error {
	return fmt.Errorf("%w: %s %q %s", lifecycle.ErrInvalidConfig, key, value, why)
}
