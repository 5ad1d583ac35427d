package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/usefold/pkg/discovery"
	"github.com/Sumatoshi-tech/usefold/pkg/render"
)

// Config is the top-level configuration struct for usefold.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Languages []string        `mapstructure:"languages"`
	Output    OutputConfig    `mapstructure:"output"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// OutputConfig holds rendering settings for the fold command.
type OutputConfig struct {
	Format    string `mapstructure:"format"`
	Color     bool   `mapstructure:"color"`
	ZeroBased bool   `mapstructure:"zero_based"`
}

// DiscoveryConfig holds the file selection rules for directory arguments.
type DiscoveryConfig struct {
	Include    []string `mapstructure:"include"`
	Exclude    []string `mapstructure:"exclude"`
	SkipVendor bool     `mapstructure:"skip_vendor"`
}

// WatchConfig holds settings for fold --watch.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry and Prometheus settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	MetricsAddr  string `mapstructure:"metrics_addr"`
	Environment  string `mapstructure:"environment"`
}

// Sentinel errors for configuration validation.
var (
	// ErrNoLanguages indicates the language list is empty.
	ErrNoLanguages = errors.New("languages must not be empty")
	// ErrInvalidOutputFormat indicates an unsupported output.format.
	ErrInvalidOutputFormat = errors.New("output.format is not supported")
	// ErrInvalidDebounce indicates a non-positive watch.debounce.
	ErrInvalidDebounce = errors.New("watch.debounce must be positive")
	// ErrInvalidLogLevel indicates an unparsable logging.level.
	ErrInvalidLogLevel = errors.New("logging.level must be one of debug, info, warn, error")
	// ErrInvalidGlob indicates a discovery pattern that does not compile.
	ErrInvalidGlob = errors.New("discovery pattern is invalid")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if len(c.Languages) == 0 {
		return ErrNoLanguages
	}

	if !render.IsKnownFormat(c.Output.Format) {
		return fmt.Errorf("%w: %q (want one of %s)",
			ErrInvalidOutputFormat, c.Output.Format, strings.Join(render.Formats(), ", "))
	}

	if c.Watch.Debounce <= 0 {
		return ErrInvalidDebounce
	}

	_, levelErr := c.LogLevel()
	if levelErr != nil {
		return levelErr
	}

	return c.validateDiscovery()
}

func (c *Config) validateDiscovery() error {
	includeErr := discovery.Validate(c.Discovery.Include)
	if includeErr != nil {
		return fmt.Errorf("%w: include: %w", ErrInvalidGlob, includeErr)
	}

	excludeErr := discovery.Validate(c.Discovery.Exclude)
	if excludeErr != nil {
		return fmt.Errorf("%w: exclude: %w", ErrInvalidGlob, excludeErr)
	}

	return nil
}

// LogLevel parses Logging.Level into a slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Logging.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return level, nil
}
