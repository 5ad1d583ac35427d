// Package config provides YAML-based configuration for usefold.
package config

import "time"

// Language defaults.
var (
	// DefaultLanguages lists the language ids import folding applies to.
	DefaultLanguages = []string{"php"}
)

// Output defaults.
const (
	DefaultOutputFormat    = "text"
	DefaultOutputColor     = true
	DefaultOutputZeroBased = false
)

// Discovery defaults.
var (
	DefaultDiscoveryInclude = []string{"**/*.php"}
	DefaultDiscoveryExclude = []string{"vendor/**", ".git/**"}
)

// DefaultDiscoverySkipVendor skips paths enry classifies as vendored.
const DefaultDiscoverySkipVendor = true

// Watch defaults.
const (
	DefaultWatchDebounce = 200 * time.Millisecond
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)

// Telemetry defaults.
const (
	DefaultTelemetryOTLPEndpoint = ""
	DefaultTelemetryOTLPInsecure = false
	DefaultTelemetryMetricsAddr  = ""
	DefaultTelemetryEnvironment  = ""
)
