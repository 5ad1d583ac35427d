package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".usefold"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for usefold settings.
const envPrefix = "USEFOLD"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	if used := viperCfg.ConfigFileUsed(); used != "" && readErr == nil {
		schemaErr := ValidateFile(used)
		if schemaErr != nil {
			return nil, schemaErr
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		Languages: append([]string(nil), DefaultLanguages...),
		Output: OutputConfig{
			Format:    DefaultOutputFormat,
			Color:     DefaultOutputColor,
			ZeroBased: DefaultOutputZeroBased,
		},
		Discovery: DiscoveryConfig{
			Include:    append([]string(nil), DefaultDiscoveryInclude...),
			Exclude:    append([]string(nil), DefaultDiscoveryExclude...),
			SkipVendor: DefaultDiscoverySkipVendor,
		},
		Watch:   WatchConfig{Debounce: DefaultWatchDebounce},
		Logging: LoggingConfig{Level: DefaultLoggingLevel, JSON: DefaultLoggingJSON},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: DefaultTelemetryOTLPEndpoint,
			OTLPInsecure: DefaultTelemetryOTLPInsecure,
			MetricsAddr:  DefaultTelemetryMetricsAddr,
			Environment:  DefaultTelemetryEnvironment,
		},
	}
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("languages", DefaultLanguages)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.color", DefaultOutputColor)
	viperCfg.SetDefault("output.zero_based", DefaultOutputZeroBased)

	viperCfg.SetDefault("discovery.include", DefaultDiscoveryInclude)
	viperCfg.SetDefault("discovery.exclude", DefaultDiscoveryExclude)
	viperCfg.SetDefault("discovery.skip_vendor", DefaultDiscoverySkipVendor)

	viperCfg.SetDefault("watch.debounce", DefaultWatchDebounce)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.json", DefaultLoggingJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultTelemetryOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultTelemetryOTLPInsecure)
	viperCfg.SetDefault("telemetry.metrics_addr", DefaultTelemetryMetricsAddr)
	viperCfg.SetDefault("telemetry.environment", DefaultTelemetryEnvironment)
}
