package config

import (
	"time"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
)

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	extended := true
	autoExclude := true
	return &Config{
		API: APIConfig{
			Endpoint: codemaker.DefaultEndpoint,
			Timeout:  codemaker.DefaultTimeout,
		},
		Generation: GenerationConfig{
			Visibility: "all",
		},
		Context: ContextConfig{
			Extended: &extended,
			Depth:    MaxContextDepth,
			MaxSize:  10,
		},
		Watch: WatchConfig{
			Predictive: true,
			Debounce:   500 * time.Millisecond,
			Ignore: []string{
				"**/.git/**",
				"**/node_modules/**",
				"**/.idea/**",
				"**/dist/**",
				"**/build/**",
				"**/__pycache__/**",
				"**/.venv/**",
				"**/vendor/**",
			},
		},
		Scan: ScanConfig{
			Exclude: []string{
				"vendor/**",
				"node_modules/**",
				"dist/**",
				"build/**",
				"**/testdata/**",
			},
			AutoExclude: &autoExclude,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.API = mergeAPIConfig(loaded.API, defaults.API)
	result.Generation = mergeGenerationConfig(loaded.Generation, defaults.Generation)
	result.Context = mergeContextConfig(loaded.Context, defaults.Context)
	// Completion has only booleans; YAML cannot tell unset from false.
	result.Completion = loaded.Completion
	result.Watch = mergeWatchConfig(loaded.Watch, defaults.Watch)
	result.Scan = mergeScanConfig(loaded.Scan, defaults.Scan)
	result.Logging = mergeLoggingConfig(loaded.Logging, defaults.Logging)

	return result
}

func mergeAPIConfig(loaded, defaults APIConfig) APIConfig {
	result := loaded

	if loaded.Endpoint == "" {
		result.Endpoint = defaults.Endpoint
	}
	if loaded.Model == "" {
		result.Model = defaults.Model
	}
	if loaded.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}

	return result
}

func mergeGenerationConfig(loaded, defaults GenerationConfig) GenerationConfig {
	result := loaded

	if loaded.OutputLanguage == "" {
		result.OutputLanguage = defaults.OutputLanguage
	}
	if loaded.Visibility == "" {
		result.Visibility = defaults.Visibility
	}

	return result
}

func mergeContextConfig(loaded, defaults ContextConfig) ContextConfig {
	result := ContextConfig{}

	// Extended is a pointer so an explicit false survives the merge
	if loaded.Extended != nil {
		result.Extended = loaded.Extended
	} else {
		result.Extended = defaults.Extended
	}

	if loaded.Depth != 0 {
		result.Depth = loaded.Depth
	} else {
		result.Depth = defaults.Depth
	}

	if loaded.MaxSize != 0 {
		result.MaxSize = loaded.MaxSize
	} else {
		result.MaxSize = defaults.MaxSize
	}

	return result
}

func mergeWatchConfig(loaded, defaults WatchConfig) WatchConfig {
	result := WatchConfig{}

	// Booleans: an all-false watch section keeps the default predictive mode,
	// otherwise the loaded switches are taken as written.
	if !loaded.Predictive && !loaded.Autofix {
		result.Predictive = defaults.Predictive
	} else {
		result.Predictive = loaded.Predictive
		result.Autofix = loaded.Autofix
	}

	if loaded.Debounce != 0 {
		result.Debounce = loaded.Debounce
	} else {
		result.Debounce = defaults.Debounce
	}

	if len(loaded.Ignore) > 0 {
		result.Ignore = loaded.Ignore
	} else {
		result.Ignore = defaults.Ignore
	}

	return result
}

func mergeScanConfig(loaded, defaults ScanConfig) ScanConfig {
	result := ScanConfig{}

	if len(loaded.Exclude) > 0 {
		result.Exclude = loaded.Exclude
	} else {
		result.Exclude = defaults.Exclude
	}

	if loaded.AutoExclude != nil {
		result.AutoExclude = loaded.AutoExclude
	} else {
		result.AutoExclude = defaults.AutoExclude
	}

	return result
}

func mergeLoggingConfig(loaded, defaults LoggingConfig) LoggingConfig {
	result := LoggingConfig{}

	if loaded.Format != "" {
		result.Format = loaded.Format
	} else {
		result.Format = defaults.Format
	}

	if loaded.Level != "" {
		result.Level = loaded.Level
	} else {
		result.Level = defaults.Level
	}

	return result
}

// ValidLogFormats lists the valid values for logging.format
var ValidLogFormats = []string{"text", "json"}

// IsValidLogFormat checks if the given log format is valid
func IsValidLogFormat(format string) bool {
	for _, valid := range ValidLogFormats {
		if format == valid {
			return true
		}
	}
	return false
}
