package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
)

// ConfigFileName is the name of the configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the project configuration directory
const ConfigDirName = ".codemaker"

// MaxContextDepth is the hard ceiling on context discovery depth and
// source-graph recursion, whatever the configuration says.
const MaxContextDepth = 16

// Environment variables that override the file configuration.
const (
	EnvAPIKey   = "CODEMAKER_API_KEY"
	EnvEndpoint = "CODEMAKER_ENDPOINT"
	EnvModel    = "CODEMAKER_MODEL"
)

// Config holds all codemaker configuration
type Config struct {
	API        APIConfig        `yaml:"api"`
	Generation GenerationConfig `yaml:"generation"`
	Context    ContextConfig    `yaml:"context"`
	Completion CompletionConfig `yaml:"completion"`
	Watch      WatchConfig      `yaml:"watch"`
	Scan       ScanConfig       `yaml:"scan"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// APIConfig holds connection settings for the CodeMaker service
type APIConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// GenerationConfig holds the overrides sent with every generation request
type GenerationConfig struct {
	OutputLanguage     string `yaml:"output_language"`
	Indent             int    `yaml:"indent"`
	MinimalLinesLength int    `yaml:"minimal_lines_length"`
	Visibility         string `yaml:"visibility"`
	DetectSyntaxErrors bool   `yaml:"detect_syntax_errors"`
}

// ContextConfig controls extended source context
type ContextConfig struct {
	Extended *bool `yaml:"extended"`
	Depth    int   `yaml:"depth"`
	MaxSize  int   `yaml:"max_size"`
}

// CompletionConfig controls inline completion
type CompletionConfig struct {
	Multiline bool `yaml:"multiline"`
}

// WatchConfig controls on-save behaviour of the watch command
type WatchConfig struct {
	Predictive bool          `yaml:"predictive"`
	Autofix    bool          `yaml:"autofix"`
	Debounce   time.Duration `yaml:"debounce"`
	Ignore     []string      `yaml:"ignore"`
}

// ScanConfig controls which files directory runs visit
type ScanConfig struct {
	Exclude     []string `yaml:"exclude"`
	AutoExclude *bool    `yaml:"auto_exclude"`
}

// LoggingConfig controls diagnostic output on stderr
type LoggingConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// ExtendedContextEnabled reports whether extended context is on.
func (c *Config) ExtendedContextEnabled() bool {
	return c.Context.Extended == nil || *c.Context.Extended
}

// EffectiveContextDepth returns the configured depth clamped to
// MaxContextDepth. Zero or negative selects the ceiling.
func (c *Config) EffectiveContextDepth() int {
	if c.Context.Depth <= 0 || c.Context.Depth > MaxContextDepth {
		return MaxContextDepth
	}
	return c.Context.Depth
}

// AutoExcludeEnabled reports whether dependency directories are detected
// and skipped automatically.
func (c *Config) AutoExcludeEnabled() bool {
	return c.Scan.AutoExclude == nil || *c.Scan.AutoExclude
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .codemaker/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. A .env file next to the config directory (or in
// workDir) is loaded before environment overrides are applied.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		loadDotEnv(workDir)
		cfg := DefaultConfig()
		applyEnv(cfg)
		return cfg, Validate(cfg)
	}

	loadDotEnv(filepath.Dir(configDir))
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults, applies environment overrides and
// validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnv(cfg)
			return cfg, Validate(cfg)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	applyEnv(merged)

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// loadDotEnv loads dir/.env into the process environment. Variables that
// are already set win, and a missing file is not an error.
func loadDotEnv(dir string) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		cfg.API.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		cfg.API.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		cfg.API.Model = v
	}
}

// FindConfigDir locates the .codemaker directory by walking up from startDir.
// Returns the path to the .codemaker directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .codemaker directory if it doesn't exist.
// Returns the path to the .codemaker directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	if _, err := codemaker.ParseLanguageCode(cfg.Generation.OutputLanguage); err != nil {
		return fmt.Errorf("%w: output_language: %v", ErrInvalidConfig, err)
	}

	if _, err := codemaker.ParseVisibility(cfg.Generation.Visibility); err != nil {
		return fmt.Errorf("%w: visibility: %v", ErrInvalidConfig, err)
	}

	if cfg.Generation.Indent < 0 {
		return fmt.Errorf("%w: indent must be non-negative, got %d",
			ErrInvalidConfig, cfg.Generation.Indent)
	}

	if cfg.Generation.MinimalLinesLength < 0 {
		return fmt.Errorf("%w: minimal_lines_length must be non-negative, got %d",
			ErrInvalidConfig, cfg.Generation.MinimalLinesLength)
	}

	if cfg.Context.Depth < 0 {
		return fmt.Errorf("%w: context depth must be non-negative, got %d",
			ErrInvalidConfig, cfg.Context.Depth)
	}

	if cfg.Context.MaxSize <= 0 {
		return fmt.Errorf("%w: context max_size must be positive, got %d",
			ErrInvalidConfig, cfg.Context.MaxSize)
	}

	if cfg.API.Timeout < 0 {
		return fmt.Errorf("%w: api timeout must be non-negative, got %s",
			ErrInvalidConfig, cfg.API.Timeout)
	}

	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("%w: watch debounce must be non-negative, got %s",
			ErrInvalidConfig, cfg.Watch.Debounce)
	}

	if !IsValidLogFormat(cfg.Logging.Format) {
		return fmt.Errorf("%w: logging format must be one of %v, got %q",
			ErrInvalidConfig, ValidLogFormats, cfg.Logging.Format)
	}

	return nil
}

// SaveDefault writes the default configuration to .codemaker/config.yaml in
// workDir. An existing file is only replaced when force is set.
func SaveDefault(workDir string, force bool) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# codemaker CLI configuration\n# The API key can also be set with CODEMAKER_API_KEY (or in .env).\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
