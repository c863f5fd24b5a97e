// Package config loads clausemap settings from defaults, an optional YAML
// file and CLAUSEMAP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/frankndungu/pdf-to-csv-parser/pkg/coverage"
	"github.com/frankndungu/pdf-to-csv-parser/pkg/export"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "CLAUSEMAP"

// Config holds the resolved settings.
type Config struct {
	ReferenceDir      string  `mapstructure:"reference_dir" yaml:"reference_dir"`
	ReferenceSet      string  `mapstructure:"reference_set" yaml:"reference_set"`
	OutputFormat      string  `mapstructure:"output_format" yaml:"output_format"`
	LogLevel          string  `mapstructure:"log_level" yaml:"log_level"`
	MaxLines          int     `mapstructure:"max_lines" yaml:"max_lines"`
	Preprocess        bool    `mapstructure:"preprocess" yaml:"preprocess"`
	CoverageThreshold float64 `mapstructure:"coverage_threshold" yaml:"coverage_threshold"`
	Extractor         string  `mapstructure:"extractor" yaml:"extractor"`
	Layout            bool    `mapstructure:"layout" yaml:"layout"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		ReferenceSet:      "cesmm3",
		OutputFormat:      string(export.FormatCSV),
		LogLevel:          "info",
		Preprocess:        true,
		CoverageThreshold: coverage.DefaultThreshold,
		Extractor:         "pdftotext",
	}
}

// Validate checks that enumerated settings hold known values.
func (c *Config) Validate() error {
	if _, err := export.ParseFormat(c.OutputFormat); err != nil {
		return fmt.Errorf("output_format: %w", err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.MaxLines < 0 {
		return fmt.Errorf("max_lines must not be negative, got %d", c.MaxLines)
	}
	if c.CoverageThreshold < 0 || c.CoverageThreshold > 1 {
		return fmt.Errorf("coverage_threshold must be between 0 and 1, got %v", c.CoverageThreshold)
	}
	return nil
}

// Level returns the parsed log level, or info if it is invalid.
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// Manager loads configuration and reloads it when the file changes.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager loads configuration from cfgFile, or from clausemap.yaml in
// the working directory or $HOME/.clausemap when cfgFile is empty. A missing
// default file is not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	cm.v.SetDefault("reference_dir", defaults.ReferenceDir)
	cm.v.SetDefault("reference_set", defaults.ReferenceSet)
	cm.v.SetDefault("output_format", defaults.OutputFormat)
	cm.v.SetDefault("log_level", defaults.LogLevel)
	cm.v.SetDefault("max_lines", defaults.MaxLines)
	cm.v.SetDefault("preprocess", defaults.Preprocess)
	cm.v.SetDefault("coverage_threshold", defaults.CoverageThreshold)
	cm.v.SetDefault("extractor", defaults.Extractor)
	cm.v.SetDefault("layout", defaults.Layout)

	cm.v.SetEnvPrefix(EnvPrefix)
	cm.v.AutomaticEnv()

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("clausemap")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		cm.v.AddConfigPath("$HOME/.clausemap")
	}

	if err := cm.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the file the configuration was read from, if any.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// Set overrides a single key, typically from a command-line flag, and
// reloads the configuration.
func (cm *Manager) Set(key string, value any) error {
	cm.v.Set(key, value)
	cfg, err := cm.load()
	if err != nil {
		return err
	}
	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return nil
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig reloads the configuration whenever the file changes. An
// invalid file is logged and the previous configuration kept.
func (cm *Manager) WatchConfig(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			logger.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# clausemap configuration
# Every key can be overridden with a CLAUSEMAP_<KEY> environment variable.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
