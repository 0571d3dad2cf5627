package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config   *Config
	filePath string
}

// NewLoader creates a new configuration loader. The config file is taken
// from $TODO_CONFIG, falling back to ~/.todo/config.yaml.
func NewLoader() *Loader {
	path := os.Getenv("TODO_CONFIG")
	if path == "" {
		path = DefaultConfigPath()
	}
	return &Loader{
		config:   NewConfig(),
		filePath: path,
	}
}

// WithConfigFile points the loader at a specific YAML file
func (l *Loader) WithConfigFile(path string) *Loader {
	if path != "" {
		l.filePath = path
	}
	return l
}

// ConfigFile returns the file the loader reads, which may not exist
func (l *Loader) ConfigFile() string {
	return l.filePath
}

// DefaultConfigPath returns ~/.todo/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML config file, if present
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadFile(); err != nil {
		return nil, err
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFile merges the YAML file into the defaults. A missing file is not an error.
func (l *Loader) loadFile() error {
	if l.filePath == "" {
		return nil
	}
	if _, err := os.Stat(l.filePath); os.IsNotExist(err) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(l.filePath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", l.filePath, err)
	}
	if err := v.Unmarshal(l.config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", l.filePath, err)
	}
	return nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// Storage overrides
	Backend      *string
	DataDir      *string
	DBFilename   *string
	StorageKey   *string
	WriteTimeout *time.Duration

	// Display overrides
	NoColor *bool

	// Application overrides
	Verbose *bool

	// Server overrides
	ServerAddr *string
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.Backend != nil {
		config.Storage.Backend = *overrides.Backend
	}
	if overrides.DataDir != nil {
		config.Storage.Dir = *overrides.DataDir
	}
	if overrides.DBFilename != nil {
		config.Storage.Filename = *overrides.DBFilename
	}
	if overrides.StorageKey != nil {
		config.Storage.Key = *overrides.StorageKey
	}
	if overrides.WriteTimeout != nil {
		config.Storage.WriteTimeout = *overrides.WriteTimeout
	}

	if overrides.NoColor != nil {
		config.Display.NoColor = *overrides.NoColor
	}

	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}

	if overrides.ServerAddr != nil {
		config.Server.Addr = *overrides.ServerAddr
	}
}
