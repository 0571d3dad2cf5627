package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"todo/internal/domain"
)

// Storage backend names.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds all configuration options for the todo application
type Config struct {
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Limits      LimitsConfig      `mapstructure:"limits" yaml:"limits"`
	Display     DisplayConfig     `mapstructure:"display" yaml:"display"`
	Application ApplicationConfig `mapstructure:"application" yaml:"application"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Backend        string        `mapstructure:"backend" yaml:"backend" env:"TODO_STORAGE_BACKEND"`
	Dir            string        `mapstructure:"dir" yaml:"dir" env:"TODO_DATA_DIR"`
	Filename       string        `mapstructure:"filename" yaml:"filename" env:"TODO_DB_FILENAME"`
	Key            string        `mapstructure:"key" yaml:"key" env:"TODO_STORAGE_KEY"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" env:"TODO_WRITE_TIMEOUT"`
	DirPermissions uint32        `mapstructure:"dir_permissions" yaml:"dir_permissions" env:"TODO_DIR_PERMISSIONS"`
}

// LimitsConfig holds the per-category task limits and the input length bounds
type LimitsConfig struct {
	DeepCapacity int `mapstructure:"deep_capacity" yaml:"deep_capacity" env:"TODO_DEEP_CAPACITY"`
	EasyCapacity int `mapstructure:"easy_capacity" yaml:"easy_capacity" env:"TODO_EASY_CAPACITY"`

	NameMin    int `mapstructure:"name_min" yaml:"name_min" env:"TODO_NAME_MIN"`
	NameMax    int `mapstructure:"name_max" yaml:"name_max" env:"TODO_NAME_MAX"`
	TitleMin   int `mapstructure:"title_min" yaml:"title_min" env:"TODO_TITLE_MIN"`
	TitleMax   int `mapstructure:"title_max" yaml:"title_max" env:"TODO_TITLE_MAX"`
	DetailsMax int `mapstructure:"details_max" yaml:"details_max" env:"TODO_DETAILS_MAX"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	NoColor     bool `mapstructure:"no_color" yaml:"no_color" env:"TODO_NO_COLOR"`
	ShowDetails bool `mapstructure:"show_details" yaml:"show_details" env:"TODO_SHOW_DETAILS"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" env:"TODO_APP_TIMEOUT"`
	Verbose bool          `mapstructure:"verbose" yaml:"verbose" env:"TODO_APP_VERBOSE"`
}

// ServerConfig holds the local HTTP adapter settings
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" env:"TODO_SERVER_ADDR"`
}

// DefaultDir returns ~/.todo, or .todo when the home directory is unknown
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".todo"
	}
	return filepath.Join(homeDir, ".todo")
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:        BackendSQLite,
			Dir:            DefaultDir(),
			Filename:       "todo.db",
			Key:            "todo-storage",
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Limits: LimitsConfig{
			DeepCapacity: domain.CategoryDeep.DefaultCapacity(),
			EasyCapacity: domain.CategoryEasy.DefaultCapacity(),
			NameMin:      2,
			NameMax:      10,
			TitleMin:     2,
			TitleMax:     40,
			DetailsMax:   120,
		},
		Display: DisplayConfig{
			NoColor:     false,
			ShowDetails: true,
		},
		Application: ApplicationConfig{
			Timeout: 30 * time.Second,
			Verbose: false,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// GetDatabasePath returns the full path to the sqlite database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Storage.Dir, c.Storage.Filename)
}

// GetWriteTimeout returns the per-write storage timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Storage.WriteTimeout
}

// LoadFromEnvironment loads configuration from environment variables.
// Unparseable values are ignored and the previous value kept.
func (c *Config) LoadFromEnvironment() error {
	// Storage configuration
	if backend := os.Getenv("TODO_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if dir := os.Getenv("TODO_DATA_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if filename := os.Getenv("TODO_DB_FILENAME"); filename != "" {
		c.Storage.Filename = filename
	}
	if key := os.Getenv("TODO_STORAGE_KEY"); key != "" {
		c.Storage.Key = key
	}
	if timeout := os.Getenv("TODO_WRITE_TIMEOUT"); timeout != "" {
		c.Storage.WriteTimeout = ParseDurationWithFallback(timeout, c.Storage.WriteTimeout)
	}
	if perms := os.Getenv("TODO_DIR_PERMISSIONS"); perms != "" {
		c.Storage.DirPermissions = ParseUint32WithFallback(perms, 8, c.Storage.DirPermissions)
	}

	// Limits
	if n := os.Getenv("TODO_DEEP_CAPACITY"); n != "" {
		c.Limits.DeepCapacity = ParseIntWithFallback(n, c.Limits.DeepCapacity)
	}
	if n := os.Getenv("TODO_EASY_CAPACITY"); n != "" {
		c.Limits.EasyCapacity = ParseIntWithFallback(n, c.Limits.EasyCapacity)
	}
	if n := os.Getenv("TODO_NAME_MIN"); n != "" {
		c.Limits.NameMin = ParseIntWithFallback(n, c.Limits.NameMin)
	}
	if n := os.Getenv("TODO_NAME_MAX"); n != "" {
		c.Limits.NameMax = ParseIntWithFallback(n, c.Limits.NameMax)
	}
	if n := os.Getenv("TODO_TITLE_MIN"); n != "" {
		c.Limits.TitleMin = ParseIntWithFallback(n, c.Limits.TitleMin)
	}
	if n := os.Getenv("TODO_TITLE_MAX"); n != "" {
		c.Limits.TitleMax = ParseIntWithFallback(n, c.Limits.TitleMax)
	}
	if n := os.Getenv("TODO_DETAILS_MAX"); n != "" {
		c.Limits.DetailsMax = ParseIntWithFallback(n, c.Limits.DetailsMax)
	}

	// Display configuration
	if noColor := os.Getenv("TODO_NO_COLOR"); noColor != "" {
		c.Display.NoColor = ParseBoolWithFallback(noColor, c.Display.NoColor)
	}
	if details := os.Getenv("TODO_SHOW_DETAILS"); details != "" {
		c.Display.ShowDetails = ParseBoolWithFallback(details, c.Display.ShowDetails)
	}

	// Application configuration
	if timeout := os.Getenv("TODO_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TODO_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	if addr := os.Getenv("TODO_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
		if c.Storage.Dir == "" {
			return &ConfigError{Field: "storage.dir", Message: "data directory cannot be empty"}
		}
	case BackendMemory:
	default:
		return &ConfigError{Field: "storage.backend", Message: "backend must be one of sqlite, file, memory"}
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.Filename == "" {
		return &ConfigError{Field: "storage.filename", Message: "database filename cannot be empty"}
	}
	if c.Storage.Key == "" {
		return &ConfigError{Field: "storage.key", Message: "storage key cannot be empty"}
	}
	if c.Storage.WriteTimeout <= 0 {
		return &ConfigError{Field: "storage.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Limits.DeepCapacity < 1 {
		return &ConfigError{Field: "limits.deep_capacity", Message: "deep capacity must be at least 1"}
	}
	if c.Limits.EasyCapacity < 1 {
		return &ConfigError{Field: "limits.easy_capacity", Message: "easy capacity must be at least 1"}
	}
	if c.Limits.NameMin < 1 || c.Limits.NameMax < c.Limits.NameMin {
		return &ConfigError{Field: "limits.name_max", Message: "name bounds must satisfy 1 <= name_min <= name_max"}
	}
	if c.Limits.TitleMin < 1 || c.Limits.TitleMax < c.Limits.TitleMin {
		return &ConfigError{Field: "limits.title_max", Message: "title bounds must satisfy 1 <= title_min <= title_max"}
	}
	if c.Limits.DetailsMax < 0 {
		return &ConfigError{Field: "limits.details_max", Message: "details limit cannot be negative"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "server address cannot be empty"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
