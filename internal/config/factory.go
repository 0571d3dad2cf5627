package config

import (
	"fmt"
	"os"

	"todo/internal/storage"
	"todo/internal/storage/sqlite"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment reads TODO_ENV; anything unrecognised is production
func GetEnvironment() Environment {
	switch Environment(os.Getenv("TODO_ENV")) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}

// StorageFactory creates storage backends based on environment and configuration
type StorageFactory struct {
	env    Environment
	config *Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(env Environment, cfg *Config) *StorageFactory {
	return &StorageFactory{env: env, config: cfg}
}

// CreateStorage returns the backend for the environment:
// testing is always in-memory, development keeps its data in the working
// directory, and production uses the configured location.
func (sf *StorageFactory) CreateStorage() (storage.Storage, error) {
	switch sf.env {
	case Testing:
		return storage.NewMemoryStorage(), nil
	case Development:
		cfg := *sf.config
		cfg.Storage.Dir = "."
		return CreateStorage(&cfg)
	default:
		return CreateStorage(sf.config)
	}
}

// CreateStorage opens the backend named by cfg.Storage.Backend
func CreateStorage(cfg *Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case BackendMemory:
		return storage.NewMemoryStorage(), nil
	case BackendFile:
		s, err := storage.NewFileStorage(cfg.Storage.Dir, os.FileMode(cfg.Storage.DirPermissions))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		return s, nil
	case BackendSQLite, "":
		if err := os.MkdirAll(cfg.Storage.Dir, os.FileMode(cfg.Storage.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		repo, err := sqlite.New(cfg.GetDatabasePath())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	default:
		return nil, &ConfigError{Field: "storage.backend", Message: fmt.Sprintf("unknown backend %q", cfg.Storage.Backend)}
	}
}
