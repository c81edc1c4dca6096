package config

import (
	"time"
)

// Config represents the global application configuration
type Config struct {
	// Source selects where project files are read from
	Source SourceConfig `yaml:"source"`

	// Scanner configuration
	Scanner ScannerConfig `yaml:"scanner"`

	// Cache configuration (scan snapshot policy and persistence)
	Cache CacheConfig `yaml:"cache"`

	// Watcher configuration (local projects only)
	Watcher WatcherConfig `yaml:"watcher"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig contains project access settings
type SourceConfig struct {
	// Driver: "docker" (files read via docker exec) or "local" (files read from disk)
	Driver string `yaml:"driver"`

	// ContainerName is the scan root for the docker driver, e.g. laravel.test
	ContainerName string `yaml:"container_name"`

	// ProjectRoot is the scan root for the local driver
	ProjectRoot string `yaml:"project_root"`

	// DockerBinary is the CLI used for exec/ps/inspect (docker, podman)
	DockerBinary string `yaml:"docker_binary"`
}

// ScannerConfig contains project scanning settings
type ScannerConfig struct {
	ModelsDir     string `yaml:"models_dir"`     // default: app/Models
	MigrationsDir string `yaml:"migrations_dir"` // default: database/migrations
	FilePattern   string `yaml:"file_pattern"`   // default: *.php

	// Extractor: "regex" (default) or "ast"
	Extractor string `yaml:"extractor"`

	// Concurrency bounds parallel file reads within a directory
	Concurrency int `yaml:"concurrency"`
}

// CacheConfig contains scan cache settings
type CacheConfig struct {
	// Policy: "write-through" (always rescan) or "cache-first"
	Policy string `yaml:"policy"`

	// Path of the buntdb file; ":memory:" disables persistence across restarts
	Path string `yaml:"path"`
}

// WatcherConfig contains file watcher settings
type WatcherConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Path  string `yaml:"path"`  // optional log file; stderr otherwise
}

// Root returns the scan root for the configured driver
func (c *Config) Root() string {
	if c.Source.Driver == DriverLocal {
		return c.Source.ProjectRoot
	}
	return c.Source.ContainerName
}
