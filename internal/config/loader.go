package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source drivers
const (
	DriverDocker = "docker"
	DriverLocal  = "local"
)

// Extractors
const (
	ExtractorRegex = "regex"
	ExtractorAST   = "ast"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		// Missing file: defaults plus environment
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	expandPaths(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Driver:        DriverDocker,
			ContainerName: "",
			DockerBinary:  "docker",
		},
		Scanner: ScannerConfig{
			ModelsDir:     "app/Models",
			MigrationsDir: "database/migrations",
			FilePattern:   "*.php",
			Extractor:     ExtractorRegex,
			Concurrency:   4,
		},
		Cache: CacheConfig{
			Policy: "write-through",
			Path:   defaultCachePath(),
		},
		Watcher: WatcherConfig{
			Enabled:  false,
			Debounce: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ":memory:"
	}
	return filepath.Join(home, ".tinkerlens", "scan-cache.db")
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	// Source configuration overrides
	if driver := os.Getenv("TINKER_SOURCE"); driver != "" {
		cfg.Source.Driver = driver
	}
	if container := os.Getenv("TINKER_CONTAINER"); container != "" {
		cfg.Source.ContainerName = container
	}
	if root := os.Getenv("TINKER_PROJECT_ROOT"); root != "" {
		cfg.Source.ProjectRoot = root
	}
	if bin := os.Getenv("TINKER_DOCKER_BINARY"); bin != "" {
		cfg.Source.DockerBinary = bin
	}

	// Scanner configuration overrides
	if extractor := os.Getenv("SCAN_EXTRACTOR"); extractor != "" {
		cfg.Scanner.Extractor = extractor
	}
	if conc := os.Getenv("SCAN_CONCURRENCY"); conc != "" {
		if v, err := strconv.Atoi(conc); err == nil {
			cfg.Scanner.Concurrency = v
		}
	}

	// Cache configuration overrides
	if policy := os.Getenv("SCAN_CACHE_POLICY"); policy != "" {
		cfg.Cache.Policy = policy
	}
	if path := os.Getenv("SCAN_CACHE_PATH"); path != "" {
		cfg.Cache.Path = path
	}

	// Watcher configuration overrides
	if enabled := os.Getenv("SCAN_WATCH"); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			cfg.Watcher.Enabled = v
		}
	}

	if level := os.Getenv("MCP_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("MCP_LOG_FILE"); path != "" {
		cfg.Logging.Path = path
	}
}

// expandPaths resolves a leading "~/" in path settings against the home directory
func expandPaths(cfg *Config) {
	cfg.Source.ProjectRoot = expandHome(cfg.Source.ProjectRoot)
	cfg.Cache.Path = expandHome(cfg.Cache.Path)
	cfg.Logging.Path = expandHome(cfg.Logging.Path)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Source.Driver == "" {
		cfg.Source.Driver = DriverDocker
	}
	cfg.Source.Driver = strings.ToLower(cfg.Source.Driver)
	if cfg.Source.Driver != DriverDocker && cfg.Source.Driver != DriverLocal {
		return fmt.Errorf("source.driver must be '%s' or '%s'", DriverDocker, DriverLocal)
	}
	if cfg.Source.DockerBinary == "" {
		cfg.Source.DockerBinary = "docker"
	}

	if cfg.Scanner.Extractor == "" {
		cfg.Scanner.Extractor = ExtractorRegex
	}
	if cfg.Scanner.Extractor != ExtractorRegex && cfg.Scanner.Extractor != ExtractorAST {
		return fmt.Errorf("scanner.extractor must be '%s' or '%s'", ExtractorRegex, ExtractorAST)
	}
	if cfg.Scanner.Concurrency < 0 {
		return fmt.Errorf("scanner.concurrency must not be negative")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Policy)) {
	case "", "write-through", "cache-first":
	default:
		return fmt.Errorf("cache.policy must be 'write-through' or 'cache-first'")
	}

	if cfg.Watcher.Enabled && cfg.Source.Driver != DriverLocal {
		return fmt.Errorf("watcher.enabled requires source.driver '%s'", DriverLocal)
	}

	// A missing root is not a load error: scans report it per call.
	return nil
}
