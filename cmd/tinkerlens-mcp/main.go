package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/doITmagic/tinkerlens/internal/config"
	"github.com/doITmagic/tinkerlens/internal/healthcheck"
	"github.com/doITmagic/tinkerlens/internal/laravel"
	"github.com/doITmagic/tinkerlens/internal/scancache"
	"github.com/doITmagic/tinkerlens/internal/source"
	"github.com/doITmagic/tinkerlens/internal/tools"
	"github.com/doITmagic/tinkerlens/internal/watcher"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Log files are trimmed at startup once they grow past this many MB
const maxLogFileMB = 10

// Simple logger using log level from env
type simpleLogger struct {
	logFile *os.File
	level   string
}

func (l *simpleLogger) shouldLog(msgLevel string) bool {
	levels := map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}
	logLevel := strings.ToLower(l.level)
	if logLevel == "" {
		logLevel = "info"
	}
	return levels[msgLevel] >= levels[logLevel]
}

func (l *simpleLogger) write(tag, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "["+tag+"] "+format+"\n", args...)
	if l.logFile != nil {
		fmt.Fprintf(l.logFile, "["+tag+"] "+format+"\n", args...)
	}
}

func (l *simpleLogger) Info(format string, args ...interface{}) {
	if l.shouldLog("info") {
		l.write("INFO", format, args...)
	}
}

func (l *simpleLogger) Error(format string, args ...interface{}) {
	if l.shouldLog("error") {
		l.write("ERROR", format, args...)
	}
}

func (l *simpleLogger) Warn(format string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.write("WARN", format, args...)
	}
}

var logger = &simpleLogger{}

// initLogger routes log output away from stdout, which carries MCP stdio
func initLogger(cfg config.LoggingConfig) {
	log.SetOutput(os.Stderr)
	logger.level = cfg.Level

	if cfg.Path == "" {
		return
	}

	rotateLogFile(cfg.Path, maxLogFileMB)

	f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to open log file %s: %v\n", cfg.Path, err)
		return
	}

	logger.logFile = f
	log.SetOutput(io.MultiWriter(os.Stderr, f))
}

// rotateLogFile drops roughly the oldest tenth of the file when it exceeds
// maxMB, cutting on a line boundary.
func rotateLogFile(path string, maxMB int64) {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxMB*1024*1024 {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to read log file for rotation: %v\n", err)
		return
	}

	cut := len(data) / 10
	if idx := strings.IndexByte(string(data[cut:]), '\n'); idx >= 0 {
		cut += idx + 1
	} else {
		cut = len(data)
	}

	if err := os.WriteFile(path, data[cut:], 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to rotate log file: %v\n", err)
	}
}

type MCPTool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// ensureConfigExists creates a default config.yaml if it doesn't exist
func ensureConfigExists(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	log.Printf("[INFO] Config file not found, creating default configuration at: %s", configPath)

	defaultConfigYAML := `# TinkerLens MCP Server Configuration
# Auto-generated on first run

source:
  # docker: read files through "docker exec <container_name>"
  # local: read files from project_root on disk
  driver: docker
  container_name: ""
  project_root: ""
  docker_binary: docker

scanner:
  models_dir: app/Models
  migrations_dir: database/migrations
  file_pattern: "*.php"
  extractor: regex   # regex or ast
  concurrency: 4

cache:
  policy: write-through   # write-through or cache-first
  # path: ~/.tinkerlens/scan-cache.db   (":memory:" keeps nothing across restarts)

watcher:
  enabled: false   # local driver only
  debounce: 2s

logging:
  level: info
`

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("[INFO] Created default configuration file: %s", configPath)
	return nil
}

// newFileSource builds the scanner's file collaborator for the configured driver
func newFileSource(cfg *config.Config, runner source.Runner) laravel.FileSource {
	if cfg.Source.Driver == config.DriverLocal {
		return source.NewLocalSource()
	}
	return source.NewDockerSource(runner, cfg.Source.DockerBinary)
}

func newExtractor(name string) laravel.SourceModelExtractor {
	if name == config.ExtractorAST {
		return laravel.NewASTExtractor()
	}
	return laravel.NewRegexExtractor()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	containerFlag := flag.String("container", "", "Docker container running the Laravel app (overrides config/env)")
	projectRootFlag := flag.String("project-root", "", "Local Laravel project directory; selects the local driver")
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	healthFlag := flag.Bool("health", false, "Run health check and exit")

	flag.Usage = printUsage
	flag.Parse()

	log.SetOutput(os.Stderr)

	if *versionFlag {
		fmt.Printf("TinkerLens MCP Server\n")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Commit:     %s\n", Commit)
		fmt.Printf("Build Date: %s\n", Date)
		os.Exit(0)
	}

	// .env is optional
	_ = godotenv.Load()

	if err := ensureConfigExists(*configPath); err != nil {
		log.Printf("[WARN] Failed to create default config: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("[WARN] Failed to load config file %s, using defaults: %v", *configPath, err)
		cfg = config.DefaultConfig()
	}

	// Apply CLI overrides (highest precedence)
	if *containerFlag != "" {
		cfg.Source.Driver = config.DriverDocker
		cfg.Source.ContainerName = *containerFlag
	}
	if *projectRootFlag != "" {
		cfg.Source.Driver = config.DriverLocal
		cfg.Source.ProjectRoot = *projectRootFlag
	}

	initLogger(cfg.Logging)

	if cfg.Source.Driver == config.DriverLocal && cfg.Source.ProjectRoot == "" {
		if root, err := source.DetectProjectRoot("."); err == nil {
			logger.Info("Detected Laravel project at %s", root)
			cfg.Source.ProjectRoot = root
		}
	}

	runner := source.ExecRunner{}

	if *healthFlag {
		results := healthcheck.CheckAll(cfg, runner)
		fmt.Fprint(os.Stderr, healthcheck.FormatResults(results))

		for _, result := range results {
			if result.Status != "ok" {
				fmt.Fprintln(os.Stderr, healthcheck.GetRemediation(results))
				os.Exit(1)
			}
		}
		os.Exit(0)
	}

	// Startup check is informational: the root may be supplied per call
	logger.Info("Checking dependencies...")
	for _, result := range healthcheck.CheckAll(cfg, runner) {
		if result.Status == "ok" {
			logger.Info("✓ %s: %s", result.Service, result.Message)
		} else {
			logger.Warn("✗ %s: %s", result.Service, result.Message)
		}
	}

	store, err := scancache.OpenBuntStore(cfg.Cache.Path)
	if err != nil {
		log.Fatalf("Failed to open scan cache: %v", err)
	}
	defer store.Close()

	policy, err := scancache.ParsePolicy(cfg.Cache.Policy)
	if err != nil {
		log.Fatalf("Invalid cache policy: %v", err)
	}

	scanner := laravel.NewScanner(newFileSource(cfg, runner), laravel.Options{
		ModelsDir:     cfg.Scanner.ModelsDir,
		MigrationsDir: cfg.Scanner.MigrationsDir,
		FilePattern:   cfg.Scanner.FilePattern,
		Concurrency:   cfg.Scanner.Concurrency,
		Extractor:     newExtractor(cfg.Scanner.Extractor),
	})
	cache := scancache.New(scanner, scancache.Options{Policy: policy, Store: store})

	if found, err := cache.Restore(); err != nil {
		logger.Warn("Failed to restore scan cache: %v", err)
	} else if found {
		status := cache.Status()
		logger.Info("Restored cached scan of %s", status.Root)
	}

	root := cfg.Root()
	if cfg.Watcher.Enabled && root != "" {
		fw, err := watcher.New(root, []string{cfg.Scanner.ModelsDir, cfg.Scanner.MigrationsDir}, cfg.Watcher.Debounce, cache)
		if err != nil {
			logger.Warn("Failed to start watcher: %v", err)
		} else {
			fw.Start()
			defer fw.Stop()
		}
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "tinkerlens",
		Version: Version,
	}, nil)

	registerAgentTool(server, tools.NewScanModelsTool(cache, root))
	registerAgentTool(server, tools.NewClearScanTool(cache))
	registerAgentTool(server, tools.NewCheckScanCacheTool(cache))
	registerAgentTool(server, tools.NewSplitOutputTool())
	registerAgentTool(server, tools.NewListContainersTool(runner, cfg.Source.DockerBinary))

	logger.Info("MCP TinkerLens Server started (stdio mode)")
	logger.Info("Source: %s, root: %q, cache policy: %s", cfg.Source.Driver, root, policy)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error("Server terminated: %v", err)
	}
}

func registerAgentTool(server *mcp.Server, tool MCPTool) {
	schema := getToolSchema(tool.Name())
	server.AddTool(&mcp.Tool{
		Name:        tool.Name(),
		Description: tool.Description(),
		InputSchema: schema,
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]interface{}{}
		if req.Params != nil && req.Params.Arguments != nil {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
		}
		result, err := tool.Execute(ctx, args)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: err.Error()},
				},
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: result},
			},
		}, nil
	})
}

func getToolSchema(toolName string) map[string]interface{} {
	switch toolName {
	case "scan_laravel_models":
		return map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"root": map[string]interface{}{
					"type":        "string",
					"description": "Optional: container name (docker driver) or project directory (local driver). Defaults to the configured root",
				},
				"use_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "Return the cached scan of the same root without reading the project (default: cache.policy)",
				},
				"output_format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"json", "markdown"},
					"description": "Response format (default: json)",
				},
			},
		}

	case "split_tinker_output":
		return map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"output": map[string]interface{}{
					"type":        "string",
					"description": "Raw stdout captured from php artisan tinker",
				},
			},
			"required": []string{"output"},
		}

	default:
		return map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		}
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `TinkerLens MCP Server - Laravel model explorer for AI assistants

USAGE:
    tinkerlens-mcp [OPTIONS]

EXAMPLES:
    # Start with default configuration
    tinkerlens-mcp

    # Scan models inside a Sail container
    tinkerlens-mcp -container laravel.test

    # Scan a project checked out locally
    tinkerlens-mcp -project-root ~/code/shop

    # Run health check only
    tinkerlens-mcp -health

OPTIONS:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
CONFIGURATION PRECEDENCE:
    CLI flags > Environment variables (.env included) > config.yaml > defaults

ENVIRONMENT VARIABLES:
    TINKER_SOURCE          Source driver: docker or local (default: docker)
    TINKER_CONTAINER       Container name for the docker driver
    TINKER_PROJECT_ROOT    Project directory for the local driver
    TINKER_DOCKER_BINARY   Docker CLI binary (default: docker)

    SCAN_EXTRACTOR         regex or ast (default: regex)
    SCAN_CONCURRENCY       Parallel file reads per directory (default: 4)
    SCAN_CACHE_POLICY      write-through or cache-first (default: write-through)
    SCAN_CACHE_PATH        Cache database path, ":memory:" to disable persistence
    SCAN_WATCH             Clear the cache when models or migrations change (local only)

    Logging:
    MCP_LOG_LEVEL          Log level: debug, info, warn, error (default: info)
    MCP_LOG_FILE           Also append logs to this file
`)
}
