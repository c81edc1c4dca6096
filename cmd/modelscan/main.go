package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/doITmagic/tinkerlens/internal/config"
	"github.com/doITmagic/tinkerlens/internal/laravel"
	"github.com/doITmagic/tinkerlens/internal/source"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	local := flag.Bool("local", false, "Treat the root argument as a local project directory")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if flag.NArg() > 1 {
		log.Fatalf("usage: %s [-config file] [-local] [root]", os.Args[0])
	}
	if *local {
		cfg.Source.Driver = config.DriverLocal
	}
	if flag.NArg() == 1 {
		if cfg.Source.Driver == config.DriverLocal {
			cfg.Source.ProjectRoot = flag.Arg(0)
		} else {
			cfg.Source.ContainerName = flag.Arg(0)
		}
	}

	if cfg.Source.Driver == config.DriverLocal && cfg.Source.ProjectRoot == "" {
		root, err := source.DetectProjectRoot(".")
		if err != nil {
			log.Fatalf("detect: %v", err)
		}
		cfg.Source.ProjectRoot = root
	}

	var src laravel.FileSource = source.NewDockerSource(nil, cfg.Source.DockerBinary)
	if cfg.Source.Driver == config.DriverLocal {
		src = source.NewLocalSource()
	}

	var extractor laravel.SourceModelExtractor = laravel.NewRegexExtractor()
	if cfg.Scanner.Extractor == config.ExtractorAST {
		extractor = laravel.NewASTExtractor()
	}

	scanner := laravel.NewScanner(src, laravel.Options{
		ModelsDir:     cfg.Scanner.ModelsDir,
		MigrationsDir: cfg.Scanner.MigrationsDir,
		FilePattern:   cfg.Scanner.FilePattern,
		Concurrency:   cfg.Scanner.Concurrency,
		Extractor:     extractor,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	models, err := scanner.Scan(ctx, cfg.Root())
	if err != nil {
		log.Fatalf("scan: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(models); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
