package laravel

import (
	"context"
	"log"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultModelsDir     = "app/Models"
	DefaultMigrationsDir = "database/migrations"
	DefaultFilePattern   = "*.php"
)

// FileSource gives the scanner access to a project's files. root identifies
// the project (a container name or a local directory); paths returned by
// ListFiles are passed back to ReadFile unchanged.
type FileSource interface {
	ListFiles(ctx context.Context, root, dir, pattern string) ([]string, error)
	ReadFile(ctx context.Context, root, path string) (string, error)
}

// Options configures a Scanner. Zero values fall back to Laravel defaults.
type Options struct {
	ModelsDir     string
	MigrationsDir string
	FilePattern   string

	// Concurrency bounds parallel reads within one file category.
	// Values below 2 read files one at a time.
	Concurrency int

	Extractor SourceModelExtractor
}

// Scanner builds model descriptors from a Laravel project's models and
// migrations. It holds no state between scans.
type Scanner struct {
	source FileSource
	opts   Options
}

// NewScanner creates a scanner reading through source
func NewScanner(source FileSource, opts Options) *Scanner {
	if opts.ModelsDir == "" {
		opts.ModelsDir = DefaultModelsDir
	}
	if opts.MigrationsDir == "" {
		opts.MigrationsDir = DefaultMigrationsDir
	}
	if opts.FilePattern == "" {
		opts.FilePattern = DefaultFilePattern
	}
	if opts.Extractor == nil {
		opts.Extractor = NewRegexExtractor()
	}
	return &Scanner{source: source, opts: opts}
}

// Scan reads every migration and then every model under root. Models are
// returned in the order the source listed them. Any listing or read failure
// aborts the scan with a *ScanError.
func (s *Scanner) Scan(ctx context.Context, root string) ([]ModelDescriptor, error) {
	if strings.TrimSpace(root) == "" {
		return nil, &ConfigurationError{Field: "root"}
	}

	start := time.Now()

	schema, err := s.scanMigrations(ctx, root)
	if err != nil {
		return nil, err
	}

	models, err := s.scanModels(ctx, root, schema)
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] Scanned %s: %d models, %d tables (%s)", root, len(models), len(schema), time.Since(start).Round(time.Millisecond))
	return models, nil
}

func (s *Scanner) scanMigrations(ctx context.Context, root string) (TableSchema, error) {
	contents, err := s.readCategory(ctx, root, s.opts.MigrationsDir)
	if err != nil {
		return nil, err
	}

	// Applied in listing order so a later migration for the same table wins.
	schema := make(TableSchema)
	for _, f := range contents {
		if table, columns, ok := s.opts.Extractor.ExtractTable(f.content); ok {
			schema.Record(table, columns)
		}
	}
	return schema, nil
}

func (s *Scanner) scanModels(ctx context.Context, root string, schema TableSchema) ([]ModelDescriptor, error) {
	contents, err := s.readCategory(ctx, root, s.opts.ModelsDir)
	if err != nil {
		return nil, err
	}

	models := make([]ModelDescriptor, 0, len(contents))
	for _, f := range contents {
		name := ModelName(f.path)
		if name == "" {
			continue
		}
		model := s.opts.Extractor.ExtractModel(name, f.content)
		model.Columns = schema.Columns(model.TableName)
		models = append(models, model)
	}
	return models, nil
}

type sourceFile struct {
	path    string
	content string
}

// readCategory lists dir and reads every file, keeping listing order.
func (s *Scanner) readCategory(ctx context.Context, root, dir string) ([]sourceFile, error) {
	paths, err := s.source.ListFiles(ctx, root, dir, s.opts.FilePattern)
	if err != nil {
		return nil, &ScanError{Op: "list", Path: dir, Err: err}
	}

	files := make([]sourceFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.opts.Concurrency, 1))

	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &ScanError{Op: "read", Path: p, Err: err}
			}
			content, err := s.source.ReadFile(gctx, root, p)
			if err != nil {
				return &ScanError{Op: "read", Path: p, Err: err}
			}
			files[i] = sourceFile{path: p, content: content}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// ModelName derives the model name from a file path: the base name without
// its extension.
func ModelName(p string) string {
	base := path.Base(filepath.ToSlash(p))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
