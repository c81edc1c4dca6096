package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/doITmagic/tinkerlens/internal/laravel"
)

// LocalSource reads a Laravel project checked out on disk. The scan root is
// the project directory.
type LocalSource struct{}

var _ laravel.FileSource = (*LocalSource)(nil)

// NewLocalSource creates a filesystem-backed source
func NewLocalSource() *LocalSource {
	return &LocalSource{}
}

// ListFiles walks root/dir recursively and returns the files whose base name
// matches pattern, as slash-separated paths relative to root, sorted.
func (s *LocalSource) ListFiles(ctx context.Context, root, dir, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}

	base := filepath.Join(root, filepath.FromSlash(dir))
	var files []string

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", base, err)
	}

	sort.Strings(files)
	return files, nil
}

// ReadFile reads path relative to root
func (s *LocalSource) ReadFile(ctx context.Context, root, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
