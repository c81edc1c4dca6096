package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// laravelMarkers identify a Laravel project root, most specific first
var laravelMarkers = []string{"artisan", "composer.json"}

// DetectProjectRoot walks up from start until it finds a directory holding a
// Laravel marker file. Paths inside vendor/ are rejected so a package's own
// composer.json is never mistaken for the application.
func DetectProjectRoot(start string) (string, error) {
	absPath, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absPath
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		current = filepath.Dir(absPath)
	}

	for {
		if !strings.Contains(filepath.ToSlash(current)+"/", "/vendor/") {
			for _, marker := range laravelMarkers {
				if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
					return current, nil
				}
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("no Laravel project (artisan or composer.json) found above %s", absPath)
}
