package tools

import (
	"context"

	"github.com/doITmagic/tinkerlens/internal/scancache"
)

// ClearScanTool drops the cached model scan
type ClearScanTool struct {
	cache *scancache.Cache
}

// NewClearScanTool creates the cache clearing tool
func NewClearScanTool(cache *scancache.Cache) *ClearScanTool {
	return &ClearScanTool{cache: cache}
}

func (t *ClearScanTool) Name() string {
	return "clear_laravel_scan"
}

func (t *ClearScanTool) Description() string {
	return "Clear the cached Laravel model scan so the next scan reads the project again."
}

func (t *ClearScanTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if err := t.cache.Clear(); err != nil {
		return "", err
	}
	return toJSON(map[string]bool{"success": true})
}

// CheckScanCacheTool reports whether a model scan is cached
type CheckScanCacheTool struct {
	cache *scancache.Cache
}

// NewCheckScanCacheTool creates the cache status tool
func NewCheckScanCacheTool(cache *scancache.Cache) *CheckScanCacheTool {
	return &CheckScanCacheTool{cache: cache}
}

func (t *CheckScanCacheTool) Name() string {
	return "check_laravel_scan_cache"
}

func (t *CheckScanCacheTool) Description() string {
	return "Check whether a Laravel model scan is cached. Returns hasCachedData and the scan timestamp (epoch milliseconds)."
}

func (t *CheckScanCacheTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	return toJSON(t.cache.Status())
}
