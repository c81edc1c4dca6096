package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/doITmagic/tinkerlens/internal/laravel"
	"github.com/doITmagic/tinkerlens/internal/scancache"
)

// ScanModelsTool scans a Laravel project for Eloquent models
type ScanModelsTool struct {
	cache       *scancache.Cache
	defaultRoot string
}

// NewScanModelsTool creates the scan tool. defaultRoot is used when the
// caller does not pass one.
func NewScanModelsTool(cache *scancache.Cache, defaultRoot string) *ScanModelsTool {
	return &ScanModelsTool{cache: cache, defaultRoot: defaultRoot}
}

type scanResponse struct {
	Success   bool                      `json:"success"`
	Data      []laravel.ModelDescriptor `json:"data"`
	FromCache bool                      `json:"fromCache"`
	Timestamp int64                     `json:"timestamp"`
}

func (t *ScanModelsTool) Name() string {
	return "scan_laravel_models"
}

func (t *ScanModelsTool) Description() string {
	return "Scan a Laravel project for Eloquent models. Returns every model under app/Models with its table name, columns (from database/migrations), relationships (hasMany, belongsTo, hasOne, belongsToMany) and public methods. Set use_cache to reuse the last scan without touching the project."
}

func (t *ScanModelsTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	root := stringArg(args, "root")
	if root == "" {
		root = t.defaultRoot
	}

	cacheFirst := t.cache.Policy() == scancache.CacheFirst
	if v, ok := boolArg(args, "use_cache"); ok {
		cacheFirst = v
	}

	res, err := t.cache.ScanWith(ctx, root, cacheFirst)
	if err != nil {
		return "", err
	}

	if outputFormat(args) == "markdown" {
		return renderModelsMarkdown(root, res), nil
	}

	return toJSON(scanResponse{
		Success:   true,
		Data:      res.Models,
		FromCache: res.FromCache,
		Timestamp: res.Timestamp,
	})
}

func renderModelsMarkdown(root string, res *scancache.Result) string {
	var b strings.Builder
	title := cases.Title(language.English, cases.NoLower)

	fmt.Fprintf(&b, "# Laravel models in %s\n\n", root)
	source := "fresh scan"
	if res.FromCache {
		source = "cached scan"
	}
	fmt.Fprintf(&b, "%d models, %s at %s\n", len(res.Models), source,
		time.UnixMilli(res.Timestamp).UTC().Format(time.RFC3339))

	for _, m := range res.Models {
		fmt.Fprintf(&b, "\n## %s (`%s`)\n\n", m.Name, m.TableName)
		if len(m.Columns) > 0 {
			fmt.Fprintf(&b, "**Columns:** %s\n\n", strings.Join(m.Columns, ", "))
		} else {
			b.WriteString("**Columns:** none found\n\n")
		}
		for _, r := range m.Relations {
			fmt.Fprintf(&b, "- %s: %s → %s\n", title.String(string(r.Kind)), r.Method, r.TargetModel)
		}
		if len(m.Methods) > 0 {
			fmt.Fprintf(&b, "\n**Methods:** %s\n", strings.Join(m.Methods, ", "))
		}
	}

	return b.String()
}
