package scancache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/doITmagic/tinkerlens/internal/laravel"
)

// Policy selects what Scan does when a snapshot is already cached.
type Policy string

const (
	// WriteThrough always rescans and replaces the snapshot.
	WriteThrough Policy = "write-through"
	// CacheFirst returns the cached snapshot for the same root without I/O
	// until it is cleared.
	CacheFirst Policy = "cache-first"
)

// ParsePolicy validates a policy name; empty means WriteThrough.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", WriteThrough:
		return WriteThrough, nil
	case CacheFirst:
		return CacheFirst, nil
	}
	return "", fmt.Errorf("unknown cache policy %q (want %q or %q)", s, WriteThrough, CacheFirst)
}

const snapshotKey = "laravel:scan_cache"

// Scanner produces model descriptors for a root
type Scanner interface {
	Scan(ctx context.Context, root string) ([]laravel.ModelDescriptor, error)
}

// Snapshot is the cached result of one scan. It is never updated in place.
type Snapshot struct {
	Root      string                    `json:"root"`
	Data      []laravel.ModelDescriptor `json:"data"`
	Timestamp int64                     `json:"timestamp"` // epoch millis
}

// Result is returned by Scan. Models is a copy the caller may modify.
type Result struct {
	Models    []laravel.ModelDescriptor
	FromCache bool
	Timestamp int64
}

// Status reports whether a snapshot is cached
type Status struct {
	HasCachedData bool   `json:"hasCachedData"`
	Timestamp     *int64 `json:"timestamp"`
	Root          string `json:"root,omitempty"`
}

// Options configures a Cache
type Options struct {
	Policy Policy
	Store  Store            // optional persistence
	Now    func() time.Time // test hook
}

// Cache holds the single scan snapshot slot
type Cache struct {
	scanner Scanner
	policy  Policy
	store   Store
	now     func() time.Time

	mu   sync.RWMutex
	snap *Snapshot
	gen  uint64 // bumped by Clear; scans started before a Clear never fill the slot

	group singleflight.Group
}

// New creates a cache in front of scanner
func New(scanner Scanner, opts Options) *Cache {
	if opts.Policy == "" {
		opts.Policy = WriteThrough
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		scanner: scanner,
		policy:  opts.Policy,
		store:   opts.Store,
		now:     opts.Now,
	}
}

// Policy returns the default policy used by Scan
func (c *Cache) Policy() Policy {
	return c.policy
}

// Scan applies the cache's default policy
func (c *Cache) Scan(ctx context.Context, root string) (*Result, error) {
	return c.ScanWith(ctx, root, c.policy == CacheFirst)
}

// ScanWith scans root. With cacheFirst set and a snapshot for the same root
// in the slot, the snapshot is returned without touching the project.
// Otherwise a fresh scan replaces the slot. Concurrent scans of the same
// root share one underlying scan.
func (c *Cache) ScanWith(ctx context.Context, root string, cacheFirst bool) (*Result, error) {
	if strings.TrimSpace(root) == "" {
		return nil, &laravel.ConfigurationError{Field: "root"}
	}

	if cacheFirst {
		if snap := c.snapshot(); snap != nil && snap.Root == root {
			return &Result{Models: cloneModels(snap.Data), FromCache: true, Timestamp: snap.Timestamp}, nil
		}
	}

	// The shared scan outlives any single caller; each caller still stops
	// waiting when its own context ends.
	scanCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(root, func() (any, error) {
		gen := c.generation()
		models, err := c.scanner.Scan(scanCtx, root)
		if err != nil {
			return nil, err
		}
		snap := &Snapshot{Root: root, Data: models, Timestamp: c.now().UnixMilli()}
		c.replace(snap, gen)
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		snap := res.Val.(*Snapshot)
		return &Result{Models: cloneModels(snap.Data), FromCache: false, Timestamp: snap.Timestamp}, nil
	}
}

// Clear drops the snapshot and its persisted copy, whether or not one exists.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = nil
	c.gen++

	if c.store != nil {
		if err := c.store.Delete(snapshotKey); err != nil {
			return fmt.Errorf("failed to clear persisted scan: %w", err)
		}
	}
	return nil
}

// Status reports the cached snapshot, if any
func (c *Cache) Status() Status {
	snap := c.snapshot()
	if snap == nil {
		return Status{}
	}
	ts := snap.Timestamp
	return Status{HasCachedData: true, Timestamp: &ts, Root: snap.Root}
}

// Restore loads a persisted snapshot into the slot. It reports whether one
// was found.
func (c *Cache) Restore() (bool, error) {
	if c.store == nil {
		return false, nil
	}

	data, found, err := c.store.Load(snapshotKey)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return false, fmt.Errorf("failed to decode persisted scan: %w", err)
	}

	c.mu.Lock()
	c.snap = &snap
	c.mu.Unlock()
	return true, nil
}

func (c *Cache) snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Cache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// replace fills the slot unless a Clear happened after the scan began.
// The store write is ordered with Clear by mu.
func (c *Cache) replace(snap *Snapshot, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		log.Printf("[INFO] Scan of %s finished after the cache was cleared; not cached", snap.Root)
		return
	}
	c.snap = snap

	if c.store == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[WARN] Failed to encode scan snapshot: %v", err)
		return
	}
	if err := c.store.Save(snapshotKey, data); err != nil {
		log.Printf("[WARN] Failed to persist scan snapshot: %v", err)
	}
}

// cloneModels copies descriptors so callers cannot modify the cached snapshot
func cloneModels(models []laravel.ModelDescriptor) []laravel.ModelDescriptor {
	if models == nil {
		return nil
	}
	out := make([]laravel.ModelDescriptor, len(models))
	for i, m := range models {
		m.Columns = slices.Clone(m.Columns)
		m.Relations = slices.Clone(m.Relations)
		m.Methods = slices.Clone(m.Methods)
		out[i] = m
	}
	return out
}
