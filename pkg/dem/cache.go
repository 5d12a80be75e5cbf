package dem

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/acerion/slavgps-core/pkg/geo"
	"github.com/acerion/slavgps-core/pkg/monitoring"
	"github.com/acerion/slavgps-core/pkg/tracing"
)

// ErrCancelled is returned by LoadMany when the progress callback asked
// for cancellation.
var ErrCancelled = errors.New("dem: load cancelled")

// loadManyParallelism bounds concurrent tile reads in LoadMany.
const loadManyParallelism = 4

// Progress is called between work units with the number of finished
// items. Returning false requests cooperative cancellation.
type Progress func(done, total int) bool

// Cache holds loaded DEM tiles keyed by absolute file path, with at
// most one in-memory copy per path. Tiles are immutable once loaded;
// handles share ownership and the entry is evicted as soon as the last
// handle is released.
//
// The cache is safe for concurrent use under a single internal mutex.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string // insertion order, for deterministic elevation walks
	logger  *slog.Logger
}

type cacheEntry struct {
	tile     *Tile
	refcount int
}

// TileHandle keeps a cached tile alive. Release must be called exactly
// once; releasing the last handle evicts the tile.
type TileHandle struct {
	cache *Cache
	path  string
	tile  *Tile
	once  sync.Once
}

// Tile returns the underlying immutable tile.
func (h *TileHandle) Tile() *Tile {
	return h.tile
}

// Path returns the cache key the handle refers to.
func (h *TileHandle) Path() string {
	return h.path
}

// Release drops this handle's reference. Safe to call more than once;
// only the first call has an effect.
func (h *TileHandle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.cache.unref(h.path)
	})
}

// NewCache creates an empty DEM cache.
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[string]*cacheEntry),
		logger:  logger.With("component", "dem-cache"),
	}
}

// normalizePath makes the cache key absolute and clean so that the same
// file always maps to the same entry.
func normalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Load reads the tile at path into the cache, or bumps the reference of
// an already-loaded copy, and returns a handle that keeps it alive.
// A failed load leaves the cache untouched; a later Load retries.
func (c *Cache) Load(path string) (*TileHandle, error) {
	key := normalizePath(path)
	_, span := tracing.StartTileLoad(context.Background(), key)
	defer span.End()

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		entry.refcount++
		c.mu.Unlock()
		span.SetAttributes(tracing.CacheAttributes(true, key)...)
		monitoring.DemCacheHits.Inc()
		return &TileHandle{cache: c, path: key, tile: entry.tile}, nil
	}
	c.mu.Unlock()

	span.SetAttributes(tracing.CacheAttributes(false, key)...)
	monitoring.DemCacheMisses.Inc()

	// Read outside the lock; tile reads can take a while and the cache
	// must stay responsive for elevation queries.
	start := time.Now()
	tile, source, err := LoadTile(key)
	monitoring.RecordDemTileLoad(source.String(), time.Since(start), err == nil)
	if err != nil {
		c.logger.Warn("tile load failed", "path", key, "error", err)
		monitoring.RecordError("dem-cache", "tile-load")
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String(tracing.AttrDemSource, source.String()))

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		// Lost a race with a concurrent Load of the same path; keep the
		// copy that won.
		entry.refcount++
		return &TileHandle{cache: c, path: key, tile: entry.tile}, nil
	}
	c.entries[key] = &cacheEntry{tile: tile, refcount: 1}
	c.order = append(c.order, key)
	monitoring.DemCacheSize.Set(float64(len(c.entries)))

	c.logger.Debug("tile loaded", "path", key, "source", source.String(),
		"columns", tile.Columns(), "rows", tile.Rows())
	return &TileHandle{cache: c, path: key, tile: tile}, nil
}

// Get returns the already-loaded tile for path without creating one and
// without touching its reference count.
func (c *Cache) Get(path string) (*Tile, bool) {
	key := normalizePath(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.tile, true
}

// Len returns the number of cached tiles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) unref(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		// Fine - the load list was probably aborted partway through.
		return
	}
	entry.refcount--
	if entry.refcount > 0 {
		return
	}
	delete(c.entries, key)
	for i, p := range c.order {
		if p == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	monitoring.DemCacheSize.Set(float64(len(c.entries)))
	c.logger.Debug("tile evicted", "path", key)
}

// LoadMany loads a list of tiles, reporting progress after each one.
// Paths that fail to load are skipped. When the progress callback
// requests cancellation, already-acquired handles are released and
// ErrCancelled is returned.
func (c *Cache) LoadMany(ctx context.Context, paths []string, progress Progress) ([]*TileHandle, error) {
	total := len(paths)
	if total == 0 {
		return nil, nil
	}

	var (
		mu        sync.Mutex
		handles   []*TileHandle
		done      int
		cancelled bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadManyParallelism)

	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		path := path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			handle, err := c.Load(path)

			mu.Lock()
			defer mu.Unlock()
			if cancelled {
				handle.Release()
				return context.Canceled
			}
			if err == nil {
				handles = append(handles, handle)
			}
			done++
			if progress != nil && !progress(done, total) {
				cancelled = true
				return context.Canceled
			}
			return nil
		})
	}

	// Workers only ever return context errors; load errors are skips,
	// not failures. The outcome is decided from the flags below.
	_ = g.Wait()

	mu.Lock()
	defer mu.Unlock()
	if cancelled {
		for _, h := range handles {
			h.Release()
		}
		return nil, ErrCancelled
	}
	// Only a context error from the caller's context propagates; the
	// group's own context is always cancelled once Wait returns.
	if ctxErr := ctx.Err(); ctxErr != nil {
		for _, h := range handles {
			h.Release()
		}
		return nil, ctxErr
	}
	return handles, nil
}

// ElevationByCoord walks the loaded tiles in load order and returns the
// first elevation any of them yields for the coordinate. The walk order
// is deterministic given the set of loaded tiles.
func (c *Cache) ElevationByCoord(coord geo.Coord, method Interpolation) (float64, bool) {
	c.mu.Lock()
	tiles := make([]*Tile, 0, len(c.order))
	for _, key := range c.order {
		tiles = append(tiles, c.entries[key].tile)
	}
	c.mu.Unlock()

	for _, tile := range tiles {
		if elev, ok := tile.ElevationAt(coord, method); ok {
			monitoring.RecordElevationLookup(method.String(), true)
			return elev, true
		}
	}
	monitoring.RecordElevationLookup(method.String(), false)
	return 0, false
}
