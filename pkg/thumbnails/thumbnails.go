// Package thumbnails materializes image thumbnails for waypoint photos
// in a background job. Runs are idempotent: an existing thumbnail newer
// than its source is never regenerated.
package thumbnails

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/acerion/slavgps-core/pkg/events"
	"github.com/acerion/slavgps-core/pkg/jobs"
	"github.com/acerion/slavgps-core/pkg/monitoring"
)

// DefaultSize is the bounding square for generated thumbnails, in
// pixels.
const DefaultSize = 128

// dimensionCacheSize bounds the decoded-dimension cache.
const dimensionCacheSize = 1024

// Generator creates and tracks thumbnails. Safe for concurrent use;
// the dimension cache is shared between the pipeline job and the
// waypoint views asking for display sizes.
type Generator struct {
	outDir string // empty: alongside each source image
	size   int

	dims   *lru.Cache[string, image.Point]
	logger *slog.Logger
	bus    *events.Bus
}

// NewGenerator creates a generator writing thumbnails into outDir, or
// alongside the sources when outDir is empty.
func NewGenerator(outDir string, size int, logger *slog.Logger, bus *events.Bus) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = DefaultSize
	}
	dims, err := lru.New[string, image.Point](dimensionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating dimension cache: %w", err)
	}
	return &Generator{
		outDir: outDir,
		size:   size,
		dims:   dims,
		logger: logger.With("component", "thumbnails"),
		bus:    bus,
	}, nil
}

// ThumbnailPath returns where the thumbnail for a source image lives.
func (g *Generator) ThumbnailPath(src string) string {
	dir := filepath.Dir(src)
	if g.outDir != "" {
		dir = g.outDir
	}
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+".thumb"+ext)
}

// fresh reports whether an up-to-date thumbnail already exists.
func (g *Generator) fresh(src string) bool {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	thumbInfo, err := os.Stat(g.ThumbnailPath(src))
	if err != nil {
		return false
	}
	return !thumbInfo.ModTime().Before(srcInfo.ModTime())
}

// generateOne decodes, scales and writes one thumbnail, caching the
// thumbnail dimensions for the waypoint views.
func (g *Generator) generateOne(src string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", src, err)
	}
	thumb := imaging.Fit(img, g.size, g.size, imaging.Lanczos)
	dst := g.ThumbnailPath(src)
	if g.outDir != "" {
		if err := os.MkdirAll(g.outDir, 0o755); err != nil {
			return fmt.Errorf("creating thumbnail directory: %w", err)
		}
	}
	if err := imaging.Save(thumb, dst); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	b := thumb.Bounds()
	g.dims.Add(src, image.Point{X: b.Dx(), Y: b.Dy()})
	return nil
}

// Dimensions returns the cached thumbnail size for a source image,
// reading the thumbnail from disk on a cache miss.
func (g *Generator) Dimensions(src string) (int, int, bool) {
	if p, ok := g.dims.Get(src); ok {
		return p.X, p.Y, true
	}
	img, err := imaging.Open(g.ThumbnailPath(src))
	if err != nil {
		return 0, 0, false
	}
	b := img.Bounds()
	p := image.Point{X: b.Dx(), Y: b.Dy()}
	g.dims.Add(src, p)
	return p.X, p.Y, true
}

// Run iterates the image paths inside a background job, skipping fresh
// thumbnails and reporting done/total progress. On completion a redraw
// hint is published so the waypoint visualization refreshes.
func (g *Generator) Run(j *jobs.Job, paths []string) error {
	total := len(paths)
	created, failed := 0, 0

	for i, src := range paths {
		if !g.fresh(src) {
			if err := g.generateOne(src); err != nil {
				failed++
				monitoring.ThumbnailsGenerated.WithLabelValues("error").Inc()
				g.logger.Warn("thumbnail failed", "path", src, "error", err)
			} else {
				created++
				monitoring.ThumbnailsGenerated.WithLabelValues("success").Inc()
			}
		}
		if !j.Progress(i+1, total) {
			return jobs.ErrCancelled
		}
	}

	g.logger.Info("thumbnail run finished",
		"total", total, "created", created, "failed", failed)
	if g.bus != nil {
		g.bus.Publish(events.RedrawNeeded{Reason: "thumbnails"})
	}
	return nil
}

// Spawn schedules a thumbnail run for the given paths on the CPU pool.
func (g *Generator) Spawn(engine *jobs.Engine, paths []string) (*jobs.Job, error) {
	description := fmt.Sprintf("Creating %d thumbnails", len(paths))
	return engine.Spawn(jobs.CpuBound, description, len(paths), func(j *jobs.Job) error {
		return g.Run(j, paths)
	}, nil)
}
