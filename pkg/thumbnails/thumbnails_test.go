package thumbnails

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acerion/slavgps-core/pkg/events"
	"github.com/acerion/slavgps-core/pkg/jobs"
)

// writeImage writes a small PNG test image.
func writeImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 40, G: 120, B: 80, A: 255})
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

func runPipeline(t *testing.T, g *Generator, paths []string) {
	t.Helper()
	e := jobs.NewEngine(1, 1, nil)
	defer e.Shutdown(context.Background())

	j, err := g.Spawn(e, paths)
	require.NoError(t, err)

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if len(e.Jobs()) == 0 {
			_ = j
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("pipeline did not finish")
}

func TestGenerateThumbnails(t *testing.T) {
	dir := t.TempDir()
	src := writeImage(t, dir, "photo.png", 640, 480)

	bus := events.NewBus()
	g, err := NewGenerator("", DefaultSize, nil, bus)
	require.NoError(t, err)

	runPipeline(t, g, []string{src})

	thumb := g.ThumbnailPath(src)
	info, err := os.Stat(thumb)
	require.NoError(t, err, "thumbnail must exist at %s", thumb)
	assert.Greater(t, info.Size(), int64(0))

	// Thumbnail fits the bounding square, aspect preserved.
	img, err := imaging.Open(thumb)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 96, img.Bounds().Dy())

	// A redraw hint was published.
	var sawRedraw bool
	for _, e := range bus.Drain() {
		if e.Type() == "redraw.needed" {
			sawRedraw = true
		}
	}
	assert.True(t, sawRedraw)
}

func TestIdempotentSecondRun(t *testing.T) {
	dir := t.TempDir()
	src := writeImage(t, dir, "photo.png", 200, 200)

	g, err := NewGenerator("", DefaultSize, nil, nil)
	require.NoError(t, err)

	runPipeline(t, g, []string{src})
	thumb := g.ThumbnailPath(src)
	first, err := os.Stat(thumb)
	require.NoError(t, err)

	// Second run only performs freshness checks.
	runPipeline(t, g, []string{src})
	second, err := os.Stat(thumb)
	require.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime(), "thumbnail must not be rewritten")
}

func TestOutputDirectory(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "cache")
	src := writeImage(t, srcDir, "pic.png", 64, 64)

	g, err := NewGenerator(outDir, 32, nil, nil)
	require.NoError(t, err)

	runPipeline(t, g, []string{src})
	_, err = os.Stat(filepath.Join(outDir, "pic.thumb.png"))
	assert.NoError(t, err)
}

func TestDimensions(t *testing.T) {
	dir := t.TempDir()
	src := writeImage(t, dir, "photo.png", 640, 480)

	g, err := NewGenerator("", DefaultSize, nil, nil)
	require.NoError(t, err)
	runPipeline(t, g, []string{src})

	w, h, ok := g.Dimensions(src)
	require.True(t, ok)
	assert.Equal(t, 128, w)
	assert.Equal(t, 96, h)

	_, _, ok = g.Dimensions(filepath.Join(dir, "missing.png"))
	assert.False(t, ok)
}

func TestBrokenSourceSkipped(t *testing.T) {
	dir := t.TempDir()
	good := writeImage(t, dir, "good.png", 64, 64)
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))

	g, err := NewGenerator("", DefaultSize, nil, nil)
	require.NoError(t, err)
	runPipeline(t, g, []string{bad, good})

	_, err = os.Stat(g.ThumbnailPath(good))
	assert.NoError(t, err, "a broken sibling must not stop the batch")
	_, err = os.Stat(g.ThumbnailPath(bad))
	assert.Error(t, err)
}
