package dem

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/acerion/slavgps-core/pkg/geo"
)

// writeSRTM writes a valid SRTM3 tile named for the given corner, with
// every sample set to elev.
func writeSRTM(t *testing.T, dir, name string, elev int16) string {
	t.Helper()

	data := make([]byte, srtm3Size)
	for i := 0; i < srtm3Dim*srtm3Dim; i++ {
		binary.BigEndian.PutUint16(data[i*2:], uint16(elev))
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRecognizeSRTM(t *testing.T) {
	dir := t.TempDir()
	path := writeSRTM(t, dir, "N51E013.hgt", 42)

	if src := Recognize(path); src != SourceSRTM {
		t.Errorf("expected SRTM, got %v", src)
	}

	// Wrong size.
	bad := filepath.Join(dir, "N52E013.hgt")
	if err := os.WriteFile(bad, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	if src := Recognize(bad); src != SourceUnknown {
		t.Errorf("expected unknown for truncated file, got %v", src)
	}

	// Wrong name.
	if src := Recognize(filepath.Join(dir, "elevation.bin")); src != SourceUnknown {
		t.Errorf("expected unknown for unrelated name, got %v", src)
	}
}

func TestLoadSRTMCorner(t *testing.T) {
	dir := t.TempDir()
	path := writeSRTM(t, dir, "S33W070.hgt", 2500)

	tile, src, err := LoadTile(path)
	if err != nil {
		t.Fatal(err)
	}
	if src != SourceSRTM {
		t.Errorf("expected SRTM source, got %v", src)
	}
	if tile.MinNorth != -33*3600 || tile.MinEast != -70*3600 {
		t.Errorf("unexpected corner: east %f north %f", tile.MinEast, tile.MinNorth)
	}

	c := geo.NewCoordLatLon(geo.LatLon{Lat: -32.5, Lon: -69.5})
	elev, ok := tile.ElevationAt(c, InterpolationNone)
	if !ok || elev != 2500 {
		t.Errorf("expected 2500, got %f (ok=%v)", elev, ok)
	}
}

func TestCacheRefcount(t *testing.T) {
	dir := t.TempDir()
	path := writeSRTM(t, dir, "N51E013.hgt", 42)

	c := NewCache(nil)

	h1, err := c.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := c.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if h1.Tile() != h2.Tile() {
		t.Error("expected both handles to share one in-memory tile")
	}
	if c.Len() != 1 {
		t.Fatalf("expected one cached tile, got %d", c.Len())
	}

	h1.Release()
	if _, ok := c.Get(path); !ok {
		t.Fatal("tile must stay cached while a handle remains")
	}

	h2.Release()
	if _, ok := c.Get(path); ok {
		t.Fatal("tile must be evicted when the last handle is released")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestCacheReleaseIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeSRTM(t, dir, "N51E013.hgt", 42)

	c := NewCache(nil)
	h1, err := c.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := c.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	h1.Release()
	h1.Release() // second release must not steal h2's reference
	if _, ok := c.Get(path); !ok {
		t.Fatal("double release dropped a still-referenced tile")
	}
	h2.Release()
}

func TestCacheLoadFailureDoesNotPoison(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "N00E000.hgt")

	c := NewCache(nil)
	if _, err := c.Load(missing); err == nil {
		t.Fatal("expected load failure")
	}
	if c.Len() != 0 {
		t.Fatal("failed load must not create a cache entry")
	}

	// Creating the file afterwards makes a retry succeed.
	writeSRTM(t, dir, "N00E000.hgt", 7)
	h, err := c.Load(missing)
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	h.Release()
}

func TestCacheLoadMany(t *testing.T) {
	dir := t.TempDir()
	p1 := writeSRTM(t, dir, "N51E013.hgt", 42)
	p2 := writeSRTM(t, dir, "N52E013.hgt", 43)

	c := NewCache(nil)
	var calls int
	handles, err := c.LoadMany(context.Background(), []string{p1, p2}, func(done, total int) bool {
		calls++
		if total != 2 {
			t.Errorf("expected total 2, got %d", total)
		}
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(handles) != 2 {
		t.Fatalf("expected 2 handles, got %d", len(handles))
	}
	if calls != 2 {
		t.Errorf("expected 2 progress calls, got %d", calls)
	}
	for _, h := range handles {
		h.Release()
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache after releasing all, got %d", c.Len())
	}
}

func TestCacheLoadManyCancel(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSRTM(t, dir, "N51E013.hgt", 42),
		writeSRTM(t, dir, "N52E013.hgt", 43),
		writeSRTM(t, dir, "N53E013.hgt", 44),
	}

	c := NewCache(nil)
	_, err := c.LoadMany(context.Background(), paths, func(done, total int) bool {
		return false // cancel at the first checkpoint
	})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("cancelled load must release everything, got %d entries", c.Len())
	}
}

func TestElevationByCoord(t *testing.T) {
	dir := t.TempDir()
	p1 := writeSRTM(t, dir, "N51E013.hgt", 42)
	p2 := writeSRTM(t, dir, "N52E013.hgt", 99)

	c := NewCache(nil)
	h1, err := c.Load(p1)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := c.Load(p2)
	if err != nil {
		t.Fatal(err)
	}
	defer h1.Release()
	defer h2.Release()

	// Covered by the second tile only.
	elev, ok := c.ElevationByCoord(geo.NewCoordLatLon(geo.LatLon{Lat: 52.5, Lon: 13.5}), InterpolationNone)
	if !ok || elev != 99 {
		t.Errorf("expected 99, got %f (ok=%v)", elev, ok)
	}

	// Covered by neither.
	if _, ok := c.ElevationByCoord(geo.NewCoordLatLon(geo.LatLon{Lat: 10, Lon: 10}), InterpolationNone); ok {
		t.Error("expected no elevation outside every tile")
	}
}
