package dem

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Source identifies an on-disk DEM file format.
type Source int

const (
	SourceUnknown Source = iota
	// SourceSRTM is the NASA SRTM ".hgt" raw layout; the grid dimension
	// is deduced from the file size (1201x1201 for SRTM3, 3601x3601 for
	// SRTM1).
	SourceSRTM
)

// String returns the source name, used as a metric label.
func (s Source) String() string {
	switch s {
	case SourceSRTM:
		return "srtm"
	default:
		return "unknown"
	}
}

// SRTM file sizes: dim*dim samples of big-endian int16.
const (
	srtm3Dim = 1201
	srtm1Dim = 3601

	srtm3Size = srtm3Dim * srtm3Dim * 2
	srtm1Size = srtm1Dim * srtm1Dim * 2
)

// srtmNameRegex matches SRTM tile names like "N51E013.hgt" or
// "s33w070.hgt", optionally with a zip-style double extension stripped
// by the downloader.
var srtmNameRegex = regexp.MustCompile(`(?i)^([NS])(\d{1,2})([EW])(\d{1,3})\.hgt$`)

// Recognize examines a file's name and size and reports the DEM source
// it holds, or SourceUnknown.
func Recognize(path string) Source {
	base := filepath.Base(path)
	if !srtmNameRegex.MatchString(base) {
		return SourceUnknown
	}

	info, err := os.Stat(path)
	if err != nil {
		return SourceUnknown
	}
	if info.Size() != srtm3Size && info.Size() != srtm1Size {
		return SourceUnknown
	}
	return SourceSRTM
}

// srtmCorner parses the south-west corner out of an SRTM tile name.
func srtmCorner(base string) (lat, lon int, err error) {
	m := srtmNameRegex.FindStringSubmatch(base)
	if m == nil {
		return 0, 0, fmt.Errorf("not an SRTM tile name: %q", base)
	}

	lat, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, err
	}
	if strings.EqualFold(m[1], "S") {
		lat = -lat
	}

	lon, err = strconv.Atoi(m[4])
	if err != nil {
		return 0, 0, err
	}
	if strings.EqualFold(m[3], "W") {
		lon = -lon
	}
	return lat, lon, nil
}

// loadSRTM reads one SRTM ".hgt" tile. The raw layout is rows of
// big-endian int16 starting at the north-west corner; the tile model
// wants columns running south to north, so samples are transposed on
// the way in.
func loadSRTM(path string) (*Tile, error) {
	base := filepath.Base(path)
	lat, lon, err := srtmCorner(base)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SRTM tile: %w", err)
	}

	var dim int
	switch len(data) {
	case srtm3Size:
		dim = srtm3Dim
	case srtm1Size:
		dim = srtm1Dim
	default:
		return nil, fmt.Errorf("unexpected SRTM file size %d for %q", len(data), base)
	}

	columns := make([][]int16, dim)
	for col := range columns {
		columns[col] = make([]int16, dim)
	}
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			v := int16(binary.BigEndian.Uint16(data[(row*dim+col)*2:]))
			// Row 0 is the northernmost row.
			columns[col][dim-1-row] = v
		}
	}

	spacing := 3600.0 / float64(dim-1)
	return &Tile{
		HorizUnit:    LatLonArcSeconds,
		MinEast:      float64(lon) * 3600,
		MaxEast:      float64(lon)*3600 + 3600,
		MinNorth:     float64(lat) * 3600,
		MaxNorth:     float64(lat)*3600 + 3600,
		EastSpacing:  spacing,
		NorthSpacing: spacing,
		columns:      columns,
	}, nil
}

// LoadTile reads a DEM tile from disk, dispatching on the recognized
// source format.
func LoadTile(path string) (*Tile, Source, error) {
	source := Recognize(path)
	switch source {
	case SourceSRTM:
		tile, err := loadSRTM(path)
		return tile, source, err
	default:
		return nil, SourceUnknown, fmt.Errorf("unsupported DEM format: %q", filepath.Base(path))
	}
}
