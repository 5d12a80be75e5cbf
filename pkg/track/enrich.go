package track

import (
	"github.com/acerion/slavgps-core/pkg/dem"
)

// ApplyDEMData fills point altitudes from the DEM cache and returns how
// many points changed. With skipExisting only points lacking altitude
// are touched. Per-point lookup failures are skips, not errors.
func (t *Track) ApplyDEMData(cache *dem.Cache, skipExisting bool) int {
	changed := 0
	for _, tp := range t.Points {
		if skipExisting && tp.HasAltitude() {
			continue
		}
		elev, ok := cache.ElevationByCoord(tp.Coord, dem.InterpolationBilinear)
		if !ok {
			continue
		}
		if tp.HasAltitude() && tp.Altitude == elev {
			continue
		}
		tp.Altitude = elev
		changed++
	}
	return changed
}

// ApplyDEMDataLastPoint enriches only the final trackpoint. Used while
// a realtime track is growing.
func (t *Track) ApplyDEMDataLastPoint(cache *dem.Cache) int {
	last := t.Last()
	if last == nil {
		return 0
	}
	elev, ok := cache.ElevationByCoord(last.Coord, dem.InterpolationBilinear)
	if !ok {
		return 0
	}
	if last.HasAltitude() && last.Altitude == elev {
		return 0
	}
	last.Altitude = elev
	return 1
}

// SmoothMissingElevation fills runs of altitude-less points lying
// between two points with altitude. With flat the left neighbor's
// altitude is copied; otherwise values are linearly interpolated.
// Runs touching either end of the track are left unchanged. Returns
// the number of points filled.
func (t *Track) SmoothMissingElevation(flat bool) int {
	filled := 0
	left := -1
	for i, tp := range t.Points {
		if !tp.HasAltitude() {
			continue
		}
		if left >= 0 && i-left > 1 {
			a := t.Points[left].Altitude
			b := tp.Altitude
			for j := left + 1; j < i; j++ {
				if flat {
					t.Points[j].Altitude = a
				} else {
					frac := float64(j-left) / float64(i-left)
					t.Points[j].Altitude = a + frac*(b-a)
				}
				filled++
			}
		}
		left = i
	}
	return filled
}
