package waypoint

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/acerion/slavgps-core/pkg/geo"
)

// DefaultAutoNameDigits is the width of the auto-name number space.
const DefaultAutoNameDigits = 3

// Store is the per-container waypoint collection: uid-keyed, iterable
// in insertion order, with an incrementally maintained bounding box.
// It is not safe for concurrent use; the single mutator owns it.
type Store struct {
	byUID   map[int64]*Waypoint
	order   []int64
	bbox    geo.LatLonBBox
	nextUID func() int64

	autoNameDigits  int
	autoNameRegex   *regexp.Regexp
	highestWpNumber int
}

// NewStore creates an empty store. Waypoint uids are drawn from
// nextUID, which the owning container shares across its collections.
func NewStore(nextUID func() int64) *Store {
	return newStoreDigits(nextUID, DefaultAutoNameDigits)
}

// NewStoreDigits creates a store with a non-default auto-name digit
// count, taken from the settings key waypoints.autoname_digits.
func NewStoreDigits(nextUID func() int64, digits int) *Store {
	if digits < 1 || digits > 9 {
		digits = DefaultAutoNameDigits
	}
	return newStoreDigits(nextUID, digits)
}

func newStoreDigits(nextUID func() int64, digits int) *Store {
	return &Store{
		byUID:          make(map[int64]*Waypoint),
		bbox:           geo.NewBBox(),
		nextUID:        nextUID,
		autoNameDigits: digits,
		autoNameRegex:  regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, digits)),
	}
}

// Len returns the number of waypoints.
func (s *Store) Len() int {
	return len(s.order)
}

// BBox returns the envelope over all waypoint coordinates.
func (s *Store) BBox() geo.LatLonBBox {
	return s.bbox
}

// Add inserts a waypoint, assigns its uid, extends the bounding box and
// tracks the auto-name high-water mark. Name collisions are allowed;
// callers wanting uniqueness ask UniqueNameSuggestion first.
func (s *Store) Add(w *Waypoint) int64 {
	w.UID = s.nextUID()
	s.byUID[w.UID] = w
	s.order = append(s.order, w.UID)
	s.bbox.Extend(w.Coord.LatLon())
	s.noteAutoName(w.Name)
	return w.UID
}

func (s *Store) noteAutoName(name string) {
	if !s.autoNameRegex.MatchString(name) {
		return
	}
	n, err := strconv.Atoi(name)
	if err != nil {
		return
	}
	if n > s.highestWpNumber {
		s.highestWpNumber = n
	}
}

// Delete removes a waypoint by uid and recomputes the bounding box.
func (s *Store) Delete(uid int64) bool {
	if _, ok := s.byUID[uid]; !ok {
		return false
	}
	delete(s.byUID, uid)
	for i, u := range s.order {
		if u == uid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.recalculateBBox()
	return true
}

// Remove detaches a waypoint without recycling its uid, for transfer to
// another container.
func (s *Store) Remove(uid int64) (*Waypoint, bool) {
	w, ok := s.byUID[uid]
	if !ok {
		return nil, false
	}
	s.Delete(uid)
	return w, true
}

func (s *Store) recalculateBBox() {
	bbox := geo.NewBBox()
	for _, uid := range s.order {
		bbox.Extend(s.byUID[uid].Coord.LatLon())
	}
	s.bbox = bbox
}

// Get returns a waypoint by uid.
func (s *Store) Get(uid int64) (*Waypoint, bool) {
	w, ok := s.byUID[uid]
	return w, ok
}

// Each calls fn for every waypoint in insertion order until fn returns
// false.
func (s *Store) Each(fn func(*Waypoint) bool) {
	for _, uid := range s.order {
		if !fn(s.byUID[uid]) {
			return
		}
	}
}

// All returns the waypoints in insertion order.
func (s *Store) All() []*Waypoint {
	out := make([]*Waypoint, 0, len(s.order))
	for _, uid := range s.order {
		out = append(out, s.byUID[uid])
	}
	return out
}

// FindByName returns the first waypoint with the given name in
// insertion order. Case-sensitive.
func (s *Store) FindByName(name string) (*Waypoint, bool) {
	for _, uid := range s.order {
		if s.byUID[uid].Name == name {
			return s.byUID[uid], true
		}
	}
	return nil, false
}

// FindByDate returns the first waypoint whose timestamp day matches the
// yyyy-mm-dd date.
func (s *Store) FindByDate(date string) (*Waypoint, bool) {
	for _, uid := range s.order {
		if s.byUID[uid].DateMatches(date) {
			return s.byUID[uid], true
		}
	}
	return nil, false
}

// Rename updates a waypoint's name. Collisions are allowed; the caller
// confirms with the user beforehand.
func (s *Store) Rename(uid int64, newName string) bool {
	w, ok := s.byUID[uid]
	if !ok {
		return false
	}
	w.Name = newName
	s.noteAutoName(newName)
	return true
}

// UniqueNameSuggestion appends "#2", "#3", ... to base until the result
// collides with nothing in the store.
func (s *Store) UniqueNameSuggestion(base string) string {
	if _, taken := s.FindByName(base); !taken {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s#%d", base, i)
		if _, taken := s.FindByName(candidate); !taken {
			return candidate
		}
	}
}

// NextAutoName returns the next unused name in the auto-name number
// space ("001".."999" with the default three digits), or the empty
// string when the space is exhausted.
func (s *Store) NextAutoName() string {
	max := 1
	for i := 0; i < s.autoNameDigits; i++ {
		max *= 10
	}
	next := s.highestWpNumber + 1
	if next >= max {
		return ""
	}
	return fmt.Sprintf("%0*d", s.autoNameDigits, next)
}

// Project maps a coordinate to screen pixels; supplied by the caller of
// SearchClosest, which has no notion of the viewport itself.
type Project func(geo.Coord) (x, y int)

// SearchClosest returns the visible waypoint closest to the given
// screen point within tolerance pixels. A waypoint with a cached image
// also matches anywhere inside its image bounds.
func (s *Store) SearchClosest(x, y, tolerance int, project Project) (*Waypoint, bool) {
	var best *Waypoint
	bestDist := math.Inf(1)
	for _, uid := range s.order {
		w := s.byUID[uid]
		if !w.Visible {
			continue
		}
		wx, wy := project(w.Coord)

		if w.ImageWidth > 0 && w.ImageHeight > 0 {
			halfW, halfH := w.ImageWidth/2, w.ImageHeight/2
			if x >= wx-halfW && x <= wx+halfW && y >= wy-halfH && y <= wy+halfH {
				d := math.Hypot(float64(x-wx), float64(y-wy))
				if d < bestDist {
					best = w
					bestDist = d
				}
				continue
			}
		}

		dx, dy := x-wx, y-wy
		if dx < -tolerance || dx > tolerance || dy < -tolerance || dy > tolerance {
			continue
		}
		d := math.Hypot(float64(dx), float64(dy))
		if d < bestDist {
			best = w
			bestDist = d
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}
